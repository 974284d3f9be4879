package service

import (
	"database/sql"
	"fmt"
	"time"
	"vidtube/api/model"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionCleanup periodically clears refresh tokens whose own expiry
// has passed. Rotation and verification re-check expiry anyway, this
// just keeps dead sessions from lingering in the users table.
func SessionCleanup(t time.Duration, db *gorm.DB, refreshSecret []byte) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Session cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			var rows []struct {
				ID           string
				RefreshToken sql.NullString
			}

			err := db.
				Model(model.User{}).
				Where("refresh_token IS NOT NULL").
				Select("id", "refresh_token").
				Find(&rows).
				Error
			if err != nil {
				zap.L().Error("Failed to query db for sessions to clean", zap.Error(err))
				continue
			}

			var toClean []string

			for _, r := range rows {
				if !r.RefreshToken.Valid {
					continue
				}

				if refreshTokenExpired(r.RefreshToken.String, refreshSecret) {
					toClean = append(toClean, r.ID)
				}
			}

			if len(toClean) == 0 {
				continue
			}

			zap.L().Debug("Cleaning up expired sessions", zap.Int("count", len(toClean)))

			err = db.
				Model(model.User{}).
				Where("id IN ?", toClean).
				Update("refresh_token", nil).
				Error
			if err != nil {
				zap.L().Error("Failed to clear expired sessions", zap.Error(err))
			}
		}
	}()
}

func refreshTokenExpired(tokenStr string, secret []byte) bool {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tk.Method.Alg())
		}

		return secret, nil
	})

	// Unparseable or expired values are equally dead
	return err != nil || !token.Valid
}
