// Package auth implements the access/refresh token lifecycle. Access
// tokens are stateless signed claims, refresh tokens are additionally
// persisted as a single scalar on the user record so they can be
// rotated and revoked server-side.
package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
	"vidtube/api/model"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const issuer = "vidtube"

var (
	// ErrTokenInvalid covers missing, malformed, expired and
	// signature-invalid tokens
	ErrTokenInvalid = errors.New("invalid token")

	// ErrSessionExpired means the token parsed fine but doesn't match
	// the refresh token currently stored for the user. It has either
	// been rotated away or revoked
	ErrSessionExpired = errors.New("session expired")

	// ErrSigning hides the raw signing library error from callers
	ErrSigning = errors.New("failed to sign token")
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Config carries the signing material for both token classes. The
// secrets must differ so one class can't be forged from the other.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenService struct {
	db  *gorm.DB
	cfg Config
}

func NewTokenService(db *gorm.DB, cfg Config) *TokenService {
	return &TokenService{db: db, cfg: cfg}
}

// Issue creates a new access/refresh pair for a user and persists the
// refresh token, overwriting whatever was stored before. Any session
// issued earlier is dead from this point on.
func (t *TokenService) Issue(userID string) (access, refresh string, err error) {
	access, err = t.sign(userID, t.cfg.AccessSecret, t.cfg.AccessTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err = t.sign(userID, t.cfg.RefreshSecret, t.cfg.RefreshTTL)
	if err != nil {
		return "", "", err
	}

	r := t.db.
		Model(model.User{}).
		Where("id = ?", userID).
		Update("refresh_token", refresh)
	if r.Error != nil {
		return "", "", fmt.Errorf("failed to store refresh token, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return "", "", ErrTokenInvalid
	}

	return access, refresh, nil
}

// VerifyAccess checks a stateless access token and returns the user id
// it was issued for. No database lookup happens here.
func (t *TokenService) VerifyAccess(token string) (string, error) {
	claims, err := t.parse(token, t.cfg.AccessSecret)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}

// VerifyRefresh checks the signature and expiry of a refresh token and
// then compares it against the persisted value. A mismatch means the
// token was superseded by a rotation or cleared by a logout.
func (t *TokenService) VerifyRefresh(token string) (string, error) {
	claims, err := t.parse(token, t.cfg.RefreshSecret)
	if err != nil {
		return "", err
	}

	var stored sql.NullString

	r := t.db.
		Model(model.User{}).
		Where("id = ?", claims.UserID).
		Select("refresh_token").
		First(&stored)
	if r.Error != nil {
		if errors.Is(r.Error, gorm.ErrRecordNotFound) {
			return "", ErrSessionExpired
		}

		return "", fmt.Errorf("failed to load refresh token, %w", r.Error)
	}

	if !stored.Valid || stored.String != token {
		return "", ErrSessionExpired
	}

	return claims.UserID, nil
}

// Rotate exchanges a valid refresh token for a new pair. The swap is a
// compare-and-swap on the stored value so two concurrent rotations
// with the same old token can't both succeed.
func (t *TokenService) Rotate(token string) (access, refresh string, err error) {
	claims, err := t.parse(token, t.cfg.RefreshSecret)
	if err != nil {
		return "", "", err
	}

	access, err = t.sign(claims.UserID, t.cfg.AccessSecret, t.cfg.AccessTTL)
	if err != nil {
		return "", "", err
	}

	refresh, err = t.sign(claims.UserID, t.cfg.RefreshSecret, t.cfg.RefreshTTL)
	if err != nil {
		return "", "", err
	}

	r := t.db.
		Model(model.User{}).
		Where("id = ? AND refresh_token = ?", claims.UserID, token).
		Update("refresh_token", refresh)
	if r.Error != nil {
		return "", "", fmt.Errorf("failed to rotate refresh token, %w", r.Error)
	}

	// The stored value changed between parse and update, or the user
	// is gone. Either way the presented token is no longer usable
	if r.RowsAffected == 0 {
		return "", "", ErrSessionExpired
	}

	return access, refresh, nil
}

// Revoke clears the persisted refresh token for a user. Access tokens
// already in the wild stay valid until they expire on their own.
func (t *TokenService) Revoke(userID string) error {
	r := t.db.
		Model(model.User{}).
		Where("id = ?", userID).
		Update("refresh_token", nil)
	if r.Error != nil {
		return fmt.Errorf("failed to clear refresh token, %w", r.Error)
	}

	return nil
}

func (t *TokenService) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%w, %v", ErrSigning, err)
	}

	return signed, nil
}

func (t *TokenService) parse(tokenStr string, secret []byte) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tk.Method.Alg())
		}

		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
