package middleware

import (
	"errors"
	"net/http"
	"strings"
	"vidtube/api/auth"
	"vidtube/api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAuthMiddleware returns the gate that runs before every handler
// reading the caller identity. It pulls the access token from the
// accessToken cookie or the Authorization header (cookie wins),
// verifies it and loads the user it belongs to. The loaded user never
// carries the password hash or refresh token.
func NewAuthMiddleware(d *gorm.DB, tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, err := c.Cookie("accessToken")
		if err != nil {
			tokenStr = bearerToken(c)
		}

		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No credentials provided",
				"requestID": requestID,
			})
			return
		}

		userID, err := tokens.VerifyAccess(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid access token",
				"requestID": requestID,
			})
			return
		}

		var user model.User

		err = d.
			Omit("password_hash", "refresh_token").
			Where("id = ?", userID).
			First(&user).
			Error
		if err != nil {
			// A valid token for a user that's gone is still an
			// authentication failure, not a lookup miss
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Invalid access token",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to resolve token user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", userID)
		c.Set("user", &user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}

	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}

	return token
}
