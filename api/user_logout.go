package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLogout clears the persisted refresh token so the session can't
// be rotated anymore, then drops the cookies. Access tokens already
// issued expire on their own.
func (a *API) UserLogout(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if err := a.Tokens.Revoke(userID); err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to revoke session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.clearSessionCookies(c)

	respond(c, http.StatusOK, nil, "Logged out")
}
