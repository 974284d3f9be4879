package api

import (
	"errors"
	"net/http"
	"vidtube/api/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserRefresh rotates a refresh token into a new pair. The presented
// token is dead the moment the rotation lands, a second attempt with
// it fails as an expired session.
func (a *API) UserRefresh(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	tokenStr, err := c.Cookie("refreshToken")
	if err != nil || tokenStr == "" {
		var data refreshBody
		if err := c.ShouldBind(&data); err == nil {
			tokenStr = data.RefreshToken
		}
	}

	if tokenStr == "" {
		fail(c, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	access, refresh, err := a.Tokens.Rotate(tokenStr)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionExpired):
			fail(c, http.StatusUnauthorized, "Session expired")
		case errors.Is(err, auth.ErrTokenInvalid):
			fail(c, http.StatusUnauthorized, "Invalid refresh token")
		default:
			fail(c, http.StatusInternalServerError, "Internal server error")

			zap.L().Error("Failed to rotate refresh token", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	a.setSessionCookies(c, access, refresh)

	respond(c, http.StatusOK, refreshResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, "Access token refreshed")
}
