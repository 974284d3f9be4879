package api

import (
	"errors"
	"net/http"
	"strings"
	"vidtube/api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         model.PublicUser `json:"user"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

// UserLogin verifies credentials and issues a fresh token pair. The
// new refresh token replaces whatever session the user had before.
func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Username == "" && data.Email == "" {
		fail(c, http.StatusBadRequest, "Username or email is required")
		return
	}

	if data.Password == "" {
		fail(c, http.StatusBadRequest, "Password field can't be empty")
		return
	}

	var user model.User

	err := a.DB.
		Where("username = ? OR email = ?", strings.ToLower(data.Username), data.Email).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := a.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	access, refresh, err := a.Tokens.Issue(user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to issue token pair", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.setSessionCookies(c, access, refresh)

	respond(c, http.StatusOK, loginResponse{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, "Logged in successfully")
}

func (a *API) setSessionCookies(c *gin.Context, access, refresh string) {
	c.SetCookie("accessToken", access, int(a.accessTTL.Seconds()), "/", "", a.secureCookies, true)
	c.SetCookie("refreshToken", refresh, int(a.refreshTTL.Seconds()), "/", "", a.secureCookies, true)
}

func (a *API) clearSessionCookies(c *gin.Context) {
	c.SetCookie("accessToken", "", -1, "/", "", a.secureCookies, true)
	c.SetCookie("refreshToken", "", -1, "/", "", a.secureCookies, true)
}
