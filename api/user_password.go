package api

import (
	"net/http"
	"vidtube/api/model"
	"vidtube/api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type changePasswordBody struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UserChangePassword verifies the old password before accepting the
// new one. Only the hash column is touched, nothing else on the
// account gets revalidated.
func (a *API) UserChangePassword(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data changePasswordBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if data.OldPassword == "" {
		fail(c, http.StatusBadRequest, "Old password field can't be empty")
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	// The context user was loaded without the hash, fetch it here
	var hash string

	err := a.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Select("password_hash").
		First(&hash).
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to load password hash", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := a.Argon.VerifyPasswd(data.OldPassword, hash)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		fail(c, http.StatusBadRequest, "Invalid old password")
		return
	}

	newHash, err := a.Argon.GenerateFromPassword(data.NewPassword)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Update("password_hash", newHash).
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, nil, "Password changed successfully")
}
