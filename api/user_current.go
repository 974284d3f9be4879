package api

import (
	"errors"
	"net/http"
	"strings"
	"vidtube/api/model"
	"vidtube/api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserCurrent returns the identity the auth middleware resolved for
// this request.
func (a *API) UserCurrent(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	respond(c, http.StatusOK, user.Public(), "Current user fetched successfully")
}

type updateBody struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UserUpdate changes full name and/or email. This is a partial save,
// fields that aren't sent stay untouched and nothing else gets
// revalidated.
func (a *API) UserUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data updateBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	data.FullName = strings.TrimSpace(data.FullName)
	data.Email = strings.TrimSpace(data.Email)

	if data.FullName == "" && data.Email == "" {
		fail(c, http.StatusBadRequest, "Nothing to update")
		return
	}

	updates := map[string]any{}

	if data.FullName != "" {
		updates["full_name"] = data.FullName
	}

	if data.Email != "" {
		if err := validators.EmailValidator(data.Email); err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}

		var taken bool

		r := a.DB.Model(model.User{}).
			Select("count(*) > 0").
			Where("email = ? AND id <> ?", data.Email, userID).
			First(&taken)
		if r.Error != nil && !errors.Is(r.Error, gorm.ErrRecordNotFound) {
			fail(c, http.StatusInternalServerError, "Internal server error")

			zap.L().Error("Failed to check email uniqueness", zap.Error(r.Error), zap.String("requestID", requestID))
			return
		}

		if taken {
			fail(c, http.StatusConflict, "This email is already registered")
			return
		}

		updates["email"] = data.Email
	}

	err := a.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Updates(updates).
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to update account", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var user model.User

	err = a.DB.
		Omit("password_hash", "refresh_token").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to reload account", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, user.Public(), "Account updated successfully")
}
