package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"vidtube/api/model"
	"vidtube/api/service"
	"vidtube/api/util"
	"vidtube/api/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// UserRegister creates a new account from a multipart form. The
// avatar is required and is uploaded to the media host before the
// user record is created, so a failed upload never leaves a
// half-created account behind.
func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fullName := strings.TrimSpace(c.PostForm("fullName"))
	email := strings.TrimSpace(c.PostForm("email"))
	username := strings.ToLower(strings.TrimSpace(c.PostForm("username")))
	password := c.PostForm("password")

	if fullName == "" {
		fail(c, http.StatusBadRequest, "Full name field can't be empty")
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.UsernameValidator(username); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.PasswordValidator(password); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var found bool

	r := a.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("username = ? OR email = ?", username, email).
		First(&found)
	if r.Error != nil && !errors.Is(r.Error, gorm.ErrRecordNotFound) {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		fail(c, http.StatusConflict, "A user with this username or email already exists")
		return
	}

	hash, err := a.Argon.GenerateFromPassword(password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "Avatar file is required")
		return
	}

	avatar, err := a.uploadFormFile(c, avatarFile)
	if err != nil {
		fail(c, http.StatusBadRequest, "Failed to store avatar")

		zap.L().Error("Avatar upload failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The cover image is optional and a failed upload just leaves it
	// empty
	var coverURL string

	if coverFile, err := c.FormFile("coverImage"); err == nil {
		if cover, err := a.uploadFormFile(c, coverFile); err == nil {
			coverURL = cover.URL
		} else {
			zap.L().Warn("Cover image upload failed", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user := model.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
		PasswordHash: hash,
		WatchHistory: model.StringSlice{},
	}

	if err := a.DB.Create(&user).Error; err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusCreated, user.Public(), "Registered successfully")
}

// uploadFormFile stages a multipart file in the temp dir and pushes it
// to the media host. The staged copy is cleaned up by the uploader.
func (a *API) uploadFormFile(c *gin.Context, fh *multipart.FileHeader) (*service.UploadResult, error) {
	tmp := filepath.Join(os.TempDir(), util.RandStr(12)+filepath.Ext(fh.Filename))

	if err := c.SaveUploadedFile(fh, tmp); err != nil {
		return nil, err
	}

	return a.Uploader.Do(tmp)
}
