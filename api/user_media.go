package api

import (
	"net/http"
	"vidtube/api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserUpdateAvatar replaces the caller's avatar. The new image is
// uploaded first, the record only changes once the media host
// accepted it.
func (a *API) UserUpdateAvatar(c *gin.Context) {
	a.updateMedia(c, "avatar", "avatar", "Avatar updated successfully")
}

// UserUpdateCover replaces the caller's cover image.
func (a *API) UserUpdateCover(c *gin.Context) {
	a.updateMedia(c, "coverImage", "cover_image", "Cover image updated successfully")
}

func (a *API) updateMedia(c *gin.Context, formField, column, message string) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile(formField)
	if err != nil {
		fail(c, http.StatusBadRequest, "No "+formField+" file provided")
		return
	}

	res, err := a.uploadFormFile(c, fh)
	if err != nil {
		// An upload failure fails the request, it doesn't crash it
		fail(c, http.StatusBadRequest, "Failed to store "+formField)

		zap.L().Error("Media upload failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.
		Model(model.User{}).
		Where("id = ?", userID).
		Update(column, res.URL).
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to update user media", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, gin.H{"url": res.URL}, message)
}
