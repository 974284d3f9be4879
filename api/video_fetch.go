package api

import (
	"errors"
	"net/http"
	"vidtube/api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoFetch returns a single video. Responses are cached briefly
// since this is the hottest read path.
func (a *API) VideoFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	videoID := c.Param("id")
	if videoID == "" {
		fail(c, http.StatusBadRequest, "No video ID provided")
		return
	}

	var video model.Video

	err := a.DB.
		Where("id = ?", videoID).
		First(&video).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Video not found")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to fetch video", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, video, "Video fetched successfully")
}
