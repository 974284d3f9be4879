package api

import (
	"errors"
	"net/http"
	"vidtube/api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoView records that the caller watched a video: the view counter
// goes up and the video id is appended to the caller's watch history.
// Repeat views append again, the history keeps interaction order.
func (a *API) VideoView(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	videoID := c.Param("id")
	if videoID == "" {
		fail(c, http.StatusBadRequest, "No video ID provided")
		return
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		var exists bool

		r := tx.Model(model.Video{}).
			Select("count(*) > 0").
			Where("id = ?", videoID).
			First(&exists)
		if r.Error != nil && !errors.Is(r.Error, gorm.ErrRecordNotFound) {
			return r.Error
		}

		if !exists {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(model.Video{}).
			Where("id = ?", videoID).
			Update("views", gorm.Expr("views + 1")).
			Error; err != nil {
			return err
		}

		var user model.User

		if err := tx.Select("watch_history").
			Take(&user, "id = ?", userID).
			Error; err != nil {
			return err
		}

		history := append(user.WatchHistory, videoID)

		return tx.Model(model.User{}).
			Where("id = ?", userID).
			Update("watch_history", history).
			Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Video not found")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to record view", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, nil, "View recorded")
}
