package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WatchHistory returns the caller's watch history with owner
// projections, in exactly the order the interactions happened.
func (a *API) WatchHistory(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	history, err := a.Profiles.WatchHistory(userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to fetch watch history", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, history, "Watch history fetched successfully")
}
