package api

import (
	"errors"
	"net/http"
	"vidtube/api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChannelProfile returns a channel with its derived social-graph
// fields, computed against the viewing user.
func (a *API) ChannelProfile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	username := c.Param("username")
	if username == "" {
		fail(c, http.StatusBadRequest, "No username provided")
		return
	}

	profile, err := a.Profiles.ChannelProfile(userID, username)
	if err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			fail(c, http.StatusNotFound, "Channel does not exist")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to build channel profile", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, profile, "Channel fetched successfully")
}
