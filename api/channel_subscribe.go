package api

import (
	"errors"
	"net/http"
	"strings"
	"vidtube/api/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChannelSubscribe creates a subscription edge from the caller to the
// named channel.
func (a *API) ChannelSubscribe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	channel, ok := a.resolveChannel(c)
	if !ok {
		return
	}

	if channel.ID == userID {
		fail(c, http.StatusBadRequest, "Can't subscribe to your own channel")
		return
	}

	edgeID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to generate subscription ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Create(&model.Subscription{
		ID:           edgeID,
		SubscriberID: userID,
		ChannelID:    channel.ID,
	}).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to create subscription", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, nil, "Subscribed successfully")
}

// ChannelUnsubscribe removes every edge between the caller and the
// channel, so duplicate edges disappear in one call.
func (a *API) ChannelUnsubscribe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	channel, ok := a.resolveChannel(c)
	if !ok {
		return
	}

	err := a.DB.
		Where("subscriber_id = ? AND channel_id = ?", userID, channel.ID).
		Delete(model.Subscription{}).
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to delete subscription", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, nil, "Unsubscribed successfully")
}

func (a *API) resolveChannel(c *gin.Context) (*model.User, bool) {
	requestID := c.MustGet("requestID").(string)

	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		fail(c, http.StatusBadRequest, "No username provided")
		return nil, false
	}

	var channel model.User

	err := a.DB.
		Omit("password_hash", "refresh_token").
		Where("username = ?", username).
		First(&channel).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Channel does not exist")
			return nil, false
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to look up channel", zap.Error(err), zap.String("requestID", requestID))
		return nil, false
	}

	return &channel, true
}
