package service

import (
	"errors"
	"fmt"
	"strings"
	"vidtube/api/model"

	"gorm.io/gorm"
)

var ErrChannelNotFound = errors.New("channel not found")

// Profiles computes the derived read-only views that join users with
// the subscription and video relations. Both operations are pure
// reads.
type Profiles struct {
	DB *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{DB: db}
}

// ChannelProfile resolves a channel by username and decorates the
// public projection with subscriber counts and whether the viewer
// subscribes to it. Counts report raw edge counts, so duplicate
// subscription edges are counted twice.
func (p *Profiles) ChannelProfile(viewerID, username string) (*model.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var target model.User

	err := p.DB.
		Omit("password_hash", "refresh_token").
		Where("username = ?", username).
		First(&target).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}

		return nil, fmt.Errorf("failed to load channel, %w", err)
	}

	profile := &model.ChannelProfile{PublicUser: target.Public()}

	err = p.DB.
		Model(model.Subscription{}).
		Where("channel_id = ?", target.ID).
		Count(&profile.SubscribersCount).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to count subscribers, %w", err)
	}

	err = p.DB.
		Model(model.Subscription{}).
		Where("subscriber_id = ?", target.ID).
		Count(&profile.ChannelsSubscribedToCount).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to count subscribed channels, %w", err)
	}

	if viewerID != "" {
		var edges int64

		err = p.DB.
			Model(model.Subscription{}).
			Where("subscriber_id = ? AND channel_id = ?", viewerID, target.ID).
			Count(&edges).
			Error
		if err != nil {
			return nil, fmt.Errorf("failed to check subscription, %w", err)
		}

		profile.IsSubscribed = edges > 0
	}

	return profile, nil
}

// WatchHistory resolves the caller's stored watch history ids to
// videos with their owner projections. The output keeps the exact
// order of the stored list, not whatever order the database returns
// the joined rows in. Ids that no longer resolve to a video are
// skipped.
func (p *Profiles) WatchHistory(userID string) ([]model.VideoWithOwner, error) {
	var user model.User

	err := p.DB.
		Select("watch_history").
		Take(&user, "id = ?", userID).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load watch history, %w", err)
	}

	history := user.WatchHistory

	if len(history) == 0 {
		return []model.VideoWithOwner{}, nil
	}

	var videos []model.Video

	err = p.DB.
		Where("id IN ?", []string(history)).
		Find(&videos).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load videos, %w", err)
	}

	videoByID := make(map[string]model.Video, len(videos))
	ownerIDs := make([]string, 0, len(videos))

	for _, v := range videos {
		videoByID[v.ID] = v
		ownerIDs = append(ownerIDs, v.OwnerID)
	}

	var owners []model.User

	err = p.DB.
		Select("id", "username", "full_name", "avatar").
		Where("id IN ?", ownerIDs).
		Find(&owners).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load video owners, %w", err)
	}

	ownerByID := make(map[string]model.VideoOwner, len(owners))
	for i := range owners {
		ownerByID[owners[i].ID] = owners[i].Owner()
	}

	out := make([]model.VideoWithOwner, 0, len(history))

	for _, id := range history {
		v, ok := videoByID[id]
		if !ok {
			continue
		}

		out = append(out, model.VideoWithOwner{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			FileKey:     v.FileKey,
			ThumbKey:    v.ThumbKey,
			Duration:    v.Duration,
			Views:       v.Views,
			Owner:       ownerByID[v.OwnerID],
		})
	}

	return out, nil
}
