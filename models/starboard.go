package models

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

const (
	StarboardEntriesTable MongoDbCollection = "starboard_entries"

	StarboardEnabledRedisKey = "robyul2-discord:starboard:enabled"
)

// StarStatus is the review state of a StarEntry
type StarStatus string

const (
	StarStatusInReview StarStatus = "in_review"
	StarStatusAccepted StarStatus = "accepted"
	StarStatusDenied   StarStatus = "denied"
)

// CanTransitionTo reports whether a review decision may move s to next.
// Accepted and denied are terminal.
func (s StarStatus) CanTransitionTo(next StarStatus) bool {
	if s != StarStatusInReview {
		return false
	}
	return next == StarStatusAccepted || next == StarStatusDenied
}

// StarEntry struct
type StarEntry struct {
	ID                bson.ObjectId `bson:"_id,omitempty"`
	GuildID           string        `bson:"guild_id"`
	AuthorID          string        `bson:"author_id"`
	AuthorDisplayName string        `bson:"author_display_name"`
	AuthorAvatarURL   string        `bson:"author_avatar_url"`
	Content           string        `bson:"content"`
	OriginChannelID   string        `bson:"origin_channel_id"`
	OriginMessageID   string        `bson:"origin_message_id"`
	AttachmentURLs    []string      `bson:"attachment_urls"`
	StarCount         int           `bson:"star_count"`
	Status            StarStatus    `bson:"status"`
	PromotedChannelID string        `bson:"promoted_channel_id"`
	PromotedMessageID string        `bson:"promoted_message_id"`
	ReviewChannelID   string        `bson:"review_channel_id"`
	ReviewMessageID   string        `bson:"review_message_id"`
	ReviewedByUserID  string        `bson:"reviewed_by_user_id,omitempty"`
	ReviewedAt        time.Time     `bson:"reviewed_at,omitempty"`
	CreatedAt         time.Time     `bson:"created_at"`
}

// IsPromoted returns true once the entry has a bot-authored copy
func (e StarEntry) IsPromoted() bool {
	return e.PromotedChannelID != "" && e.PromotedMessageID != ""
}
