package models

import (
	"time"
)

type Rest_StarEntry struct {
	ID                string
	GuildID           string
	AuthorID          string
	AuthorDisplayName string
	AuthorAvatarURL   string
	Content           string
	OriginChannelID   string
	OriginMessageID   string
	AttachmentURLs    []string
	StarCount         int
	Status            StarStatus
	PromotedChannelID string
	PromotedMessageID string
	ReviewChannelID   string
	ReviewMessageID   string
	ReviewedByUserID  string
	ReviewedAt        time.Time
	CreatedAt         time.Time
}

type Rest_Starboard_Switch struct {
	Enabled bool
}

type Rest_Error struct {
	Message string
}
