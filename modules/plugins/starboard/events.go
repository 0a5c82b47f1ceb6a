package starboard

import (
	"github.com/bwmarrin/discordgo"
)

// ReactionEvent is a reaction added to or removed from a message
type ReactionEvent struct {
	ChannelID string
	MessageID string
	GuildID   string
	UserID    string
	UserIsBot bool
	Emoji     Emoji
}

// ComponentEvent is a button press on a message
type ComponentEvent struct {
	ChannelID string
	MessageID string
	UserID    string
	CustomID  string

	Interaction *discordgo.Interaction
}

// ComponentResponse answers a ComponentEvent.
// Deferred acknowledges the press without changing the message.
type ComponentResponse struct {
	Content   string
	Ephemeral bool
	Deferred  bool
}

// MessageContent is everything the bot renders into a promoted message
type MessageContent struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

func reactionEventFromDiscord(reaction *discordgo.MessageReaction, member *discordgo.Member) ReactionEvent {
	event := ReactionEvent{
		ChannelID: reaction.ChannelID,
		MessageID: reaction.MessageID,
		GuildID:   reaction.GuildID,
		UserID:    reaction.UserID,
		Emoji:     EmojiFromDiscord(reaction.Emoji),
	}
	if member != nil && member.User != nil {
		event.UserIsBot = member.User.Bot
	}
	return event
}

func componentEventFromDiscord(interaction *discordgo.Interaction) (ComponentEvent, bool) {
	if interaction == nil ||
		interaction.Type != discordgo.InteractionMessageComponent ||
		interaction.Message == nil {
		return ComponentEvent{}, false
	}

	event := ComponentEvent{
		ChannelID:   interaction.ChannelID,
		MessageID:   interaction.Message.ID,
		CustomID:    interaction.MessageComponentData().CustomID,
		Interaction: interaction,
	}
	switch {
	case interaction.Member != nil && interaction.Member.User != nil:
		event.UserID = interaction.Member.User.ID
	case interaction.User != nil:
		event.UserID = interaction.User.ID
	}
	return event, true
}
