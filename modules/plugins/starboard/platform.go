package starboard

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

var (
	// ErrMissingPermissions is returned when the bot lacks a channel permission
	ErrMissingPermissions = errors.New("missing permissions")
	// ErrUnknownMessage is returned when a message no longer exists
	ErrUnknownMessage = errors.New("unknown message")
)

// Platform is the part of the Discord API the starboard talks to
type Platform interface {
	GetMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error)
	// GetReactorUsers returns up to limit users who reacted with emoji, starting after afterID
	GetReactorUsers(ctx context.Context, channelID, messageID string, emoji Emoji, limit int, afterID string) ([]*discordgo.User, error)
	SendMessage(ctx context.Context, channelID string, content MessageContent) (*discordgo.Message, error)
	EditMessage(ctx context.Context, channelID, messageID string, content MessageContent) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	RespondToComponent(ctx context.Context, event ComponentEvent, response ComponentResponse) error
	RemoveReaction(ctx context.Context, channelID, messageID string, emoji Emoji, userID string) error
}

// SessionPlatform implements Platform on top of a discordgo session
type SessionPlatform struct {
	session *discordgo.Session
}

func NewSessionPlatform(session *discordgo.Session) *SessionPlatform {
	return &SessionPlatform{session: session}
}

func (p *SessionPlatform) GetMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	message, err := p.session.State.Message(channelID, messageID)
	if err == nil {
		return message, nil
	}

	message, err = p.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateRESTError(err)
	}
	return message, nil
}

func (p *SessionPlatform) GetReactorUsers(
	ctx context.Context, channelID, messageID string, emoji Emoji, limit int, afterID string,
) ([]*discordgo.User, error) {
	users, err := p.session.MessageReactions(
		channelID, messageID, emoji.APIName(), limit, "", afterID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateRESTError(err)
	}
	return users, nil
}

func (p *SessionPlatform) SendMessage(ctx context.Context, channelID string, content MessageContent) (*discordgo.Message, error) {
	message, err := p.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    content.Content,
		Embeds:     content.Embeds,
		Components: content.Components,
		// review posts ping the moderators, nothing else
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateRESTError(err)
	}
	return message, nil
}

func (p *SessionPlatform) EditMessage(ctx context.Context, channelID, messageID string, content MessageContent) error {
	text := content.Content
	embeds := content.Embeds
	components := content.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	_, err := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Content:    &text,
		Embeds:     &embeds,
		Components: &components,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}, discordgo.WithContext(ctx))
	return translateRESTError(err)
}

func (p *SessionPlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := p.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	return translateRESTError(err)
}

func (p *SessionPlatform) RespondToComponent(ctx context.Context, event ComponentEvent, response ComponentResponse) error {
	if event.Interaction == nil {
		return errors.New("component event without interaction")
	}

	interactionResponse := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: response.Content,
		},
	}
	if response.Ephemeral {
		interactionResponse.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	if response.Deferred {
		interactionResponse = &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		}
	}

	err := p.session.InteractionRespond(event.Interaction, interactionResponse, discordgo.WithContext(ctx))
	return translateRESTError(err)
}

func (p *SessionPlatform) RemoveReaction(ctx context.Context, channelID, messageID string, emoji Emoji, userID string) error {
	err := p.session.MessageReactionRemove(channelID, messageID, emoji.APIName(), userID, discordgo.WithContext(ctx))
	return translateRESTError(err)
}

// translateRESTError maps the discord error codes the starboard reacts to onto sentinel errors
func translateRESTError(err error) error {
	if err == nil {
		return nil
	}
	if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
		switch errD.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return errors.Wrap(ErrMissingPermissions, errD.Message.Message)
		case discordgo.ErrCodeUnknownMessage:
			return errors.Wrap(ErrUnknownMessage, errD.Message.Message)
		}
	}
	return err
}
