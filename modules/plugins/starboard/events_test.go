package starboard

import (
	"testing"

	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionEventFromDiscord(t *testing.T) {
	event := reactionEventFromDiscord(&discordgo.MessageReaction{
		UserID:    "u1",
		MessageID: "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Emoji:     discordgo.Emoji{ID: "1", Name: "star"},
	}, &discordgo.Member{User: &discordgo.User{ID: "u1", Bot: true}})

	assert.Equal(t, ReactionEvent{
		ChannelID: "c1",
		MessageID: "m1",
		GuildID:   "g1",
		UserID:    "u1",
		UserIsBot: true,
		Emoji:     Emoji{ID: "1", Name: "star"},
	}, event)
}

func TestComponentEventFromDiscord(t *testing.T) {
	interaction := &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "review",
		Message:   &discordgo.Message{ID: "m1"},
		Member:    &discordgo.Member{User: &discordgo.User{ID: "mod"}},
		Data:      discordgo.MessageComponentInteractionData{CustomID: AcceptCustomID},
	}

	event, ok := componentEventFromDiscord(interaction)
	require.True(t, ok)
	assert.Equal(t, "review", event.ChannelID)
	assert.Equal(t, "m1", event.MessageID)
	assert.Equal(t, "mod", event.UserID)
	assert.Equal(t, AcceptCustomID, event.CustomID)

	// direct messages carry the user instead of the member
	interaction.Member = nil
	interaction.User = &discordgo.User{ID: "dm-user"}
	event, ok = componentEventFromDiscord(interaction)
	require.True(t, ok)
	assert.Equal(t, "dm-user", event.UserID)

	_, ok = componentEventFromDiscord(&discordgo.Interaction{Type: discordgo.InteractionApplicationCommand})
	assert.False(t, ok)
	_, ok = componentEventFromDiscord(nil)
	assert.False(t, ok)
}

func TestReviewExpirySignature(t *testing.T) {
	signature := ReviewExpirySignature("review", "m1")

	assert.Equal(t, ReviewExpiryTask, signature.Name)
	assert.Equal(t, []tasks.Arg{
		{Type: "string", Value: "review"},
		{Type: "string", Value: "m1"},
	}, signature.Args)
	require.Len(t, signature.OnError, 1)
	assert.Equal(t, "log_error", signature.OnError[0].Name)
}

func TestHandlerWithoutEngine(t *testing.T) {
	handler := &Handler{}

	assert.Nil(t, handler.Engine())
	assert.Error(t, handler.ExpireReviewTask("review", "m1"))

	// events before Init are dropped
	handler.OnReactionAdd(&discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{}}, nil)
	handler.OnInteractionCreate(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}, nil)
}

func TestHandlerKeepsEngineOnReconnect(t *testing.T) {
	logger, _ := test.NewNullLogger()
	handler := &Handler{}
	first := NewEngine(testConfig(3), Dependencies{Store: newFakeStore(), Platform: newFakePlatform()})
	second := NewEngine(testConfig(3), Dependencies{Store: newFakeStore(), Platform: newFakePlatform()})

	assert.True(t, handler.install(first, logger.WithField("module", "starboard")))
	assert.False(t, handler.install(second, logger.WithField("module", "starboard")))
	assert.Same(t, first, handler.Engine())

	// a second ready event keeps the running engine
	handler.Init(nil)
	assert.Same(t, first, handler.Engine())

	handler.Uninit(nil)
	assert.Nil(t, handler.Engine())
	assert.True(t, handler.install(second, logger.WithField("module", "starboard")))
	assert.Same(t, second, handler.Engine())
}
