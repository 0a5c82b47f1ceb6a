package main

import (
	"fmt"

	"github.com/Seklfreak/robyul-starboard/cache"
	"github.com/Seklfreak/robyul-starboard/helpers"
	"github.com/Seklfreak/robyul-starboard/modules"
	"github.com/bwmarrin/discordgo"
)

// BotOnReady gets called after the gateway connected
func BotOnReady(session *discordgo.Session, event *discordgo.Ready) {
	log := cache.GetLogger()

	log.WithField("module", "bot").Info("Connected to discord!")
	log.WithField("module", "bot").Info("Invite link: " + fmt.Sprintf(
		"https://discord.com/oauth2/authorize?client_id=%s&scope=bot&permissions=%s",
		helpers.ConfigString("discord.id", session.State.User.ID),
		helpers.ConfigString("discord.perms", "76864"),
	))

	// Cache the session
	cache.SetSession(session)

	// Load and init all modules
	modules.Init(session)
}

// BotDestroy cleans up before the session closes
func BotDestroy(session *discordgo.Session) {
	modules.Uninit(session)
}

func BotOnReactionAdd(session *discordgo.Session, reaction *discordgo.MessageReactionAdd) {
	modules.CallExtendedPluginOnReactionAdd(reaction)
}

func BotOnReactionRemove(session *discordgo.Session, reaction *discordgo.MessageReactionRemove) {
	modules.CallExtendedPluginOnReactionRemove(reaction)
}

func BotOnInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	modules.CallExtendedPluginOnInteractionCreate(interaction)
}
