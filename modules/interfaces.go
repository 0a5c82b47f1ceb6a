package modules

import "github.com/bwmarrin/discordgo"

type BaseModule interface{}

// ExtendedPlugin reacts to gateway events instead of commands
type ExtendedPlugin interface {
	BaseModule

	Init(session *discordgo.Session)

	Uninit(session *discordgo.Session)

	OnReactionAdd(
		reaction *discordgo.MessageReactionAdd,
		session *discordgo.Session,
	)

	OnReactionRemove(
		reaction *discordgo.MessageReactionRemove,
		session *discordgo.Session,
	)

	OnInteractionCreate(
		interaction *discordgo.InteractionCreate,
		session *discordgo.Session,
	)
}
