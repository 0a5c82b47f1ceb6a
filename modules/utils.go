package modules

import (
	"fmt"
	"strconv"

	"github.com/Seklfreak/robyul-starboard/cache"
	"github.com/Seklfreak/robyul-starboard/helpers"
	"github.com/bwmarrin/discordgo"
)

// Init initializes the plugins
func Init(session *discordgo.Session) {
	logTemplate := "[EXTENDED-PLUG] %s initializing…"
	for _, extendedPlugin := range PluginExtendedList {
		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			logTemplate,
			helpers.Typeof(extendedPlugin),
		))

		extendedPlugin.Init(session)
	}

	cache.GetLogger().WithField("module", "modules").Info(
		"Initializer finished. Loaded " + strconv.Itoa(len(PluginExtendedList)) + " extended plugins",
	)
}

// Uninit deintializes the plugins
func Uninit(session *discordgo.Session) {
	logTemplate := "[EXTENDED-PLUG] %s deintializing…"
	for _, extendedPlugin := range PluginExtendedList {
		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			logTemplate,
			helpers.Typeof(extendedPlugin),
		))

		extendedPlugin.Uninit(session)
	}

	cache.GetLogger().WithField("module", "modules").Info(
		"Uninit finished. Unitialized " + strconv.Itoa(len(PluginExtendedList)) + " extended plugins",
	)
}

func CallExtendedPluginOnReactionAdd(reaction *discordgo.MessageReactionAdd) {
	defer helpers.Recover()

	// Iterate over all plugins
	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionAdd(reaction, cache.GetSession())
	}
}

func CallExtendedPluginOnReactionRemove(reaction *discordgo.MessageReactionRemove) {
	defer helpers.Recover()

	// Iterate over all plugins
	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionRemove(reaction, cache.GetSession())
	}
}

func CallExtendedPluginOnInteractionCreate(interaction *discordgo.InteractionCreate) {
	defer helpers.Recover()

	// Iterate over all plugins
	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnInteractionCreate(interaction, cache.GetSession())
	}
}
