package modules

import (
	"github.com/Seklfreak/robyul-starboard/modules/plugins/starboard"
)

var (
	// Starboard is exposed for the REST API and the machinery tasks
	Starboard = &starboard.Handler{}

	PluginExtendedList = []ExtendedPlugin{
		Starboard,
	}
)
