package helpers

import "github.com/Jeffail/gabs"

// config Saves the bot-config
var config *gabs.Container

// LoadConfig loads the config from $path into $config
func LoadConfig(path string) {
	json, err := gabs.ParseJSONFile(path)

	if err != nil {
		panic(err)
	}

	config = json
}

// GetConfig is a config getter
func GetConfig() *gabs.Container {
	return config
}

// ConfigString returns the string at path or fallback if it is missing
func ConfigString(path string, fallback string) string {
	if value, ok := config.Path(path).Data().(string); ok {
		return value
	}
	return fallback
}

// ConfigBool returns the bool at path or false if it is missing
func ConfigBool(path string) bool {
	value, _ := config.Path(path).Data().(bool)
	return value
}
