// Except.go: Contains functions to make handling panics less PITA

package helpers

import (
	"fmt"

	"github.com/Seklfreak/robyul-starboard/cache"
	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
)

var (
	DEBUG_MODE = false
)

// Recover recover()s and prints the error to console
func Recover() {
	err := recover()
	if err != nil {
		fmt.Printf("%#v\n", err)

		raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{})
	}
}

// Relax is a helper to reduce if-checks if panicking is allowed
// If $err is nil this is a no-op. Panics otherwise.
func Relax(err error) {
	if err != nil {
		if DEBUG_MODE {
			if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
				fmt.Printf("%d: %s\n", errD.Message.Code, errD.Message.Message)
			} else {
				fmt.Printf("%#v\n", err)
			}
		}
		panic(err)
	}
}

// RelaxLog logs $err and sends it to sentry, does nothing if $err is nil
func RelaxLog(err error) {
	if err != nil {
		cache.GetLogger().WithField("module", "helpers").Error("Error: " + err.Error())
		raven.CaptureError(err, map[string]string{})
	}
}

// LogMachineryError is the machinery task called when a task failed
func LogMachineryError(errorMessage string) error {
	cache.GetLogger().WithField("module", "machinery").Error("machinery task failed: " + errorMessage)
	return nil
}
