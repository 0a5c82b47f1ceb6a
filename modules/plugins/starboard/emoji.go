package starboard

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

var (
	discordEmojiRegex = regexp.MustCompile(`^<(a)?:([^<>:]+):([0-9]+)>$`)
	unicodeEmojiRegex = regexp.MustCompile(`[\x{00A0}-\x{1F9EF}]`) // https://en.wikipedia.org/wiki/Emoji#Unicode_blocks
)

// Emoji identifies a reaction emoji. Custom emoji are identified by ID,
// unicode emoji by their name.
type Emoji struct {
	ID       string
	Name     string
	Animated bool
}

// ParseEmoji parses an unicode emoji or a discord custom emoji mention like <:name:id>
func ParseEmoji(text string) (Emoji, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Emoji{}, errors.New("empty emoji")
	}

	if parts := discordEmojiRegex.FindStringSubmatch(text); parts != nil {
		return Emoji{
			ID:       parts[3],
			Name:     parts[2],
			Animated: parts[1] != "",
		}, nil
	}

	if !unicodeEmojiRegex.MatchString(text) {
		return Emoji{}, errors.Errorf("%q is not an emoji", text)
	}

	return Emoji{Name: text}, nil
}

// EmojiFromDiscord converts the emoji of a gateway event
func EmojiFromDiscord(emoji discordgo.Emoji) Emoji {
	return Emoji{
		ID:       emoji.ID,
		Name:     emoji.Name,
		Animated: emoji.Animated,
	}
}

// IsCustom returns true for guild emoji
func (e Emoji) IsCustom() bool {
	return e.ID != ""
}

// Equal compares by ID for custom emoji and by name for unicode emoji.
// Custom emoji can be renamed, their ID is stable.
func (e Emoji) Equal(other Emoji) bool {
	if e.IsCustom() || other.IsCustom() {
		return e.ID == other.ID
	}
	return e.Name != "" && e.Name == other.Name
}

// APIName is the form the REST API expects in reaction endpoints
func (e Emoji) APIName() string {
	if e.IsCustom() {
		return e.Name + ":" + e.ID
	}
	return e.Name
}

// String is the form used inside message content
func (e Emoji) String() string {
	if !e.IsCustom() {
		return e.Name
	}
	if e.Animated {
		return "<a:" + e.Name + ":" + e.ID + ">"
	}
	return "<:" + e.Name + ":" + e.ID + ">"
}
