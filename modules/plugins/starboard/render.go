package starboard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Seklfreak/robyul-starboard/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"mvdan.cc/xurls"
)

const (
	AcceptCustomID = "starboard:accept"
	DenyCustomID   = "starboard:deny"

	embedColor      = 0xffd700
	maxImageEmbeds  = 4
	maxContentRunes = 4000
)

var (
	imageFileExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}
)

// Presenter renders starboard entries into discord messages
type Presenter struct {
	emoji        Emoji
	moderatorIDs []string
}

func NewPresenter(emoji Emoji, moderatorIDs []string) *Presenter {
	return &Presenter{
		emoji:        emoji,
		moderatorIDs: moderatorIDs,
	}
}

// Render builds the promoted message of an entry. Buttons are only added while the entry is in review.
func (p *Presenter) Render(entry models.StarEntry, includeButtons bool) MessageContent {
	content := p.summaryLine(entry)
	if entry.Status == models.StarStatusInReview && len(p.moderatorIDs) > 0 {
		content += " | " + p.moderatorMentions()
	}

	message := MessageContent{
		Content: content,
		Embeds:  p.embeds(entry),
	}
	if includeButtons && entry.Status == models.StarStatusInReview {
		message.Components = reviewButtons()
	}
	return message
}

// RenderReviewed builds the review queue copy after a moderator decided or the review expired
func (p *Presenter) RenderReviewed(entry models.StarEntry) MessageContent {
	content := p.summaryLine(entry)
	switch entry.Status {
	case models.StarStatusAccepted:
		content += fmt.Sprintf(" | ✅ Accepted by <@%s>", entry.ReviewedByUserID)
	case models.StarStatusDenied:
		content += fmt.Sprintf(" | ❌ Denied by <@%s>", entry.ReviewedByUserID)
	default:
		content += " | ⌛ Review timed out"
	}

	return MessageContent{
		Content: content,
		Embeds:  p.embeds(entry),
	}
}

func (p *Presenter) summaryLine(entry models.StarEntry) string {
	return fmt.Sprintf("%s **%s** | <#%s>",
		p.emoji.String(), humanize.Comma(int64(entry.StarCount)), entry.OriginChannelID)
}

func (p *Presenter) moderatorMentions() string {
	mentions := make([]string, 0, len(p.moderatorIDs))
	for _, moderatorID := range p.moderatorIDs {
		mentions = append(mentions, "<@"+moderatorID+">")
	}
	return strings.Join(mentions, " ")
}

func (p *Presenter) embeds(entry models.StarEntry) []*discordgo.MessageEmbed {
	link := messageLink(entry.GuildID, entry.OriginChannelID, entry.OriginMessageID)

	images, others := splitAttachments(entry.AttachmentURLs)

	authorName := entry.AuthorDisplayName
	if authorName == "" {
		authorName = "N/A"
	}

	primary := &discordgo.MessageEmbed{
		URL: link,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    authorName,
			IconURL: entry.AuthorAvatarURL,
		},
		Description: truncateRunes(entry.Content, maxContentRunes),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Source",
				Value: fmt.Sprintf("[Jump to message](%s)", link),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Message #%s", entry.OriginMessageID),
		},
	}
	if !entry.CreatedAt.IsZero() {
		primary.Timestamp = entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if len(others) > 0 {
		primary.Fields = append(primary.Fields, &discordgo.MessageEmbedField{
			Name:  "Attachments",
			Value: strings.Join(others, "\n"),
		})
	}

	embeds := []*discordgo.MessageEmbed{primary}
	// embeds sharing the URL of the first embed are shown as one image gallery
	for i, image := range images {
		if i >= maxImageEmbeds {
			break
		}
		embeds = append(embeds, &discordgo.MessageEmbed{
			URL:   link,
			Image: &discordgo.MessageEmbedImage{URL: image},
		})
	}
	return embeds
}

func reviewButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Accept",
					Style:    discordgo.SuccessButton,
					CustomID: AcceptCustomID,
				},
				discordgo.Button{
					Label:    "Deny",
					Style:    discordgo.DangerButton,
					CustomID: DenyCustomID,
				},
			},
		},
	}
}

func messageLink(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

func splitAttachments(urls []string) (images []string, others []string) {
	for _, attachmentURL := range urls {
		if isImageURL(attachmentURL) {
			images = append(images, attachmentURL)
		} else {
			others = append(others, attachmentURL)
		}
	}
	return images, others
}

func isImageURL(link string) bool {
	link = strings.ToLower(stripQuery(link))
	for _, fileExtension := range imageFileExtensions {
		if strings.HasSuffix(link, "."+fileExtension) {
			return true
		}
	}
	return false
}

// stripQuery removes query string and fragment, discord signs attachment urls with expiring parameters
func stripQuery(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		if i := strings.IndexAny(link, "?#"); i >= 0 {
			return link[:i]
		}
		return link
	}
	parsed.RawQuery = ""
	parsed.ForceQuery = false
	parsed.Fragment = ""
	return parsed.String()
}

// attachmentURLs collects the media of a message: attachments, embed images and image links in the content
func attachmentURLs(message *discordgo.Message) []string {
	urls := make([]string, 0)
	seen := make(map[string]bool)
	add := func(link string) {
		link = stripQuery(link)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		urls = append(urls, link)
	}

	for _, attachment := range message.Attachments {
		if attachment != nil {
			add(attachment.URL)
		}
	}
	for _, embed := range message.Embeds {
		if embed == nil {
			continue
		}
		switch {
		case embed.Image != nil && embed.Image.URL != "":
			add(embed.Image.URL)
		case embed.Thumbnail != nil && embed.Thumbnail.URL != "":
			add(embed.Thumbnail.URL)
		}
	}
	for _, foundURL := range xurls.Strict.FindAllString(message.Content, -1) {
		if isImageURL(foundURL) {
			add(foundURL)
		}
	}
	return urls
}

func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
