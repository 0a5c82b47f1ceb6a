package starboard

import (
	"context"
	"time"

	"github.com/Seklfreak/robyul-starboard/metrics"
	"github.com/Seklfreak/robyul-starboard/models"
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Dependencies are the services an Engine works with. Reactors, Guard, Presenter
// and Switch are created from the Config when left empty, Scheduler is optional.
type Dependencies struct {
	BotUserID string
	Store     Store
	Platform  Platform
	Reactors  *ReactorCache
	Guard     *PromotionGuard
	Presenter *Presenter
	Switch    Switch
	Scheduler ReviewScheduler
	Logger    *logrus.Entry
}

// Engine decides when a message is promoted to the review queue, keeps star counts
// of tracked entries up to date and handles the review decisions of moderators.
type Engine struct {
	config    Config
	botUserID string
	store     Store
	platform  Platform
	reactors  *ReactorCache
	guard     *PromotionGuard
	presenter *Presenter
	switcher  Switch
	scheduler ReviewScheduler
	logger    *logrus.Entry
}

func NewEngine(config Config, deps Dependencies) *Engine {
	engine := &Engine{
		config:    config,
		botUserID: deps.BotUserID,
		store:     deps.Store,
		platform:  deps.Platform,
		reactors:  deps.Reactors,
		guard:     deps.Guard,
		presenter: deps.Presenter,
		switcher:  deps.Switch,
		scheduler: deps.Scheduler,
		logger:    deps.Logger,
	}
	if engine.reactors == nil {
		engine.reactors = NewReactorCache(deps.Platform, config.Emoji, deps.BotUserID, ReactorCacheOptions{
			FetchLimit: config.ReactorFetchLimit,
			Size:       config.ReactorCacheSize,
			TTL:        config.ReactorCacheTTL,
		})
	}
	if engine.guard == nil {
		engine.guard = NewPromotionGuard()
	}
	if engine.presenter == nil {
		engine.presenter = NewPresenter(config.Emoji, config.ModeratorIDs)
	}
	if engine.switcher == nil {
		engine.switcher = NewStaticSwitch(config.Enabled)
	}
	if engine.logger == nil {
		logger := logrus.New()
		engine.logger = logger.WithField("module", "starboard")
	}
	return engine
}

// Switch returns the runtime switch of the engine
func (e *Engine) Switch() Switch {
	return e.switcher
}

// Store returns the entry store of the engine
func (e *Engine) Store() Store {
	return e.store
}

// OnReactionAdd counts a new star. Tracked entries get their count refreshed,
// untracked messages are promoted to the review queue once they reach the threshold.
func (e *Engine) OnReactionAdd(ctx context.Context, event ReactionEvent) error {
	if !e.accepts(ctx, event) {
		return nil
	}
	metrics.StarboardReactions.WithLabelValues("add").Inc()

	e.reactors.Observe(event.MessageID, event.UserID, true)

	entry, err := e.findTracked(ctx, event.MessageID)
	if err == nil {
		return e.onTrackedAdd(ctx, event, entry)
	}
	if !errors.Is(err, ErrEntryNotFound) {
		return err
	}

	return e.evaluate(ctx, event)
}

// OnReactionRemove refreshes the count of a tracked entry. Removing a star never promotes.
func (e *Engine) OnReactionRemove(ctx context.Context, event ReactionEvent) error {
	if !e.accepts(ctx, event) {
		return nil
	}
	metrics.StarboardReactions.WithLabelValues("remove").Inc()

	e.reactors.Observe(event.MessageID, event.UserID, false)

	entry, err := e.findTracked(ctx, event.MessageID)
	if errors.Is(err, ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if entry.Status == models.StarStatusDenied || event.UserID == entry.AuthorID {
		return nil
	}
	return e.refresh(ctx, entry)
}

func (e *Engine) accepts(ctx context.Context, event ReactionEvent) bool {
	if event.UserID == "" || event.UserID == e.botUserID || event.UserIsBot {
		return false
	}
	if !e.config.Emoji.Equal(event.Emoji) {
		return false
	}
	return e.switcher.Enabled(ctx)
}

// findTracked looks up the entry of a message, which can be the origin or the promoted copy
func (e *Engine) findTracked(ctx context.Context, messageID string) (models.StarEntry, error) {
	entry, err := e.store.FindByOriginID(ctx, messageID)
	if err == nil || !errors.Is(err, ErrEntryNotFound) {
		return entry, err
	}
	return e.store.FindByPromotedID(ctx, messageID)
}

func (e *Engine) onTrackedAdd(ctx context.Context, event ReactionEvent, entry models.StarEntry) error {
	if entry.Status == models.StarStatusDenied {
		return nil
	}
	if event.UserID == entry.AuthorID {
		return e.removeSelfStar(ctx, event)
	}
	return e.refresh(ctx, entry)
}

// refresh recounts the unique reactors of an entry, edits the promoted message and stores the count.
// The count is stored after the edit, a failed edit is retried by the next event.
func (e *Engine) refresh(ctx context.Context, entry models.StarEntry) error {
	count, err := e.reactors.Union(ctx, entry)
	if err != nil {
		return errors.Wrapf(err, "recounting stars of #%s failed", entry.OriginMessageID)
	}
	if count == entry.StarCount {
		return nil
	}
	entry.StarCount = count

	err = e.platform.EditMessage(ctx, entry.PromotedChannelID, entry.PromotedMessageID,
		e.presenter.Render(entry, entry.Status == models.StarStatusInReview))
	if errors.Is(err, ErrUnknownMessage) {
		e.logger.WithField("messageID", entry.PromotedMessageID).Debug("promoted message is gone, skipped edit")
		metrics.StarboardSuppressedErrors.WithLabelValues("edit_promoted").Inc()
	} else if err != nil {
		return errors.Wrapf(err, "editing promoted message #%s failed", entry.PromotedMessageID)
	}

	err = e.store.UpdateCount(ctx, entry.ID, count)
	return errors.Wrapf(err, "storing star count of #%s failed", entry.OriginMessageID)
}

// evaluate checks an untracked message against the threshold and posts it to the review queue.
// Stars that lose the guard meanwhile make the winner evaluate again.
func (e *Engine) evaluate(ctx context.Context, event ReactionEvent) error {
	if event.ChannelID == e.config.ReviewChannelID || event.ChannelID == e.config.PublicChannelID {
		return nil
	}

	if !e.guard.TryBegin(event.MessageID) {
		return nil
	}
	defer e.guard.End(event.MessageID)

	err := e.promote(ctx, event, true)
	for err == nil && e.guard.Retry(event.MessageID) {
		err = e.promote(ctx, event, false)
	}
	return err
}

// promote runs one evaluation, handleSelfStar is false on reruns where the
// reaction of the event was handled already
func (e *Engine) promote(ctx context.Context, event ReactionEvent, handleSelfStar bool) error {
	// another evaluation may have finished between the lookup and TryBegin
	entry, err := e.findTracked(ctx, event.MessageID)
	if err == nil {
		if handleSelfStar {
			return e.onTrackedAdd(ctx, event, entry)
		}
		if entry.Status == models.StarStatusDenied {
			return nil
		}
		return e.refresh(ctx, entry)
	}
	if !errors.Is(err, ErrEntryNotFound) {
		return err
	}

	message, err := e.platform.GetMessage(ctx, event.ChannelID, event.MessageID)
	if errors.Is(err, ErrUnknownMessage) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "fetching message #%s failed", event.MessageID)
	}
	if message.Author == nil || message.Author.Bot || message.Author.ID == e.botUserID {
		return nil
	}

	attachments := attachmentURLs(message)
	if message.Content == "" && len(attachments) == 0 {
		return nil
	}

	if handleSelfStar && event.UserID == message.Author.ID {
		err = e.removeSelfStar(ctx, event)
		if err != nil {
			return err
		}
	}

	reactors, err := e.reactors.GetOrFetch(ctx, event.ChannelID, event.MessageID, message.Author.ID)
	if err != nil {
		return errors.Wrapf(err, "fetching reactors of #%s failed", event.MessageID)
	}
	if len(reactors) < e.config.Threshold {
		return nil
	}

	guildID := event.GuildID
	if guildID == "" {
		guildID = message.GuildID
	}

	entry = models.StarEntry{
		GuildID:           guildID,
		AuthorID:          message.Author.ID,
		AuthorDisplayName: displayName(message),
		AuthorAvatarURL:   message.Author.AvatarURL("256"),
		Content:           message.Content,
		OriginChannelID:   event.ChannelID,
		OriginMessageID:   event.MessageID,
		AttachmentURLs:    attachments,
		StarCount:         len(reactors),
		Status:            models.StarStatusInReview,
		ReviewChannelID:   e.config.ReviewChannelID,
		CreatedAt:         time.Now(),
	}

	reviewMessage, err := e.platform.SendMessage(ctx, e.config.ReviewChannelID, e.presenter.Render(entry, true))
	if err != nil {
		return errors.Wrapf(err, "posting #%s to the review queue failed", event.MessageID)
	}
	entry.PromotedChannelID = e.config.ReviewChannelID
	entry.PromotedMessageID = reviewMessage.ID
	entry.ReviewMessageID = reviewMessage.ID

	entry, err = e.store.Insert(ctx, entry)
	if err != nil {
		return errors.Wrapf(err, "storing entry of #%s failed", event.MessageID)
	}

	metrics.StarboardPromotions.Inc()
	e.logger.WithFields(logrus.Fields{
		"messageID":       entry.OriginMessageID,
		"reviewMessageID": entry.ReviewMessageID,
		"stars":           entry.StarCount,
	}).Info("promoted message to the review queue")

	if e.scheduler != nil && e.config.ReviewTimeout > 0 {
		err = e.scheduler.ScheduleReviewExpiry(
			entry.ReviewChannelID, entry.ReviewMessageID, time.Now().Add(e.config.ReviewTimeout))
		if err != nil {
			return errors.Wrapf(err, "scheduling review expiry of #%s failed", entry.ReviewMessageID)
		}
	}

	return nil
}

// removeSelfStar removes the star of an author from their own message, if the bot is allowed to
func (e *Engine) removeSelfStar(ctx context.Context, event ReactionEvent) error {
	err := e.platform.RemoveReaction(ctx, event.ChannelID, event.MessageID, e.config.Emoji, event.UserID)
	if errors.Is(err, ErrMissingPermissions) || errors.Is(err, ErrUnknownMessage) {
		e.logger.WithFields(logrus.Fields{
			"channelID": event.ChannelID,
			"messageID": event.MessageID,
		}).Debugf("unable to remove self star: %s", err.Error())
		metrics.StarboardSuppressedErrors.WithLabelValues("remove_self_star").Inc()
		return nil
	}
	return errors.Wrapf(err, "removing self star on #%s failed", event.MessageID)
}

// displayName formats an author like "Username ~ Nickname" when a nickname is set
func displayName(message *discordgo.Message) string {
	name := message.Author.Username
	if message.Author.GlobalName != "" {
		name = message.Author.GlobalName
	}
	if message.Member != nil && message.Member.Nick != "" && message.Member.Nick != name {
		name += " ~ " + message.Member.Nick
	}
	return name
}
