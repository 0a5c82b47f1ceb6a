package starboard

import (
	"context"
	"sync"
	"time"

	"github.com/Seklfreak/robyul-starboard/cache"
	"github.com/Seklfreak/robyul-starboard/helpers"
	"github.com/Seklfreak/robyul-starboard/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	eventTimeout = 30 * time.Second
)

// Handler connects the starboard engine to the discord session
type Handler struct {
	sync.RWMutex
	engine *Engine
	logger *logrus.Entry
}

// Init builds the engine on the first ready event. Reconnects fire ready again,
// the running engine is kept so its guard and reactor cache stay shared.
func (h *Handler) Init(session *discordgo.Session) {
	defer helpers.Recover()

	if h.Engine() != nil {
		return
	}

	logger := cache.GetLogger().WithField("module", "starboard")

	config, err := ConfigFromContainer(helpers.GetConfig())
	if err != nil {
		logger.Errorf("starboard disabled, invalid config: %s", err.Error())
		return
	}

	store := NewMongoStore(helpers.GetMDbSession(), helpers.GetMDbDatabase())
	// lookups still work without indexes, only uniqueness of origin ids is lost
	helpers.RelaxLog(store.EnsureIndexes())

	platform := NewSessionPlatform(session)
	engine := NewEngine(config, Dependencies{
		BotUserID: session.State.User.ID,
		Store:     store,
		Platform:  platform,
		Switch:    NewRedisSwitch(cache.GetRedisCacheCodec(), config.Enabled),
		Scheduler: NewMachineryScheduler(cache.GetMachineryServer()),
		Logger:    logger,
	})

	if !h.install(engine, logger) {
		return
	}

	logger.Infof("watching %s reactions, threshold %d, review queue #%s",
		config.Emoji.String(), config.Threshold, config.ReviewChannelID)
}

// install sets the engine unless another one is running already
func (h *Handler) install(engine *Engine, logger *logrus.Entry) bool {
	h.Lock()
	defer h.Unlock()

	if h.engine != nil {
		return false
	}
	h.engine = engine
	h.logger = logger
	return true
}

func (h *Handler) Uninit(session *discordgo.Session) {
	h.Lock()
	h.engine = nil
	h.Unlock()
}

// Engine returns the running engine, nil before Init
func (h *Handler) Engine() *Engine {
	h.RLock()
	defer h.RUnlock()
	return h.engine
}

func (h *Handler) OnReactionAdd(reaction *discordgo.MessageReactionAdd, session *discordgo.Session) {
	engine := h.Engine()
	if engine == nil || reaction.MessageReaction == nil {
		return
	}
	event := reactionEventFromDiscord(reaction.MessageReaction, reaction.Member)

	go func() {
		defer helpers.Recover()

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		h.logError("reaction_add", engine.OnReactionAdd(ctx, event))
	}()
}

func (h *Handler) OnReactionRemove(reaction *discordgo.MessageReactionRemove, session *discordgo.Session) {
	engine := h.Engine()
	if engine == nil || reaction.MessageReaction == nil {
		return
	}
	event := reactionEventFromDiscord(reaction.MessageReaction, nil)

	go func() {
		defer helpers.Recover()

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		h.logError("reaction_remove", engine.OnReactionRemove(ctx, event))
	}()
}

func (h *Handler) OnInteractionCreate(interaction *discordgo.InteractionCreate, session *discordgo.Session) {
	engine := h.Engine()
	if engine == nil {
		return
	}
	event, ok := componentEventFromDiscord(interaction.Interaction)
	if !ok {
		return
	}

	go func() {
		defer helpers.Recover()

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		h.logError("component", engine.OnComponent(ctx, event))
	}()
}

// ExpireReviewTask is the machinery task behind ReviewExpiryTask
func (h *Handler) ExpireReviewTask(channelID, messageID string) error {
	engine := h.Engine()
	if engine == nil {
		return errors.New("starboard is not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	return engine.ExpireReview(ctx, channelID, messageID)
}

// logError is the one place starboard errors end up, they are logged and dropped
func (h *Handler) logError(operation string, err error) {
	if err == nil {
		return
	}
	metrics.StarboardSuppressedErrors.WithLabelValues(operation).Inc()

	h.RLock()
	logger := h.logger
	h.RUnlock()
	if logger == nil {
		return
	}

	if errors.Is(err, ErrMissingPermissions) {
		logger.WithField("operation", operation).Warn(err.Error())
		return
	}
	logger.WithField("operation", operation).Error(err.Error())
	raven.CaptureError(err, map[string]string{"module": "starboard", "operation": operation})
}
