package starboard

import (
	"context"
	"sync"
	"time"

	"github.com/Seklfreak/robyul-starboard/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"
)

const (
	defaultReactorFetchLimit = 100
	defaultReactorCacheSize  = 10000
	defaultReactorCacheTTL   = time.Hour
	// discord returns at most 100 users per page
	reactorPageSize = 100
)

type reactorSet struct {
	excludedUserID string
	userIDs        map[string]struct{}
}

// pendingReactions collects the reactions observed while a set is being fetched
type pendingReactions struct {
	fetchers int
	changes  map[string]bool
}

// ReactorCacheOptions bound the reactor cache, zero values use the defaults
type ReactorCacheOptions struct {
	FetchLimit int
	Size       int
	TTL        time.Duration
}

// ReactorCache keeps the users who reacted with the starboard emoji per message.
// Sets are fetched from discord on the first miss and updated from gateway events afterwards.
// It is an accelerator only, entries are evicted by size and age and refetched on demand.
type ReactorCache struct {
	platform   Platform
	emoji      Emoji
	botUserID  string
	fetchLimit int

	sync.Mutex
	sets    *expirable.LRU[string, *reactorSet]
	pending map[string]*pendingReactions
}

// NewReactorCache creates a cache; FetchLimit caps the number of reactors fetched
// per message, higher counts are cut off
func NewReactorCache(platform Platform, emoji Emoji, botUserID string, options ReactorCacheOptions) *ReactorCache {
	if options.FetchLimit <= 0 {
		options.FetchLimit = defaultReactorFetchLimit
	}
	if options.Size <= 0 {
		options.Size = defaultReactorCacheSize
	}
	if options.TTL <= 0 {
		options.TTL = defaultReactorCacheTTL
	}
	return &ReactorCache{
		platform:   platform,
		emoji:      emoji,
		botUserID:  botUserID,
		fetchLimit: options.FetchLimit,
		sets:       expirable.NewLRU[string, *reactorSet](options.Size, nil, options.TTL),
		pending:    make(map[string]*pendingReactions),
	}
}

// Observe applies a reaction add or remove to a cached set. While the set is being
// fetched the change is kept and applied to the fetched list, other misses are ignored.
func (c *ReactorCache) Observe(messageID, userID string, added bool) {
	if userID == c.botUserID {
		return
	}

	c.Lock()
	defer c.Unlock()

	if pending, ok := c.pending[messageID]; ok {
		pending.changes[userID] = added
	}

	set, ok := c.sets.Get(messageID)
	if !ok || userID == set.excludedUserID {
		return
	}
	if added {
		set.userIDs[userID] = struct{}{}
	} else {
		delete(set.userIDs, userID)
	}
}

// Evict drops the cached set of a message
func (c *ReactorCache) Evict(messageID string) {
	c.Lock()
	c.sets.Remove(messageID)
	c.Unlock()
}

// GetOrFetch returns a copy of the reactor set of a message without excludeUserID and the bot
func (c *ReactorCache) GetOrFetch(ctx context.Context, channelID, messageID, excludeUserID string) (map[string]struct{}, error) {
	c.Lock()
	set, ok := c.sets.Get(messageID)
	if ok && set.excludedUserID == excludeUserID {
		userIDs := copySet(set.userIDs)
		c.Unlock()
		return userIDs, nil
	}
	pending, ok := c.pending[messageID]
	if !ok {
		pending = &pendingReactions{changes: make(map[string]bool)}
		c.pending[messageID] = pending
	}
	pending.fetchers++
	c.Unlock()

	userIDs, err := c.fetch(ctx, channelID, messageID, excludeUserID)

	c.Lock()
	defer c.Unlock()

	pending.fetchers--
	if pending.fetchers == 0 {
		delete(c.pending, messageID)
	}
	if err != nil {
		return nil, err
	}

	// the fetched list may predate reactions delivered during the fetch
	for userID, added := range pending.changes {
		if userID == excludeUserID {
			continue
		}
		if added {
			userIDs[userID] = struct{}{}
		} else {
			delete(userIDs, userID)
		}
	}

	c.sets.Add(messageID, &reactorSet{
		excludedUserID: excludeUserID,
		userIDs:        userIDs,
	})

	return copySet(userIDs), nil
}

// Union counts the unique reactors of an entry across the origin message and the promoted copy
func (c *ReactorCache) Union(ctx context.Context, entry models.StarEntry) (int, error) {
	userIDs, err := c.GetOrFetch(ctx, entry.OriginChannelID, entry.OriginMessageID, entry.AuthorID)
	if err != nil {
		return 0, errors.Wrap(err, "fetching origin reactors failed")
	}

	if entry.IsPromoted() {
		promotedUserIDs, err := c.GetOrFetch(ctx, entry.PromotedChannelID, entry.PromotedMessageID, entry.AuthorID)
		if err != nil {
			return 0, errors.Wrap(err, "fetching promoted reactors failed")
		}
		for userID := range promotedUserIDs {
			userIDs[userID] = struct{}{}
		}
	}

	return len(userIDs), nil
}

func (c *ReactorCache) fetch(ctx context.Context, channelID, messageID, excludeUserID string) (map[string]struct{}, error) {
	userIDs := make(map[string]struct{})

	var afterID string
	fetched := 0
	for fetched < c.fetchLimit {
		limit := c.fetchLimit - fetched
		if limit > reactorPageSize {
			limit = reactorPageSize
		}

		users, err := c.platform.GetReactorUsers(ctx, channelID, messageID, c.emoji, limit, afterID)
		if err != nil {
			return nil, err
		}

		for _, user := range users {
			if user == nil {
				continue
			}
			if user.ID == excludeUserID || user.ID == c.botUserID || user.Bot {
				continue
			}
			userIDs[user.ID] = struct{}{}
		}

		fetched += len(users)
		if len(users) < limit {
			break
		}
		afterID = users[len(users)-1].ID
	}

	return userIDs, nil
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
