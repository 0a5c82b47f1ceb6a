package starboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Seklfreak/robyul-starboard/models"
	"github.com/bwmarrin/discordgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
)

type sentMessage struct {
	ChannelID string
	MessageID string
	Content   MessageContent
}

type removedReaction struct {
	ChannelID string
	MessageID string
	UserID    string
}

type fakePlatform struct {
	sync.Mutex

	messages map[string]*discordgo.Message
	reactors map[string][]*discordgo.User

	sent      []sentMessage
	edits     []sentMessage
	deleted   []sentMessage
	responses []ComponentResponse
	removed   []removedReaction

	reactorCalls int
	nextID       int

	reactorsErr error
	sendErr     error
	removeErr   error
	editErr     error

	// called once, outside the lock, when the next reactor page or send is requested
	duringReactors func()
	duringSend     func()
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		messages: make(map[string]*discordgo.Message),
		reactors: make(map[string][]*discordgo.User),
	}
}

func (p *fakePlatform) addMessage(message *discordgo.Message) {
	p.Lock()
	p.messages[message.ID] = message
	p.Unlock()
}

func (p *fakePlatform) addReactors(messageID string, userIDs ...string) {
	p.Lock()
	defer p.Unlock()
	for _, userID := range userIDs {
		p.reactors[messageID] = append(p.reactors[messageID], &discordgo.User{ID: userID, Username: userID})
	}
}

func (p *fakePlatform) addBotReactor(messageID, userID string) {
	p.Lock()
	defer p.Unlock()
	p.reactors[messageID] = append(p.reactors[messageID], &discordgo.User{ID: userID, Username: userID, Bot: true})
}

func (p *fakePlatform) removeReactor(messageID, userID string) {
	p.Lock()
	defer p.Unlock()
	users := p.reactors[messageID][:0]
	for _, user := range p.reactors[messageID] {
		if user.ID != userID {
			users = append(users, user)
		}
	}
	p.reactors[messageID] = users
}

func (p *fakePlatform) sentMessages() []sentMessage {
	p.Lock()
	defer p.Unlock()
	return append([]sentMessage(nil), p.sent...)
}

func (p *fakePlatform) editedMessages() []sentMessage {
	p.Lock()
	defer p.Unlock()
	return append([]sentMessage(nil), p.edits...)
}

func (p *fakePlatform) componentResponses() []ComponentResponse {
	p.Lock()
	defer p.Unlock()
	return append([]ComponentResponse(nil), p.responses...)
}

func (p *fakePlatform) deletedMessages() []sentMessage {
	p.Lock()
	defer p.Unlock()
	return append([]sentMessage(nil), p.deleted...)
}

// takeHook returns the hook and clears it so it runs once
func (p *fakePlatform) takeHook(hook *func()) func() {
	p.Lock()
	defer p.Unlock()
	run := *hook
	*hook = nil
	return run
}

func (p *fakePlatform) removedReactions() []removedReaction {
	p.Lock()
	defer p.Unlock()
	return append([]removedReaction(nil), p.removed...)
}

func (p *fakePlatform) GetMessage(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	p.Lock()
	defer p.Unlock()
	message, ok := p.messages[messageID]
	if !ok {
		return nil, errors.Wrap(ErrUnknownMessage, messageID)
	}
	return message, nil
}

func (p *fakePlatform) GetReactorUsers(
	ctx context.Context, channelID, messageID string, emoji Emoji, limit int, afterID string,
) ([]*discordgo.User, error) {
	users, err := p.reactorPage(messageID, limit, afterID)
	if run := p.takeHook(&p.duringReactors); run != nil {
		run()
	}
	return users, err
}

func (p *fakePlatform) reactorPage(messageID string, limit int, afterID string) ([]*discordgo.User, error) {
	p.Lock()
	defer p.Unlock()
	p.reactorCalls++
	if p.reactorsErr != nil {
		return nil, p.reactorsErr
	}

	users := p.reactors[messageID]
	start := 0
	if afterID != "" {
		for i, user := range users {
			if user.ID == afterID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(users) {
		end = len(users)
	}
	return append([]*discordgo.User(nil), users[start:end]...), nil
}

func (p *fakePlatform) SendMessage(ctx context.Context, channelID string, content MessageContent) (*discordgo.Message, error) {
	if run := p.takeHook(&p.duringSend); run != nil {
		run()
	}

	p.Lock()
	defer p.Unlock()
	if p.sendErr != nil {
		return nil, p.sendErr
	}
	p.nextID++
	message := &discordgo.Message{
		ID:        fmt.Sprintf("sent-%d", p.nextID),
		ChannelID: channelID,
	}
	p.sent = append(p.sent, sentMessage{ChannelID: channelID, MessageID: message.ID, Content: content})
	return message, nil
}

func (p *fakePlatform) EditMessage(ctx context.Context, channelID, messageID string, content MessageContent) error {
	p.Lock()
	defer p.Unlock()
	if p.editErr != nil {
		return p.editErr
	}
	p.edits = append(p.edits, sentMessage{ChannelID: channelID, MessageID: messageID, Content: content})
	return nil
}

func (p *fakePlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	p.Lock()
	defer p.Unlock()
	p.deleted = append(p.deleted, sentMessage{ChannelID: channelID, MessageID: messageID})
	return nil
}

func (p *fakePlatform) RespondToComponent(ctx context.Context, event ComponentEvent, response ComponentResponse) error {
	p.Lock()
	defer p.Unlock()
	p.responses = append(p.responses, response)
	return nil
}

func (p *fakePlatform) RemoveReaction(ctx context.Context, channelID, messageID string, emoji Emoji, userID string) error {
	p.Lock()
	defer p.Unlock()
	if p.removeErr != nil {
		return p.removeErr
	}
	p.removed = append(p.removed, removedReaction{ChannelID: channelID, MessageID: messageID, UserID: userID})
	return nil
}

// fakeStore mirrors the MongoStore semantics: unique origin ids and conditional status updates
type fakeStore struct {
	sync.Mutex
	entries map[bson.ObjectId]models.StarEntry

	insertErr error
	statusErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: make(map[bson.ObjectId]models.StarEntry),
	}
}

func (s *fakeStore) all() []models.StarEntry {
	s.Lock()
	defer s.Unlock()
	entries := make([]models.StarEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	return entries
}

func (s *fakeStore) FindByOriginID(ctx context.Context, messageID string) (models.StarEntry, error) {
	s.Lock()
	defer s.Unlock()
	for _, entry := range s.entries {
		if entry.OriginMessageID == messageID {
			return entry, nil
		}
	}
	return models.StarEntry{}, ErrEntryNotFound
}

func (s *fakeStore) FindByPromotedID(ctx context.Context, messageID string) (models.StarEntry, error) {
	s.Lock()
	defer s.Unlock()
	for _, entry := range s.entries {
		if entry.PromotedMessageID == messageID {
			return entry, nil
		}
	}
	return models.StarEntry{}, ErrEntryNotFound
}

func (s *fakeStore) Insert(ctx context.Context, entry models.StarEntry) (models.StarEntry, error) {
	s.Lock()
	defer s.Unlock()
	if s.insertErr != nil {
		return models.StarEntry{}, s.insertErr
	}
	for _, existing := range s.entries {
		if existing.OriginMessageID == entry.OriginMessageID {
			return models.StarEntry{}, ErrEntryExists
		}
	}
	if entry.ID == "" {
		entry.ID = bson.NewObjectId()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *fakeStore) UpdateCount(ctx context.Context, id bson.ObjectId, count int) error {
	s.Lock()
	defer s.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	entry.StarCount = count
	s.entries[id] = entry
	return nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id bson.ObjectId, update StatusUpdate) error {
	s.Lock()
	defer s.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	entry, ok := s.entries[id]
	if !ok || !entry.Status.CanTransitionTo(update.Status) {
		return ErrEntryNotFound
	}
	entry.Status = update.Status
	entry.ReviewedByUserID = update.ModeratorID
	entry.ReviewedAt = time.Now()
	if update.PromotedChannelID != "" && update.PromotedMessageID != "" {
		entry.PromotedChannelID = update.PromotedChannelID
		entry.PromotedMessageID = update.PromotedMessageID
	}
	s.entries[id] = entry
	return nil
}

func (s *fakeStore) Top(ctx context.Context, limit int) ([]models.StarEntry, error) {
	s.Lock()
	defer s.Unlock()
	var entries []models.StarEntry
	for _, entry := range s.entries {
		if entry.Status == models.StarStatusAccepted {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StarCount > entries[j].StarCount
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

type scheduledExpiry struct {
	ChannelID string
	MessageID string
	At        time.Time
}

type fakeScheduler struct {
	sync.Mutex
	scheduled []scheduledExpiry
}

func (s *fakeScheduler) ScheduleReviewExpiry(channelID, messageID string, at time.Time) error {
	s.Lock()
	s.scheduled = append(s.scheduled, scheduledExpiry{ChannelID: channelID, MessageID: messageID, At: at})
	s.Unlock()
	return nil
}
