package starboard

import (
	"context"
	"time"

	"github.com/Seklfreak/robyul-starboard/models"
	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
)

var (
	// ErrEntryNotFound is returned by lookups and by updates that matched no entry
	ErrEntryNotFound = errors.New("no starboard entry")
	// ErrEntryExists is returned when inserting a second entry for an origin message
	ErrEntryExists = errors.New("starboard entry exists already")
)

// StatusUpdate is a review decision. Empty promoted fields leave the promoted message unchanged.
type StatusUpdate struct {
	Status            models.StarStatus
	ModeratorID       string
	PromotedChannelID string
	PromotedMessageID string
}

// Store persists starboard entries
type Store interface {
	FindByOriginID(ctx context.Context, messageID string) (models.StarEntry, error)
	FindByPromotedID(ctx context.Context, messageID string) (models.StarEntry, error)
	Insert(ctx context.Context, entry models.StarEntry) (models.StarEntry, error)
	UpdateCount(ctx context.Context, id bson.ObjectId, count int) error
	// UpdateStatus only applies to entries still in review, others return ErrEntryNotFound
	UpdateStatus(ctx context.Context, id bson.ObjectId, update StatusUpdate) error
	Top(ctx context.Context, limit int) ([]models.StarEntry, error)
}

// MongoStore stores entries in the starboard_entries collection.
// mgo has no context support, calls are bounded by the session socket timeout.
type MongoStore struct {
	session  *mgo.Session
	database string
}

func NewMongoStore(session *mgo.Session, database string) *MongoStore {
	return &MongoStore{
		session:  session,
		database: database,
	}
}

// EnsureIndexes creates the lookup indexes, the origin message index is unique
func (m *MongoStore) EnsureIndexes() error {
	session := m.session.Copy()
	defer session.Close()
	collection := m.collection(session)

	err := collection.EnsureIndex(mgo.Index{
		Key:        []string{"origin_message_id"},
		Unique:     true,
		Background: true,
	})
	if err != nil {
		return errors.Wrap(err, "creating origin_message_id index failed")
	}

	err = collection.EnsureIndex(mgo.Index{
		Key:        []string{"promoted_message_id"},
		Background: true,
	})
	if err != nil {
		return errors.Wrap(err, "creating promoted_message_id index failed")
	}

	return collection.EnsureIndex(mgo.Index{
		Key:        []string{"status", "-star_count"},
		Background: true,
	})
}

func (m *MongoStore) FindByOriginID(ctx context.Context, messageID string) (models.StarEntry, error) {
	return m.findOne(bson.M{"origin_message_id": messageID})
}

func (m *MongoStore) FindByPromotedID(ctx context.Context, messageID string) (models.StarEntry, error) {
	return m.findOne(bson.M{"promoted_message_id": messageID})
}

func (m *MongoStore) Insert(ctx context.Context, entry models.StarEntry) (models.StarEntry, error) {
	session := m.session.Copy()
	defer session.Close()

	if entry.ID == "" {
		entry.ID = bson.NewObjectId()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err := m.collection(session).Insert(entry)
	if mgo.IsDup(err) {
		return models.StarEntry{}, ErrEntryExists
	}
	if err != nil {
		return models.StarEntry{}, errors.Wrap(err, "inserting starboard entry failed")
	}
	return entry, nil
}

func (m *MongoStore) UpdateCount(ctx context.Context, id bson.ObjectId, count int) error {
	if count < 0 {
		count = 0
	}
	return m.update(bson.M{"_id": id}, bson.M{"star_count": count})
}

func (m *MongoStore) UpdateStatus(ctx context.Context, id bson.ObjectId, update StatusUpdate) error {
	if !models.StarStatusInReview.CanTransitionTo(update.Status) {
		return errors.Errorf("invalid status transition to %s", update.Status)
	}

	set := bson.M{
		"status":              update.Status,
		"reviewed_by_user_id": update.ModeratorID,
		"reviewed_at":         time.Now(),
	}
	if update.PromotedChannelID != "" && update.PromotedMessageID != "" {
		set["promoted_channel_id"] = update.PromotedChannelID
		set["promoted_message_id"] = update.PromotedMessageID
	}

	return m.update(bson.M{"_id": id, "status": models.StarStatusInReview}, set)
}

func (m *MongoStore) Top(ctx context.Context, limit int) ([]models.StarEntry, error) {
	session := m.session.Copy()
	defer session.Close()

	var entryBucket []models.StarEntry
	err := m.collection(session).
		Find(bson.M{"status": models.StarStatusAccepted}).
		Sort("-star_count").
		Limit(limit).
		All(&entryBucket)
	if err != nil {
		return nil, errors.Wrap(err, "querying top starboard entries failed")
	}
	return entryBucket, nil
}

func (m *MongoStore) findOne(query bson.M) (models.StarEntry, error) {
	session := m.session.Copy()
	defer session.Close()

	var entryBucket models.StarEntry
	err := m.collection(session).Find(query).One(&entryBucket)
	if err == mgo.ErrNotFound {
		return models.StarEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return models.StarEntry{}, errors.Wrap(err, "querying starboard entry failed")
	}
	return entryBucket, nil
}

func (m *MongoStore) update(selector bson.M, set bson.M) error {
	session := m.session.Copy()
	defer session.Close()

	err := m.collection(session).Update(selector, bson.M{"$set": set})
	if err == mgo.ErrNotFound {
		return ErrEntryNotFound
	}
	return errors.Wrap(err, "updating starboard entry failed")
}

func (m *MongoStore) collection(session *mgo.Session) *mgo.Collection {
	return session.DB(m.database).C(models.StarboardEntriesTable.String())
}
