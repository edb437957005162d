package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

const collectionCheckIns = "checkins"

// CheckInRepository persists check-in events. The unique (user, day) index is
// the storage-level half of the once-per-day guarantee: two concurrent inserts
// for the same user and calendar day cannot both succeed.
type CheckInRepository struct {
	col *mongo.Collection
}

func NewCheckInRepository(db *mongo.Database) *CheckInRepository {
	return &CheckInRepository{col: db.Collection(collectionCheckIns)}
}

type checkInDoc struct {
	ID         string    `bson:"_id"`
	User       string    `bson:"user"`
	Day        string    `bson:"day"`
	RecordedAt time.Time `bson:"recorded_at"`
	ClientTime string    `bson:"client_time,omitempty"`
}

// Insert persists a new event. A duplicate-key error on (user, day) maps to
// domain.ErrAlreadyCheckedInToday.
func (r *CheckInRepository) Insert(ctx context.Context, evt *domain.CheckInEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := checkInDoc{
		ID:         evt.ID,
		User:       evt.User,
		Day:        evt.Day,
		RecordedAt: evt.RecordedAt.UTC(),
		ClientTime: evt.ClientTime,
	}

	_, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyCheckedInToday
		}
		return err
	}
	return nil
}

// FindLatestByUser returns the user's most recent event, or (nil, nil).
func (r *CheckInRepository) FindLatestByUser(ctx context.Context, user string) (*domain.CheckInEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "recorded_at", Value: -1}})

	var doc checkInDoc
	err := r.col.FindOne(ctx, bson.M{"user": user}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	evt := docToEvent(doc)
	return &evt, nil
}

// ListByUser returns all events for user ascending by recorded time.
func (r *CheckInRepository) ListByUser(ctx context.Context, user string) ([]domain.CheckInEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})

	cur, err := r.col.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []domain.CheckInEvent
	for cur.Next(ctx) {
		var doc checkInDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		events = append(events, docToEvent(doc))
	}
	return events, cur.Err()
}

// EnsureIndexes creates the indexes the repository relies on. The unique
// compound index on (user, day) must exist before the service takes traffic.
func (r *CheckInRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "recorded_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func docToEvent(doc checkInDoc) domain.CheckInEvent {
	return domain.CheckInEvent{
		ID:         doc.ID,
		User:       doc.User,
		Day:        doc.Day,
		RecordedAt: doc.RecordedAt,
		ClientTime: doc.ClientTime,
	}
}
