package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/upsrj/checkin-system/internal/core/domain"
)

const collectionStudents = "alumnos"

// StudentRepository persists the student roster.
type StudentRepository struct {
	col *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{col: db.Collection(collectionStudents)}
}

type studentDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	StudentID       string             `bson:"student_id"`
	Name            string             `bson:"name"`
	Career          string             `bson:"career"`
	Email           string             `bson:"email"`
	PasswordHash    string             `bson:"password_hash"`
	LastCheckInTime *time.Time         `bson:"last_check_in_time,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
}

// Create inserts a new student. Duplicate email or campus id maps to
// domain.ErrStudentExists.
func (r *StudentRepository) Create(ctx context.Context, s *domain.Student) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := studentDoc{
		StudentID:    s.StudentID,
		Name:         s.Name,
		Career:       s.Career,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		CreatedAt:    s.CreatedAt.UTC(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrStudentExists
		}
		return fmt.Errorf("insert student: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid.Hex()
	}
	return nil
}

func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc studentDoc
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	s := docToStudent(doc)
	return &s, nil
}

// List returns the full roster ordered by campus id.
func (r *StudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "student_id", Value: 1}})

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var students []domain.Student
	for cur.Next(ctx) {
		var doc studentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		students = append(students, docToStudent(doc))
	}
	return students, cur.Err()
}

// UpdateLastCheckIn sets the denormalized last-check-in field.
func (r *StudentRepository) UpdateLastCheckIn(ctx context.Context, email string, t time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"last_check_in_time": t.UTC()}},
	)
	return err
}

// EnsureIndexes creates the uniqueness constraints signup relies on.
func (r *StudentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "student_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func docToStudent(doc studentDoc) domain.Student {
	return domain.Student{
		ID:              doc.ID.Hex(),
		StudentID:       doc.StudentID,
		Name:            doc.Name,
		Career:          doc.Career,
		Email:           doc.Email,
		PasswordHash:    doc.PasswordHash,
		LastCheckInTime: doc.LastCheckInTime,
		CreatedAt:       doc.CreatedAt,
	}
}
