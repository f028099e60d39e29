// Package mongo provides MongoDB-backed persistence for users and exercises.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/domain"
	"github.com/JonatanGarbuyo/exercise-tracker/internal/observability"
)

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	Duration    int                `bson:"duration"`
	Date        time.Time          `bson:"date"`
}

// UserStore persists users in the "users" collection.
type UserStore struct {
	collection *mongo.Collection
}

// NewUserStore constructs a UserStore.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{collection: db.Collection("users")}
}

// EnsureIndexes creates the unique username index backing the
// one-username-per-user invariant.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Insert implements domain.UserRepository. A duplicate-key error from the
// unique index maps to domain.ErrUsernameTaken.
func (s *UserStore) Insert(ctx context.Context, username string) (*domain.User, error) {
	result, err := s.collection.InsertOne(ctx, userDocument{Username: username})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	id := result.InsertedID.(primitive.ObjectID)
	observability.RecordUserCreated()
	return &domain.User{ID: id.Hex(), Username: username}, nil
}

// FindByID returns the user or nil when absent. Ids are opaque to clients,
// so malformed ObjectID hex resolves as absent rather than as an error.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc userDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// List returns every user in store order.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]domain.User, 0)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, domain.User{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return users, cursor.Err()
}

// ExerciseStore persists exercises in the "exercises" collection.
type ExerciseStore struct {
	collection *mongo.Collection
}

// NewExerciseStore constructs an ExerciseStore.
func NewExerciseStore(db *mongo.Database) *ExerciseStore {
	return &ExerciseStore{collection: db.Collection("exercises")}
}

// Insert implements domain.ExerciseRepository.
func (s *ExerciseStore) Insert(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	doc := exerciseDocument{
		UserID:      exercise.UserID,
		Username:    exercise.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date.UTC(),
	}

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	exercise.ID = result.InsertedID.(primitive.ObjectID).Hex()
	observability.RecordExercisePersisted(time.Now().UTC())
	return &exercise, nil
}

// FindByUser filters on exact userID and the inclusive [from, to] date
// window. A limit greater than zero truncates; anything else applies the
// store's no-limit semantics.
func (s *ExerciseStore) FindByUser(ctx context.Context, userID string, from, to time.Time, limit int64) ([]domain.Exercise, error) {
	filter := bson.M{
		"userId": userID,
		"date":   bson.M{"$gte": from.UTC(), "$lte": to.UTC()},
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exercises := make([]domain.Exercise, 0)
	for cursor.Next(ctx) {
		var doc exerciseDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		exercises = append(exercises, domain.Exercise{
			ID:          doc.ID.Hex(),
			UserID:      doc.UserID,
			Username:    doc.Username,
			Description: doc.Description,
			Duration:    doc.Duration,
			Date:        doc.Date.UTC(),
		})
	}
	return exercises, cursor.Err()
}
