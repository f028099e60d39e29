// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/apperr"
)

var (
	// ErrUsernameTaken indicates an insert collided with an existing username.
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepository captures persistence operations for users.
type UserRepository interface {
	Insert(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// ExerciseRepository captures persistence operations for exercises. FindByUser
// filters on exact userID and the inclusive [from, to] date window; a limit
// greater than zero truncates the result, anything else means unbounded.
type ExerciseRepository interface {
	Insert(ctx context.Context, exercise Exercise) (*Exercise, error)
	FindByUser(ctx context.Context, userID string, from, to time.Time, limit int64) ([]Exercise, error)
}

// Tracker orchestrates the user and exercise workflows.
type Tracker struct {
	users     UserRepository
	exercises ExerciseRepository
	log       logrus.FieldLogger
}

// NewTracker constructs a Tracker.
func NewTracker(users UserRepository, exercises ExerciseRepository, log logrus.FieldLogger) *Tracker {
	return &Tracker{users: users, exercises: exercises, log: log}
}

// CreateUser registers a username. Duplicates surface as a uniqueness
// failure carrying only the short constraint message.
func (t *Tracker) CreateUser(ctx context.Context, username string) (*User, error) {
	user, err := t.users.Insert(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, apperr.Uniqueness(ErrUsernameTaken.Error())
		}
		return nil, apperr.Store(err)
	}

	t.log.WithFields(logrus.Fields{"userId": user.ID, "username": user.Username}).Info("user created")
	return user, nil
}

// ListUsers returns every registered user.
func (t *Tracker) ListUsers(ctx context.Context) ([]User, error) {
	users, err := t.users.List(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return users, nil
}

// AddExercise resolves the referenced user, then validates and persists the
// entry. An unresolved userId short-circuits before any write.
func (t *Tracker) AddExercise(ctx context.Context, input ExerciseInput) (*Exercise, error) {
	user, err := t.resolveUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	exercise, err := NewExercise(input, time.Now())
	if err != nil {
		return nil, err
	}
	exercise.UserID = user.ID
	exercise.Username = user.Username

	saved, err := t.exercises.Insert(ctx, exercise)
	if err != nil {
		return nil, apperr.Store(err)
	}

	t.log.WithFields(logrus.Fields{"userId": user.ID, "exerciseId": saved.ID}).Debug("exercise logged")
	return saved, nil
}

// LogQuery names the filter parameters of a log request. A nil Limit means
// unbounded; a non-positive Limit means zero results.
type LogQuery struct {
	UserID string
	From   time.Time
	To     time.Time
	Limit  *int
}

// Log is the shaped result of a log query.
type Log struct {
	UserID   string
	Username string
	Entries  []Exercise
}

// QueryLog resolves the user and returns the filtered exercise history.
// Absent bounds default to the epoch start and the current time.
func (t *Tracker) QueryLog(ctx context.Context, query LogQuery) (*Log, error) {
	user, err := t.resolveUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	result := &Log{UserID: user.ID, Username: user.Username}
	if query.Limit != nil && *query.Limit <= 0 {
		return result, nil
	}

	from := query.From
	if from.IsZero() {
		from = time.Unix(0, 0).UTC()
	}
	to := query.To
	if to.IsZero() {
		to = time.Now().UTC()
	}

	var limit int64
	if query.Limit != nil {
		limit = int64(*query.Limit)
	}

	entries, err := t.exercises.FindByUser(ctx, user.ID, from, to, limit)
	if err != nil {
		return nil, apperr.Store(err)
	}
	result.Entries = entries
	return result, nil
}

func (t *Tracker) resolveUser(ctx context.Context, id string) (*User, error) {
	user, err := t.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if user == nil {
		return nil, apperr.NotFound("unknown userId")
	}
	return user, nil
}
