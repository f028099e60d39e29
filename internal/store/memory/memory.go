// Package memory stores users and exercises in memory for local development
// and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/domain"
)

// UserStore keeps users in a mutex-guarded map.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserStore constructs an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

// Insert implements domain.UserRepository. Uniqueness of usernames is
// enforced here the way the backing store's unique index would.
func (s *UserStore) Insert(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == username {
			return nil, domain.ErrUsernameTaken
		}
	}

	user := domain.User{ID: uuid.NewString(), Username: username}
	s.users[user.ID] = user
	return &user, nil
}

// FindByID returns the user or nil when absent.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// List returns all users in no particular order.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

// ExerciseStore keeps exercises in insertion order.
type ExerciseStore struct {
	mu        sync.RWMutex
	exercises []domain.Exercise
}

// NewExerciseStore constructs an empty ExerciseStore.
func NewExerciseStore() *ExerciseStore {
	return &ExerciseStore{}
}

// Insert implements domain.ExerciseRepository.
func (s *ExerciseStore) Insert(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exercise.ID = uuid.NewString()
	s.exercises = append(s.exercises, exercise)
	return &exercise, nil
}

// FindByUser filters on userID and the inclusive [from, to] window. A limit
// greater than zero truncates the result.
func (s *ExerciseStore) FindByUser(ctx context.Context, userID string, from, to time.Time, limit int64) ([]domain.Exercise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Exercise, 0)
	for _, exercise := range s.exercises {
		if exercise.UserID != userID {
			continue
		}
		if exercise.Date.Before(from) || exercise.Date.After(to) {
			continue
		}
		out = append(out, exercise)
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}
