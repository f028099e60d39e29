package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/domain"
)

func TestUserStoreEnforcesUniqueUsernames(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	first, err := store.Insert(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = store.Insert(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestUserStoreFindByIDMissingIsNil(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	user, err := store.FindByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestUserStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	for _, name := range []string{"alice", "bob"} {
		_, err := store.Insert(ctx, name)
		require.NoError(t, err)
	}

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return ts.UTC()
}

func seedExercises(t *testing.T, store *ExerciseStore, userID string, dates ...string) {
	t.Helper()
	ctx := context.Background()
	for _, date := range dates {
		_, err := store.Insert(ctx, domain.Exercise{
			UserID:      userID,
			Description: "run",
			Duration:    30,
			Date:        day(t, date),
		})
		require.NoError(t, err)
	}
}

func TestExerciseStoreFiltersInclusiveWindow(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore()
	seedExercises(t, store, "u1", "2020-01-10", "2020-01-15", "2020-01-20")
	seedExercises(t, store, "u2", "2020-01-15")

	found, err := store.FindByUser(ctx, "u1", day(t, "2020-01-10"), day(t, "2020-01-15"), 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	for _, exercise := range found {
		require.Equal(t, "u1", exercise.UserID)
	}
}

func TestExerciseStoreAppliesLimit(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore()
	seedExercises(t, store, "u1", "2020-01-10", "2020-01-15", "2020-01-20")

	found, err := store.FindByUser(ctx, "u1", day(t, "2020-01-01"), day(t, "2020-02-01"), 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestExerciseStoreAssignsIDs(t *testing.T) {
	ctx := context.Background()
	store := NewExerciseStore()

	saved, err := store.Insert(ctx, domain.Exercise{UserID: "u1", Description: "run", Duration: 30, Date: time.Now().UTC()})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
}
