package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/domain"
	"github.com/JonatanGarbuyo/exercise-tracker/internal/store/memory"
)

type fixture struct {
	router    *mux.Router
	users     *memory.UserStore
	exercises *memory.ExerciseStore
}

func newFixture() *fixture {
	users := memory.NewUserStore()
	exercises := memory.NewExerciseStore()
	logger, _ := test.NewNullLogger()
	handler := NewHandler(domain.NewTracker(users, exercises, logger), logger)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return &fixture{router: router, users: users, exercises: exercises}
}

func (f *fixture) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) createUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := f.users.Insert(context.Background(), username)
	require.NoError(t, err)
	return user
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestCreateUserReturnsAssignedID(t *testing.T) {
	f := newFixture()

	rr := f.postForm("/api/exercise/new-user", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeJSON(t, rr)
	require.Equal(t, "alice", body["username"])
	require.NotEmpty(t, body["_id"])
}

func TestCreateUserMissingUsername(t *testing.T) {
	f := newFixture()

	rr := f.postForm("/api/exercise/new-user", url.Values{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "username is required", rr.Body.String())
}

func TestCreateUserDuplicateKeepsMessageShort(t *testing.T) {
	f := newFixture()
	f.createUser(t, "alice")

	rr := f.postForm("/api/exercise/new-user", url.Values{"username": {"alice"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "username already taken", rr.Body.String())
	require.NotContains(t, rr.Body.String(), "{")
}

func TestListUsersProjectsIDAndUsernameOnly(t *testing.T) {
	f := newFixture()
	f.createUser(t, "alice")
	f.createUser(t, "bob")

	rr := f.get("/api/exercise/users")
	require.Equal(t, http.StatusOK, rr.Code)

	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	require.Len(t, users, 2)
	for _, user := range users {
		require.Len(t, user, 2)
		require.Contains(t, user, "_id")
		require.Contains(t, user, "username")
	}
}

func TestAddExerciseRendersCalendarDate(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "alice")

	rr := f.postForm("/api/exercise/add", url.Values{
		"userId":      {user.ID},
		"description": {"morning run"},
		"duration":    {"45"},
		"date":        {"2020-01-15"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeJSON(t, rr)
	require.Equal(t, user.ID, body["_id"])
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "morning run", body["description"])
	require.Equal(t, float64(45), body["duration"])
	require.Equal(t, "Wed Jan 15 2020", body["date"])
}

func TestAddExerciseAcceptsJSONNumberDuration(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "alice")

	payload := `{"userId":"` + user.ID + `","description":"swim","duration":30}`
	req := httptest.NewRequest(http.MethodPost, "/api/exercise/add", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, float64(30), decodeJSON(t, rr)["duration"])
}

func TestAddExerciseRejectsFractionalDuration(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "alice")

	rr := f.postForm("/api/exercise/add", url.Values{
		"userId":      {user.ID},
		"description": {"run"},
		"duration":    {"3.5"},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "duration")
	require.Contains(t, rr.Body.String(), "3.5")
}

func TestAddExerciseRejectsTextDuration(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "alice")

	rr := f.postForm("/api/exercise/add", url.Values{
		"userId":      {user.ID},
		"description": {"run"},
		"duration":    {"abc"},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "duration")
}

func TestAddExerciseZeroDurationIsValid(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "alice")

	rr := f.postForm("/api/exercise/add", url.Values{
		"userId":      {user.ID},
		"description": {"plank"},
		"duration":    {"0"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, float64(0), decodeJSON(t, rr)["duration"])
}

func TestAddExerciseDefaultsDateToToday(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "alice")

	rr := f.postForm("/api/exercise/add", url.Values{
		"userId":      {user.ID},
		"description": {"run"},
		"duration":    {"30"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, time.Now().UTC().Format("Mon Jan 02 2006"), decodeJSON(t, rr)["date"])
}

// Regression: an unresolved userId must abort before any write.
func TestAddExerciseUnknownUserSavesNothing(t *testing.T) {
	f := newFixture()

	rr := f.postForm("/api/exercise/add", url.Values{
		"userId":      {"does-not-exist"},
		"description": {"run"},
		"duration":    {"30"},
	})
	require.Equal(t, http.StatusNotFound, rr.Code)

	stored, err := f.exercises.FindByUser(context.Background(), "does-not-exist", time.Unix(0, 0), time.Now(), 0)
	require.NoError(t, err)
	require.Empty(t, stored)
}

func (f *fixture) seedLog(t *testing.T) *domain.User {
	t.Helper()
	user := f.createUser(t, "carol")
	for _, date := range []string{"2020-01-10", "2020-01-15", "2020-01-20"} {
		rr := f.postForm("/api/exercise/add", url.Values{
			"userId":      {user.ID},
			"description": {"run " + date},
			"duration":    {"30"},
			"date":        {date},
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	return user
}

func TestLogWindowInclusiveAndProjected(t *testing.T) {
	f := newFixture()
	user := f.seedLog(t)

	rr := f.get("/api/exercise/log?userId=" + user.ID + "&from=2020-01-10&to=2020-01-15")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decodeJSON(t, rr)
	require.Equal(t, user.ID, body["userId"])
	require.Equal(t, "carol", body["username"])
	require.Equal(t, float64(2), body["count"])

	entries := body["log"].([]interface{})
	require.Len(t, entries, 2)
	for _, raw := range entries {
		entry := raw.(map[string]interface{})
		require.NotContains(t, entry, "_id")
		require.NotContains(t, entry, "userId")
		require.Contains(t, entry, "description")
		require.Contains(t, entry, "duration")
		require.Contains(t, entry, "date")
	}
}

func TestLogCountReflectsLimit(t *testing.T) {
	f := newFixture()
	user := f.seedLog(t)

	rr := f.get("/api/exercise/log?userId=" + user.ID + "&limit=1")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeJSON(t, rr)
	require.Equal(t, float64(1), body["count"])
	require.Len(t, body["log"].([]interface{}), 1)
}

// Explicit zero (or negative) limit asks for zero results.
func TestLogLimitZeroMeansNoResults(t *testing.T) {
	f := newFixture()
	user := f.seedLog(t)

	rr := f.get("/api/exercise/log?userId=" + user.ID + "&limit=0")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeJSON(t, rr)
	require.Equal(t, float64(0), body["count"])
	require.Empty(t, body["log"])
}

func TestLogLimitUnparseableMeansUnbounded(t *testing.T) {
	f := newFixture()
	user := f.seedLog(t)

	rr := f.get("/api/exercise/log?userId=" + user.ID + "&limit=abc")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, float64(3), decodeJSON(t, rr)["count"])
}

func TestLogMissingUserID(t *testing.T) {
	f := newFixture()

	rr := f.get("/api/exercise/log")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "userId is required", rr.Body.String())
}

func TestLogUnknownUser(t *testing.T) {
	f := newFixture()

	rr := f.get("/api/exercise/log?userId=missing")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLogInvalidFromIsValidationFailure(t *testing.T) {
	f := newFixture()
	user := f.createUser(t, "carol")

	rr := f.get("/api/exercise/log?userId=" + user.ID + "&from=whenever")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "from")
}

func TestUnmatchedRouteAnswersNotFound(t *testing.T) {
	f := newFixture()

	rr := f.get("/api/exercise/nope")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "not found", rr.Body.String())

	// Method mismatch on a known path behaves the same way.
	rr = f.get("/api/exercise/add")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "not found", rr.Body.String())
}

func TestHealthz(t *testing.T) {
	f := newFixture()

	rr := f.get("/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}
