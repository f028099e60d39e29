// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/apperr"
	"github.com/JonatanGarbuyo/exercise-tracker/internal/domain"
)

// Handler coordinates HTTP requests with the tracker service.
type Handler struct {
	tracker  *domain.Tracker
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewHandler builds a Handler.
func NewHandler(tracker *domain.Tracker, log logrus.FieldLogger) *Handler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &Handler{tracker: tracker, validate: validate, log: log}
}

// RegisterRoutes wires endpoints to the router. Unmatched routes, including
// method mismatches, answer 404 "not found".
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/exercise/new-user", h.createUser).Methods(http.MethodPost)
	r.HandleFunc("/api/exercise/users", h.listUsers).Methods(http.MethodGet)
	r.HandleFunc("/api/exercise/add", h.addExercise).Methods(http.MethodPost)
	r.HandleFunc("/api/exercise/log", h.queryLog).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
}

type addExerciseRequest struct {
	UserID      string `json:"userId" validate:"required"`
	Description string `json:"description" validate:"required"`
	Duration    string `json:"duration" validate:"required"`
	Date        string `json:"date"`
}

type userView struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

type exerciseCreatedView struct {
	UserID      string `json:"_id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

type logEntryView struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

type logView struct {
	UserID   string         `json:"userId"`
	Username string         `json:"username"`
	Count    int            `json:"count"`
	Log      []logEntryView `json:"log"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	fields, err := bodyFields(r)
	if err != nil {
		renderError(w, h.log, apperr.Validation("unable to parse body"))
		return
	}

	req := createUserRequest{Username: strings.TrimSpace(fields["username"])}
	if err := h.checkRequired(req); err != nil {
		renderError(w, h.log, err)
		return
	}

	user, err := h.tracker.CreateUser(r.Context(), req.Username)
	if err != nil {
		renderError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, userView{ID: user.ID, Username: user.Username})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.tracker.ListUsers(r.Context())
	if err != nil {
		renderError(w, h.log, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, userView{ID: user.ID, Username: user.Username})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) addExercise(w http.ResponseWriter, r *http.Request) {
	fields, err := bodyFields(r)
	if err != nil {
		renderError(w, h.log, apperr.Validation("unable to parse body"))
		return
	}

	req := addExerciseRequest{
		UserID:      strings.TrimSpace(fields["userId"]),
		Description: fields["description"],
		Duration:    fields["duration"],
		Date:        fields["date"],
	}
	if err := h.checkRequired(req); err != nil {
		renderError(w, h.log, err)
		return
	}

	exercise, err := h.tracker.AddExercise(r.Context(), domain.ExerciseInput{
		UserID:      req.UserID,
		Description: req.Description,
		Duration:    req.Duration,
		Date:        req.Date,
	})
	if err != nil {
		renderError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, exerciseCreatedView{
		UserID:      exercise.UserID,
		Username:    exercise.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.CalendarDate(),
	})
}

func (h *Handler) queryLog(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	userID := strings.TrimSpace(params.Get("userId"))
	if userID == "" {
		renderError(w, h.log, apperr.Validation("userId is required"))
		return
	}

	query := domain.LogQuery{UserID: userID}

	var err error
	if raw := params.Get("from"); raw != "" {
		if query.From, err = domain.ParseDate(raw); err != nil {
			renderError(w, h.log, apperr.Validation("from: %s is not a valid date", raw))
			return
		}
	}
	if raw := params.Get("to"); raw != "" {
		if query.To, err = domain.ParseDate(raw); err != nil {
			renderError(w, h.log, apperr.Validation("to: %s is not a valid date", raw))
			return
		}
	}

	// An unparseable limit degrades to an unbounded query rather than failing.
	if raw := params.Get("limit"); raw != "" {
		if parsed, convErr := strconv.Atoi(raw); convErr == nil {
			query.Limit = &parsed
		}
	}

	result, err := h.tracker.QueryLog(r.Context(), query)
	if err != nil {
		renderError(w, h.log, err)
		return
	}

	entries := make([]logEntryView, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, logEntryView{
			Description: entry.Description,
			Duration:    entry.Duration,
			Date:        entry.CalendarDate(),
		})
	}

	writeJSON(w, http.StatusOK, logView{
		UserID:   result.UserID,
		Username: result.Username,
		Count:    len(entries),
		Log:      entries,
	})
}

// checkRequired reports the first missing field as a validation failure.
func (h *Handler) checkRequired(payload interface{}) error {
	err := h.validate.Struct(payload)
	if err == nil {
		return nil
	}
	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		return apperr.Validation("%s is required", fieldErrors[0].Field())
	}
	return apperr.Validation("invalid request")
}

// bodyFields flattens the request body into string fields, accepting both
// url-encoded forms and JSON. JSON numbers keep their literal form so the
// whole-number duration rule can inspect them.
func bodyFields(r *http.Request) (map[string]string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		decoder := json.NewDecoder(r.Body)
		decoder.UseNumber()

		var raw map[string]interface{}
		if err := decoder.Decode(&raw); err != nil {
			return nil, err
		}

		fields := make(map[string]string, len(raw))
		for key, value := range raw {
			switch v := value.(type) {
			case nil:
			case string:
				fields[key] = v
			case json.Number:
				fields[key] = v.String()
			default:
				fields[key] = fmt.Sprintf("%v", v)
			}
		}
		return fields, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}
	return fields, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
