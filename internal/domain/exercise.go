package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/apperr"
)

// Exercise is a single logged workout entry. Username is denormalized from
// the owning user at creation time; entries are immutable afterwards.
type Exercise struct {
	ID          string
	UserID      string
	Username    string
	Description string
	Duration    int
	Date        time.Time
}

const calendarLayout = "Mon Jan 02 2006"

// CalendarDate renders the exercise date as a weekday/month/day/year string
// with no time component, e.g. "Wed Jan 15 2020".
func (e Exercise) CalendarDate() string {
	return e.Date.UTC().Format(calendarLayout)
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate accepts the date forms clients send: a plain calendar day or an
// RFC 3339 timestamp. The result is normalised to UTC.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("%q is not a valid date", raw)
}

// ParseDuration enforces the whole-number-of-minutes rule. Inputs with a
// fractional component or non-numeric text are rejected; "45.0" counts as
// whole.
func ParseDuration(raw string) (int, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value != math.Trunc(value) {
		return 0, apperr.Validation("duration: %s is not an integer value", raw)
	}
	return int(value), nil
}

// ExerciseInput carries the raw fields of an add-exercise request before
// validation.
type ExerciseInput struct {
	UserID      string
	Description string
	Duration    string
	Date        string
}

// NewExercise validates raw input and builds the entry to persist. When no
// date is supplied the creation instant now is substituted.
func NewExercise(input ExerciseInput, now time.Time) (Exercise, error) {
	duration, err := ParseDuration(input.Duration)
	if err != nil {
		return Exercise{}, err
	}

	date := now.UTC()
	if strings.TrimSpace(input.Date) != "" {
		if date, err = ParseDate(input.Date); err != nil {
			return Exercise{}, apperr.Validation("date: %s is not a valid date", input.Date)
		}
	}

	return Exercise{
		UserID:      input.UserID,
		Description: strings.TrimSpace(input.Description),
		Duration:    duration,
		Date:        date,
	}, nil
}
