package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/apperr"
)

// statusForKind maps the error taxonomy to HTTP status codes. Uniqueness
// violations are client errors like validation failures, not conflicts the
// client can retry around.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindUniqueness:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// renderError is the single normalization point for failures: every handler
// forwards here and the response is plain text with the mapped status.
func renderError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindStore {
		log.WithError(err).Error("request failed")
	}
	writeText(w, statusForKind(kind), apperr.ClientMessage(err))
}

// notFound answers unmatched routes.
func notFound(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, "not found")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
