package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "users_created_total",
		Help:      "Number of users registered since process start.",
	})
	exercisesCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "exercises_created_total",
		Help:      "Number of exercises persisted since process start.",
	})
	exercisePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "last_exercise_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise persisted to the store.",
	})
)

func init() {
	prometheus.MustRegister(usersCreatedCounter, exercisesCreatedCounter, exercisePersistGauge)
}

// RecordUserCreated counts a successful user insert.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExercisePersisted counts an exercise insert and updates the
// persistence watermark gauge.
func RecordExercisePersisted(ts time.Time) {
	exercisesCreatedCounter.Inc()
	if ts.IsZero() {
		return
	}
	exercisePersistGauge.Set(float64(ts.Unix()))
}
