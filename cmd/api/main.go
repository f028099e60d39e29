package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/JonatanGarbuyo/exercise-tracker/internal/api"
	"github.com/JonatanGarbuyo/exercise-tracker/internal/config"
	"github.com/JonatanGarbuyo/exercise-tracker/internal/domain"
	memorystore "github.com/JonatanGarbuyo/exercise-tracker/internal/store/memory"
	mongostore "github.com/JonatanGarbuyo/exercise-tracker/internal/store/mongo"
	httptransport "github.com/JonatanGarbuyo/exercise-tracker/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var users domain.UserRepository
	var exercises domain.ExerciseRepository

	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")
		users = memorystore.NewUserStore()
		exercises = memorystore.NewExerciseStore()
	default:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			logger.Fatalf("failed to connect to mongo: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			logger.Fatalf("failed to ping mongo: %v", err)
		}

		db := client.Database(cfg.MongoDatabase)
		userStore := mongostore.NewUserStore(db)
		if err := userStore.EnsureIndexes(ctx); err != nil {
			logger.Fatalf("failed to create indexes: %v", err)
		}
		users = userStore
		exercises = mongostore.NewExerciseStore(db)
	}

	tracker := domain.NewTracker(users, exercises, logger)
	handler := api.NewHandler(tracker, logger)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Simple CORS middleware, the API is exercised from browser forms.
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	requestLogger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("request")
			next.ServeHTTP(w, r)
		})
	}

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address: cfg.HTTPAddress,
	}, requestLogger(cors(router)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infof("exercise tracker listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
