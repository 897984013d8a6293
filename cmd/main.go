package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/shock-tracker/internal/alert"
	"github.com/ukydev/shock-tracker/internal/auth"
	"github.com/ukydev/shock-tracker/internal/db"
	"github.com/ukydev/shock-tracker/internal/handlers"
	"github.com/ukydev/shock-tracker/internal/host"
	"github.com/ukydev/shock-tracker/internal/middleware"
	"github.com/ukydev/shock-tracker/internal/repository"
	"github.com/ukydev/shock-tracker/internal/tracker"
)

// newAPIHandler wires the HTTP routes and wraps everything except the
// public endpoints in token authentication.
func newAPIHandler(repo *repository.Repository, authService *auth.Service) http.Handler {
	authHandler := handlers.NewAuthHandler(authService)
	recordsHandler := handlers.NewRecordsHandler(repo)
	configHandler := handlers.NewConfigHandler(repo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/records", recordsHandler.Records)
	mux.HandleFunc("/api/records/", recordsHandler.RecordByID)
	mux.HandleFunc("/api/history", recordsHandler.History)
	mux.HandleFunc("/api/config", configHandler.Config)
	mux.HandleFunc("/api/descent-rate", configHandler.DescentRate)
	mux.HandleFunc("/api/profile-map", configHandler.ProfileMap)

	return middleware.NewAuthMiddleware(authService).Authenticate(mux)
}

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "shocktracker"
	}
	store := db.NewMongoDocumentStore(client.Database(dbName).Collection("documents"))
	repo := repository.New(store)

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}
	rideHost, err := host.NewMQTTHost(broker, "shock-tracker")
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MQTT broker")
	}
	log.WithField("broker", broker).Info("Connected to ride host broker")

	alerts := alert.NewManager(rideHost, repo)
	trk := tracker.New(repo, rideHost, alerts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := trk.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start ride tracker")
	}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: newAPIHandler(repo, authService),
	}

	go func() {
		log.WithField("port", port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	trk.Stop()
	rideHost.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("MongoDB disconnect failed")
	}
}
