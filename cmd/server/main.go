package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gamerooms/casino-be/internal/api"
	"github.com/gamerooms/casino-be/internal/db"
	"github.com/gamerooms/casino-be/internal/registry"
	"github.com/gamerooms/casino-be/internal/store"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	// Parse command line flags; .env supplies defaults
	var (
		port          = flag.String("port", envDefault("PORT", "8080"), "Server port")
		dbPath        = flag.String("db", envDefault("DB_PATH", "./data/casino.db"), "Database path")
		frontendURL   = flag.String("frontend", envDefault("FRONTEND_URL", "http://localhost:5173"), "Frontend URL for CORS")
		actionTimeout = flag.Duration("action-timeout", 30*time.Second, "How long a seated player may take to hit or stand")
		debug         = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	// Create data directory if it doesn't exist
	dataDir := filepath.Dir(*dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Fatal("failed to create data directory", "error", err)
	}

	// Initialize the store
	roomStore := store.NewMemoryStore()
	logger.Info("in-memory room store initialized")

	// Initialize the database
	database, err := db.NewDatabase(*dbPath)
	if err != nil {
		logger.Warn("failed to initialize database, continuing without persistence", "error", err)
		database = nil
	} else {
		logger.Info("database initialized", "path", *dbPath)
		defer database.Close()
	}

	// Initialize WebSocket hub
	hub := api.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

	// Room provisioning over the local registry
	provisioner := registry.NewProvisioner(registry.NewLocalRegistry(roomStore, nil))

	// Initialize API handlers
	handlers := api.NewHandlers(roomStore, database, hub, provisioner, logger, *actionTimeout)

	// Set up router
	r := mux.NewRouter()
	handlers.RegisterRoutes(r)

	// Add middleware for logging
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "uri", r.RequestURI, "duration", time.Since(start))
		})
	})

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{*frontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("starting server", "port", *port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", "error", err)
		}
	}()

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a termination signal
	<-stop

	logger.Info("shutting down server")
}
