package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/toolindex/toolindex-api/internal/catalog"
	"github.com/toolindex/toolindex-api/internal/config"
	"github.com/toolindex/toolindex-api/internal/handlers"
	"github.com/toolindex/toolindex-api/internal/intake"
	"github.com/toolindex/toolindex-api/internal/middleware"
	"github.com/toolindex/toolindex-api/internal/migration"
	"github.com/toolindex/toolindex-api/internal/moderation"
	"github.com/toolindex/toolindex-api/internal/notification"
	"github.com/toolindex/toolindex-api/internal/repository"
	"github.com/toolindex/toolindex-api/internal/routes"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config        *config.Config
	db            *sql.DB
	logger        zerolog.Logger
	notifications notification.Service
	mailer        notification.Mailer
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	migration.RunMigrations(cfg.DatabaseURL, logger)

	// Mailer for submission alerts and contact messages. Optional: without
	// SMTP config the API runs with email delivery disabled.
	var mailer notification.Mailer
	if smtpMailer, err := notification.NewSMTPMailer(cfg.Email); err != nil {
		logger.Warn().Err(err).Msg("email delivery disabled")
	} else {
		mailer = smtpMailer
	}

	// Initialize notification service with email fan-out.
	notificationRepo := repository.NewNotificationRepository(db)
	var notifiers []notification.Notifier
	if mailer != nil {
		notifiers = append(notifiers, notification.NewEmailNotifier(mailer))
	}
	notificationService := notification.NewService(notificationRepo, logger, notifiers...)

	app := &application{
		config:        cfg,
		db:            db,
		logger:        logger,
		notifications: notificationService,
		mailer:        mailer,
	}

	app.bootstrapAdmin()

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	timedRouter := middleware.TimeoutMiddleware(cfg.RequestTimeout)(loggedRouter)
	corsHandler := h.CORS(
		h.AllowedOrigins([]string{"*"}),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(timedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler, logger)

	logger.Info().Msg("Application terminated.")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	toolRepo := repository.NewToolRepository(app.db)
	reelRepo := repository.NewReelRepository(app.db)
	contactRepo := repository.NewContactRepository(app.db)
	userRepo := repository.NewUserRepository(app.db)

	// Domain services
	intakeService := intake.NewService(toolRepo, reelRepo, app.notifications, logger)
	engine := moderation.NewEngine(toolRepo, logger)
	catalogView := catalog.NewView(toolRepo, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, app.config.JWTSecret, logger)
	toolHandler := handlers.NewToolHandler(catalogView, intakeService, reelRepo, logger)
	adminToolHandler := handlers.NewAdminToolHandler(engine, logger)
	submissionHandler := handlers.NewSubmissionHandler(engine, logger)
	notificationHandler := handlers.NewNotificationHandler(app.notifications, logger)
	statsHandler := handlers.NewStatsHandler(engine, logger)
	contactHandler := handlers.NewContactHandler(contactRepo, app.mailer, logger)

	return routes.NewRouter(authHandler, toolHandler, adminToolHandler, submissionHandler, notificationHandler, statsHandler, contactHandler)
}

// bootstrapAdmin seeds the configured admin account if it does not exist yet.
func (app *application) bootstrapAdmin() {
	email := app.config.Bootstrap.AdminEmail
	password := app.config.Bootstrap.AdminPassword
	if email == "" || password == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userRepo := repository.NewUserRepository(app.db)
	if _, err := userRepo.GetByEmail(ctx, email); err == nil {
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		app.logger.Error().Err(err).Msg("admin bootstrap lookup failed")
		return
	}

	if _, err := userRepo.CreateAdmin(ctx, email, password); err != nil {
		app.logger.Error().Err(err).Msg("failed to bootstrap admin account")
		return
	}
	app.logger.Info().Str("email", email).Msg("bootstrapped admin account")
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
