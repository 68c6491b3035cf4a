package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/bankshot/internal/config"
	"github.com/Dan9191/bankshot/internal/handler"
	"github.com/Dan9191/bankshot/internal/integrations/claude"
	"github.com/Dan9191/bankshot/internal/integrations/nessie"
	"github.com/Dan9191/bankshot/internal/repository"
	"github.com/Dan9191/bankshot/internal/service"
	"github.com/Dan9191/bankshot/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// User storage
	var users repository.Users
	if cfg.DBConn == "" {
		logger.Warn("DB_CONN not set, keeping users in memory")
		users = repository.NewMemory()
	} else {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		repo := repository.NewRepository(db)
		if err := repo.Migrate(context.Background()); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		users = repo
	}

	// External services
	backend := nessie.NewClient(cfg, logger)
	var advisor service.Advisor = backend
	if cfg.AnthropicKey != "" {
		remote, err := claude.NewAdvisor(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to create advisor: %v", err)
		}
		defer remote.Close()
		advisor = remote
		logger.Infof("Answering questions with %s", cfg.AnthropicModel)
	}
	mailer := email.NewSender(cfg, logger)

	// Initialize layers
	svc := service.NewService(cfg, backend, advisor, users, mailer, logger)
	h := handler.NewHandler(svc, logger, cfg.AllowedOrigins)

	// Scheduled jobs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		svc.SendDigests(ctx)
	}); err != nil {
		logger.Fatalf("Invalid DIGEST_SCHEDULE %q: %v", cfg.DigestSchedule, err)
	}
	if _, err := scheduler.AddFunc("@every 10m", func() { svc.SweepSessions() }); err != nil {
		logger.Fatalf("Failed to schedule session sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h2c.NewHandler(c.Handler(h.Router()), &http2.Server{}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
