package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/campushub/university_backend/internal/config"
	"github.com/campushub/university_backend/internal/db"
	"github.com/campushub/university_backend/internal/events"
	"github.com/campushub/university_backend/internal/handlers"
	"github.com/campushub/university_backend/internal/keys"
	"github.com/campushub/university_backend/internal/logging"
	"github.com/campushub/university_backend/internal/repo"
	"github.com/campushub/university_backend/internal/search"
	"github.com/campushub/university_backend/internal/session"
	"github.com/campushub/university_backend/internal/token"
	httpserver "github.com/campushub/university_backend/internal/transport/http"

	"github.com/elastic/go-elasticsearch/v9"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("database migration: %v", err)
	}

	keyManager := keys.NewManager(cfg.JWTSecret, cfg.JWTRefreshSecret, logger)
	// Resolve both keys up front: a key initialization failure must abort
	// startup, not surface on the first request.
	for _, purpose := range []keys.Purpose{keys.PurposeAccess, keys.PurposeRefresh} {
		if _, err := keyManager.Key(purpose); err != nil {
			log.Fatalf("signing key init (%s): %v", purpose, err)
		}
	}

	codec := &token.Codec{Keys: keyManager, Issuer: cfg.JWTIssuer}
	users := &repo.UserRepo{DB: database}
	sessions := &session.Manager{
		Users:        users,
		Codec:        codec,
		AccessTTL:    cfg.JWTAccessTokenExpiration,
		RefreshTTL:   cfg.JWTRefreshTokenExpiration,
		CookieDomain: cfg.JWTCookieDomain,
		CookieSecure: cfg.JWTCookieSecure,
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, search endpoints disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		Codec:               codec,
		AuthHandler:         &handlers.AuthHandler{Sessions: sessions, Users: users, Producer: producer},
		StudentHandler:      &handlers.StudentHandler{DB: database},
		ProfessorHandler:    &handlers.ProfessorHandler{DB: database},
		CourseHandler:       &handlers.CourseHandler{DB: database},
		EnrollmentHandler:   &handlers.EnrollmentHandler{DB: database},
		GradeHandler:        &handlers.GradeHandler{DB: database},
		AttendanceHandler:   &handlers.AttendanceHandler{DB: database},
		AnnouncementHandler: &handlers.AnnouncementHandler{DB: database, Users: users, Producer: producer},
		NotificationHandler: &handlers.NotificationHandler{DB: database, Users: users, Producer: producer},
		StudentSearch:       &search.Handler{ES: esClient, Index: "students", Fields: []string{"first_name^2", "last_name^2", "email"}},
		CourseSearch:        &search.Handler{ES: esClient, Index: "courses", Fields: []string{"code^2", "title^2", "description"}},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
