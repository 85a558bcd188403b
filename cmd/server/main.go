// Package main initializes and starts the student records HTTP server,
// setting up configuration, logging, database connections, repositories,
// services, session registry, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GradeBook/internal/config"
	"github.com/atinyakov/GradeBook/internal/db"
	"github.com/atinyakov/GradeBook/internal/importer"
	"github.com/atinyakov/GradeBook/internal/logger"
	"github.com/atinyakov/GradeBook/internal/repository"
	"github.com/atinyakov/GradeBook/internal/server/handler/http"
	"github.com/atinyakov/GradeBook/internal/service"
	"github.com/atinyakov/GradeBook/internal/session"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize repositories for students and credentials.
	studentRepo := repository.NewPostgresStudentRepository(postgresDB)
	userRepo := repository.NewPostgresUserRepository(postgresDB)

	// Initialize business-logic services.
	studentService := service.NewStudentService(studentRepo)
	authService := service.NewAuthService(userRepo)
	csvImporter := importer.New(studentRepo, zapLogger)

	// Session registry owns the token→identity mapping for the process
	// lifetime. Expiry stays off unless explicitly configured.
	sessions := session.NewRegistry()
	if options.SessionTTL > 0 {
		sessions.StartSweeper(context.Background(), time.Minute, options.SessionTTL, zapLogger)
		zapLogger.Info("session expiry enabled", zap.Duration("ttl", options.SessionTTL))
	}

	// Create HTTP handlers for auth and student endpoints.
	authHandler := &http.AuthHandler{AuthService: authService, Sessions: sessions}
	studentHandler := &http.StudentHandler{StudentService: studentService, Importer: csvImporter}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, studentHandler, sessions, zapLogger)

	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
