package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catframe/internal/auth"
	"catframe/internal/config"
	"catframe/internal/handlers"
	"catframe/internal/logger"
	"catframe/internal/metrics"
	"catframe/internal/repository"
	"catframe/internal/repository/db"
	"catframe/internal/server"
	"catframe/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title                       CatFrame API
// @version                     1.0
// @description                 Movie catalog with accounts, comments and administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
func main() {
	// load config.yml + CATFRAME_* env
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB and apply migrations
	conn, dialect, err := openDB(cfg.Database, log)
	if err != nil {
		log.Fatalw("failed to init database", "driver", cfg.Database.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte(cfg.Auth.SecretKey),
		Algorithm: cfg.Auth.Algorithm,
		AccessTTL: cfg.Auth.AccessTokenTTL(),
	})
	if err != nil {
		log.Fatalw("invalid token configuration", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(conn, dialect)
	services := service.NewService(service.Deps{
		Repos:         repos,
		Hasher:        auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:        tokens,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if cfg.Auth.DebugEchoResetToken {
		log.Warnw("reset tokens are echoed in forgot-password responses; do not use outside local testing")
	}
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		DebugEchoResetToken: cfg.Auth.DebugEchoResetToken,
		Metrics:             metrics.NewRecorder(reg),
	})

	// start HTTP server
	srv := server.New(cfg.Server)
	runHTTPServer(srv, cfg.Server.Port, apiHandler, log)
	log.Infow("server started", "app", cfg.App.Name, "env", cfg.App.Environment, "port", cfg.Server.Port, "driver", dialect)

	// graceful shutdown
	waitForShutdown(srv, log)
}

// openDB connects to the configured database and brings its schema up to date.
func openDB(cfg config.DatabaseConfig, log *logger.Logger) (*sql.DB, db.Dialect, error) {
	dialect, err := db.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	conn, err := db.InitDB(ctx, db.Options{Dialect: dialect, DSN: cfg.DSN}, log)
	if err != nil {
		return nil, "", err
	}
	return conn, dialect, nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
