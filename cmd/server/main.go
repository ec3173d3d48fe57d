package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/job-portal-manager/internal/config"
	"github.com/iliyamo/job-portal-manager/internal/database"
	"github.com/iliyamo/job-portal-manager/internal/logging"
	"github.com/iliyamo/job-portal-manager/internal/repository"
	"github.com/iliyamo/job-portal-manager/internal/router"
	"github.com/iliyamo/job-portal-manager/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	log := logging.Setup(cfg.LogLevel)

	db, dialect, err := openDB(cfg)
	if err != nil {
		log.Error("open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db, dialect); err != nil {
		log.Error("migrate database", "error", err)
		os.Exit(1)
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitURL)
	}

	auth := service.NewAuthService(repository.NewUserRepo(db), service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, events, log)
	portals := service.NewPortalService(repository.NewPortalRepo(db), events, log)

	e := router.New(auth, portals, router.Options{
		BasePath: cfg.BasePath,
		Metrics:  cfg.MetricsEnabled,
		Health:   db,
		Logger:   log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "base", cfg.BasePath, "driver", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}

func openDB(cfg config.Config) (*sql.DB, string, error) {
	if cfg.DBDriver == config.DriverSQLite {
		path := cfg.DBPath
		if path == "" {
			path = database.MemoryPath
		}
		db, err := database.OpenSQLite(path)
		return db, database.DialectSQLite, err
	}
	db, err := database.Open(context.Background(), database.MySQLConfig{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	return db, database.DialectMySQL, err
}
