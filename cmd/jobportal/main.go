// Command jobportal manages saved job boards and builds site-restricted
// searches over them, against the API server or an embedded local store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/iliyamo/job-portal-manager/internal/apperr"
	"github.com/iliyamo/job-portal-manager/internal/cli"
	"github.com/iliyamo/job-portal-manager/internal/config"
	"github.com/iliyamo/job-portal-manager/internal/logging"
	"github.com/iliyamo/job-portal-manager/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	log := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, err := cli.OpenBackend(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Error("close backend", "error", err)
		}
	}()

	app := cli.NewApp(backend, session.Store{Path: cfg.SessionPath}, os.Stdin, os.Stdout)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		fmt.Fprintln(os.Stderr, "Error:", apperr.Message(err))
		return 1
	}
	return 0
}
