package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marginbook/internal/autosave"
	"marginbook/internal/state"
	"marginbook/internal/store"
	"marginbook/internal/transport"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local document service",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.close()
		return runServer(a)
	},
}

func runServer(a *app) error {
	svc := store.NewService(a.repo, a.logger)

	doc, err := svc.Snapshot(context.Background())
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	st := state.New(doc)

	interval := time.Duration(a.cfg.Autosave.IntervalMS) * time.Millisecond
	saver := autosave.New(svc, st, a.logger, interval)

	handler := transport.NewHandler(svc, saver, st, a.logger)
	router := transport.NewServer(handler)

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		a.logger.Info("server listening", "addr", addr, "backend", a.cfg.Storage.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("shutting down")
	// drain pending autosaves so a debounce window cannot swallow edits
	saver.Flush(ctx)
	if err := httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("shutdown error", "error", err)
	}
	return nil
}
