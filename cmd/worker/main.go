package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"tone-analyzer/internal/app"
	"tone-analyzer/internal/httputil"
	"tone-analyzer/internal/queue"
)

func main() {
	deps, err := app.Build(os.Stdout)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	nc, err := nats.Connect(deps.Config.QueueURL, nats.Name("tone-analyzer-worker"))
	if err != nil {
		deps.Log.Error("failed to connect to NATS", "url", deps.Config.QueueURL, "err", err)
		os.Exit(1)
	}
	defer nc.Close()
	deps.Log.Info("analysis worker starting", "url", deps.Config.QueueURL, "subject", deps.Config.QueueSubject)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	worker := queue.NewNATS(deps.Log, nc, deps.Config.QueueSubject, deps.Analyzer)
	g.Go(func() error {
		return worker.Serve(ctx)
	})

	srv := healthServer(deps)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("analysis worker stopped", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("analysis worker stopped")
}

func healthServer(deps app.Deps) *http.Server {
	r := httputil.NewRouter(deps.Log, 5*time.Second)
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
