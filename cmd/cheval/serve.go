package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/bnema/cheval/internal/adapter/http"
	"github.com/bnema/cheval/internal/infrastructure/logger"
	"github.com/bnema/cheval/internal/service"
)

const (
	shutdownTimeout = 30 * time.Second
	pruneInterval   = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API with live progress over server-sent events.

Routes:
  POST /api/jobs                 Start an operation
  POST /api/jobs/{id}/cancel     Cancel the running job
  GET  /api/status               Runner and batch status
  GET  /api/runs                 Run history
  GET  /api/runs/{id}            One run
  POST /api/batches              Start a batch
  POST /api/batches/stop         Stop after the current file
  GET  /api/batches/{id}/runs    Runs of one batch
  GET  /events/{id}              Event stream of a run or batch`,
	Args: cobra.NoArgs,
	RunE: runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Addr()
	}

	if _, err := service.Preflight(cfg.BinaryPaths()); err != nil {
		logger.Warn.Printf("%v; operations using them will fail", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.history.Recover(ctx)

	server := httpadapter.NewServer(a.jobs, a.batch, a.history, a.events, cfg.Batch.Suffix)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info.Printf("server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info.Printf("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error.Printf("http shutdown error: %v", err)
		}
		// A job still running would outlive the server; stop it.
		a.runner.Cancel()
		return nil
	})

	g.Go(func() error {
		prune(ctx, a.history)
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				prune(ctx, a.history)
			case <-ctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}

func prune(ctx context.Context, history *service.History) {
	n, err := history.Prune(ctx, cfg.History.Keep)
	if err != nil {
		logger.Error.Printf("history prune failed: %v", err)
		return
	}
	if n > 0 {
		logger.Info.Printf("pruned %d old run(s)", n)
	}
}
