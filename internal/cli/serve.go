package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/config"
	"github.com/forPelevin/storycut/internal/metrics"
	"github.com/forPelevin/storycut/internal/pipeline"
	"github.com/forPelevin/storycut/internal/server"
	"github.com/forPelevin/storycut/internal/types"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept composition jobs over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.String("addr", "127.0.0.1:8080", "Listen address")
	f.String("output-root", "", "Directory job outputs must live under (default: working directory)")
	f.String("work-dir", "", "Parent directory for job workspaces")
	f.Int("parallel", 1, "Shots synced concurrently")
	f.Int("queue-size", 16, "Jobs waiting before new ones are rejected")
	f.Bool("keep-workspace", false, "Keep intermediate files")
	f.Duration("job-timeout", 3*time.Hour, "Abort a job after this long")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, log, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	queueSize, _ := cmd.Flags().GetInt("queue-size")

	met := metrics.New()
	store := server.NewStore()
	worker := server.NewWorker(store, jobRunner(s, log, met), queueSize, log, met)
	root, err := outputRoot(s.OutputRoot)
	if err != nil {
		return err
	}
	h := server.NewHandler(worker, store, s.Composition(), root, log)
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           server.Router(h, log, met),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("server starting",
		zap.String("addr", s.Addr),
		zap.String("output_root", root),
		zap.Int("queue_size", queueSize))

	select {
	case err := <-errCh:
		stop()
		<-workerDone
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	// The running job sees the cancelled context and kills its ffmpeg.
	<-workerDone
	log.Info("server stopped")
	return nil
}

func outputRoot(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("output root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("output root: %w", err)
	}
	return abs, nil
}

func jobRunner(s config.Settings, log *zap.Logger, met *metrics.Metrics) server.Runner {
	return func(ctx context.Context, id string, m types.Manifest, onState func(types.JobState)) (types.Result, error) {
		cfg := pipelineConfig(s, m, log, met)
		cfg.JobID = id
		cfg.OnState = onState
		if err := cfg.Validate(); err != nil {
			return types.Result{}, err
		}
		ctx, cancel := context.WithTimeout(ctx, s.JobTimeout)
		defer cancel()
		return pipeline.Run(ctx, cfg)
	}
}
