package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/metrics"
	"github.com/forPelevin/storycut/internal/types"
)

var ErrQueueFull = errors.New("job queue is full")

// Runner composes one manifest; onState reports stage transitions.
type Runner func(ctx context.Context, id string, m types.Manifest, onState func(types.JobState)) (types.Result, error)

type queued struct {
	id string
	m  types.Manifest
}

// Worker runs queued jobs one at a time on its own goroutine, so HTTP callers
// never wait for a composition.
type Worker struct {
	store   *Store
	run     Runner
	queue   chan queued
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewWorker(store *Store, run Runner, queueSize int, log *zap.Logger, met *metrics.Metrics) *Worker {
	if queueSize < 1 {
		queueSize = 16
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{store: store, run: run, queue: make(chan queued, queueSize), log: log, metrics: met}
}

// Enqueue registers the job and schedules it without blocking.
func (w *Worker) Enqueue(id string, m types.Manifest) (Job, error) {
	j := w.store.Create(id, m)
	select {
	case w.queue <- queued{id: id, m: m}:
	default:
		w.store.Delete(id)
		return Job{}, ErrQueueFull
	}
	w.setDepth()
	return j, nil
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-w.queue:
			w.setDepth()
			w.process(ctx, q)
		}
	}
}

func (w *Worker) process(ctx context.Context, q queued) {
	log := w.log.With(zap.String("job_id", q.id))
	log.Info("job started", zap.Int("shots", len(q.m.Shots)))

	res, err := w.run(ctx, q.id, q.m, func(st types.JobState) {
		_ = w.store.SetState(q.id, st)
	})
	if err != nil {
		res = types.Result{State: types.StateFailed, Message: fmt.Sprintf("setup: %v", err)}
	}
	if err := w.store.Finish(q.id, res); err != nil {
		log.Error("finish job", zap.Error(err))
	}
	log.Info("job finished", zap.Bool("ok", res.OK), zap.String("message", res.Message))
}

func (w *Worker) setDepth() {
	if w.metrics != nil {
		w.metrics.SetQueueDepth(len(w.queue))
	}
}
