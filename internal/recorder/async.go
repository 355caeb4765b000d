package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 1024
)

type AsyncOptions struct {
	Workers     int
	QueueSize   int
	SaveTimeout time.Duration
}

// Async buffers events in a bounded queue. Record never waits on storage.
// Run must be called once; after it returns Record fails with ErrRecorderClosed.
type Async struct {
	mu      sync.RWMutex
	closed  bool
	stats   StatsSaver
	logger  *slog.Logger
	queue   chan entity.AccessEvent
	workers int
	timeout time.Duration
}

func NewAsync(stats StatsSaver, logger *slog.Logger, opts AsyncOptions) *Async {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}

	return &Async{
		stats:   stats,
		logger:  logger,
		queue:   make(chan entity.AccessEvent, opts.QueueSize),
		workers: opts.Workers,
		timeout: opts.SaveTimeout,
	}
}

func (r *Async) Record(_ context.Context, ev entity.AccessEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("access event after shutdown", slog.String("code", ev.Code))
		return ErrRecorderClosed
	}

	select {
	case r.queue <- ev:
		return nil
	default:
		r.logger.Warn("access event dropped", slog.String("code", ev.Code))
		return ErrQueueFull
	}
}

// Run starts the workers and blocks until ctx is done and every accepted
// event is persisted.
func (r *Async) Run(ctx context.Context) error {
	var g errgroup.Group

	for i := 0; i < r.workers; i++ {
		g.Go(func() error {
			for ev := range r.queue {
				save(r.stats, r.logger, r.timeout, ev)
			}
			return nil
		})
	}

	<-ctx.Done()

	r.mu.Lock()
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	return g.Wait()
}
