// Package recorder turns redirect events into persisted access records.
//
// Three strategies are provided. Sync persists inline and reports failures to
// the caller. Async queues events in memory for a pool of workers. NATS
// publishes events to a subject and persists them from a queue subscription,
// so several instances share the work.
package recorder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const defaultSaveTimeout = 5 * time.Second

var (
	// ErrQueueFull is returned by Async.Record when the event was dropped.
	ErrQueueFull = errors.New("recorder queue is full")
	// ErrRecorderClosed is returned by Async.Record once Run has stopped.
	ErrRecorderClosed = errors.New("recorder is closed")
)

// StatsSaver persists one access of a link.
type StatsSaver interface {
	SaveStats(ctx context.Context, code, ip, userAgent string) error
}

// save persists ev outside of any request, bounded by timeout.
func save(stats StatsSaver, logger *slog.Logger, timeout time.Duration, ev entity.AccessEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := stats.SaveStats(ctx, ev.Code, ev.IPAddress, ev.UserAgent)
	switch {
	case err == nil:
	case errors.Is(err, entity.ErrLinkNotFound):
		logger.Info("link removed before access was recorded", slog.String("code", ev.Code))
	default:
		logger.Error("failed to record access", slog.String("code", ev.Code), slog.Any("err", err))
	}
}

type Sync struct {
	stats StatsSaver
}

func NewSync(stats StatsSaver) *Sync {
	return &Sync{stats: stats}
}

func (r *Sync) Record(ctx context.Context, ev entity.AccessEvent) error {
	return r.stats.SaveStats(ctx, ev.Code, ev.IPAddress, ev.UserAgent)
}

// Run blocks until ctx is done. Sync has no background work.
func (r *Sync) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
