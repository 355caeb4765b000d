package recorder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type fakeStats struct {
	mu     sync.Mutex
	delay  time.Duration
	err    error
	events []entity.AccessEvent
}

func (f *fakeStats) SaveStats(_ context.Context, code, ip, userAgent string) error {
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, entity.AccessEvent{Code: code, IPAddress: ip, UserAgent: userAgent})
	return nil
}

func (f *fakeStats) saved() []entity.AccessEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]entity.AccessEvent(nil), f.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testEvent = entity.AccessEvent{Code: "abc123", IPAddress: "203.0.113.7", UserAgent: "curl/8.0"}

func TestSync_Record(t *testing.T) {
	t.Run("error is returned", func(t *testing.T) {
		stats := &fakeStats{err: entity.ErrLinkNotFound}
		r := NewSync(stats)

		err := r.Record(context.Background(), testEvent)

		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
	})

	t.Run("success", func(t *testing.T) {
		stats := &fakeStats{}
		r := NewSync(stats)

		err := r.Record(context.Background(), testEvent)

		assert.NoError(t, err)
		assert.Equal(t, []entity.AccessEvent{testEvent}, stats.saved())
	})
}

func TestSync_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, NewSync(&fakeStats{}).Run(ctx))
}

func TestAsync_Record(t *testing.T) {
	t.Run("queue full", func(t *testing.T) {
		r := NewAsync(&fakeStats{}, discardLogger(), AsyncOptions{QueueSize: 1})

		assert.NoError(t, r.Record(context.Background(), testEvent))
		assert.ErrorIs(t, r.Record(context.Background(), testEvent), ErrQueueFull)
	})

	t.Run("persisted by workers", func(t *testing.T) {
		stats := &fakeStats{}
		r := NewAsync(stats, discardLogger(), AsyncOptions{Workers: 2, QueueSize: 16})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx) }()

		for i := 0; i < 10; i++ {
			require.NoError(t, r.Record(context.Background(), testEvent))
		}

		assert.Eventually(t, func() bool {
			return len(stats.saved()) == 10
		}, time.Second, 10*time.Millisecond)

		cancel()
		assert.NoError(t, <-done)
	})
}

func TestAsync_RunDrainsOnShutdown(t *testing.T) {
	stats := &fakeStats{}
	r := NewAsync(stats, discardLogger(), AsyncOptions{Workers: 3, QueueSize: 32})

	for i := 0; i < 20; i++ {
		require.NoError(t, r.Record(context.Background(), testEvent))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, r.Run(ctx))
	assert.Len(t, stats.saved(), 20)
}

func TestAsync_RecordAfterShutdown(t *testing.T) {
	stats := &fakeStats{}
	r := NewAsync(stats, discardLogger(), AsyncOptions{QueueSize: 4})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))

	err := r.Record(context.Background(), testEvent)

	assert.ErrorIs(t, err, ErrRecorderClosed)
	assert.Empty(t, stats.saved())
}

func TestAsync_ConcurrentRecordDuringShutdown(t *testing.T) {
	stats := &fakeStats{}
	r := NewAsync(stats, discardLogger(), AsyncOptions{Workers: 2, QueueSize: 1024})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if r.Record(context.Background(), testEvent) == nil {
					accepted.Add(1)
				}
			}
		}()
	}

	cancel()
	require.NoError(t, <-done)
	wg.Wait()

	assert.Len(t, stats.saved(), int(accepted.Load()))
}

func TestAsync_SaveFailureDoesNotStopWorkers(t *testing.T) {
	stats := &fakeStats{err: errors.New("unknown error")}
	r := NewAsync(stats, discardLogger(), AsyncOptions{Workers: 1, QueueSize: 4})

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Record(context.Background(), testEvent))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, r.Run(ctx))
	assert.Empty(t, stats.saved())
	assert.Empty(t, r.queue)
}

func TestNATS_handle(t *testing.T) {
	t.Run("malformed message", func(t *testing.T) {
		stats := &fakeStats{}
		r := NewNATS(nil, stats, discardLogger(), NATSOptions{})

		r.handle(&nats.Msg{Subject: DefaultSubject, Data: []byte("not json")})

		assert.Empty(t, stats.saved())
	})

	t.Run("success", func(t *testing.T) {
		stats := &fakeStats{}
		r := NewNATS(nil, stats, discardLogger(), NATSOptions{})

		r.handle(&nats.Msg{
			Subject: DefaultSubject,
			Data:    []byte(`{"code":"abc123","ip_address":"203.0.113.7","user_agent":"curl/8.0"}`),
		})

		assert.Equal(t, []entity.AccessEvent{testEvent}, stats.saved())
	})
}

func TestNewNATS_Defaults(t *testing.T) {
	r := NewNATS(nil, &fakeStats{}, discardLogger(), NATSOptions{})

	assert.Equal(t, DefaultSubject, r.subject)
	assert.Equal(t, DefaultQueueGroup, r.queue)
	assert.Equal(t, defaultSaveTimeout, r.timeout)
	assert.Equal(t, defaultDrainTimeout, r.drain)
}
