package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	DefaultSubject    = "shortlink.access"
	DefaultQueueGroup = "shortlink-recorder"

	defaultDrainTimeout = 30 * time.Second
	drainPollInterval   = 50 * time.Millisecond
)

type accessMessage struct {
	Code      string `json:"code"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

type NATSOptions struct {
	Subject      string
	QueueGroup   string
	SaveTimeout  time.Duration
	// DrainTimeout bounds how long Run waits for delivered messages on shutdown.
	DrainTimeout time.Duration
}

type NATS struct {
	conn    *nats.Conn
	stats   StatsSaver
	logger  *slog.Logger
	subject string
	queue   string
	timeout time.Duration
	drain   time.Duration
}

func NewNATS(conn *nats.Conn, stats StatsSaver, logger *slog.Logger, opts NATSOptions) *NATS {
	if opts.Subject == "" {
		opts.Subject = DefaultSubject
	}
	if opts.QueueGroup == "" {
		opts.QueueGroup = DefaultQueueGroup
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = defaultDrainTimeout
	}

	return &NATS{
		conn:    conn,
		stats:   stats,
		logger:  logger,
		subject: opts.Subject,
		queue:   opts.QueueGroup,
		timeout: opts.SaveTimeout,
		drain:   opts.DrainTimeout,
	}
}

func (r *NATS) Record(_ context.Context, ev entity.AccessEvent) error {
	const op = "recorder.NATS.Record"

	data, err := json.Marshal(accessMessage{
		Code:      ev.Code,
		IPAddress: ev.IPAddress,
		UserAgent: ev.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to encode event: %w", op, err)
	}

	if err := r.conn.Publish(r.subject, data); err != nil {
		return fmt.Errorf("%s: failed to publish event: %w", op, err)
	}

	return nil
}

// Run consumes the subject as a member of the queue group until ctx is done.
// It then drains the subscription and returns once every delivered message
// has been handled, or fails with nats.ErrDrainTimeout.
func (r *NATS) Run(ctx context.Context) error {
	const op = "recorder.NATS.Run"

	sub, err := r.conn.QueueSubscribe(r.subject, r.queue, r.handle)
	if err != nil {
		return fmt.Errorf("%s: failed to subscribe: %w", op, err)
	}

	<-ctx.Done()

	if err := sub.Drain(); err != nil {
		return fmt.Errorf("%s: failed to drain subscription: %w", op, err)
	}

	return r.waitDrained(sub)
}

// waitDrained blocks until sub is removed, which nats.go does only after the
// last pending callback has returned.
func (r *NATS) waitDrained(sub *nats.Subscription) error {
	const op = "recorder.NATS.waitDrained"

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(r.drain)
	defer timeout.Stop()

	for sub.IsValid() {
		select {
		case <-ticker.C:
		case <-timeout.C:
			return fmt.Errorf("%s: %w", op, nats.ErrDrainTimeout)
		}
	}

	return nil
}

func (r *NATS) handle(msg *nats.Msg) {
	var m accessMessage
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		r.logger.Warn("malformed access event", slog.String("subject", msg.Subject), slog.Any("err", err))
		return
	}

	save(r.stats, r.logger, r.timeout, entity.AccessEvent{
		Code:      m.Code,
		IPAddress: m.IPAddress,
		UserAgent: m.UserAgent,
	})
}
