//go:build integration

package recorder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupNATS(t testing.TB) *nats.Conn {
	t.Helper()

	ctx := context.Background()

	natsCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start nats container: %v", err)
	}
	t.Cleanup(func() {
		if err := natsCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate nats container: %v", err)
		}
	})

	host, err := natsCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := natsCont.MappedPort(ctx, "4222")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	conn, err := nats.Connect(fmt.Sprintf("nats://%s:%d", host, port.Int()))
	if err != nil {
		t.Fatalf("Failed to connect to nats: %v", err)
	}
	t.Cleanup(conn.Close)

	return conn
}

func TestNATS_RecordAndRun(t *testing.T) {
	conn := setupNATS(t)

	stats := &fakeStats{}
	r := NewNATS(conn, stats, discardLogger(), NATSOptions{Subject: "test.access"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// The subscription is registered asynchronously by Run.
	require.Eventually(t, func() bool {
		return conn.NumSubscriptions() == 1
	}, 5*time.Second, 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(context.Background(), testEvent))
	}
	require.NoError(t, conn.Flush())

	assert.Eventually(t, func() bool {
		return len(stats.saved()) == 5
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, testEvent, stats.saved()[0])
}

func TestNATS_RunWaitsForDeliveredMessages(t *testing.T) {
	conn := setupNATS(t)

	stats := &fakeStats{delay: 50 * time.Millisecond}
	r := NewNATS(conn, stats, discardLogger(), NATSOptions{Subject: "test.drain"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return conn.NumSubscriptions() == 1
	}, 5*time.Second, 10*time.Millisecond)

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Record(context.Background(), testEvent))
	}
	require.NoError(t, conn.Flush())

	cancel()
	require.NoError(t, <-done)

	assert.Len(t, stats.saved(), 10)
	assert.Zero(t, conn.NumSubscriptions())
}
