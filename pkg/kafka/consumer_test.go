package kafka

import (
	"context"
	"testing"
	"time"
)

type noopHandler struct{ topic string }

func (h *noopHandler) Topic() string                        { return h.topic }
func (h *noopHandler) Handle(context.Context, []byte) error { return nil }

func TestNewConsumerRequiresBrokers(t *testing.T) {
	if _, err := NewConsumer(); err == nil {
		t.Fatal("expected error without brokers")
	}
}

// Stop must let the reader goroutines finish before closing the worker queue;
// closing while a reader is still enqueueing would panic.
func TestConsumerStopShutsDownCleanly(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"127.0.0.1:1"}),
		WithConsumerGroupID("shutdown-test"),
		WithConsumerWorkers(2),
	)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	c.RegisterHandler(&noopHandler{topic: "trades"})

	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestConsumerStopIdempotent(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"127.0.0.1:1"}))
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}

	ctx := context.Background()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
