package usecase

import (
	"context"

	"PolyWatch/internal/domain/models"
	drepo "PolyWatch/internal/domain/repository"
	mid "PolyWatch/internal/middleware"
)

// TradeCollector collects trades from the venue stream and feeds them through
// the ingest pipeline.
type TradeCollector struct {
	stream  drepo.TradeStream
	proc    *TradeProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewTradeCollector creates a new TradeCollector instance.
func NewTradeCollector(stream drepo.TradeStream, proc *TradeProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *TradeCollector {
	return &TradeCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the venue stream is connected.
func (c *TradeCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TradeCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	trCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, trCh, errCh)
	return nil
}

func (c *TradeCollector) consume(ctx context.Context, trCh <-chan *models.TradeRecord, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				// the stream closes both channels after a read error; a nil
				// channel blocks forever instead of spinning on closed receives
				errCh = nil
				if trCh == nil {
					return
				}
				continue
			}
			if err == nil {
				continue
			}
			c.metrics.RecordError("stream")
			if trCh, errCh, ok = c.resubscribe(ctx); !ok {
				return
			}
		case t, ok := <-trCh:
			if !ok {
				trCh = nil
				if errCh == nil {
					return
				}
				continue
			}
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.proc.Process(ctx, t)
			}
		}
	}
}

// resubscribe reconnects the stream and starts a fresh Read. The old channel
// pair is abandoned; the stream already closed it on error.
func (c *TradeCollector) resubscribe(ctx context.Context) (<-chan *models.TradeRecord, <-chan error, bool) {
	for {
		if ctx.Err() != nil {
			return nil, nil, false
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream_reconnect")
			continue
		}
		trCh, errCh := c.stream.Read(ctx)
		return trCh, errCh, true
	}
}

// Processor returns the underlying TradeProcessor for lifecycle management.
func (c *TradeCollector) Processor() *TradeProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *TradeCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
