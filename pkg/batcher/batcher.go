// Package batcher groups queued items into batches written by a single background loop.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ErrStopped is returned by Add once the batcher has been stopped.
var ErrStopped = errors.New("batcher stopped")

// FlushFunc writes one batch. The slice is reused after it returns.
type FlushFunc[T any] func(ctx context.Context, items []T) error

// Config controls when a batch is flushed.
type Config struct {
	// Size flushes a batch as soon as it holds this many items. Values below 1 mean 1.
	Size int
	// Interval flushes a partial batch after this long.
	Interval time.Duration
	// RPS caps flushes per second. Non-positive disables pacing.
	RPS int
}

// Batcher flushes queued items by size or interval. What is queued when it stops is still flushed.
type Batcher[T any] struct {
	flush   FlushFunc[T]
	cfg     Config
	queue   chan T
	limiter ratelimit.Limiter
	logger  *zap.Logger

	wg       sync.WaitGroup
	stopped  chan struct{}
	stopOnce sync.Once
}

// New builds a Batcher that hands batches to flush.
func New[T any](logger *zap.Logger, flush FlushFunc[T], cfg Config) *Batcher[T] {
	if cfg.Size < 1 {
		cfg.Size = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		limiter = ratelimit.New(cfg.RPS)
	}
	return &Batcher[T]{
		flush:   flush,
		cfg:     cfg,
		queue:   make(chan T, cfg.Size*2),
		limiter: limiter,
		logger:  logger,
		stopped: make(chan struct{}),
	}
}

// Start runs the flush loop until Stop is called or ctx is done.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.loop(ctx)
	}()
}

// Stop flushes what is queued and waits for the loop to exit. Safe to call more than once.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopped)
	})
	b.wg.Wait()
}

// Add queues an item for batching, respecting context cancellation.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stopped:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopped:
		return ErrStopped
	case b.queue <- item:
		return nil
	}
}

// AddAll queues items in order and stops at the first one that cannot be queued.
func (b *Batcher[T]) AddAll(ctx context.Context, items []T) error {
	for _, item := range items {
		if err := b.Add(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (b *Batcher[T]) loop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	batch := make([]T, 0, b.cfg.Size)
	for {
		select {
		case <-ctx.Done():
			b.drain(context.WithoutCancel(ctx), batch)
			return
		case <-b.stopped:
			b.drain(context.WithoutCancel(ctx), batch)
			return
		case item := <-b.queue:
			batch = append(batch, item)
			if len(batch) >= b.cfg.Size {
				batch = b.write(ctx, batch)
			}
		case <-ticker.C:
			batch = b.write(ctx, batch)
		}
	}
}

// drain flushes batch and everything still in the queue.
func (b *Batcher[T]) drain(ctx context.Context, batch []T) {
	for {
		select {
		case item := <-b.queue:
			batch = append(batch, item)
			if len(batch) >= b.cfg.Size {
				batch = b.write(ctx, batch)
			}
		default:
			b.write(ctx, batch)
			return
		}
	}
}

// write flushes a non-empty batch and returns it emptied. Flush errors are logged and the batch is dropped.
func (b *Batcher[T]) write(ctx context.Context, batch []T) []T {
	if len(batch) == 0 {
		return batch
	}

	b.limiter.Take()
	if err := b.flush(ctx, batch); err != nil {
		b.logger.Error("batch not flushed", zap.Int("size", len(batch)), zap.Error(err))
	} else {
		b.logger.Debug("batch flushed", zap.Int("size", len(batch)))
	}
	return batch[:0]
}
