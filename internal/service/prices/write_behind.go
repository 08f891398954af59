package prices

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/pkg/batcher"
	"go.uber.org/zap"
)

// WriteBehind persists fetched prices asynchronously in batches.
type WriteBehind struct {
	batcher *batcher.Batcher[model.SpotPrice]
}

// NewWriteBehind builds a WriteBehind flushing to store by size or interval.
func NewWriteBehind(store SpotPriceInserter, logger *zap.Logger, flushSize int, flushInterval time.Duration) *WriteBehind {
	logger = logger.With(zap.String("component", "price_write_behind"))
	return &WriteBehind{
		batcher: batcher.New(logger, func(ctx context.Context, items []model.SpotPrice) error {
			inserted, err := store.InsertSpotPrices(ctx, items)
			if err != nil {
				return err
			}
			logger.Debug("prices persisted", zap.Int("queued", len(items)), zap.Int("inserted", len(inserted)))
			return nil
		}, batcher.Config{Size: flushSize, Interval: flushInterval}),
	}
}

// Start runs the background writer until Stop is called or ctx is canceled.
func (w *WriteBehind) Start(ctx context.Context) {
	w.batcher.Start(ctx)
}

// Stop flushes queued prices and waits for the writer to exit.
func (w *WriteBehind) Stop() {
	w.batcher.Stop()
}

// Write queues prices for persistence.
func (w *WriteBehind) Write(ctx context.Context, prices []model.SpotPrice) error {
	return w.batcher.AddAll(ctx, prices)
}
