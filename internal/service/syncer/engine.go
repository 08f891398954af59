// Package syncer advances the price and transaction streams from their watermarks to now.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"go.uber.org/zap"
)

// DefaultBootstrapLookback is how far back a stream without a watermark starts.
const DefaultBootstrapLookback = 5 * time.Minute

// Config names the tracked pool and the bootstrap lookback.
type Config struct {
	PoolAddress       string
	BootstrapLookback time.Duration
}

// Engine runs one sync cycle over the price and transaction streams.
type Engine struct {
	watermarks WatermarkStore
	txStore    TransactionStore
	prices     PriceBackfiller
	blocks     BlockLocator
	ingestor   TransactionIngestor
	metrics    Metrics
	logger     *zap.Logger
	cfg        Config
	now        func() time.Time
}

// NewEngine builds an Engine.
func NewEngine(
	watermarks WatermarkStore,
	txStore TransactionStore,
	prices PriceBackfiller,
	blocks BlockLocator,
	ingestor TransactionIngestor,
	metrics Metrics,
	logger *zap.Logger,
	cfg Config,
) (*Engine, error) {
	if metrics == nil {
		return nil, errors.New("sync engine metrics is required")
	}
	if cfg.PoolAddress == "" {
		return nil, errors.New("pool address is required")
	}
	if cfg.BootstrapLookback <= 0 {
		cfg.BootstrapLookback = DefaultBootstrapLookback
	}
	return &Engine{
		watermarks: watermarks,
		txStore:    txStore,
		prices:     prices,
		blocks:     blocks,
		ingestor:   ingestor,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// RunCycle syncs prices and then transactions. A failing stream does not stop the other one.
func (e *Engine) RunCycle(ctx context.Context) error {
	pricesErr := e.SyncPrices(ctx)
	if pricesErr != nil {
		e.logger.Error("price sync failed", zap.Error(pricesErr))
	}

	txErr := e.SyncTransactions(ctx)
	if txErr != nil {
		e.logger.Error("transaction sync failed", zap.Error(txErr))
	}

	return errors.Join(pricesErr, txErr)
}

// SyncPrices stores every price sample between the price watermark and now, then advances the watermark.
func (e *Engine) SyncPrices(ctx context.Context) (err error) {
	started := time.Now()
	inserted := 0
	defer func() {
		e.metrics.ObserveCycle(model.StreamPrices, err, inserted, started)
	}()

	start, end, ok, err := e.window(ctx, model.StreamPrices)
	if err != nil || !ok {
		return err
	}

	inserted, err = e.prices.Backfill(ctx, start, end)
	if err != nil {
		return fmt.Errorf("backfill prices: %w", err)
	}

	if err = e.advance(ctx, model.StreamPrices, end); err != nil {
		return err
	}

	e.logger.Info("prices synced",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("inserted", inserted),
	)
	return nil
}

// SyncTransactions stores pool transactions between the transaction watermark and now, then advances
// the watermark.
func (e *Engine) SyncTransactions(ctx context.Context) (err error) {
	started := time.Now()
	inserted := 0
	defer func() {
		e.metrics.ObserveCycle(model.StreamTransactions, err, inserted, started)
	}()

	start, end, ok, err := e.window(ctx, model.StreamTransactions)
	if err != nil || !ok {
		return err
	}

	fromBlock, err := e.blocks.BlockNumberByTimestamp(ctx, start)
	if err != nil {
		return fmt.Errorf("locate start block: %w", err)
	}
	toBlock, err := e.blocks.BlockNumberByTimestamp(ctx, end)
	if err != nil {
		return fmt.Errorf("locate end block: %w", err)
	}

	events, err := e.ingestor.FetchTransferEvents(ctx, e.cfg.PoolAddress, fromBlock, toBlock)
	if err != nil {
		return err
	}

	txs, err := e.ingestor.BuildTransactions(ctx, events)
	if err != nil {
		return fmt.Errorf("build transactions: %w", err)
	}

	if len(txs) > 0 {
		var rows []model.Transaction
		rows, err = e.txStore.InsertTransactions(ctx, txs)
		if err != nil {
			return fmt.Errorf("insert transactions: %w", err)
		}
		inserted = len(rows)
	}

	if err = e.advance(ctx, model.StreamTransactions, end); err != nil {
		return err
	}

	e.logger.Info("transactions synced",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("to_block", toBlock),
		zap.Int("events", len(events)),
		zap.Int("inserted", inserted),
	)
	return nil
}

// window returns the inclusive range a stream still has to cover. ok is false when it is empty.
func (e *Engine) window(ctx context.Context, stream model.Stream) (start, end time.Time, ok bool, err error) {
	watermark, found, err := e.watermarks.Watermark(ctx, stream)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("read %s watermark: %w", stream, err)
	}

	end = e.now().UTC().Truncate(time.Second)
	if found {
		start = watermark.UTC().Truncate(time.Second).Add(time.Second)
	} else {
		start = end.Add(-e.cfg.BootstrapLookback)
		e.logger.Info("no watermark, bootstrapping stream",
			zap.String("stream", string(stream)),
			zap.Time("start", start),
		)
	}

	if start.After(end) {
		e.logger.Debug("nothing to sync", zap.String("stream", string(stream)), zap.Time("watermark", watermark))
		return start, end, false, nil
	}
	return start, end, true, nil
}

func (e *Engine) advance(ctx context.Context, stream model.Stream, ts time.Time) error {
	if err := e.watermarks.AdvanceWatermark(ctx, stream, ts); err != nil {
		return fmt.Errorf("advance %s watermark: %w", stream, err)
	}
	e.metrics.ObserveWatermark(stream, ts)
	return nil
}
