// Package prices resolves per-second spot prices from storage and the exchange.
package prices

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/pkg/workerpool"
	"go.uber.org/zap"
)

// Config selects the traded symbol and bounds upstream fetches.
type Config struct {
	Symbol string
	// Window is the widest span one upstream request may cover.
	Window  time.Duration
	Workers int
}

// Resolver serves spot prices from storage and fills gaps from the exchange.
type Resolver struct {
	store   PriceStore
	source  PriceSource
	writer  Writer
	metrics Metrics
	logger  *zap.Logger
	cfg     Config
}

// NewResolver builds a Resolver. Fetched prices are handed to writer for persistence.
func NewResolver(store PriceStore, source PriceSource, writer Writer, metrics Metrics, logger *zap.Logger, cfg Config) *Resolver {
	return &Resolver{
		store:   store,
		source:  source,
		writer:  writer,
		metrics: metrics,
		logger:  logger.With(zap.String("symbol", cfg.Symbol)),
		cfg:     cfg,
	}
}

// Resolve returns the price of every requested second it can find, first in storage and then upstream.
// Seconds without a sample are absent from the result. Only context cancellation is reported as an error.
func (r *Resolver) Resolve(ctx context.Context, timestamps []time.Time) (resolved model.Prices, err error) {
	started := time.Now()
	seconds := uniqueSeconds(timestamps)
	var stored, fetched int
	defer func() {
		r.metrics.ObserveResolve(err, len(seconds), stored, fetched, started)
	}()

	resolved = make(model.Prices, len(seconds))
	if len(seconds) == 0 {
		return resolved, nil
	}

	found, err := r.store.SpotPricesByTimestamps(ctx, r.cfg.Symbol, seconds)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("price store lookup failed, falling back to upstream", zap.Error(err))
		found = model.Prices{}
	}
	resolved.Merge(found)
	stored = len(found)

	missing := make(map[int64]struct{}, len(seconds))
	for _, ts := range seconds {
		if _, ok := resolved.At(ts); !ok {
			missing[ts.Unix()] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	lo, hi := bounds(missing)
	windows := split(time.Unix(lo, 0), time.Unix(hi, 0), r.cfg.Window)
	results := workerpool.Collect(ctx, r.cfg.Workers, windows, r.fetch)

	var persist []model.SpotPrice
	for _, res := range results {
		if res.Err != nil {
			r.logger.Warn("price chunk not fetched",
				zap.Time("start", res.Item.Start),
				zap.Time("end", res.Item.End),
				zap.Error(res.Err),
			)
			continue
		}
		for _, p := range res.Value {
			sec := p.Timestamp.Unix()
			if _, ok := missing[sec]; !ok {
				continue
			}
			if _, dup := resolved[sec]; dup {
				continue
			}
			resolved[sec] = p.Price
			persist = append(persist, p)
		}
	}
	fetched = len(persist)

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if len(persist) > 0 {
		if werr := r.writer.Write(ctx, persist); werr != nil {
			r.logger.Warn("fetched prices not queued for storage", zap.Int("count", len(persist)), zap.Error(werr))
		}
	}

	return resolved, nil
}

// Backfill stores every upstream sample in [start, end] and returns how many rows were new.
// Any failed chunk aborts the backfill.
func (r *Resolver) Backfill(ctx context.Context, start, end time.Time) (int, error) {
	windows := split(start, end, r.cfg.Window)
	if len(windows) == 0 {
		return 0, nil
	}

	var inserted atomic.Int64
	err := workerpool.Process(ctx, r.cfg.Workers, windows, func(ctx context.Context, w Window) error {
		samples, err := r.fetch(ctx, w)
		if err != nil {
			return err
		}
		rows, err := r.store.InsertSpotPrices(ctx, samples)
		if err != nil {
			return err
		}
		inserted.Add(int64(len(rows)))
		return nil
	}, func() {
		r.logger.Warn("price backfill canceled", zap.Time("start", start), zap.Time("end", end))
	})
	if err != nil {
		return int(inserted.Load()), err
	}

	r.logger.Debug("price backfill done",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("chunks", len(windows)),
		zap.Int64("inserted", inserted.Load()),
	)
	return int(inserted.Load()), nil
}

func (r *Resolver) fetch(ctx context.Context, w Window) ([]model.SpotPrice, error) {
	samples, err := r.source.SpotPrices(ctx, r.cfg.Symbol, w.Start, w.End)
	r.metrics.ObserveChunk(err, len(samples))
	return samples, err
}

func uniqueSeconds(timestamps []time.Time) []time.Time {
	seen := make(map[int64]struct{}, len(timestamps))
	out := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		sec := ts.Unix()
		if _, ok := seen[sec]; ok {
			continue
		}
		seen[sec] = struct{}{}
		out = append(out, time.Unix(sec, 0).UTC())
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

func bounds(set map[int64]struct{}) (lo, hi int64) {
	first := true
	for sec := range set {
		if first || sec < lo {
			lo = sec
		}
		if first || sec > hi {
			hi = sec
		}
		first = false
	}
	return lo, hi
}
