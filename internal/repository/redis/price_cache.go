// Package redis keeps recently used spot prices in Redis in front of the primary store.
package redis

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"go.uber.org/zap"
)

const keyPrefix = "feetracker:spot_price"

// PriceCache is a read-through, write-through cache over a PriceStore.
// Cache failures are logged and never fail a call.
type PriceCache struct {
	client  Client
	store   PriceStore
	metrics Metrics
	logger  *zap.Logger
	ttl     time.Duration
}

// NewPriceCache builds a PriceCache whose entries expire after ttl.
func NewPriceCache(client Client, store PriceStore, metrics Metrics, logger *zap.Logger, ttl time.Duration) *PriceCache {
	return &PriceCache{
		client:  client,
		store:   store,
		metrics: metrics,
		logger:  logger,
		ttl:     ttl,
	}
}

// SpotPricesByTimestamps serves cached seconds from Redis and the rest from the store.
func (c *PriceCache) SpotPricesByTimestamps(ctx context.Context, symbol string, timestamps []time.Time) (model.Prices, error) {
	seconds := uniqueSeconds(timestamps)
	prices := make(model.Prices, len(seconds))
	if len(seconds) == 0 {
		return prices, nil
	}

	missing := c.lookup(ctx, symbol, seconds, prices)
	c.metrics.ObserveLookup(len(seconds)-len(missing), len(missing))
	if len(missing) == 0 {
		return prices, nil
	}

	stored, err := c.store.SpotPricesByTimestamps(ctx, symbol, missing)
	if err != nil {
		return nil, err
	}
	for ts, price := range stored {
		c.set(ctx, symbol, ts, price)
	}
	prices.Merge(stored)
	return prices, nil
}

func (c *PriceCache) SpotPriceAt(ctx context.Context, symbol string, ts time.Time) (model.SpotPrice, bool, error) {
	return c.store.SpotPriceAt(ctx, symbol, ts)
}

func (c *PriceCache) LatestSpotPrice(ctx context.Context, symbol string) (model.SpotPrice, bool, error) {
	return c.store.LatestSpotPrice(ctx, symbol)
}

// InsertSpotPrices writes to the store and caches what it actually inserted.
func (c *PriceCache) InsertSpotPrices(ctx context.Context, prices []model.SpotPrice) ([]model.SpotPrice, error) {
	inserted, err := c.store.InsertSpotPrices(ctx, prices)
	if err != nil {
		return nil, err
	}
	for _, p := range inserted {
		c.set(ctx, p.Symbol, p.Timestamp.Unix(), p.Price)
	}
	return inserted, nil
}

// lookup fills dst from Redis and returns the seconds it could not serve.
func (c *PriceCache) lookup(ctx context.Context, symbol string, seconds []int64, dst model.Prices) []time.Time {
	start := time.Now()
	var err error
	defer func() {
		c.metrics.Observe("mget_spot_prices", err, start)
	}()

	keys := make([]string, 0, len(seconds))
	for _, sec := range seconds {
		keys = append(keys, cacheKey(symbol, sec))
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("price cache lookup failed, falling back to store", zap.Error(err))
		return toTimes(seconds)
	}

	missing := make([]time.Time, 0)
	for i, sec := range seconds {
		if i >= len(values) || values[i] == nil {
			missing = append(missing, time.Unix(sec, 0).UTC())
			continue
		}
		raw, ok := values[i].(string)
		if !ok {
			missing = append(missing, time.Unix(sec, 0).UTC())
			continue
		}
		price, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			c.logger.Warn("discarding malformed cached price", zap.String("key", keys[i]), zap.Error(parseErr))
			missing = append(missing, time.Unix(sec, 0).UTC())
			continue
		}
		dst[sec] = price
	}
	return missing
}

func (c *PriceCache) set(ctx context.Context, symbol string, second int64, price float64) {
	start := time.Now()
	err := c.client.Set(ctx, cacheKey(symbol, second), strconv.FormatFloat(price, 'f', -1, 64), c.ttl).Err()
	c.metrics.Observe("set_spot_price", err, start)
	if err != nil {
		c.logger.Warn("price cache write failed", zap.String("symbol", symbol), zap.Int64("second", second), zap.Error(err))
	}
}

func cacheKey(symbol string, second int64) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, symbol, second)
}

func uniqueSeconds(timestamps []time.Time) []int64 {
	seconds := make([]int64, 0, len(timestamps))
	for _, ts := range timestamps {
		seconds = append(seconds, ts.Unix())
	}
	slices.Sort(seconds)
	return slices.Compact(seconds)
}

func toTimes(seconds []int64) []time.Time {
	out := make([]time.Time, 0, len(seconds))
	for _, sec := range seconds {
		out = append(out, time.Unix(sec, 0).UTC())
	}
	return out
}
