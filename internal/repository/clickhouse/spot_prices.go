package clickhouse

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/google/uuid"
)

// SpotPricesByTimestamps returns the stored prices for the given seconds. Seconds without a row are absent.
func (r *Repository) SpotPricesByTimestamps(ctx context.Context, symbol string, timestamps []time.Time) (model.Prices, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("spot_prices_by_timestamps", err, start)
	}()

	seconds := uniqueSeconds(timestamps)
	prices, err := r.lookupSpotPrices(ctx, symbol, seconds)
	if err != nil {
		return nil, err
	}
	return prices, nil
}

// SpotPriceAt returns the price stored for the second containing ts.
func (r *Repository) SpotPriceAt(ctx context.Context, symbol string, ts time.Time) (model.SpotPrice, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("spot_price_at", err, start)
	}()

	const query = `
SELECT id, symbol, timestamp, price
FROM spot_prices FINAL
WHERE symbol = ? AND timestamp = ?
LIMIT 1`

	price, found, err := r.querySpotPrice(ctx, query, symbol, ts.UTC().Truncate(time.Second))
	return price, found, err
}

// LatestSpotPrice returns the most recent stored price for a symbol.
func (r *Repository) LatestSpotPrice(ctx context.Context, symbol string) (model.SpotPrice, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("latest_spot_price", err, start)
	}()

	const query = `
SELECT id, symbol, timestamp, price
FROM spot_prices FINAL
WHERE symbol = ?
ORDER BY timestamp DESC
LIMIT 1`

	price, found, err := r.querySpotPrice(ctx, query, symbol)
	return price, found, err
}

// InsertSpotPrices stores prices whose (symbol, second) is not yet present and returns the rows it wrote.
func (r *Repository) InsertSpotPrices(ctx context.Context, prices []model.SpotPrice) (inserted []model.SpotPrice, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_spot_prices", err, start)
	}()

	if len(prices) == 0 {
		return nil, nil
	}

	type key struct {
		symbol string
		second int64
	}
	seen := make(map[key]struct{}, len(prices))
	bySymbol := make(map[string][]model.SpotPrice)
	symbols := make([]string, 0, 1)
	for _, p := range prices {
		p.Timestamp = p.Timestamp.UTC().Truncate(time.Second)
		k := key{symbol: p.Symbol, second: p.Timestamp.Unix()}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := bySymbol[p.Symbol]; !ok {
			symbols = append(symbols, p.Symbol)
		}
		bySymbol[p.Symbol] = append(bySymbol[p.Symbol], p)
	}

	fresh := make([]model.SpotPrice, 0, len(seen))
	for _, symbol := range symbols {
		candidates := bySymbol[symbol]
		seconds := make([]int64, 0, len(candidates))
		for _, p := range candidates {
			seconds = append(seconds, p.Timestamp.Unix())
		}

		existing, lookupErr := r.lookupSpotPrices(ctx, symbol, seconds)
		if lookupErr != nil {
			err = lookupErr
			return nil, err
		}
		for _, p := range candidates {
			if _, ok := existing[p.Timestamp.Unix()]; ok {
				continue
			}
			if p.ID == uuid.Nil {
				p.ID = uuid.New()
			}
			fresh = append(fresh, p)
		}
	}

	if len(fresh) == 0 {
		return nil, nil
	}

	const query = `
INSERT INTO spot_prices (
	id,
	symbol,
	timestamp,
	price
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare spot prices batch: %w", err)
	}

	for _, p := range fresh {
		if err = batch.Append(p.ID, p.Symbol, p.Timestamp, p.Price); err != nil {
			_ = batch.Abort()
			return nil, fmt.Errorf("append spot price: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return nil, fmt.Errorf("insert spot prices: %w", err)
	}
	return fresh, nil
}

func (r *Repository) lookupSpotPrices(ctx context.Context, symbol string, seconds []int64) (model.Prices, error) {
	const query = `
SELECT timestamp, price
FROM spot_prices FINAL
WHERE symbol = ? AND toUnixTimestamp(timestamp) IN (?)`

	prices := make(model.Prices, len(seconds))
	for _, part := range chunk(seconds, lookupChunkSize) {
		if err := r.scanSpotPrices(ctx, query, prices, symbol, part); err != nil {
			return nil, err
		}
	}
	return prices, nil
}

func (r *Repository) scanSpotPrices(ctx context.Context, query string, dst model.Prices, args ...any) (err error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query spot prices: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var (
			ts    time.Time
			price float64
		)
		if err = rows.Scan(&ts, &price); err != nil {
			return fmt.Errorf("scan spot price: %w", err)
		}
		dst.Set(ts, price)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate spot prices: %w", err)
	}
	return nil
}

func (r *Repository) querySpotPrice(ctx context.Context, query string, args ...any) (price model.SpotPrice, found bool, err error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return model.SpotPrice{}, false, fmt.Errorf("query spot price: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.SpotPrice{}, false, fmt.Errorf("iterate spot price: %w", err)
		}
		return model.SpotPrice{}, false, nil
	}

	if err = rows.Scan(&price.ID, &price.Symbol, &price.Timestamp, &price.Price); err != nil {
		return model.SpotPrice{}, false, fmt.Errorf("scan spot price: %w", err)
	}
	if err = rows.Err(); err != nil {
		return model.SpotPrice{}, false, fmt.Errorf("iterate spot price: %w", err)
	}
	price.Timestamp = price.Timestamp.UTC()
	return price, true, nil
}

func uniqueSeconds(timestamps []time.Time) []int64 {
	seconds := make([]int64, 0, len(timestamps))
	for _, ts := range timestamps {
		seconds = append(seconds, ts.Unix())
	}
	slices.Sort(seconds)
	return slices.Compact(seconds)
}
