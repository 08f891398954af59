// Package binance reads one-second klines from the Binance spot market API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/upstream"
	"go.uber.org/ratelimit"
)

const (
	// MaxWindow is the widest span a single klines request can cover at one-second resolution.
	MaxWindow = 1000 * time.Second

	klinesLimit    = 1000
	klinesInterval = "1s"
)

// Metrics records the outcome of each upstream call.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Client fetches klines over the Binance REST API.
type Client struct {
	baseURL    string
	httpClient upstream.Doer
	metrics    Metrics
	limiter    ratelimit.Limiter
}

// NewClient builds a Client. A non-positive rps disables client side pacing.
func NewClient(baseURL string, httpClient upstream.Doer, metrics Metrics, rps int) *Client {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		metrics:    metrics,
		limiter:    limiter,
	}
}

// SpotPrices returns open prices for every second in [start, end] the exchange has a kline for.
func (c *Client) SpotPrices(ctx context.Context, symbol string, start, end time.Time) (prices []model.SpotPrice, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("klines", err, started)
	}()

	start = start.UTC().Truncate(time.Second)
	end = end.UTC().Truncate(time.Second)
	if end.Before(start) {
		return nil, nil
	}
	if end.Sub(start) >= MaxWindow {
		err = fmt.Errorf("%w: window %s exceeds %s", model.ErrInvalidArgument, end.Sub(start)+time.Second, MaxWindow)
		return nil, err
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", klinesInterval)
	query.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	query.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	query.Set("limit", strconv.Itoa(klinesLimit))

	c.limiter.Take()

	var rows [][]json.RawMessage
	if err = upstream.GetJSON(ctx, c.httpClient, c.baseURL+"/api/v3/klines?"+query.Encode(), &rows); err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}

	prices = make([]model.SpotPrice, 0, len(rows))
	for _, row := range rows {
		var p model.SpotPrice
		p, err = parseKline(symbol, row)
		if err != nil {
			return nil, err
		}
		if p.Timestamp.Before(start) || p.Timestamp.After(end) {
			continue
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// parseKline reads the open time and open price of a kline array.
func parseKline(symbol string, row []json.RawMessage) (model.SpotPrice, error) {
	if len(row) < 2 {
		return model.SpotPrice{}, fmt.Errorf("%w: kline has %d fields", model.ErrUpstreamError, len(row))
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return model.SpotPrice{}, fmt.Errorf("%w: kline open time: %v", model.ErrUpstreamError, err)
	}

	var rawOpen string
	if err := json.Unmarshal(row[1], &rawOpen); err != nil {
		return model.SpotPrice{}, fmt.Errorf("%w: kline open price: %v", model.ErrUpstreamError, err)
	}
	open, err := strconv.ParseFloat(rawOpen, 64)
	if err != nil || open <= 0 {
		return model.SpotPrice{}, fmt.Errorf("%w: kline open price %q", model.ErrUpstreamError, rawOpen)
	}

	return model.SpotPrice{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(openTime).UTC().Truncate(time.Second),
		Price:     open,
	}, nil
}
