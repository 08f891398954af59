// Package etherscan resolves blocks by time and pages ERC-20 transfers through the Etherscan API.
package etherscan

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

const noTransactionsMessage = "No transactions found"

// Metrics records the outcome of each upstream call.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Config holds the endpoint, credentials and pacing of a Client.
type Config struct {
	BaseURL string
	APIKey  string
	// ChainID is sent as chainid when non-zero, as the multichain endpoint requires.
	ChainID int64
	// RPS paces outgoing calls. Non-positive disables pacing.
	RPS int
}

// Client calls the Etherscan block and account modules.
type Client struct {
	baseURL    string
	apiKey     string
	chainID    int64
	httpClient upstream.Doer
	metrics    Metrics
	limiter    ratelimit.Limiter
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config, httpClient upstream.Doer, metrics Metrics) *Client {
	limiter := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		limiter = ratelimit.New(cfg.RPS)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		chainID:    cfg.ChainID,
		httpClient: httpClient,
		metrics:    metrics,
		limiter:    limiter,
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type tokenTransfer struct {
	Hash        string `json:"hash"`
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	GasUsed     string `json:"gasUsed"`
	GasPrice    string `json:"gasPrice"`
}

// BlockNumberByTimestamp returns the last block mined at or before ts.
func (c *Client) BlockNumberByTimestamp(ctx context.Context, ts time.Time) (block uint64, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("get_block_by_time", err, started)
	}()

	query := url.Values{}
	query.Set("module", "block")
	query.Set("action", "getblocknobytime")
	query.Set("timestamp", strconv.FormatInt(ts.Unix(), 10))
	query.Set("closest", "before")

	env, err := c.call(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("get block by time: %w", err)
	}

	var raw string
	if err = json.Unmarshal(env.Result, &raw); err != nil {
		err = fmt.Errorf("%w: block number result: %v", model.ErrUpstreamError, err)
		return 0, err
	}
	if env.Status != "1" {
		err = fmt.Errorf("%w: get block by time: %s: %s", model.ErrUpstreamError, env.Message, raw)
		return 0, err
	}

	block, err = strconv.ParseUint(raw, 10, 64)
	if err != nil {
		err = fmt.Errorf("%w: block number %q", model.ErrUpstreamError, raw)
		return 0, err
	}
	return block, nil
}

// TokenTransfers returns one page of ERC-20 transfers touching address within [startBlock, endBlock], newest first.
// An empty page means there is nothing more to read.
func (c *Client) TokenTransfers(ctx context.Context, address string, startBlock, endBlock uint64, page, offset int) (events []model.TransferEvent, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("token_transfers", err, started)
	}()

	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "tokentx")
	query.Set("address", address)
	query.Set("startblock", strconv.FormatUint(startBlock, 10))
	query.Set("endblock", strconv.FormatUint(endBlock, 10))
	query.Set("page", strconv.Itoa(page))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("sort", "desc")

	env, err := c.call(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get token transfers: %w", err)
	}

	if env.Status != "1" {
		if env.Message == noTransactionsMessage {
			return nil, nil
		}
		err = fmt.Errorf("%w: token transfers: %s: %s", model.ErrUpstreamError, env.Message, env.Result)
		return nil, err
	}

	var transfers []tokenTransfer
	if err = json.Unmarshal(env.Result, &transfers); err != nil {
		err = fmt.Errorf("%w: token transfers result: %v", model.ErrUpstreamError, err)
		return nil, err
	}

	events = make([]model.TransferEvent, 0, len(transfers))
	for _, transfer := range transfers {
		var event model.TransferEvent
		event, err = transfer.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (c *Client) call(ctx context.Context, query url.Values) (envelope, error) {
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}
	if c.chainID != 0 {
		query.Set("chainid", strconv.FormatInt(c.chainID, 10))
	}

	c.limiter.Take()

	var env envelope
	if err := upstream.GetJSON(ctx, c.httpClient, c.baseURL+"?"+query.Encode(), &env); err != nil {
		return envelope{}, err
	}
	return env, nil
}

func (t tokenTransfer) toEvent() (model.TransferEvent, error) {
	hash, ok := model.NormalizeTxHash(t.Hash)
	if !ok {
		return model.TransferEvent{}, fmt.Errorf("%w: transfer hash %q", model.ErrUpstreamError, t.Hash)
	}
	block, err := strconv.ParseUint(t.BlockNumber, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("%w: transfer %s block number %q", model.ErrUpstreamError, hash, t.BlockNumber)
	}
	unix, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("%w: transfer %s timestamp %q", model.ErrUpstreamError, hash, t.TimeStamp)
	}
	gasUsed, err := strconv.ParseUint(t.GasUsed, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("%w: transfer %s gas used %q", model.ErrUpstreamError, hash, t.GasUsed)
	}
	gasPrice, err := strconv.ParseUint(t.GasPrice, 10, 64)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("%w: transfer %s gas price %q", model.ErrUpstreamError, hash, t.GasPrice)
	}

	return model.TransferEvent{
		TxHash:      hash,
		BlockNumber: block,
		Timestamp:   time.Unix(unix, 0).UTC(),
		GasUsed:     gasUsed,
		GasPriceWei: gasPrice,
	}, nil
}
