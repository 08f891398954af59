// Package transactions turns pool transfer events into priced transactions.
package transactions

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the number of transfers requested per chain-data page.
	DefaultPageSize = 100
	// DefaultResultWindow is the deepest page*pageSize the chain-data API serves for one block range.
	DefaultResultWindow = 10000
)

// Ingestor turns pool transfer events and single node lookups into priced transactions.
type Ingestor struct {
	chain        ChainData
	node         Node
	prices       PriceResolver
	metrics      Metrics
	logger       *zap.Logger
	pageSize     int
	resultWindow int
}

// NewIngestor builds an Ingestor. A non-positive pageSize means DefaultPageSize.
func NewIngestor(chain ChainData, node Node, prices PriceResolver, metrics Metrics, logger *zap.Logger, pageSize int) *Ingestor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Ingestor{
		chain:        chain,
		node:         node,
		prices:       prices,
		metrics:      metrics,
		logger:       logger,
		pageSize:     pageSize,
		resultWindow: DefaultResultWindow,
	}
}

// FetchTransferEvents pages through transfers of address in [fromBlock, toBlock] until an empty page.
// A range holding more transfers than the API result window is split in halves and fetched again.
func (i *Ingestor) FetchTransferEvents(ctx context.Context, address string, fromBlock, toBlock uint64) ([]model.TransferEvent, error) {
	events, err := i.fetchRange(ctx, address, fromBlock, toBlock)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("transfer events fetched",
		zap.String("address", address),
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("to_block", toBlock),
		zap.Int("events", len(events)),
	)
	return events, nil
}

func (i *Ingestor) fetchRange(ctx context.Context, address string, fromBlock, toBlock uint64) ([]model.TransferEvent, error) {
	maxPages := max(1, i.resultWindow/i.pageSize)

	var events []model.TransferEvent
	for page := 1; page <= maxPages; page++ {
		batch, err := i.chain.TokenTransfers(ctx, address, fromBlock, toBlock, page, i.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch transfers page %d of blocks %d-%d: %w", page, fromBlock, toBlock, err)
		}
		if len(batch) == 0 {
			return events, nil
		}
		events = append(events, batch...)
		if page == maxPages && len(batch) < i.pageSize {
			return events, nil
		}
	}

	if fromBlock >= toBlock {
		return nil, fmt.Errorf("%w: block %d has more than %d transfers", model.ErrUpstreamError, fromBlock, maxPages*i.pageSize)
	}
	mid := fromBlock + (toBlock-fromBlock)/2
	i.logger.Debug("transfer result window exhausted, splitting block range",
		zap.Uint64("from_block", fromBlock),
		zap.Uint64("mid_block", mid),
		zap.Uint64("to_block", toBlock),
	)

	lower, err := i.fetchRange(ctx, address, fromBlock, mid)
	if err != nil {
		return nil, err
	}
	upper, err := i.fetchRange(ctx, address, mid+1, toBlock)
	if err != nil {
		return nil, err
	}
	return append(upper, lower...), nil
}

// BuildTransactions prices events with one batched resolution. Events without a price are dropped and
// a hash seen more than once keeps its first event.
func (i *Ingestor) BuildTransactions(ctx context.Context, events []model.TransferEvent) ([]model.Transaction, error) {
	started := time.Now()

	unique := make([]model.TransferEvent, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		hash, ok := model.NormalizeTxHash(ev.TxHash)
		if !ok {
			i.logger.Warn("transfer event skipped: malformed hash", zap.String("tx_hash", ev.TxHash))
			continue
		}
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}
		ev.TxHash = hash
		unique = append(unique, ev)
	}
	duplicates := len(events) - len(unique)

	if len(unique) == 0 {
		i.metrics.ObserveBuild(0, duplicates, 0, started)
		return nil, nil
	}

	timestamps := make([]time.Time, 0, len(unique))
	for _, ev := range unique {
		timestamps = append(timestamps, ev.Timestamp)
	}
	prices, err := i.prices.Resolve(ctx, timestamps)
	if err != nil {
		return nil, fmt.Errorf("resolve prices: %w", err)
	}

	txs := make([]model.Transaction, 0, len(unique))
	dropped := 0
	for _, ev := range unique {
		price, ok := prices.At(ev.Timestamp)
		if !ok {
			dropped++
			i.logger.Warn("transaction dropped: no price for its second",
				zap.String("tx_hash", ev.TxHash),
				zap.Time("timestamp", ev.Timestamp),
			)
			continue
		}
		txs = append(txs, newTransaction(ev, price))
	}

	i.metrics.ObserveBuild(len(txs), duplicates, dropped, started)
	return txs, nil
}

// FetchSingle looks a transaction up on the node and prices it.
func (i *Ingestor) FetchSingle(ctx context.Context, txHash string) (tx model.Transaction, err error) {
	defer func() {
		i.metrics.ObserveFetchSingle(err)
	}()

	hash, ok := model.NormalizeTxHash(txHash)
	if !ok {
		err = fmt.Errorf("%w: transaction hash %q", model.ErrInvalidArgument, txHash)
		return model.Transaction{}, err
	}

	if err = i.node.CheckConnection(ctx); err != nil {
		return model.Transaction{}, err
	}

	ev, err := i.node.Transaction(ctx, hash)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("lookup transaction %s: %w", hash, err)
	}
	ev.TxHash = hash

	prices, err := i.prices.Resolve(ctx, []time.Time{ev.Timestamp})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("resolve price for %s: %w", hash, err)
	}
	price, ok := prices.At(ev.Timestamp)
	if !ok {
		err = fmt.Errorf("%w: %s at %s", model.ErrPriceUnavailable, hash, ev.Timestamp.Format(time.RFC3339))
		return model.Transaction{}, err
	}

	return newTransaction(ev, price), nil
}

func (i *Ingestor) CheckConnection(ctx context.Context) error {
	return i.node.CheckConnection(ctx)
}

func newTransaction(ev model.TransferEvent, price float64) model.Transaction {
	feeWei := new(big.Int).Mul(new(big.Int).SetUint64(ev.GasUsed), new(big.Int).SetUint64(ev.GasPriceWei))
	feeETH := decimal.NewFromBigInt(feeWei, -18)
	feeUSDT := feeETH.Mul(decimal.NewFromFloat(price))

	return model.Transaction{
		TxHash:       ev.TxHash,
		Timestamp:    ev.Timestamp.UTC().Truncate(time.Second),
		GasUsed:      ev.GasUsed,
		GasPriceWei:  ev.GasPriceWei,
		TxnFeeETH:    feeETH.InexactFloat64(),
		ETHUSDTPrice: price,
		TxnFeeUSDT:   feeUSDT.InexactFloat64(),
	}
}
