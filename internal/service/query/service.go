// Package query serves price and transaction reads, fetching unknown transactions on demand.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/pkg/workerpool"
	"go.uber.org/zap"
)

const defaultFetchWorkers = 4

// Service answers transaction and price queries over the stores.
type Service struct {
	txStore      TransactionStore
	priceStore   PriceStore
	fetcher      TransactionFetcher
	metrics      Metrics
	logger       *zap.Logger
	fetchWorkers int
}

// NewService builds a Service. A non-positive fetchWorkers means the default of 4.
func NewService(txStore TransactionStore, priceStore PriceStore, fetcher TransactionFetcher, metrics Metrics, logger *zap.Logger, fetchWorkers int) *Service {
	if fetchWorkers <= 0 {
		fetchWorkers = defaultFetchWorkers
	}
	return &Service{
		txStore:      txStore,
		priceStore:   priceStore,
		fetcher:      fetcher,
		metrics:      metrics,
		logger:       logger,
		fetchWorkers: fetchWorkers,
	}
}

// ListTransactions returns one page of transactions. Requested hashes missing from storage are looked up
// on the node and stored before the page is read. The page may be empty when filters or paging exclude
// the requested hashes; ErrNotFound means none of them exists at all.
func (s *Service) ListTransactions(ctx context.Context, filter model.TransactionFilter, skip, limit int) (model.TransactionPage, error) {
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return model.TransactionPage{}, fmt.Errorf("%w: end_time before start_time", model.ErrInvalidArgument)
	}
	if len(filter.TxHashes) == 0 {
		return s.txStore.TransactionsPage(ctx, filter, skip, limit)
	}

	hashes, err := normalizeHashes(filter.TxHashes)
	if err != nil {
		return model.TransactionPage{}, err
	}
	filter.TxHashes = hashes

	present, err := s.fillMissing(ctx, hashes)
	if err != nil {
		return model.TransactionPage{}, err
	}
	if present == 0 {
		return model.TransactionPage{}, fmt.Errorf("%w: none of the requested transactions", model.ErrNotFound)
	}

	return s.txStore.TransactionsPage(ctx, filter, skip, limit)
}

// Price returns the latest stored price of symbol, or the price of the second containing at.
func (s *Service) Price(ctx context.Context, symbol string, at *time.Time) (model.SpotPrice, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return model.SpotPrice{}, fmt.Errorf("%w: empty symbol", model.ErrInvalidArgument)
	}

	var (
		price model.SpotPrice
		found bool
		err   error
	)
	if at == nil {
		price, found, err = s.priceStore.LatestSpotPrice(ctx, symbol)
	} else {
		price, found, err = s.priceStore.SpotPriceAt(ctx, symbol, at.UTC().Truncate(time.Second))
	}
	if err != nil {
		return model.SpotPrice{}, err
	}
	if !found {
		return model.SpotPrice{}, fmt.Errorf("%w: price of %s", model.ErrNotFound, symbol)
	}
	return price, nil
}

// fillMissing fetches and stores the hashes absent from storage. It reports how many of hashes are
// stored or were fetched.
func (s *Service) fillMissing(ctx context.Context, hashes []string) (present int, err error) {
	known, err := s.txStore.TransactionsPage(ctx, model.TransactionFilter{TxHashes: hashes}, 0, len(hashes))
	if err != nil {
		return 0, err
	}
	stored := make(map[string]struct{}, len(known.Data))
	for _, tx := range known.Data {
		stored[tx.TxHash] = struct{}{}
	}
	missing := make([]string, 0, len(hashes))
	for _, h := range hashes {
		if _, ok := stored[h]; !ok {
			missing = append(missing, h)
		}
	}
	present = len(hashes) - len(missing)
	if len(missing) == 0 {
		return present, nil
	}

	started := time.Now()
	fetched, failed := 0, 0
	defer func() {
		s.metrics.ObserveOnDemand(err, fetched, failed, started)
	}()

	if err = s.fetcher.CheckConnection(ctx); err != nil {
		return 0, err
	}

	results := workerpool.Collect(ctx, s.fetchWorkers, missing, s.fetcher.FetchSingle)
	txs := make([]model.Transaction, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			failed++
			s.logger.Warn("on-demand transaction fetch failed", zap.String("tx_hash", res.Item), zap.Error(res.Err))
			continue
		}
		txs = append(txs, res.Value)
	}
	fetched = len(txs)

	if err = ctx.Err(); err != nil {
		return 0, err
	}
	if len(txs) == 0 {
		return present, nil
	}

	inserted, err := s.txStore.InsertTransactions(ctx, txs)
	if err != nil {
		return 0, fmt.Errorf("store fetched transactions: %w", err)
	}
	s.logger.Info("on-demand transactions stored",
		zap.Int("requested", len(hashes)),
		zap.Int("missing", len(missing)),
		zap.Int("inserted", len(inserted)),
	)
	return present + len(txs), nil
}

func normalizeHashes(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	hashes := make([]string, 0, len(raw))
	for _, h := range raw {
		hash, ok := model.NormalizeTxHash(h)
		if !ok {
			return nil, fmt.Errorf("%w: transaction hash %q", model.ErrInvalidArgument, h)
		}
		if _, dup := seen[hash]; dup {
			continue
		}
		seen[hash] = struct{}{}
		hashes = append(hashes, hash)
	}
	return hashes, nil
}
