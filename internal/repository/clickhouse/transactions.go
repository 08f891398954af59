package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/pkg/safe"
	"github.com/google/uuid"
)

const transactionColumns = `id, tx_hash, timestamp, gas_used, gas_price_wei, txn_fee_eth, eth_usdt_price, txn_fee_usdt`

// TransactionsPage returns transactions matching filter ordered newest first, plus the total match count.
func (r *Repository) TransactionsPage(ctx context.Context, filter model.TransactionFilter, skip, limit int) (page model.TransactionPage, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("transactions_page", err, start)
	}()

	offset, err := safe.Uint64(skip)
	if err != nil {
		err = fmt.Errorf("%w: skip: %v", model.ErrInvalidArgument, err)
		return model.TransactionPage{}, err
	}
	rowLimit, err := safe.Uint64(limit)
	if err != nil {
		err = fmt.Errorf("%w: limit: %v", model.ErrInvalidArgument, err)
		return model.TransactionPage{}, err
	}

	where, args := transactionFilterClause(filter)

	count, err := r.countTransactions(ctx, where, args)
	if err != nil {
		return model.TransactionPage{}, err
	}
	page.Count = count
	if count == 0 || rowLimit == 0 {
		return page, nil
	}

	query := `
SELECT ` + transactionColumns + `
FROM transactions FINAL` + where + `
ORDER BY timestamp DESC, tx_hash ASC
LIMIT ? OFFSET ?`

	page.Data, err = r.scanTransactions(ctx, query, append(args, rowLimit, offset)...)
	if err != nil {
		return model.TransactionPage{}, err
	}
	return page, nil
}

// InsertTransactions stores transactions whose hash is not yet present and returns the rows it wrote.
func (r *Repository) InsertTransactions(ctx context.Context, txs []model.Transaction) (inserted []model.Transaction, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_transactions", err, start)
	}()

	if len(txs) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(txs))
	candidates := make([]model.Transaction, 0, len(txs))
	hashes := make([]string, 0, len(txs))
	for _, tx := range txs {
		tx.TxHash = strings.ToLower(tx.TxHash)
		if _, ok := seen[tx.TxHash]; ok {
			continue
		}
		seen[tx.TxHash] = struct{}{}
		candidates = append(candidates, tx)
		hashes = append(hashes, tx.TxHash)
	}

	existing, err := r.existingTxHashes(ctx, hashes)
	if err != nil {
		return nil, err
	}

	fresh := make([]model.Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if _, ok := existing[tx.TxHash]; ok {
			continue
		}
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}
		tx.Timestamp = tx.Timestamp.UTC().Truncate(time.Second)
		fresh = append(fresh, tx)
	}
	if len(fresh) == 0 {
		return nil, nil
	}

	const query = `
INSERT INTO transactions (
	id,
	tx_hash,
	timestamp,
	gas_used,
	gas_price_wei,
	txn_fee_eth,
	eth_usdt_price,
	txn_fee_usdt
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare transactions batch: %w", err)
	}

	for _, tx := range fresh {
		if err = batch.Append(
			tx.ID,
			tx.TxHash,
			tx.Timestamp,
			tx.GasUsed,
			tx.GasPriceWei,
			tx.TxnFeeETH,
			tx.ETHUSDTPrice,
			tx.TxnFeeUSDT,
		); err != nil {
			_ = batch.Abort()
			return nil, fmt.Errorf("append transaction: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return nil, fmt.Errorf("insert transactions: %w", err)
	}
	return fresh, nil
}

func (r *Repository) existingTxHashes(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	const query = `
SELECT tx_hash
FROM transactions FINAL
WHERE tx_hash IN (?)`

	existing := make(map[string]struct{})
	for _, part := range chunk(hashes, lookupChunkSize) {
		if err := r.scanTxHashes(ctx, query, existing, part); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

func (r *Repository) scanTxHashes(ctx context.Context, query string, dst map[string]struct{}, hashes []string) (err error) {
	rows, err := r.conn.Query(ctx, query, hashes)
	if err != nil {
		return fmt.Errorf("query existing tx hashes: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var hash string
		if err = rows.Scan(&hash); err != nil {
			return fmt.Errorf("scan tx hash: %w", err)
		}
		dst[hash] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate tx hashes: %w", err)
	}
	return nil
}

func (r *Repository) countTransactions(ctx context.Context, where string, args []any) (count uint64, err error) {
	query := `
SELECT count()
FROM transactions FINAL` + where

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("query transactions count: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return 0, fmt.Errorf("transactions count not found")
	}
	if err = rows.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan transactions count: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate transactions count: %w", err)
	}
	return count, nil
}

func (r *Repository) scanTransactions(ctx context.Context, query string, args ...any) (txs []model.Transaction, err error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var tx model.Transaction
		if err = rows.Scan(
			&tx.ID,
			&tx.TxHash,
			&tx.Timestamp,
			&tx.GasUsed,
			&tx.GasPriceWei,
			&tx.TxnFeeETH,
			&tx.ETHUSDTPrice,
			&tx.TxnFeeUSDT,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Timestamp = tx.Timestamp.UTC()
		txs = append(txs, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func transactionFilterClause(filter model.TransactionFilter) (string, []any) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if len(filter.TxHashes) > 0 {
		hashes := make([]string, 0, len(filter.TxHashes))
		for _, hash := range filter.TxHashes {
			hashes = append(hashes, strings.ToLower(hash))
		}
		clauses = append(clauses, "tx_hash IN (?)")
		args = append(args, hashes)
	}
	if filter.Start != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Start.UTC())
	}
	if filter.End != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.End.UTC())
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "\nWHERE " + strings.Join(clauses, " AND "), args
}
