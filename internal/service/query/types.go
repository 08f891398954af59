package query

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	TransactionStore interface {
		TransactionsPage(ctx context.Context, filter model.TransactionFilter, skip, limit int) (model.TransactionPage, error)
		InsertTransactions(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error)
	}
	PriceStore interface {
		SpotPriceAt(ctx context.Context, symbol string, ts time.Time) (model.SpotPrice, bool, error)
		LatestSpotPrice(ctx context.Context, symbol string) (model.SpotPrice, bool, error)
	}
	TransactionFetcher interface {
		CheckConnection(ctx context.Context) error
		FetchSingle(ctx context.Context, txHash string) (model.Transaction, error)
	}
	Metrics interface {
		ObserveOnDemand(err error, fetched, failed int, started time.Time)
	}
)
