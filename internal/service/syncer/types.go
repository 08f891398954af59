package syncer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	WatermarkStore interface {
		Watermark(ctx context.Context, stream model.Stream) (time.Time, bool, error)
		AdvanceWatermark(ctx context.Context, stream model.Stream, ts time.Time) error
	}
	TransactionStore interface {
		InsertTransactions(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error)
	}
	PriceBackfiller interface {
		Backfill(ctx context.Context, start, end time.Time) (int, error)
	}
	BlockLocator interface {
		BlockNumberByTimestamp(ctx context.Context, ts time.Time) (uint64, error)
	}
	TransactionIngestor interface {
		FetchTransferEvents(ctx context.Context, address string, fromBlock, toBlock uint64) ([]model.TransferEvent, error)
		BuildTransactions(ctx context.Context, events []model.TransferEvent) ([]model.Transaction, error)
	}
	CycleRunner interface {
		RunCycle(ctx context.Context) error
	}
	Metrics interface {
		ObserveCycle(stream model.Stream, err error, records int, started time.Time)
		ObserveWatermark(stream model.Stream, ts time.Time)
	}
)
