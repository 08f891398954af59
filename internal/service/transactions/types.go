package transactions

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	ChainData interface {
		TokenTransfers(ctx context.Context, address string, startBlock, endBlock uint64, page, offset int) ([]model.TransferEvent, error)
	}
	Node interface {
		CheckConnection(ctx context.Context) error
		Transaction(ctx context.Context, txHash string) (model.TransferEvent, error)
	}
	PriceResolver interface {
		Resolve(ctx context.Context, timestamps []time.Time) (model.Prices, error)
	}
	Metrics interface {
		ObserveBuild(built, duplicates, dropped int, started time.Time)
		ObserveFetchSingle(err error)
	}
)
