package prices

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	PriceStore interface {
		SpotPricesByTimestamps(ctx context.Context, symbol string, timestamps []time.Time) (model.Prices, error)
		SpotPriceInserter
	}
	SpotPriceInserter interface {
		InsertSpotPrices(ctx context.Context, prices []model.SpotPrice) ([]model.SpotPrice, error)
	}
	PriceSource interface {
		SpotPrices(ctx context.Context, symbol string, start, end time.Time) ([]model.SpotPrice, error)
	}
	Writer interface {
		Write(ctx context.Context, prices []model.SpotPrice) error
	}
	Metrics interface {
		ObserveResolve(err error, requested, stored, fetched int, started time.Time)
		ObserveChunk(err error, samples int)
	}
)
