package redis

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	goredis "github.com/redis/go-redis/v9"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Client interface {
		MGet(ctx context.Context, keys ...string) *goredis.SliceCmd
		Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	}
	PriceStore interface {
		SpotPricesByTimestamps(ctx context.Context, symbol string, timestamps []time.Time) (model.Prices, error)
		SpotPriceAt(ctx context.Context, symbol string, ts time.Time) (model.SpotPrice, bool, error)
		LatestSpotPrice(ctx context.Context, symbol string) (model.SpotPrice, bool, error)
		InsertSpotPrices(ctx context.Context, prices []model.SpotPrice) ([]model.SpotPrice, error)
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
		ObserveLookup(hits, misses int)
	}
)
