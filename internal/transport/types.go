package transport

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	QueryService interface {
		ListTransactions(ctx context.Context, filter model.TransactionFilter, skip, limit int) (model.TransactionPage, error)
		Price(ctx context.Context, symbol string, at *time.Time) (model.SpotPrice, error)
	}
)
