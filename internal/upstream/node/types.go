package node

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	EthClient interface {
		ChainID(ctx context.Context) (*big.Int, error)
		TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
		TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
		HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	}
	RPCMetrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
