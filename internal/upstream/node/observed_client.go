// Package node looks up single transactions on an Ethereum JSON-RPC node.
package node

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-feetracker/pkg/safe"
)

// ObservedClient wraps an EthClient and records metrics for every call.
type ObservedClient struct {
	client     EthClient
	rpcMetrics RPCMetrics
}

// NewObservedClient builds an ObservedClient around client.
func NewObservedClient(client EthClient, rpcMetrics RPCMetrics) *ObservedClient {
	return &ObservedClient{
		client:     client,
		rpcMetrics: rpcMetrics,
	}
}

// Dial connects to the node at rawURL. httpClient is used for http(s) endpoints.
func Dial(ctx context.Context, rawURL string, httpClient *http.Client, rpcMetrics RPCMetrics) (*ObservedClient, func(), error) {
	rpcClient, err := rpc.DialOptions(ctx, rawURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nil, fmt.Errorf("dial node: %w", err)
	}
	client := ethclient.NewClient(rpcClient)
	return NewObservedClient(client, rpcMetrics), client.Close, nil
}

// CheckConnection fails with model.ErrUpstreamUnavailable when the node does not answer.
func (c *ObservedClient) CheckConnection(ctx context.Context) (err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe("chain_id", err, started)
	}()

	if _, err = c.client.ChainID(ctx); err != nil {
		return fmt.Errorf("%w: node: %v", model.ErrUpstreamUnavailable, err)
	}
	return nil
}

// Transaction returns gas usage, effective gas price and block time of a mined transaction.
func (c *ObservedClient) Transaction(ctx context.Context, txHash string) (model.TransferEvent, error) {
	hash := common.HexToHash(txHash)

	tx, isPending, err := c.transactionByHash(ctx, hash)
	if err != nil {
		return model.TransferEvent{}, err
	}
	if isPending {
		return model.TransferEvent{}, fmt.Errorf("%w: transaction %s is not mined", model.ErrNotFound, txHash)
	}

	receipt, err := c.transactionReceipt(ctx, hash)
	if err != nil {
		return model.TransferEvent{}, err
	}
	if receipt.BlockNumber == nil {
		return model.TransferEvent{}, fmt.Errorf("%w: receipt of %s has no block", model.ErrNotFound, txHash)
	}

	header, err := c.headerByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return model.TransferEvent{}, err
	}

	gasPrice := receipt.EffectiveGasPrice
	if gasPrice == nil {
		gasPrice = tx.GasPrice()
	}
	if gasPrice == nil || gasPrice.Sign() < 0 || !gasPrice.IsUint64() {
		return model.TransferEvent{}, fmt.Errorf("%w: gas price of %s out of range", model.ErrUpstreamError, txHash)
	}

	blockTime, err := safe.Int64(header.Time)
	if err != nil {
		return model.TransferEvent{}, fmt.Errorf("%w: block time of %s: %v", model.ErrUpstreamError, txHash, err)
	}

	return model.TransferEvent{
		TxHash:      hash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Timestamp:   time.Unix(blockTime, 0).UTC(),
		GasUsed:     receipt.GasUsed,
		GasPriceWei: gasPrice.Uint64(),
	}, nil
}

func (c *ObservedClient) transactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe("get_transaction_by_hash", err, started)
	}()

	tx, isPending, err = c.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, false, classify("transaction", hash, err)
	}
	return tx, isPending, nil
}

func (c *ObservedClient) transactionReceipt(ctx context.Context, hash common.Hash) (receipt *types.Receipt, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe("get_transaction_receipt", err, started)
	}()

	receipt, err = c.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, classify("receipt", hash, err)
	}
	return receipt, nil
}

func (c *ObservedClient) headerByNumber(ctx context.Context, number *big.Int) (header *types.Header, err error) {
	started := time.Now()
	defer func() {
		c.rpcMetrics.Observe("get_header_by_number", err, started)
	}()

	header, err = c.client.HeaderByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: block %s", model.ErrNotFound, number)
		}
		return nil, fmt.Errorf("%w: block %s: %v", model.ErrUpstreamError, number, err)
	}
	return header, nil
}

func classify(what string, hash common.Hash, err error) error {
	if errors.Is(err, ethereum.NotFound) {
		return fmt.Errorf("%w: %s %s", model.ErrNotFound, what, hash.Hex())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %v", model.ErrUpstreamError, what, hash.Hex(), err)
}
