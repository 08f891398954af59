package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

// Transaction is a pool transaction together with its fee in ETH and USDT.
type Transaction struct {
	ID           uuid.UUID
	TxHash       string
	Timestamp    time.Time
	GasUsed      uint64
	GasPriceWei  uint64
	TxnFeeETH    float64
	ETHUSDTPrice float64
	TxnFeeUSDT   float64
}

// TransferEvent is a validated ERC-20 transfer reported by the chain-data source.
type TransferEvent struct {
	TxHash      string
	BlockNumber uint64
	Timestamp   time.Time
	GasUsed     uint64
	GasPriceWei uint64
}

// TransactionFilter narrows a transaction listing. Nil bounds are open.
type TransactionFilter struct {
	TxHashes []string
	Start    *time.Time
	End      *time.Time
}

// TransactionPage is one page of a listing plus the total number of matches.
type TransactionPage struct {
	Data  []Transaction
	Count uint64
}

// NormalizeTxHash lowercases a hash and reports whether it is a well formed 32 byte hex hash.
func NormalizeTxHash(hash string) (string, bool) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	return hash, txHashPattern.MatchString(hash)
}
