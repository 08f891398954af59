package model

import "time"

// Stream names a synchronized data stream.
type Stream string

const (
	StreamPrices       Stream = "spot_price"
	StreamTransactions Stream = "transaction"
)

// Watermark is the last instant fully processed for a stream.
type Watermark struct {
	Stream    Stream
	Timestamp time.Time
	UpdatedAt time.Time
}
