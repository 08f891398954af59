package model

import (
	"time"

	"github.com/google/uuid"
)

// SpotPrice is a one-second open price sample for a trading pair.
type SpotPrice struct {
	ID        uuid.UUID
	Symbol    string
	Timestamp time.Time
	Price     float64
}

// Prices maps unix seconds to a price.
type Prices map[int64]float64

// At returns the price recorded for the second containing t.
func (p Prices) At(t time.Time) (float64, bool) {
	price, ok := p[t.Unix()]
	return price, ok
}

// Set records the price for the second containing t.
func (p Prices) Set(t time.Time, price float64) {
	p[t.Unix()] = price
}

// Merge copies every entry of other into p.
func (p Prices) Merge(other Prices) {
	for ts, price := range other {
		p[ts] = price
	}
}
