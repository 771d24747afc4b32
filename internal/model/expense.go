package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a single dated monetary outlay.
//
// Amount is an exact decimal, never binary floating point: currency sums
// must not drift. The expense holds a non-owning reference to its category;
// CategoryName and CategoryIcon are denormalized onto the record on read so
// callers can group and render without a second query.
type Expense struct {
	Date         time.Time
	CreatedAt    time.Time
	ID           string
	Note         string
	CategoryID   string
	CategoryName string
	UserID       string
	CategoryIcon Icon
	Amount       decimal.Decimal
}
