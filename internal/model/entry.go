package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Item is one billed line of an entry. Items have no identity of their own;
// their position in Entry.Items is the display order.
type Item struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// LineTotal returns price*quantity for the item.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Entry is a customer booking owned by a single user.
type Entry struct {
	ID           uuid.UUID
	Owner        uuid.UUID
	CustomerName string
	BookingDate  time.Time
	Items        []Item
	Total        decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ComputeTotal sums price*quantity over items. It performs no validation.
func ComputeTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}
