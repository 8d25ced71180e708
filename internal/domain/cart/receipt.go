package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLine is one line of a completed checkout
type ReceiptLine struct {
	ProductID   string
	DisplayName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// Receipt is the confirmation of a simulated checkout
type Receipt struct {
	ID        uuid.UUID
	Lines     []ReceiptLine
	ItemCount int
	Total     decimal.Decimal
	// Summary lists "Name xQuantity" per line, newline separated
	Summary  string
	IssuedAt time.Time
}
