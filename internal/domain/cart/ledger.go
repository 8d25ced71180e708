package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/shared/valueobject"
)

// Totals are the derived aggregates of a ledger
type Totals struct {
	ItemCount int
	Amount    decimal.Decimal
}

// Ledger is the ordered collection of cart lines.
// It holds at most one line per product id and every quantity is at least 1.
// A Ledger is not safe for concurrent use; callers serialize access.
type Ledger struct {
	lines []Line
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{lines: make([]Line, 0)}
}

// Lines returns a copy of the lines in order
func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Len returns the number of lines
func (l *Ledger) Len() int {
	return len(l.lines)
}

// IsEmpty returns true if the ledger has no lines
func (l *Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

// Add adds quantity units of a product. An existing line for the same
// product is incremented, otherwise a new line snapshotting the product's
// current name and price is appended. One add is capped at the selector
// maximum; an add that would push a line past MaxLineQuantity is rejected
// and leaves the ledger unchanged.
func (l *Ledger) Add(ref ProductRef, quantity int) (Line, error) {
	if ref.ID == "" {
		return Line{}, shared.NewDomainError(shared.CodeValidation, "product id is required")
	}
	if quantity < valueobject.MinLineQuantity {
		return Line{}, shared.NewDomainError(shared.CodeValidation, "quantity must be at least 1")
	}
	quantity = valueobject.ClampSelectorQuantity(quantity)

	for i := range l.lines {
		if l.lines[i].ProductID == ref.ID {
			if l.lines[i].Quantity > valueobject.MaxLineQuantity-quantity {
				return Line{}, shared.NewDomainError(shared.CodeValidation,
					fmt.Sprintf("a cart line holds at most %d units", valueobject.MaxLineQuantity))
			}
			l.lines[i].Quantity += quantity
			return l.lines[i], nil
		}
	}

	line := Line{
		ProductID:   ref.ID,
		DisplayName: ref.DisplayName,
		UnitPrice:   ref.UnitPrice,
		Quantity:    quantity,
	}
	l.lines = append(l.lines, line)
	return line, nil
}

// SetQuantity replaces a line's quantity, clamping it to [1, MaxLineQuantity]
func (l *Ledger) SetQuantity(index, quantity int) (Line, error) {
	if err := l.checkIndex(index); err != nil {
		return Line{}, err
	}
	l.lines[index].Quantity = valueobject.ClampLineQuantity(quantity)
	return l.lines[index], nil
}

// AdjustQuantity moves a line's quantity by one step up or down.
// The floor is 1: decrementing a single unit leaves the line in place.
func (l *Ledger) AdjustQuantity(index, delta int) (Line, error) {
	if delta != 1 && delta != -1 {
		return Line{}, shared.NewDomainError(shared.CodeValidation, "delta must be 1 or -1")
	}
	if err := l.checkIndex(index); err != nil {
		return Line{}, err
	}
	l.lines[index].Quantity = valueobject.ClampLineQuantity(l.lines[index].Quantity + delta)
	return l.lines[index], nil
}

// RemoveLine deletes one line and returns it
func (l *Ledger) RemoveLine(index int) (Line, error) {
	if err := l.checkIndex(index); err != nil {
		return Line{}, err
	}
	removed := l.lines[index]
	l.lines = append(l.lines[:index], l.lines[index+1:]...)
	return removed, nil
}

// Clear empties the ledger unconditionally
func (l *Ledger) Clear() {
	l.lines = make([]Line, 0)
}

// Totals recomputes item count and amount from the current lines
func (l *Ledger) Totals() Totals {
	var t Totals
	amount := valueobject.ZeroMoney()
	for _, line := range l.lines {
		t.ItemCount += line.Quantity
		amount = amount.Add(line.SubtotalMoney())
	}
	t.Amount = amount.Amount()
	return t
}

// Checkout produces a receipt for the current lines and then clears the
// ledger. There is no payment step, so nothing can fail after the receipt
// is built.
func (l *Ledger) Checkout() (*Receipt, error) {
	if l.IsEmpty() {
		return nil, shared.NewDomainError(shared.CodeEmptyCart, "Cart is empty")
	}

	totals := l.Totals()
	receipt := &Receipt{
		ID:        uuid.New(),
		Lines:     make([]ReceiptLine, 0, len(l.lines)),
		ItemCount: totals.ItemCount,
		Total:     totals.Amount,
		IssuedAt:  time.Now(),
	}

	summary := make([]string, 0, len(l.lines))
	for _, line := range l.lines {
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			ProductID:   line.ProductID,
			DisplayName: line.DisplayName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal(),
		})
		summary = append(summary, fmt.Sprintf("%s x%d", line.DisplayName, line.Quantity))
	}
	receipt.Summary = strings.Join(summary, "\n")

	l.Clear()
	return receipt, nil
}

func (l *Ledger) checkIndex(index int) error {
	if index < 0 || index >= len(l.lines) {
		return shared.NewDomainError(shared.CodeIndexOutOfRange,
			fmt.Sprintf("line index %d out of range (cart has %d lines)", index, len(l.lines)))
	}
	return nil
}
