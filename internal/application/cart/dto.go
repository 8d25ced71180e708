package cart

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/vitrina/backend/internal/domain/cart"
	"github.com/vitrina/backend/internal/domain/shared/valueobject"
)

// LineResponse is the public view of a cart line
type LineResponse struct {
	Index         int         `json:"index"`
	ProductID     string      `json:"id"`
	Name          string      `json:"nombre"`
	UnitPrice     json.Number `json:"precio"`
	Quantity      int         `json:"cantidad"`
	Subtotal      json.Number `json:"subtotal"`
	SubtotalLabel string      `json:"subtotalFormateado"`
}

// TotalsResponse carries the derived cart totals
type TotalsResponse struct {
	ItemCount   int         `json:"itemCount"`
	Amount      json.Number `json:"amount"`
	AmountLabel string      `json:"amountLabel"`
}

// CartResponse is the full cart state returned after every operation
type CartResponse struct {
	SessionID string         `json:"sessionId"`
	Lines     []LineResponse `json:"lines"`
	Totals    TotalsResponse `json:"totals"`
}

// ReceiptLineResponse is one line of a checkout receipt
type ReceiptLineResponse struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unitPrice"`
	Subtotal  json.Number `json:"subtotal"`
}

// ReceiptResponse confirms a completed checkout
type ReceiptResponse struct {
	ID         uuid.UUID             `json:"id"`
	Lines      []ReceiptLineResponse `json:"lines"`
	ItemCount  int                   `json:"itemCount"`
	Total      json.Number           `json:"total"`
	TotalLabel string                `json:"totalLabel"`
	Summary    string                `json:"summary"`
	IssuedAt   time.Time             `json:"issuedAt"`
}

// AddItemRequest is the body of an add-to-cart request
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required,notblank"`
	Quantity  int    `json:"quantity"`
}

// SetQuantityRequest carries a raw quantity, number or string, as typed by
// the visitor
type SetQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity" binding:"required"`
}

// AdjustQuantityRequest is the body of an increment/decrement request
type AdjustQuantityRequest struct {
	Delta int `json:"delta" binding:"required,oneof=1 -1"`
}

// ToCartResponse builds the cart view for a ledger
func ToCartResponse(sessionID string, l *cart.Ledger, locale string) *CartResponse {
	lines := l.Lines()
	resp := &CartResponse{
		SessionID: sessionID,
		Lines:     make([]LineResponse, len(lines)),
		Totals:    ToTotalsResponse(l.Totals(), locale),
	}
	for i, line := range lines {
		resp.Lines[i] = LineResponse{
			Index:         i,
			ProductID:     line.ProductID,
			Name:          line.DisplayName,
			UnitPrice:     json.Number(line.UnitPrice.String()),
			Quantity:      line.Quantity,
			Subtotal:      json.Number(line.Subtotal().String()),
			SubtotalLabel: line.SubtotalMoney().Format(locale),
		}
	}
	return resp
}

// ToTotalsResponse converts ledger totals
func ToTotalsResponse(t cart.Totals, locale string) TotalsResponse {
	return TotalsResponse{
		ItemCount:   t.ItemCount,
		Amount:      json.Number(t.Amount.String()),
		AmountLabel: valueobject.NewMoney(t.Amount).Format(locale),
	}
}

// ToReceiptResponse converts a checkout receipt
func ToReceiptResponse(r *cart.Receipt, locale string) *ReceiptResponse {
	resp := &ReceiptResponse{
		ID:         r.ID,
		Lines:      make([]ReceiptLineResponse, len(r.Lines)),
		ItemCount:  r.ItemCount,
		Total:      json.Number(r.Total.String()),
		TotalLabel: valueobject.NewMoney(r.Total).Format(locale),
		Summary:    r.Summary,
		IssuedAt:   r.IssuedAt,
	}
	for i, line := range r.Lines {
		resp.Lines[i] = ReceiptLineResponse{
			ProductID: line.ProductID,
			Name:      line.DisplayName,
			Quantity:  line.Quantity,
			UnitPrice: json.Number(line.UnitPrice.String()),
			Subtotal:  json.Number(line.Subtotal.String()),
		}
	}
	return resp
}
