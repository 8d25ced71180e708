package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/vitrina/backend/internal/domain/shared/valueobject"
)

// ProductRef is what the ledger copies from a catalog product at add time
type ProductRef struct {
	ID          string
	DisplayName string
	UnitPrice   decimal.Decimal
}

// Line is one cart entry. Name and price are snapshots taken when the
// product was first added and are never re-derived from the catalog.
type Line struct {
	ProductID   string
	DisplayName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Subtotal returns unit price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.SubtotalMoney().Amount()
}

// SubtotalMoney returns the subtotal as Money
func (l Line) SubtotalMoney() valueobject.Money {
	return valueobject.NewMoney(l.UnitPrice).MultiplyByInt(int64(l.Quantity))
}

// storedLine is the persisted shape, compatible with carts saved by the
// browser widget
type storedLine struct {
	ID       string          `json:"id"`
	Nombre   string          `json:"nombre"`
	Precio   decimal.Decimal `json:"precio"`
	Cantidad int             `json:"cantidad"`
}

// MarshalJSON writes the price as a JSON number
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       string      `json:"id"`
		Nombre   string      `json:"nombre"`
		Precio   json.Number `json:"precio"`
		Cantidad int         `json:"cantidad"`
	}{
		ID:       l.ProductID,
		Nombre:   l.DisplayName,
		Precio:   json.Number(l.UnitPrice.String()),
		Cantidad: l.Quantity,
	})
}

// UnmarshalJSON accepts the price as a JSON number or a numeric string
func (l *Line) UnmarshalJSON(data []byte) error {
	var s storedLine
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = Line{
		ProductID:   s.ID,
		DisplayName: s.Nombre,
		UnitPrice:   s.Precio,
		Quantity:    s.Cantidad,
	}
	return nil
}
