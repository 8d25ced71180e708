package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/vitrina/backend/internal/domain/shared/valueobject"
)

// IDSource records which upstream field produced a product id
type IDSource string

const (
	IDSourceID          IDSource = "id"
	IDSourceIDProducto  IDSource = "idProducto"
	IDSourceCodigo      IDSource = "codigo"
	IDSourceSKU         IDSource = "sku"
	IDSourceSynthesized IDSource = "synthesized"
)

// UnnamedProduct is the display name used when the upstream entry has none
const UnnamedProduct = "Producto sin nombre"

// Product is a canonical catalog entry. Products are read-only after
// normalization; a reload replaces the whole set.
type Product struct {
	ID          string
	IDSource    IDSource
	DisplayName string
	Description string
	Price       decimal.Decimal
	Position    int
}

// UnitPrice returns the price as Money
func (p Product) UnitPrice() valueobject.Money {
	return valueobject.NewMoney(p.Price)
}
