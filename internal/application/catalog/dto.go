package catalog

import (
	"encoding/json"
	"time"

	"github.com/vitrina/backend/internal/domain/catalog"
)

// ProductResponse is the public view of a normalized product. Field names
// follow the storefront widget's vocabulary.
type ProductResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"nombre"`
	Description string           `json:"descripcion,omitempty"`
	Price       json.Number      `json:"precio"`
	PriceLabel  string           `json:"precioFormateado"`
	Position    int              `json:"posicion"`
	IDSource    catalog.IDSource `json:"idSource"`
}

// LoadResult is returned by a successful catalog load
type LoadResult struct {
	Query    catalog.Query                  `json:"query"`
	Products []ProductResponse              `json:"products"`
	Warnings []catalog.NormalizationWarning `json:"warnings"`
	LoadedAt time.Time                      `json:"loadedAt"`
}

// CatalogView describes the products currently held by a session
type CatalogView struct {
	Query    *catalog.Query    `json:"query,omitempty"`
	Products []ProductResponse `json:"products"`
	LoadedAt *time.Time        `json:"loadedAt,omitempty"`
}

// LoadCatalogRequest is the JSON body of a load request
type LoadCatalogRequest struct {
	CategoryID   int `json:"categoryId" binding:"required"`
	ApprovedLine int `json:"approvedLine" binding:"required"`
}

// ToProductResponse converts a domain product, formatting the price in locale
func ToProductResponse(p catalog.Product, locale string) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.DisplayName,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		PriceLabel:  p.UnitPrice().Format(locale),
		Position:    p.Position,
		IDSource:    p.IDSource,
	}
}

// ToProductResponses converts a product slice, preserving order
func ToProductResponses(products []catalog.Product, locale string) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p, locale)
	}
	return out
}
