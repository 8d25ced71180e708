package router

import (
	"github.com/gin-gonic/gin"

	"github.com/vitrina/backend/internal/interfaces/http/handler"
)

// Storefront wires the catalog and cart endpoints
type Storefront struct {
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	// CatalogLoadLimit guards the routes that reach the catalog source.
	// Nil disables it.
	CatalogLoadLimit gin.HandlerFunc
}

// Groups returns the storefront domain groups
func (s Storefront) Groups() []RouteRegistrar {
	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("", s.Catalog.GetCatalog)
	catalogRoutes.GET("/load", s.CatalogLoadLimit, s.Catalog.LoadFromQuery)
	catalogRoutes.POST("/load", s.CatalogLoadLimit, s.Catalog.Load)
	catalogRoutes.GET("/inquiry/*id", s.Catalog.Inquiry)

	cartRoutes := NewDomainGroup("cart", "/cart")
	cartRoutes.GET("", s.Cart.GetCart)
	cartRoutes.DELETE("", s.Cart.Clear)
	cartRoutes.GET("/totals", s.Cart.GetTotals)
	cartRoutes.POST("/items", s.Cart.AddItem)
	cartRoutes.POST("/checkout", s.Cart.Checkout)
	cartRoutes.PUT("/lines/:index", s.Cart.SetQuantity)
	cartRoutes.DELETE("/lines/:index", s.Cart.RemoveLine)
	cartRoutes.POST("/lines/:index/adjust", s.Cart.AdjustQuantity)

	return []RouteRegistrar{catalogRoutes, cartRoutes}
}
