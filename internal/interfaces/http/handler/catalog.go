package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appcart "github.com/vitrina/backend/internal/application/cart"
	appcatalog "github.com/vitrina/backend/internal/application/catalog"
	"github.com/vitrina/backend/internal/domain/catalog"
)

// Page query parameters understood by the catalog load endpoint
const (
	QueryCategoryID   = "idCategoria"
	QueryApprovedLine = "lineaAprobada"
)

// CatalogHandler handles catalog-related API endpoints
type CatalogHandler struct {
	BaseHandler
	loader  *appcatalog.Loader
	inquiry *appcart.InquiryService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(loader *appcatalog.Loader, inquiry *appcart.InquiryService) *CatalogHandler {
	return &CatalogHandler{
		loader:  loader,
		inquiry: inquiry,
	}
}

// GetCatalog godoc
//
//	@Summary		Current catalog
//	@Description	Products currently loaded in the visitor's session
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=appcatalog.CatalogView}
//	@Router			/catalog [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, h.loader.View(sess.Registry))
}

// LoadFromQuery godoc
//
//	@Summary		Load catalog from page parameters
//	@Description	Reads idCategoria and lineaAprobada the way the storefront page does and replaces the session catalog
//	@Tags			catalog
//	@Produce		json
//	@Param			idCategoria		query		string	true	"Category id"
//	@Param			lineaAprobada	query		string	true	"Approved line"
//	@Success		200				{object}	dto.Response{data=appcatalog.LoadResult}
//	@Failure		400				{object}	dto.Response
//	@Failure		502				{object}	dto.Response
//	@Router			/catalog/load [get]
func (h *CatalogHandler) LoadFromQuery(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var result *appcatalog.LoadResult
	err := sess.Exclusive(func() error {
		var err error
		result, err = h.loader.LoadRaw(c.Request.Context(), sess.Registry, c.Query(QueryCategoryID), c.Query(QueryApprovedLine))
		return err
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Load godoc
//
//	@Summary		Load catalog
//	@Description	Fetches the catalog for a category and approved line and replaces the session catalog
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcatalog.LoadCatalogRequest	true	"Catalog filter"
//	@Success		200		{object}	dto.Response{data=appcatalog.LoadResult}
//	@Failure		400		{object}	dto.Response
//	@Failure		502		{object}	dto.Response
//	@Router			/catalog/load [post]
func (h *CatalogHandler) Load(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req appcatalog.LoadCatalogRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q := catalog.Query{CategoryID: req.CategoryID, ApprovedLine: req.ApprovedLine}
	var result *appcatalog.LoadResult
	err := sess.Exclusive(func() error {
		var err error
		result, err = h.loader.Load(c.Request.Context(), sess.Registry, q)
		return err
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Inquiry godoc
//
//	@Summary		Product inquiry link
//	@Description	Redirects to a chat with a pre-filled message about the product, or returns the link with format=json
//	@Tags			catalog
//	@Produce		json
//	@Param			id		path		string	true	"Product id, may contain slashes"
//	@Param			format	query		string	false	"json to return the link instead of redirecting"
//	@Success		200		{object}	dto.Response{data=appcart.InquiryResponse}
//	@Success		302
//	@Failure		404		{object}	dto.Response
//	@Router			/catalog/inquiry/{id} [get]
func (h *CatalogHandler) Inquiry(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	// catch-all param keeps its leading slash
	link, err := h.inquiry.Link(sess, strings.TrimPrefix(c.Param("id"), "/"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("format") == "json" {
		h.Success(c, link)
		return
	}
	c.Redirect(http.StatusFound, link.URL)
}
