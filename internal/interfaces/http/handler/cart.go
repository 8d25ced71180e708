package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcart "github.com/vitrina/backend/internal/application/cart"
	"github.com/vitrina/backend/internal/domain/shared"
)

// CartHandler handles cart-related API endpoints
type CartHandler struct {
	BaseHandler
	cart *appcart.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cart *appcart.Service) *CartHandler {
	return &CartHandler{cart: cart}
}

// GetCart godoc
//
//	@Summary	Current cart
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=appcart.CartResponse}
//	@Router		/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, h.cart.Cart(sess))
}

// GetTotals godoc
//
//	@Summary	Cart totals
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=appcart.TotalsResponse}
//	@Router		/cart/totals [get]
func (h *CartHandler) GetTotals(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Success(c, h.cart.Totals(sess))
}

// AddItem godoc
//
//	@Summary		Add product to cart
//	@Description	Adds units of a product from the session catalog; an existing line is increased
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appcart.AddItemRequest	true	"Product and quantity (default 1)"
//	@Success		200		{object}	dto.Response{data=appcart.CartResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var req appcart.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	resp, err := h.cart.AddItem(c.Request.Context(), sess, req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetQuantity godoc
//
//	@Summary		Set line quantity
//	@Description	Accepts a number or a string; input that is not a positive integer becomes 1
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			index	path		int							true	"Line index, zero based"
//	@Param			request	body		appcart.SetQuantityRequest	true	"New quantity"
//	@Success		200		{object}	dto.Response{data=appcart.CartResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/cart/lines/{index} [put]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	var req appcart.SetQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.cart.SetQuantityJSON(c.Request.Context(), sess, index, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdjustQuantity godoc
//
//	@Summary		Increment or decrement a line
//	@Description	Decrementing a line at 1 leaves it at 1
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			index	path		int								true	"Line index, zero based"
//	@Param			request	body		appcart.AdjustQuantityRequest	true	"Delta of 1 or -1"
//	@Success		200		{object}	dto.Response{data=appcart.CartResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/cart/lines/{index}/adjust [post]
func (h *CartHandler) AdjustQuantity(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	var req appcart.AdjustQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.cart.AdjustQuantity(c.Request.Context(), sess, index, req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveLine godoc
//
//	@Summary	Remove a cart line
//	@Tags		cart
//	@Produce	json
//	@Param		index	path		int	true	"Line index, zero based"
//	@Success	200		{object}	dto.Response{data=appcart.CartResponse}
//	@Failure	400		{object}	dto.Response
//	@Router		/cart/lines/{index} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	resp, err := h.cart.RemoveLine(c.Request.Context(), sess, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear godoc
//
//	@Summary		Empty the cart
//	@Description	Requires confirm=true; without it nothing changes
//	@Tags			cart
//	@Produce		json
//	@Param			confirm	query		bool	true	"Explicit confirmation"
//	@Success		200		{object}	dto.Response{data=appcart.CartResponse}
//	@Failure		400		{object}	dto.Response
//	@Router			/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	if confirmed, _ := strconv.ParseBool(c.Query("confirm")); !confirmed {
		h.HandleError(c, shared.ErrConfirmationRequired)
		return
	}

	resp, err := h.cart.Clear(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Checkout godoc
//
//	@Summary		Checkout
//	@Description	Completes a simulated purchase and empties the cart
//	@Tags			cart
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=appcart.ReceiptResponse}
//	@Failure		422	{object}	dto.Response
//	@Router			/cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	receipt, err := h.cart.Checkout(c.Request.Context(), sess)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}
