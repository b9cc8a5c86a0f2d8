package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"bukka/internal/cart"
	"bukka/internal/checkout"
	"bukka/internal/middleware"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

type cartView struct {
	Lines    []cart.Line     `json:"lines"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func viewCart(c *cart.Cart) cartView {
	lines := c.Lines()
	return cartView{Lines: lines, Count: cart.Count(lines), Subtotal: cart.Subtotal(lines)}
}

func (h *CartHandler) respond(c *gin.Context, status int, crt *cart.Cart, v checkout.View) {
	c.JSON(status, gin.H{"cart": viewCart(crt), "checkout": v})
}

// Get handles GET /cart.
func (h *CartHandler) Get(c *gin.Context) {
	s := middleware.CurrentSession(c)
	h.respond(c, http.StatusOK, s.Cart, s.Checkout.Snapshot())
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	s := middleware.CurrentSession(c)

	var item cart.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c)
		return
	}
	if _, err := s.Cart.Add(item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, http.StatusCreated, s.Cart, s.Checkout.CartChanged())
}

type updateItemRequest struct {
	Delta    *int `json:"delta"`
	Quantity *int `json:"quantity"`
}

// UpdateItem handles PATCH /cart/items/:name with either a delta or an
// absolute quantity. Reaching zero removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	s := middleware.CurrentSession(c)
	name := c.Param("name")

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Delta == nil) == (req.Quantity == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "send either delta or quantity"})
		return
	}

	var err error
	if req.Delta != nil {
		_, _, err = s.Cart.Adjust(name, *req.Delta)
	} else {
		_, _, err = s.Cart.SetQuantity(name, *req.Quantity)
	}
	if err != nil {
		c.JSON(cartErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.respond(c, http.StatusOK, s.Cart, s.Checkout.CartChanged())
}

// RemoveItem handles DELETE /cart/items/:name.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if err := s.Cart.Remove(c.Param("name")); err != nil {
		c.JSON(cartErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.respond(c, http.StatusOK, s.Cart, s.Checkout.CartChanged())
}

// Clear handles DELETE /cart. Emptying the cart ends an unfinished checkout;
// closing the sidebar is POST /checkout/cancel and keeps the items.
func (h *CartHandler) Clear(c *gin.Context) {
	s := middleware.CurrentSession(c)
	s.Cart.Clear()
	h.respond(c, http.StatusOK, s.Cart, s.Checkout.CartChanged())
}

func cartErrorStatus(err error) int {
	if errors.Is(err, cart.ErrItemNotInCart) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
