package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"bukka/internal/checkout"
	"bukka/internal/middleware"
	"bukka/internal/session"
)

type TableRememberer interface {
	RememberTable(ctx context.Context, s *session.Session, table string)
}

type CheckoutHandler struct {
	tables TableRememberer
}

func NewCheckoutHandler(tables TableRememberer) *CheckoutHandler {
	return &CheckoutHandler{tables: tables}
}

func controller(c *gin.Context) *checkout.Controller {
	return middleware.CurrentSession(c).Checkout
}

// prepare creates the transfer account as soon as the payment step needs one.
// A creation failure is shown through the view, not as a failed action.
func prepare(ctx context.Context, ctl *checkout.Controller, v checkout.View) checkout.View {
	if !v.NeedsAccount() {
		return v
	}
	next, _ := ctl.EnsurePaymentAccount(ctx)
	return next
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	respondCheckout(c, controller(c).Snapshot(), nil)
}

func (h *CheckoutHandler) Start(c *gin.Context) {
	v, err := controller(c).Begin()
	respondCheckout(c, v, err)
}

type preferenceRequest struct {
	Preference string `json:"preference"`
}

func (h *CheckoutHandler) Preference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	v, err := controller(c).ChoosePreference(req.Preference)
	respondCheckout(c, v, err)
}

type addressRequest struct {
	Address string `json:"address"`
}

func (h *CheckoutHandler) Address(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	v, err := controller(c).EnterAddress(req.Address)
	respondCheckout(c, v, err)
}

type tableRequest struct {
	Table string `json:"table"`
}

// Table handles POST /checkout/table. A typed table number becomes the
// device's default for next time.
func (h *CheckoutHandler) Table(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	v, err := controller(c).EnterTable(req.Table)
	if err == nil && strings.TrimSpace(req.Table) != "" && h.tables != nil {
		h.tables.RememberTable(c.Request.Context(), middleware.CurrentSession(c), v.Table)
	}
	respondCheckout(c, v, err)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Contact string `json:"contact"`
}

func (h *CheckoutHandler) Contact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	ctl := controller(c)
	v, err := ctl.EnterContact(checkout.EnterContact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Raw:   req.Contact,
	})
	if err == nil {
		v = prepare(c.Request.Context(), ctl, v)
	}
	respondCheckout(c, v, err)
}

func (h *CheckoutHandler) Back(c *gin.Context) {
	v, err := controller(c).Back()
	respondCheckout(c, v, err)
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

func (h *CheckoutHandler) PaymentMethod(c *gin.Context) {
	var req paymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	ctl := controller(c)
	v, err := ctl.ChoosePaymentMethod(req.Method)
	if err == nil {
		v = prepare(c.Request.Context(), ctl, v)
	}
	respondCheckout(c, v, err)
}

type acknowledgeRequest struct {
	Acknowledged bool `json:"acknowledged"`
}

func (h *CheckoutHandler) Acknowledge(c *gin.Context) {
	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	v, err := controller(c).AcknowledgeTransfer(req.Acknowledged)
	respondCheckout(c, v, err)
}

func (h *CheckoutHandler) Account(c *gin.Context) {
	v, err := controller(c).EnsurePaymentAccount(c.Request.Context())
	respondCheckout(c, v, err)
}

func (h *CheckoutHandler) RetryAccount(c *gin.Context) {
	v, err := controller(c).RetryPaymentAccount(c.Request.Context())
	respondCheckout(c, v, err)
}

func (h *CheckoutHandler) Verify(c *gin.Context) {
	v, err := controller(c).ConfirmTransfer(c.Request.Context())
	respondCheckout(c, v, err)
}

type proceedRequest struct {
	Proceed bool `json:"proceed"`
}

func (h *CheckoutHandler) Proceed(c *gin.Context) {
	var req proceedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	v, err := controller(c).ProceedUnverified(c.Request.Context(), req.Proceed)
	respondCheckout(c, v, err)
}

func (h *CheckoutHandler) Order(c *gin.Context) {
	v, err := controller(c).PlaceOrder(c.Request.Context())
	respondCheckout(c, v, err)
}

func (h *CheckoutHandler) Dismiss(c *gin.Context) {
	v, err := controller(c).Dismiss()
	respondCheckout(c, v, err)
}

func (h *CheckoutHandler) Cancel(c *gin.Context) {
	respondCheckout(c, controller(c).Cancel(), nil)
}
