package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bukka/internal/apierr"
	"bukka/internal/cart"
	"bukka/internal/order"
	"bukka/internal/payment"
)

const (
	defaultExpiry = 30 * time.Minute
	guestName     = "Guest"
)

// PaymentGateway creates virtual accounts and checks transfers against them.
type PaymentGateway interface {
	CreateVirtualAccount(ctx context.Context, req payment.AccountRequest) (*payment.Account, error)
	Verify(ctx context.Context, reference string) (*payment.Verification, error)
}

// OrderService persists finalised orders.
type OrderService interface {
	Create(ctx context.Context, req order.Request) (*order.Order, error)
}

// EventSink hears about placed orders. Unverified transfers are reconciled
// later from these events.
type EventSink interface {
	OrderPlaced(ctx context.Context, e OrderPlacedEvent) error
}

type OrderPlacedEvent struct {
	SessionID        string          `json:"sessionId"`
	OrderID          string          `json:"orderId"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentConfirmed bool            `json:"paymentConfirmed"`
	Verified         bool            `json:"verified"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PlacedAt         time.Time       `json:"placedAt"`
}

// Timer is the part of *time.Timer the controller uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Config struct {
	SessionID    string
	Mode         TransferMode
	DeliveryFee  decimal.Decimal
	DefaultTable string
	PreOrder     bool

	// ExpiryFallback applies when the gateway's validity window is unreadable.
	ExpiryFallback time.Duration

	AfterFunc AfterFunc
	Now       func() time.Time
}

type Deps struct {
	Payments PaymentGateway
	Orders   OrderService
	Events   EventSink
	Logger   *zap.Logger
}

// View is a read-only snapshot for rendering.
type View struct {
	State
	Mode             TransferMode `json:"mode"`
	Lines            []cart.Line  `json:"lines"`
	Totals           Totals       `json:"totals"`
	CreatingAccount  bool         `json:"creatingAccount"`
	Verifying        bool         `json:"verifying"`
	Submitting       bool         `json:"submitting"`
	ExpiresInSeconds int64        `json:"expiresInSeconds,omitempty"`
}

// NeedsAccount reports whether entering the payment step should create a
// virtual account now.
func (v View) NeedsAccount() bool {
	return v.Step == StepPayment &&
		v.PaymentMethod == PaymentTransfer &&
		v.Mode == TransferVerified &&
		v.Account == nil &&
		v.AccountError == "" &&
		!v.CreatingAccount
}

// Controller drives one customer's checkout. Calls to the gateway and the
// order service happen without holding the lock; their results are applied
// only if no reset happened in between.
type Controller struct {
	mu    sync.Mutex
	state State
	gen   uint64

	creating   bool
	verifying  bool
	submitting bool
	expiry     Timer

	cart *cart.Cart
	cfg  Config
	deps Deps
	log  *zap.Logger
}

func NewController(c *cart.Cart, deps Deps, cfg Config) *Controller {
	if cfg.Mode == "" {
		cfg.Mode = TransferVerified
	}
	if cfg.ExpiryFallback <= 0 {
		cfg.ExpiryFallback = defaultExpiry
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = realAfterFunc
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.DefaultTable = strings.TrimSpace(cfg.DefaultTable)

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Controller{
		state: Idle(),
		cart:  c,
		cfg:   cfg,
		deps:  deps,
		log:   log.With(zap.String("session_id", cfg.SessionID)),
	}
}

func (c *Controller) Begin() (View, error) {
	return c.do(Begin{})
}

func (c *Controller) ChoosePreference(pref string) (View, error) {
	return c.do(ChoosePreference{Preference: pref})
}

func (c *Controller) EnterAddress(addr string) (View, error) {
	return c.do(EnterAddress{Address: addr})
}

func (c *Controller) EnterTable(table string) (View, error) {
	return c.do(EnterTable{Table: table})
}

func (c *Controller) EnterContact(cmd EnterContact) (View, error) {
	return c.do(cmd)
}

func (c *Controller) Back() (View, error) {
	return c.do(Back{})
}

func (c *Controller) ChoosePaymentMethod(method string) (View, error) {
	return c.do(ChoosePaymentMethod{Method: method})
}

func (c *Controller) AcknowledgeTransfer(ack bool) (View, error) {
	return c.do(AcknowledgeTransfer{Acknowledged: ack})
}

// Dismiss closes the confirmation screen.
func (c *Controller) Dismiss() (View, error) {
	return c.do(Dismiss{})
}

// Cancel abandons checkout, e.g. when the cart sidebar closes. Pending calls
// finish on their own but their results are ignored.
func (c *Controller) Cancel() View {
	v, _ := c.do(Cancel{})
	return v
}

// CartChanged must be called after every cart mutation. An emptied cart ends
// an unfinished checkout.
func (c *Controller) CartChanged() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cart.IsEmpty() && inFlow(c.state) {
		c.log.Info("cart emptied, resetting checkout")
		c.applyLocked(Cancel{})
	}
	return c.viewLocked()
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// DefaultTable is the table number resolved at session start.
func (c *Controller) DefaultTable() string {
	return c.cfg.DefaultTable
}

// EnsurePaymentAccount creates the virtual account for a transfer, once per
// payment step. It is a no-op while a result or an error is cached or a
// request is already out.
func (c *Controller) EnsurePaymentAccount(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.state.Step != StepPayment {
		defer c.mu.Unlock()
		return c.viewLocked(), wrongStep(c.state)
	}
	if c.state.PaymentMethod != PaymentTransfer {
		defer c.mu.Unlock()
		return c.viewLocked(), newFailedPrecondition(MsgTransferOnly)
	}
	if c.creating || c.state.Account != nil || c.state.AccountError != "" {
		defer c.mu.Unlock()
		return c.viewLocked(), nil
	}

	totals := ComputeTotals(c.cart.Lines(), c.state.Preference, c.fee())
	if !totals.GrandTotal.IsPositive() {
		defer c.mu.Unlock()
		return c.viewLocked(), newInvalidArgument(MsgInvalidTotal)
	}

	req := payment.AccountRequest{
		Amount:        totals.GrandTotal,
		DeliveryFee:   totals.DeliveryFee,
		CustomerEmail: c.state.Contact.Email,
		CustomerPhone: c.state.Contact.Phone,
		CustomerName:  c.customerName(),
		Description:   c.describe(),
	}
	gen := c.gen
	c.creating = true
	c.mu.Unlock()

	acct, err := c.deps.Payments.CreateVirtualAccount(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug("dropping stale account creation result")
		return c.viewLocked(), nil
	}
	c.creating = false

	if err != nil {
		c.log.Warn("virtual account creation failed", zap.Error(err))
		c.applyLocked(AccountFailed{Message: backendMessage(err, MsgAccountFailed)})
		return c.viewLocked(), newUpstream(c.state.AccountError)
	}

	pa := PaymentAccount{
		AccountNumber: acct.AccountNumber,
		AccountName:   acct.AccountName,
		BankName:      acct.BankName,
		Reference:     acct.ExternalReference,
		ValidFor:      acct.ValidFor,
	}
	window, ok := ParseValidFor(acct.ValidFor)
	if !ok {
		window = c.cfg.ExpiryFallback
	}
	pa.ExpiresAt = c.cfg.Now().Add(window)

	if _, err := c.applyLocked(AccountCreated{Account: pa}); err == nil {
		c.armExpiryLocked(window, pa.Reference)
		c.log.Info("virtual account ready",
			zap.String("reference", pa.Reference),
			zap.Duration("valid_for", window),
		)
	}
	return c.viewLocked(), nil
}

// RetryPaymentAccount clears a cached creation error and tries again.
func (c *Controller) RetryPaymentAccount(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.creating {
		defer c.mu.Unlock()
		return c.viewLocked(), newBusy(MsgBusyAccount)
	}
	if _, err := c.applyLocked(AccountRetry{}); err != nil {
		defer c.mu.Unlock()
		return c.viewLocked(), err
	}
	c.mu.Unlock()

	return c.EnsurePaymentAccount(ctx)
}

// ConfirmTransfer is the "I have completed the transfer" action. It asks the
// gateway and creates a verified order on success.
func (c *Controller) ConfirmTransfer(ctx context.Context) (View, error) {
	c.mu.Lock()
	if err := c.transferGuardLocked(); err != nil {
		defer c.mu.Unlock()
		return c.viewLocked(), err
	}
	if c.cfg.Mode != TransferVerified {
		defer c.mu.Unlock()
		return c.viewLocked(), newFailedPrecondition(MsgNotVerifiable)
	}
	if c.verifying || c.submitting {
		defer c.mu.Unlock()
		return c.viewLocked(), newBusy(MsgBusyVerify)
	}
	if c.state.Account == nil || c.state.Account.Reference == "" {
		defer c.mu.Unlock()
		return c.viewLocked(), newInvalidArgument(MsgNoReference)
	}

	reference := c.state.Account.Reference
	c.applyLocked(VerificationStarted{})
	gen := c.gen
	c.verifying = true
	c.mu.Unlock()

	result, err := c.deps.Payments.Verify(ctx, reference)

	c.mu.Lock()
	if gen != c.gen {
		defer c.mu.Unlock()
		c.log.Debug("dropping stale verification result")
		return c.viewLocked(), nil
	}
	c.verifying = false

	if err != nil {
		defer c.mu.Unlock()
		msg := apierr.Message(err)
		if inconclusive(msg) {
			c.log.Info("payment not yet settled, asking customer", zap.String("reference", reference))
			c.applyLocked(VerificationInconclusive{Message: msg})
			return c.viewLocked(), nil
		}
		c.log.Warn("payment verification failed", zap.String("reference", reference), zap.Error(err))
		c.applyLocked(VerificationErrored{Message: msg})
		return c.viewLocked(), newUpstream(MsgVerifyFailed)
	}

	if !result.Settled() {
		defer c.mu.Unlock()
		c.applyLocked(VerificationUnsettled{Status: result.Status})
		return c.viewLocked(), nil
	}

	c.applyLocked(VerificationSettled{})
	view, event, err := c.submitLocked(ctx, submission{paymentConfirmed: true, verified: true})
	c.mu.Unlock()
	c.publish(ctx, event)
	return view, err
}

// ProceedUnverified answers the "place the order anyway?" question that
// follows an inconclusive verification.
func (c *Controller) ProceedUnverified(ctx context.Context, proceed bool) (View, error) {
	c.mu.Lock()
	if !c.state.AwaitingDecision || c.state.Step != StepPayment {
		defer c.mu.Unlock()
		return c.viewLocked(), newFailedPrecondition(MsgNoDecisionPending)
	}
	if !proceed {
		defer c.mu.Unlock()
		_, err := c.applyLocked(DeclineUnverified{})
		return c.viewLocked(), err
	}

	view, event, err := c.submitLocked(ctx, submission{paymentConfirmed: false, verified: false})
	c.mu.Unlock()
	c.publish(ctx, event)
	return view, err
}

// PlaceOrder submits a cash order, or a transfer order the customer has
// acknowledged in self-asserted mode.
func (c *Controller) PlaceOrder(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.state.Step != StepPayment {
		defer c.mu.Unlock()
		return c.viewLocked(), wrongStep(c.state)
	}

	var sub submission
	switch c.state.PaymentMethod {
	case PaymentCash:
		sub = submission{paymentConfirmed: false}
	case PaymentTransfer:
		if c.cfg.Mode == TransferVerified {
			defer c.mu.Unlock()
			return c.viewLocked(), newFailedPrecondition(MsgUseVerification)
		}
		if !c.state.TransferAcknowledged {
			defer c.mu.Unlock()
			return c.viewLocked(), newInvalidArgument(MsgAcknowledgeFirst)
		}
		sub = submission{paymentConfirmed: true}
	}

	view, event, err := c.submitLocked(ctx, sub)
	c.mu.Unlock()
	c.publish(ctx, event)
	return view, err
}

type submission struct {
	paymentConfirmed bool
	verified         bool
}

// submitLocked creates the order. It is entered and left with c.mu held but
// releases it around the call to the order service.
func (c *Controller) submitLocked(ctx context.Context, sub submission) (View, *OrderPlacedEvent, error) {
	if c.state.Step != StepPayment {
		return c.viewLocked(), nil, wrongStep(c.state)
	}
	if c.submitting {
		return c.viewLocked(), nil, newBusy(MsgBusySubmit)
	}

	req, verr := c.buildOrderLocked(c.cart.Lines(), sub)
	if verr != nil {
		c.state.Notice = verr.Message
		return c.viewLocked(), nil, verr
	}
	gen := c.gen
	c.submitting = true
	c.mu.Unlock()

	created, err := c.deps.Orders.Create(ctx, req)

	c.mu.Lock()
	if gen != c.gen {
		c.log.Debug("dropping stale order result")
		return c.viewLocked(), nil, nil
	}
	c.submitting = false

	if err != nil {
		c.log.Warn("order submission failed", zap.Error(err))
		c.applyLocked(OrderFailed{Message: apierr.Message(err)})
		notice := c.state.Notice
		if c.lapsedLocked() {
			c.expireLocked()
		}
		return c.viewLocked(), nil, newUpstream(notice)
	}

	c.applyLocked(OrderPlaced{Order: PlacedOrder{
		ID:               created.ID,
		PaymentMethod:    req.PaymentMethod,
		PaymentConfirmed: req.PaymentConfirmed,
		Verified:         sub.verified,
	}})
	c.stopExpiryLocked()
	c.cart.Clear()

	c.log.Info("order placed",
		zap.String("order_id", created.ID),
		zap.String("payment_method", req.PaymentMethod),
		zap.Bool("payment_confirmed", req.PaymentConfirmed),
	)

	event := &OrderPlacedEvent{
		SessionID:        c.cfg.SessionID,
		OrderID:          created.ID,
		PaymentMethod:    req.PaymentMethod,
		PaymentConfirmed: req.PaymentConfirmed,
		Verified:         sub.verified,
		PaymentReference: req.PaymentReference,
		TotalAmount:      req.TotalAmount,
		PlacedAt:         c.cfg.Now().UTC(),
	}
	return c.viewLocked(), event, nil
}

func (c *Controller) publish(ctx context.Context, event *OrderPlacedEvent) {
	if event == nil || c.deps.Events == nil {
		return
	}
	if err := c.deps.Events.OrderPlaced(ctx, *event); err != nil {
		c.log.Warn("order event not published", zap.Error(err))
	}
}

func (c *Controller) buildOrderLocked(lines []cart.Line, sub submission) (order.Request, *Error) {
	if len(lines) == 0 {
		return order.Request{}, newFailedPrecondition(MsgCartEmpty)
	}

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.ItemID) == "" {
			return order.Request{}, newIntegrity(MsgMissingItemIDs)
		}
		items = append(items, order.Item{MenuItem: l.ItemID, Quantity: l.Quantity, Price: l.Price})
	}

	totals := ComputeTotals(lines, c.state.Preference, c.fee())
	if !totals.GrandTotal.IsPositive() {
		return order.Request{}, newInvalidArgument(MsgInvalidTotal)
	}

	req := order.Request{
		CustomerName:     c.customerName(),
		CustomerEmail:    c.state.Contact.Email,
		CustomerPhone:    c.state.Contact.Phone,
		TotalAmount:      totals.GrandTotal,
		Status:           order.StatusPending,
		PaymentMethod:    string(c.state.PaymentMethod),
		PaymentConfirmed: sub.paymentConfirmed,
		Table:            c.tableDescriptor(),
		OrderItems:       items,
		IsPreOrder:       c.cfg.PreOrder,
	}
	if c.state.PaymentMethod == PaymentTransfer && c.state.Account != nil {
		req.PaymentReference = c.state.Account.Reference
		req.VirtualAccountNumber = c.state.Account.AccountNumber
		req.VirtualAccountName = c.state.Account.AccountName
		req.VirtualAccountBank = c.state.Account.BankName
	}
	return req, nil
}

func (c *Controller) do(cmd Command) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.applyLocked(cmd)
	return c.viewLocked(), err
}

// applyLocked runs the state machine and handles what a transition implies
// for in-flight work: leaving checkout bumps the generation so late results
// are dropped.
func (c *Controller) applyLocked(cmd Command) (State, error) {
	prev := c.state
	next, err := Apply(c.state, cmd, Env{
		DefaultTable: c.cfg.DefaultTable,
		CartEmpty:    c.cart.IsEmpty(),
		Mode:         c.cfg.Mode,
	})
	if err != nil {
		return c.state, err
	}
	c.state = next

	if prev.Active() && !next.Active() {
		c.resetLocked()
	}
	if prev.Step != next.Step {
		c.log.Debug("checkout step changed",
			zap.String("from", string(prev.Step)),
			zap.String("to", string(next.Step)),
		)
	}
	return next, nil
}

func (c *Controller) resetLocked() {
	c.gen++
	c.creating = false
	c.verifying = false
	c.submitting = false
	c.stopExpiryLocked()
}

func (c *Controller) armExpiryLocked(d time.Duration, reference string) {
	c.stopExpiryLocked()
	gen := c.gen
	c.expiry = c.cfg.AfterFunc(d, func() {
		c.expire(gen, reference)
	})
}

func (c *Controller) expire(gen uint64, reference string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state.Account == nil || c.state.Account.Reference != reference {
		return
	}
	// A failed submission checks the window itself; a successful one ends it.
	if c.submitting {
		return
	}
	c.expireLocked()
}

// expireLocked ends the payment window of the current account. Only a
// transfer payment step is terminated; with cash selected the stale account
// is dropped and checkout goes on.
func (c *Controller) expireLocked() {
	reference := c.state.Account.Reference
	if c.state.PaymentMethod != PaymentTransfer {
		if _, err := c.applyLocked(AccountLapsed{}); err == nil {
			c.stopExpiryLocked()
			c.log.Info("unused payment account lapsed", zap.String("reference", reference))
		}
		return
	}
	if _, err := c.applyLocked(Expired{}); err == nil {
		c.log.Info("payment session expired", zap.String("reference", reference))
	}
}

// lapsedLocked reports whether the current account's window has passed.
func (c *Controller) lapsedLocked() bool {
	a := c.state.Account
	return a != nil && !a.ExpiresAt.IsZero() && !c.cfg.Now().Before(a.ExpiresAt)
}

func (c *Controller) stopExpiryLocked() {
	if c.expiry != nil {
		c.expiry.Stop()
		c.expiry = nil
	}
}

func (c *Controller) transferGuardLocked() error {
	if c.state.Step != StepPayment {
		return wrongStep(c.state)
	}
	if c.state.PaymentMethod != PaymentTransfer {
		return newFailedPrecondition(MsgTransferOnly)
	}
	return nil
}

func (c *Controller) viewLocked() View {
	lines := c.cart.Lines()
	v := View{
		State:           c.state,
		Mode:            c.cfg.Mode,
		Lines:           lines,
		Totals:          ComputeTotals(lines, c.state.Preference, c.fee()),
		CreatingAccount: c.creating,
		Verifying:       c.verifying,
		Submitting:      c.submitting,
	}
	if c.state.Account != nil {
		acct := *c.state.Account
		v.Account = &acct
		if left := acct.ExpiresAt.Sub(c.cfg.Now()); left > 0 && c.state.Step == StepPayment {
			v.ExpiresInSeconds = int64(left / time.Second)
		}
	}
	if c.state.Order != nil {
		placed := *c.state.Order
		v.Order = &placed
	}
	return v
}

func (c *Controller) fee() decimal.Decimal {
	if c.cfg.DeliveryFee.IsZero() {
		return DefaultDeliveryFee
	}
	return c.cfg.DeliveryFee
}

func (c *Controller) customerName() string {
	if n := strings.TrimSpace(c.state.Contact.Name); n != "" {
		return n
	}
	return guestName
}

func (c *Controller) tableDescriptor() string {
	if c.state.Preference.IsDelivery() {
		return "Delivery: " + c.state.Address
	}
	return c.state.TableFor(c.cfg.DefaultTable)
}

func (c *Controller) describe() string {
	return fmt.Sprintf("Bukka order %s (%d items)", uuid.New().String()[:8], c.cart.Count())
}

// backendMessage prefers what the backend said over transport noise.
func backendMessage(err error, fallback string) string {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Message != apierr.GenericMessage {
		return apiErr.Message
	}
	return fallback
}

func inconclusive(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not found") || strings.Contains(m, "pending")
}
