// Package session keeps the per-browser carts and checkouts.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bukka/internal/cart"
	"bukka/internal/checkout"
	"bukka/internal/tables"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrUnknownMode = errors.New("mode must be chat or shop")
)

// Mode is the page the customer entered from.
type Mode string

const (
	ModeChat Mode = "chat"
	ModeShop Mode = "shop"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeChat, "":
		return ModeChat, nil
	case ModeShop:
		return ModeShop, nil
	}
	return "", ErrUnknownMode
}

// TransferMode is how transfers are confirmed in this mode.
func (m Mode) TransferMode() checkout.TransferMode {
	if m == ModeShop {
		return checkout.TransferSelfAsserted
	}
	return checkout.TransferVerified
}

type Session struct {
	ID       string
	DeviceID string
	Mode     Mode
	PreOrder bool
	Cart     *cart.Cart
	Checkout *checkout.Controller

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Options struct {
	Mode     Mode
	DeviceID string
	PreOrder bool
}

type Config struct {
	TTL            time.Duration
	DeliveryFee    decimal.Decimal
	ExpiryFallback time.Duration
}

// Registry owns every live session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg    Config
	deps   checkout.Deps
	tables tables.Repository
	log    *zap.Logger
	now    func() time.Time
}

func NewRegistry(cfg Config, deps checkout.Deps, tableRepo tables.Repository, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = log
	}
	return &Registry{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		deps:     deps,
		tables:   tableRepo,
		log:      log,
		now:      time.Now,
	}
}

// Create starts a session. The device's default table is resolved here, once.
func (r *Registry) Create(ctx context.Context, opts Options) (*Session, error) {
	if opts.Mode == "" {
		opts.Mode = ModeChat
	}

	defaultTable := ""
	if r.tables != nil && opts.DeviceID != "" {
		t, err := r.tables.Get(ctx, opts.DeviceID)
		if err != nil {
			r.log.Warn("default table lookup failed", zap.String("device_id", opts.DeviceID), zap.Error(err))
		}
		defaultTable = t
	}

	id := uuid.New().String()
	c := cart.New()
	s := &Session{
		ID:       id,
		DeviceID: opts.DeviceID,
		Mode:     opts.Mode,
		PreOrder: opts.PreOrder,
		Cart:     c,
		Checkout: checkout.NewController(c, r.deps, checkout.Config{
			SessionID:      id,
			Mode:           opts.Mode.TransferMode(),
			DeliveryFee:    r.cfg.DeliveryFee,
			DefaultTable:   defaultTable,
			PreOrder:       opts.PreOrder,
			ExpiryFallback: r.cfg.ExpiryFallback,
		}),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.log.Info("session created",
		zap.String("session_id", id),
		zap.String("mode", string(opts.Mode)),
		zap.Bool("pre_order", opts.PreOrder),
	)
	return s, nil
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(r.now())
	return s, nil
}

// RememberTable stores the table a customer typed as the device default.
func (r *Registry) RememberTable(ctx context.Context, s *Session, table string) {
	if r.tables == nil || s.DeviceID == "" {
		return
	}
	if err := r.tables.Save(ctx, s.DeviceID, table); err != nil {
		r.log.Warn("default table not saved", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and cancels their
// checkouts so in-flight results are discarded.
func (r *Registry) Sweep() int {
	if r.cfg.TTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.TTL)

	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Checkout.Cancel()
	}
	if len(expired) > 0 {
		r.log.Info("idle sessions swept", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) error {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}
