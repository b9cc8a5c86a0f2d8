package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"bukka/internal/backend"
)

const StatusPending = "pending"

// Item is one itemised order line as the order service expects it.
type Item struct {
	MenuItem string          `json:"menuItem"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Request is the order creation payload.
type Request struct {
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail,omitempty"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           string          `json:"status"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentConfirmed bool            `json:"paymentConfirmed"`
	Table            string          `json:"table"`
	OrderItems       []Item          `json:"orderItems"`
	IsPreOrder       bool            `json:"isPreOrder,omitempty"`

	PaymentReference     string `json:"paymentReference,omitempty"`
	VirtualAccountNumber string `json:"virtualAccountNumber,omitempty"`
	VirtualAccountName   string `json:"virtualAccountName,omitempty"`
	VirtualAccountBank   string `json:"virtualAccountBank,omitempty"`
}

// Order is the record the order service created.
type Order struct {
	ID               string          `json:"_id"`
	Status           string          `json:"status"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaymentConfirmed bool            `json:"paymentConfirmed"`
}

type Client struct {
	backend *backend.Client
}

func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

func (c *Client) Create(ctx context.Context, req Request) (*Order, error) {
	if len(req.OrderItems) == 0 {
		return nil, errors.New("order has no items")
	}

	var created Order
	if err := c.backend.PostJSON(ctx, "/orders", req, &created); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &created, nil
}
