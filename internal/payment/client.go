package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bukka/internal/backend"
)

// AccountRequest asks the gateway for a one-off bank account sized to the order.
type AccountRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	Description   string          `json:"description"`
}

// Account is the virtual account the customer transfers into.
type Account struct {
	AccountNumber     string `json:"accountNumber"`
	AccountName       string `json:"accountName"`
	BankName          string `json:"bankName"`
	ExternalReference string `json:"externalReference"`
	ValidFor          string `json:"validFor"`
}

// Verification is the gateway's view of a transfer.
type Verification struct {
	Status string `json:"status"`
}

// Settled reports whether the gateway saw the money arrive.
func (v *Verification) Settled() bool {
	s := strings.ToLower(strings.TrimSpace(v.Status))
	return s == "success" || s == "completed"
}

type Client struct {
	backend *backend.Client
}

func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

func (c *Client) CreateVirtualAccount(ctx context.Context, req AccountRequest) (*Account, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}

	var acct Account
	if err := c.backend.PostJSON(ctx, "/payments/virtual-account", req, &acct); err != nil {
		return nil, fmt.Errorf("create virtual account: %w", err)
	}
	if acct.AccountNumber == "" {
		return nil, errors.New("create virtual account: gateway returned no account number")
	}
	return &acct, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	if reference == "" {
		return nil, errors.New("payment reference is required")
	}

	body := map[string]string{"externalReference": reference}

	var v Verification
	if err := c.backend.PostJSON(ctx, "/payments/verify", body, &v); err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	return &v, nil
}
