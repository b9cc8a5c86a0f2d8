package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bukka/internal/cart"
)

// DefaultDeliveryFee is the surcharge for delivery orders, in the menu's currency.
var DefaultDeliveryFee = decimal.NewFromInt(1000)

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// ComputeTotals adds the delivery fee only for delivery orders.
func ComputeTotals(lines []cart.Line, pref Preference, fee decimal.Decimal) Totals {
	subtotal := cart.Subtotal(lines)
	applied := decimal.Zero
	if pref.IsDelivery() {
		applied = fee
	}
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: applied,
		GrandTotal:  subtotal.Add(applied),
	}
}

var validForPattern = regexp.MustCompile(`(?i)(\d+)\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes|s|sec|secs|second|seconds)?\b`)

// ParseValidFor reads the gateway's validity window ("30 minutes", "1 hour",
// "45m", "1800"). Bare numbers are minutes.
func ParseValidFor(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}

	m := validForPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}

	unit := time.Minute
	switch u := strings.ToLower(m[2]); {
	case strings.HasPrefix(u, "h"):
		unit = time.Hour
	case strings.HasPrefix(u, "s"):
		unit = time.Second
	}
	return time.Duration(n) * unit, true
}
