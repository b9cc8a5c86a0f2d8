package checkout

import (
	"strings"
	"time"
)

type Step string

const (
	StepIdle             Step = ""
	StepDiningPreference Step = "dining-preference"
	StepDeliveryAddress  Step = "delivery-address"
	StepTableNumber      Step = "table-number"
	StepContactInfo      Step = "contact-info"
	StepPayment          Step = "payment"
	StepConfirmed        Step = "confirmed"
)

type Preference string

const (
	PreferenceUnset    Preference = ""
	PreferenceDineIn   Preference = "dine-in"
	PreferenceDelivery Preference = "delivery"
)

// ParsePreference maps UI vocabulary onto the canonical preference.
// "takeout" and "pickup" are delivery-style synonyms used by some entry points.
func ParsePreference(s string) (Preference, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dine-in", "dinein", "dine_in":
		return PreferenceDineIn, true
	case "delivery", "takeout", "take-out", "pickup":
		return PreferenceDelivery, true
	default:
		return PreferenceUnset, false
	}
}

func (p Preference) IsDelivery() bool {
	return p == PreferenceDelivery
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentCash, true
	case "transfer", "bank-transfer", "bank_transfer":
		return PaymentTransfer, true
	default:
		return "", false
	}
}

// TransferMode selects how a bank transfer is confirmed before the order is created.
type TransferMode string

const (
	// TransferSelfAsserted trusts the customer's "I have paid" checkbox.
	TransferSelfAsserted TransferMode = "self-asserted"
	// TransferVerified asks the payment gateway before creating the order.
	TransferVerified TransferMode = "verified"
)

type Verification string

const (
	VerificationIdle     Verification = "idle"
	VerificationPending  Verification = "pending"
	VerificationVerified Verification = "verified"
	VerificationFailed   Verification = "failed"
)

// PaymentAccount is the virtual account the customer transfers into.
type PaymentAccount struct {
	AccountNumber string    `json:"accountNumber"`
	AccountName   string    `json:"accountName"`
	BankName      string    `json:"bankName"`
	Reference     string    `json:"reference"`
	ValidFor      string    `json:"validFor"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// PlacedOrder is what the confirmation screen shows.
type PlacedOrder struct {
	ID               string `json:"id"`
	PaymentMethod    string `json:"paymentMethod"`
	PaymentConfirmed bool   `json:"paymentConfirmed"`
	Verified         bool   `json:"verified"`
}

// State is the whole checkout session. The zero value with PaymentMethod set
// to cash is the idle, pre-checkout state.
type State struct {
	Step                 Step            `json:"step"`
	Preference           Preference      `json:"diningPreference"`
	Address              string          `json:"deliveryAddress,omitempty"`
	Table                string          `json:"tableNumber,omitempty"`
	Contact              Contact         `json:"contact"`
	PaymentMethod        PaymentMethod   `json:"paymentMethod"`
	Account              *PaymentAccount `json:"paymentAccount,omitempty"`
	AccountError         string          `json:"paymentAccountError,omitempty"`
	TransferAcknowledged bool            `json:"transferAcknowledged"`
	Verification         Verification    `json:"verificationState"`
	AwaitingDecision     bool            `json:"awaitingDecision"`
	Notice               string          `json:"notice,omitempty"`
	Order                *PlacedOrder    `json:"order,omitempty"`
}

// Idle returns the pre-checkout state.
func Idle() State {
	return State{PaymentMethod: PaymentCash, Verification: VerificationIdle}
}

func (s State) Active() bool {
	return s.Step != StepIdle
}

// TableFor resolves the table override against the stored default.
func (s State) TableFor(defaultTable string) string {
	if t := strings.TrimSpace(s.Table); t != "" {
		return t
	}
	return strings.TrimSpace(defaultTable)
}
