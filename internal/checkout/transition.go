package checkout

import (
	"strings"
)

// Env is what a transition may read besides the state itself.
type Env struct {
	DefaultTable string
	CartEmpty    bool
	Mode         TransferMode
}

// Command is one input to the checkout state machine.
type Command interface {
	command()
}

// Customer-driven commands.
type (
	Begin            struct{}
	ChoosePreference struct{ Preference string }
	EnterAddress     struct{ Address string }
	EnterTable       struct{ Table string }
	EnterContact     struct {
		Name  string
		Email string
		Phone string
		Raw   string
	}
	ChoosePaymentMethod struct{ Method string }
	AcknowledgeTransfer struct{ Acknowledged bool }
	Back                struct{}
	Dismiss             struct{}
	Cancel              struct{}
	DeclineUnverified   struct{}
)

// Results of calls to the payment gateway and order service.
type (
	AccountCreated struct{ Account PaymentAccount }
	AccountFailed  struct{ Message string }
	AccountRetry   struct{}
	AccountLapsed  struct{}

	VerificationStarted      struct{}
	VerificationUnsettled    struct{ Status string }
	VerificationInconclusive struct{ Message string }
	VerificationErrored      struct{ Message string }
	VerificationSettled      struct{}

	OrderPlaced struct{ Order PlacedOrder }
	OrderFailed struct{ Message string }

	Expired struct{}
)

func (Begin) command()                    {}
func (ChoosePreference) command()         {}
func (EnterAddress) command()             {}
func (EnterTable) command()               {}
func (EnterContact) command()             {}
func (ChoosePaymentMethod) command()      {}
func (AcknowledgeTransfer) command()      {}
func (Back) command()                     {}
func (Dismiss) command()                  {}
func (Cancel) command()                   {}
func (DeclineUnverified) command()        {}
func (AccountCreated) command()           {}
func (AccountFailed) command()            {}
func (AccountRetry) command()             {}
func (AccountLapsed) command()            {}
func (VerificationStarted) command()      {}
func (VerificationUnsettled) command()    {}
func (VerificationInconclusive) command() {}
func (VerificationErrored) command()      {}
func (VerificationSettled) command()      {}
func (OrderPlaced) command()              {}
func (OrderFailed) command()              {}
func (Expired) command()                  {}

// Apply is the checkout state machine. It never mutates s; on error the
// returned state equals s.
func Apply(s State, cmd Command, env Env) (State, error) {
	switch c := cmd.(type) {
	case Begin:
		return begin(s, env)
	case ChoosePreference:
		return choosePreference(s, c, env)
	case EnterAddress:
		return enterAddress(s, c)
	case EnterTable:
		return enterTable(s, c, env)
	case EnterContact:
		return enterContact(s, c)
	case ChoosePaymentMethod:
		return choosePaymentMethod(s, c)
	case AcknowledgeTransfer:
		return acknowledgeTransfer(s, c)
	case Back:
		return back(s, env)
	case Dismiss:
		if s.Step != StepConfirmed {
			return s, newFailedPrecondition(MsgNotConfirmed)
		}
		return Idle(), nil
	case Cancel:
		return Idle(), nil
	case DeclineUnverified:
		if s.Step != StepPayment || !s.AwaitingDecision {
			return s, newFailedPrecondition(MsgNoDecisionPending)
		}
		s.AwaitingDecision = false
		s.Notice = MsgNotSettled
		return s, nil

	case AccountCreated:
		if !inFlow(s) {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		acct := c.Account
		s.Account = &acct
		s.AccountError = ""
		return s, nil
	case AccountFailed:
		if !inFlow(s) {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.Account = nil
		s.AccountError = orDefault(c.Message, MsgAccountFailed)
		return s, nil
	case AccountRetry:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.AccountError = ""
		return s, nil
	case AccountLapsed:
		// The window ran out while another method was selected. Choosing
		// transfer again asks for a fresh account.
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.Account = nil
		s.TransferAcknowledged = false
		return s, nil

	case VerificationStarted:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.Verification = VerificationPending
		s.AwaitingDecision = false
		s.Notice = ""
		return s, nil
	case VerificationUnsettled:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.Verification = VerificationFailed
		s.Notice = MsgNotSettled
		return s, nil
	case VerificationInconclusive:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.Verification = VerificationFailed
		s.AwaitingDecision = true
		s.Notice = MsgVerifyInconclusive
		return s, nil
	case VerificationErrored:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.Verification = VerificationFailed
		s.Notice = MsgVerifyFailed
		return s, nil
	case VerificationSettled:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.Verification = VerificationVerified
		s.AwaitingDecision = false
		return s, nil

	case OrderPlaced:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		placed := c.Order
		s.Order = &placed
		s.Step = StepConfirmed
		s.AwaitingDecision = false
		s.Notice = ""
		if placed.Verified {
			s.Verification = VerificationVerified
		}
		return s, nil
	case OrderFailed:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		s.AwaitingDecision = false
		s.Notice = orDefault(c.Message, MsgOrderFailed)
		return s, nil

	case Expired:
		if s.Step != StepPayment {
			return s, newFailedPrecondition(MsgWrongStep)
		}
		idle := Idle()
		idle.Notice = MsgSessionExpired
		return idle, nil
	}

	return s, newFailedPreconditionf("unknown checkout command %T", cmd)
}

func begin(s State, env Env) (State, error) {
	if env.CartEmpty {
		return s, newFailedPrecondition(MsgCartEmpty)
	}
	if s.Active() && s.Step != StepConfirmed {
		return s, nil
	}
	next := Idle()
	next.Step = StepDiningPreference
	return next, nil
}

func choosePreference(s State, c ChoosePreference, env Env) (State, error) {
	if s.Step != StepDiningPreference {
		return s, wrongStep(s)
	}
	pref, ok := ParsePreference(c.Preference)
	if !ok {
		return s, newInvalidArgument(MsgUnknownPreference)
	}

	s.Preference = pref
	s.Notice = ""
	switch {
	case pref.IsDelivery():
		s.Step = StepDeliveryAddress
	case strings.TrimSpace(env.DefaultTable) == "":
		s.Step = StepTableNumber
	default:
		s.Step = StepContactInfo
	}
	return s, nil
}

func enterAddress(s State, c EnterAddress) (State, error) {
	if s.Step != StepDeliveryAddress {
		return s, wrongStep(s)
	}
	addr := strings.TrimSpace(c.Address)
	if addr == "" {
		return s, newInvalidArgument(MsgAddressRequired)
	}
	s.Address = addr
	s.Notice = ""
	s.Step = StepContactInfo
	return s, nil
}

func enterTable(s State, c EnterTable, env Env) (State, error) {
	if s.Step != StepTableNumber {
		return s, wrongStep(s)
	}
	table := strings.TrimSpace(c.Table)
	if table == "" {
		table = strings.TrimSpace(env.DefaultTable)
	}
	if table == "" {
		return s, newInvalidArgument(MsgTableRequired)
	}
	s.Table = table
	s.Notice = ""
	s.Step = StepContactInfo
	return s, nil
}

func enterContact(s State, c EnterContact) (State, error) {
	if s.Step != StepContactInfo {
		return s, wrongStep(s)
	}

	contact := Contact{Name: c.Name, Email: c.Email, Phone: c.Phone}.
		Trimmed().
		Merge(ParseContact(c.Raw))

	if s.Preference.IsDelivery() {
		if !IsEmail(contact.Email) || !IsPhone(contact.Phone) {
			return s, newInvalidArgument(MsgDeliveryContact)
		}
	} else if contact.Empty() {
		return s, newInvalidArgument(MsgContactRequired)
	}

	s.Contact = contact
	s.Notice = ""
	s.Step = StepPayment
	return s, nil
}

func choosePaymentMethod(s State, c ChoosePaymentMethod) (State, error) {
	if s.Step != StepPayment {
		return s, wrongStep(s)
	}
	method, ok := ParsePaymentMethod(c.Method)
	if !ok {
		return s, newInvalidArgument(MsgUnknownMethod)
	}
	if method != s.PaymentMethod {
		s.TransferAcknowledged = false
		s.AwaitingDecision = false
		s.Verification = VerificationIdle
		s.Notice = ""
	}
	s.PaymentMethod = method
	return s, nil
}

func acknowledgeTransfer(s State, c AcknowledgeTransfer) (State, error) {
	if s.Step != StepPayment {
		return s, wrongStep(s)
	}
	if s.PaymentMethod != PaymentTransfer {
		return s, newFailedPrecondition(MsgTransferOnly)
	}
	s.TransferAcknowledged = c.Acknowledged
	return s, nil
}

func back(s State, env Env) (State, error) {
	switch s.Step {
	case StepIdle:
		return s, newFailedPrecondition(MsgNotStarted)
	case StepConfirmed:
		return s, newFailedPrecondition(MsgAlreadyConfirmed)
	}

	s.Notice = ""
	switch s.Step {
	case StepDiningPreference:
		return Idle(), nil
	case StepDeliveryAddress, StepTableNumber:
		s.Step = StepDiningPreference
	case StepContactInfo:
		switch {
		case s.Preference.IsDelivery():
			s.Step = StepDeliveryAddress
		case strings.TrimSpace(env.DefaultTable) == "":
			s.Step = StepTableNumber
		default:
			s.Step = StepDiningPreference
		}
	case StepPayment:
		s.AwaitingDecision = false
		s.Step = StepContactInfo
	}
	return s, nil
}

func inFlow(s State) bool {
	return s.Active() && s.Step != StepConfirmed
}

func wrongStep(s State) *Error {
	switch s.Step {
	case StepIdle:
		return newFailedPrecondition(MsgNotStarted)
	case StepConfirmed:
		return newFailedPrecondition(MsgAlreadyConfirmed)
	}
	return newFailedPrecondition(MsgWrongStep)
}

func orDefault(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
