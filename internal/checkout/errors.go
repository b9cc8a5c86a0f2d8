package checkout

import "fmt"

type Code string

const (
	CodeInvalidArgument    Code = "invalid-argument"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeBusy               Code = "busy"
	CodeIntegrity          Code = "integrity"
	CodeUpstream           Code = "upstream"
)

// User-facing messages.
const (
	MsgCartEmpty          = "Your cart is empty"
	MsgNotStarted         = "Checkout has not started"
	MsgWrongStep          = "That action is not available at this step"
	MsgUnknownPreference  = "Please choose dine-in or delivery"
	MsgAddressRequired    = "Please enter your delivery address"
	MsgTableRequired      = "Please enter your table number"
	MsgContactRequired    = "Please enter your email or phone number"
	MsgDeliveryContact    = "Please enter both a valid email address and phone number"
	MsgUnknownMethod      = "Please choose cash or transfer"
	MsgTransferOnly       = "This action is only available for bank transfer"
	MsgAcknowledgeFirst   = "Please confirm that you have completed the transfer"
	MsgUseVerification    = "Please confirm your transfer so we can verify it"
	MsgNotVerifiable      = "Transfers are confirmed by you on this page"
	MsgNoReference        = "No payment reference found. Please retry creating the payment account."
	MsgNoAccount          = "The payment account is not ready yet"
	MsgAccountFailed      = "We could not set up a transfer account. Please retry."
	MsgNotSettled         = "We have not received your transfer yet. Please wait a moment and try again."
	MsgVerifyFailed       = "We could not verify your payment. Please try again."
	MsgVerifyInconclusive = "Your transfer has not been confirmed yet. Do you want to place the order anyway? We will confirm the payment as soon as it arrives."
	MsgNoDecisionPending  = "There is nothing to confirm"
	MsgMissingItemIDs     = "Some items in your cart are out of date. Please refresh the page and add them again."
	MsgInvalidTotal       = "The order total must be greater than zero"
	MsgAlreadyConfirmed   = "Your order has already been placed"
	MsgNotConfirmed       = "Your order has not been placed yet"
	MsgSessionExpired     = "Your payment session expired. Please start checkout again."
	MsgBusyAccount        = "Setting up your transfer account"
	MsgBusyVerify         = "Verifying your payment"
	MsgBusySubmit         = "Placing your order"
	MsgOrderFailed        = "We could not place your order. Please try again."
)

// Error is a checkout failure the customer can read.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newInvalidArgument(message string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: message}
}

func newFailedPrecondition(message string) *Error {
	return &Error{Code: CodeFailedPrecondition, Message: message}
}

func newFailedPreconditionf(format string, args ...any) *Error {
	return &Error{Code: CodeFailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

func newBusy(message string) *Error {
	return &Error{Code: CodeBusy, Message: message}
}

func newIntegrity(message string) *Error {
	return &Error{Code: CodeIntegrity, Message: message}
}

func newUpstream(message string) *Error {
	return &Error{Code: CodeUpstream, Message: message}
}
