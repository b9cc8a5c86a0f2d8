package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericMessage is shown when the backend gave us nothing readable.
const GenericMessage = "Something went wrong. Please try again."

// Error is a non-2xx answer from the restaurant backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
}

// FromResponse builds an Error from a failed response body, which the backend
// shapes as {"message": ...} or {"error": ...}.
func FromResponse(status int, body []byte) *Error {
	return &Error{Status: status, Message: extract(body)}
}

func extract(body []byte) string {
	var shaped struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &shaped); err != nil {
		return GenericMessage
	}

	for _, raw := range []json.RawMessage{shaped.Message, shaped.Error} {
		if msg := readable(raw); msg != "" {
			return msg
		}
	}
	return GenericMessage
}

// readable accepts a plain string or a nested {"message": ...} object.
func readable(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}

// Message pulls the human-readable part out of any error.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return GenericMessage
}
