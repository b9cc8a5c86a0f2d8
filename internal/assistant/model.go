package assistant

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"bukka/internal/cart"
)

// Message is one turn of the chat so far.
type Message struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// Suggestion is an item the assistant wants in the cart.
type Suggestion struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ItemID      string          `json:"itemId"`
	Emoji       string          `json:"emoji,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity,omitempty"`
}

// Item converts the suggestion for the cart.
func (s Suggestion) Item() cart.Item {
	return cart.Item{
		Name:        strings.TrimSpace(s.Name),
		Price:       s.Price,
		ItemID:      s.ItemID,
		Emoji:       s.Emoji,
		Description: s.Description,
	}
}

// Times is how many units to add; at least one.
func (s Suggestion) Times() int {
	if s.Quantity < 1 {
		return 1
	}
	return s.Quantity
}

// Interpretation is the NLP service's answer. Exactly one of Message,
// ClarificationQuestion and Data is normally set, depending on Mode.
type Interpretation struct {
	Mode                  string          `json:"mode"`
	Message               string          `json:"message,omitempty"`
	ClarificationQuestion string          `json:"clarificationQuestion,omitempty"`
	Data                  json.RawMessage `json:"data,omitempty"`
	AddToCart             []Suggestion    `json:"addToCart,omitempty"`
}

// Reply is the text to show in the chat.
func (i *Interpretation) Reply() string {
	if i.ClarificationQuestion != "" {
		return i.ClarificationQuestion
	}
	return i.Message
}
