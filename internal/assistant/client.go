// Package assistant forwards chat turns to the backend's NLP interpreter.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bukka/internal/backend"
)

const maxHistory = 20

var ErrEmptyText = errors.New("please type a message")

type Client struct {
	backend *backend.Client
}

func NewClient(b *backend.Client) *Client {
	return &Client{backend: b}
}

type interpretRequest struct {
	Text     string    `json:"text"`
	Messages []Message `json:"messages"`
}

// Interpret sends the new text with the most recent history.
func (c *Client) Interpret(ctx context.Context, text string, history []Message) (*Interpretation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	if history == nil {
		history = []Message{}
	}

	var out Interpretation
	if err := c.backend.PostJSON(ctx, "/ai/interpret", interpretRequest{Text: text, Messages: history}, &out); err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}
	return &out, nil
}
