package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bukka/internal/apierr"
	"bukka/internal/backend"
)

func TestInterpret(t *testing.T) {
	var got interpretRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/interpret", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"mode":"order","message":"Added two plates of jollof.","addToCart":[{"name":"Jollof Rice","price":1500,"itemId":"menu-jollof","quantity":2}]}`)
	}))
	defer srv.Close()

	c := NewClient(backend.New(srv.URL, time.Second))
	history := make([]Message, 25)
	for i := range history {
		history[i] = Message{Role: "user", Content: fmt.Sprint(i)}
	}

	out, err := c.Interpret(context.Background(), "  two jollof please ", history)
	require.NoError(t, err)

	assert.Equal(t, "two jollof please", got.Text)
	require.Len(t, got.Messages, maxHistory)
	assert.Equal(t, "5", got.Messages[0].Content)

	assert.Equal(t, "Added two plates of jollof.", out.Reply())
	require.Len(t, out.AddToCart, 1)
	s := out.AddToCart[0]
	assert.Equal(t, 2, s.Times())
	assert.True(t, s.Item().Price.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "menu-jollof", s.Item().ItemID)
}

func TestInterpretClarification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"mode":"clarify","clarificationQuestion":"Spicy or mild?"}`)
	}))
	defer srv.Close()

	out, err := NewClient(backend.New(srv.URL, time.Second)).Interpret(context.Background(), "suya", nil)
	require.NoError(t, err)
	assert.Equal(t, "Spicy or mild?", out.Reply())
	assert.Empty(t, out.AddToCart)
}

func TestInterpretErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":"model overloaded"}`)
	}))
	defer srv.Close()

	c := NewClient(backend.New(srv.URL, time.Second))

	_, err := c.Interpret(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = c.Interpret(context.Background(), "hello", nil)
	var apiErr *apierr.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "model overloaded", apiErr.Message)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestSuggestionTimesDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, Suggestion{}.Times())
}
