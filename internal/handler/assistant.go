package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bukka/internal/apierr"
	"bukka/internal/assistant"
	"bukka/internal/cart"
	"bukka/internal/middleware"
)

type Interpreter interface {
	Interpret(ctx context.Context, text string, history []assistant.Message) (*assistant.Interpretation, error)
}

type AssistantHandler struct {
	interpreter Interpreter
	log         *zap.Logger
}

func NewAssistantHandler(interpreter Interpreter, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{interpreter: interpreter, log: log}
}

type interpretRequest struct {
	Text     string              `json:"text"`
	Messages []assistant.Message `json:"messages"`
}

// Interpret handles POST /assistant/interpret. Items the assistant suggests
// are added to the session's cart before answering.
func (h *AssistantHandler) Interpret(c *gin.Context) {
	s := middleware.CurrentSession(c)

	var req interpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	out, err := h.interpreter.Interpret(c.Request.Context(), req.Text, req.Messages)
	if errors.Is(err, assistant.ErrEmptyText) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.Warn("interpret failed", zap.String("session_id", s.ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": apierr.Message(err)})
		return
	}

	added := make([]cart.Line, 0, len(out.AddToCart))
	for _, sug := range out.AddToCart {
		var line cart.Line
		for i := 0; i < sug.Times(); i++ {
			if line, err = s.Cart.Add(sug.Item()); err != nil {
				break
			}
		}
		if err != nil {
			h.log.Warn("suggested item skipped", zap.String("name", sug.Name), zap.Error(err))
			continue
		}
		added = append(added, line)
	}
	v := s.Checkout.CartChanged()

	c.JSON(http.StatusOK, gin.H{
		"mode":     out.Mode,
		"reply":    out.Reply(),
		"data":     out.Data,
		"added":    added,
		"cart":     viewCart(s.Cart),
		"checkout": v,
	})
}
