package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bukka/internal/session"
)

type SessionCreator interface {
	Create(ctx context.Context, opts session.Options) (*session.Session, error)
}

type TokenIssuer interface {
	GenerateToken(sessionID string) (string, error)
}

type SessionHandler struct {
	sessions SessionCreator
	tokens   TokenIssuer
	log      *zap.Logger
}

func NewSessionHandler(sessions SessionCreator, tokens TokenIssuer, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokens: tokens, log: log}
}

type createSessionRequest struct {
	Mode     string `json:"mode"`
	DeviceID string `json:"deviceId"`
	PreOrder bool   `json:"preOrder"`
}

// Create handles POST /sessions. An empty body opens a chat session.
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c)
			return
		}
	}

	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.sessions.Create(c.Request.Context(), session.Options{
		Mode:     mode,
		DeviceID: req.DeviceID,
		PreOrder: req.PreOrder,
	})
	if err != nil {
		h.log.Error("session not created", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start a session"})
		return
	}

	token, err := h.tokens.GenerateToken(s.ID)
	if err != nil {
		h.log.Error("token not issued", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start a session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":        token,
		"sessionId":    s.ID,
		"mode":         s.Mode,
		"preOrder":     s.PreOrder,
		"defaultTable": s.Checkout.DefaultTable(),
	})
}
