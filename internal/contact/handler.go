package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit handles POST /contact.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	m, err := h.service.Submit(c.Request.Context(), req.Name, req.Email, req.Message)
	switch {
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.log.Error("contact message not saved", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send your message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      m.ID,
		"message": "Thanks, we will get back to you soon.",
	})
}
