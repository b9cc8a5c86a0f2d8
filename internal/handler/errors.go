package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bukka/internal/apierr"
	"bukka/internal/checkout"
)

var statusByCode = map[checkout.Code]int{
	checkout.CodeInvalidArgument:    http.StatusBadRequest,
	checkout.CodeFailedPrecondition: http.StatusConflict,
	checkout.CodeBusy:               http.StatusTooManyRequests,
	checkout.CodeIntegrity:          http.StatusUnprocessableEntity,
	checkout.CodeUpstream:           http.StatusBadGateway,
}

// StatusFor maps an error to the HTTP status the browser sees.
func StatusFor(err error) int {
	var cerr *checkout.Error
	if errors.As(err, &cerr) {
		if status, ok := statusByCode[cerr.Code]; ok {
			return status
		}
	}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondCheckout writes the checkout view, with the error alongside it when
// the action failed.
func respondCheckout(c *gin.Context, v checkout.View, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"checkout": v})
		return
	}

	body := gin.H{"error": apierr.Message(err), "checkout": v}
	var cerr *checkout.Error
	if errors.As(err, &cerr) {
		body["code"] = cerr.Code
	}
	c.JSON(StatusFor(err), body)
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}
