// Package response provides uniform JSON envelopes and domain-error to HTTP
// status mapping for the gin handlers.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lodgical/service-reservation/internal/domain"
)

// Envelope is the standard response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// PaginatedEnvelope wraps list responses with paging metadata.
type PaginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 list response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PaginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 with a plain message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: string(domain.KindValidationFailed), Message: message},
	})
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidationFailed:    http.StatusBadRequest,
	domain.KindInvalidStatus:       http.StatusBadRequest,
	domain.KindNotFound:            http.StatusNotFound,
	domain.KindDatesUnavailable:    http.StatusConflict,
	domain.KindProviderUnavailable: http.StatusConflict,
	domain.KindAlreadyUnavailable:  http.StatusConflict,
	domain.KindInvalidTransition:   http.StatusConflict,
	domain.KindStorageConflict:     http.StatusConflict,
	domain.KindConflict:            http.StatusConflict,
	domain.KindForbidden:           http.StatusForbidden,
	domain.KindPricingUnavailable:  http.StatusServiceUnavailable,
}

// Error maps a domain error to its HTTP status; anything unrecognized is a 500.
func Error(c *gin.Context, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		status, ok := kindStatus[domainErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, Envelope{
			Success: false,
			Error: &ErrorBody{
				Kind:    string(domainErr.Kind),
				Message: domainErr.Message,
				Field:   domainErr.Field,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Error:   &ErrorBody{Kind: "internal_error", Message: "internal server error"},
	})
}
