package handler

import (
	"net/http"

	apperrors "github.com/psiconecta/booking-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// StatusFromError maps the booking error taxonomy onto HTTP status codes.
// AlreadyBooked is a conflict the client resolves by refreshing its view;
// StoreUnavailable is transient and retryable.
func StatusFromError(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrAlreadyBooked:
		return http.StatusConflict
	case apperrors.ErrInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
