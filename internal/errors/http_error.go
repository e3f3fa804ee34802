package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"parkshare/internal/booking"
	"parkshare/internal/service"
)

// HTTPError carries the HTTP status and machine-readable reason code the
// presentation layer maps to a localized message.
type HTTPError struct {
	Code    int    `json:"-"`
	Reason  string `json:"error"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// FromError maps a service or engine error to its HTTP representation.
func FromError(err error) *HTTPError {
	switch {
	case stderrors.Is(err, booking.ErrInvalidWindow):
		return &HTTPError{Code: http.StatusBadRequest, Reason: "invalid_window", Message: err.Error()}
	case stderrors.Is(err, service.ErrValidation):
		return &HTTPError{Code: http.StatusBadRequest, Reason: "invalid_request", Message: err.Error()}
	case stderrors.Is(err, booking.ErrNoCapacity):
		return &HTTPError{Code: http.StatusConflict, Reason: "no_capacity", Message: err.Error()}
	case stderrors.Is(err, booking.ErrInvalidState):
		return &HTTPError{Code: http.StatusConflict, Reason: "invalid_state", Message: err.Error()}
	case stderrors.Is(err, booking.ErrNotFound):
		return &HTTPError{Code: http.StatusNotFound, Reason: "not_found", Message: err.Error()}
	case stderrors.Is(err, booking.ErrStorageConflict):
		return &HTTPError{Code: http.StatusServiceUnavailable, Reason: "storage_conflict", Message: "temporary conflict, please retry"}
	case stderrors.Is(err, service.ErrInvalidCredentials):
		return &HTTPError{Code: http.StatusUnauthorized, Reason: "invalid_credentials", Message: "invalid credentials"}
	default:
		return &HTTPError{Code: http.StatusInternalServerError, Reason: "internal", Message: "internal error"}
	}
}

// Write renders the error as JSON.
func Write(w http.ResponseWriter, err error) {
	httpErr := FromError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
