package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/crimeguessr/internal/model"
	"github.com/mcoot/crimeguessr/internal/services/location"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeInvalidDataset        = "INVALID_DATASET"
	CodeRoomNotFound          = "ROOM_NOT_FOUND"
	CodeDataSourceUnavailable = "DATA_SOURCE_UNAVAILABLE"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &httpError{http.StatusRequestEntityTooLarge, APIError{CodeInvalidDataset, "Dataset too large"}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrDataSourceUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeDataSourceUnavailable, "Crime data not loaded"}}

	// Map dataset errors
	case errors.Is(err, location.ErrMissingCoordinateColumns):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDataset, "Dataset needs Latitude and Longitude columns"}}
	case errors.Is(err, location.ErrEmptyDataset):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDataset, "Dataset has no usable rows"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
