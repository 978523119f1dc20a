package api

import (
	"errors"
	"net/http"

	"finnacle/pkg/finnacle"
)

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// writeErrorResponse writes an error response with proper HTTP status and error details.
func writeErrorResponse(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	response := ErrorResponse{Message: err.Error()}

	var finErr *finnacle.Error
	if errors.As(err, &finErr) {
		response.ErrorCode = string(finErr.Code)
		status = mapErrorCodeToHTTPStatus(finErr.Code)
	}
	response.Code = status

	writeJSON(w, status, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code finnacle.ErrorCode) int {
	switch code {
	case finnacle.ErrCodeInvalidInput, finnacle.ErrCodeInvalidOwner:
		return http.StatusBadRequest
	case finnacle.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case finnacle.ErrCodeNotFound:
		return http.StatusNotFound
	case finnacle.ErrCodeDuplicate:
		return http.StatusConflict
	case finnacle.ErrCodeQuoteLookup:
		return http.StatusBadGateway
	case finnacle.ErrCodeDatabase, finnacle.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
