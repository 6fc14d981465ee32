package routes

import (
	"errors"
	"net/http"
	"strings"

	"visitor-registration/internal/badge"
	"visitor-registration/internal/storage"
	"visitor-registration/internal/visitors"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error    // The underlying error
	StatusCode int      // HTTP status code
	Message    string   // User-friendly message
	StopCodes  []string // Optional stop codes for client-side handling
	Internal   bool     // Whether this is an internal error (hide details from user)
}

// ErrorInfo contains error metadata for user-facing errors
type ErrorInfo struct {
	Message   string   // User-friendly message
	StopCodes []string // Optional stop codes for client-side application
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, err error, message string, stopCodes ...string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		StopCodes:  stopCodes,
		Internal:   statusCode >= 500,
	}
}

// Routes-specific errors (that don't conflict with other packages)
var (
	// Checkout outcomes
	ErrCheckoutConflict = errors.New("no present visitor with that id")

	// Validation errors
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Internal errors
	ErrInternalServer     = errors.New("internal server error")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Storage provider errors
	ErrStorageProviderNotFound = errors.New("storage provider not found")
	ErrInvalidStorageProvider  = errors.New("invalid storage provider")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	ErrInvalidRequest:   http.StatusBadRequest,
	ErrMissingParameter: http.StatusBadRequest,
	ErrInvalidParameter: http.StatusBadRequest,

	// 401 Unauthorized
	badge.ErrNonValidToken: http.StatusUnauthorized,
	badge.ErrInvalidNonce:  http.StatusUnauthorized,

	// 409 Conflict (stale checkout attempt)
	ErrCheckoutConflict: http.StatusConflict,

	// 500 Internal Server Error
	ErrInternalServer:          http.StatusInternalServerError,
	storage.ErrStorage:         http.StatusInternalServerError,
	ErrStorageProviderNotFound: http.StatusInternalServerError,
	ErrInvalidStorageProvider:  http.StatusInternalServerError,

	// 503 Service Unavailable
	ErrServiceUnavailable: http.StatusServiceUnavailable,
}

// errorInfoMap maps errors to user-friendly messages and optional stop codes
var errorInfoMap = map[error]ErrorInfo{
	badge.ErrNonValidToken: {
		Message:   "Invalid or expired badge token",
		StopCodes: []string{"BADGE_INVALID_TOKEN"},
	},
	badge.ErrInvalidNonce: {
		Message:   "This checkout link has already been used",
		StopCodes: []string{"BADGE_LINK_USED"},
	},

	ErrCheckoutConflict: {
		Message:   "Checkout failed: the visitor may already have departed. Refresh and retry.",
		StopCodes: []string{"CHECKOUT_RETRY"},
	},

	// Validation
	ErrInvalidRequest: {
		Message:   "Invalid request format",
		StopCodes: []string{"INVALID_REQUEST"},
	},
	ErrMissingParameter: {
		Message:   "Required parameter is missing",
		StopCodes: []string{"MISSING_PARAMETER"},
	},
	ErrInvalidParameter: {
		Message:   "Invalid parameter value",
		StopCodes: []string{"INVALID_PARAMETER"},
	},

	// Internal (no stop codes for internal errors)
	ErrInternalServer: {
		Message: "An internal error occurred",
	},
	storage.ErrStorage: {
		Message: "Database operation failed",
	},
	ErrStorageProviderNotFound: {
		Message: "Storage service is not available",
	},
	ErrInvalidStorageProvider: {
		Message: "Storage service configuration error",
	},
	ErrServiceUnavailable: {
		Message: "Service is temporarily unavailable",
	},
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	// Check if it's already an HTTPError
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	// Aggregated validation failures are always the caller's problem
	var validationErr *visitors.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	// Check direct match
	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	// Check if error wraps a known error
	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	// Default to 500 Internal Server Error
	return http.StatusInternalServerError
}

// GetErrorInfo returns error information including message and stop codes
func GetErrorInfo(err error) ErrorInfo {
	// Check if it's an HTTPError with custom info
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{
			Message:   httpErr.Message,
			StopCodes: httpErr.StopCodes,
		}
	}

	// Validation errors carry their own human-readable messages
	var validationErr *visitors.ValidationError
	if errors.As(err, &validationErr) {
		return ErrorInfo{
			Message:   strings.Join(validationErr.Problems, "; "),
			StopCodes: []string{"VALIDATION"},
		}
	}

	// Check direct match
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Check if error wraps a known error
	for knownErr, info := range errorInfoMap {
		if errors.Is(err, knownErr) {
			return info
		}
	}

	// For unknown errors, return a generic message for 5xx, specific for others
	status := GetErrorStatus(err)
	if status >= 500 {
		return ErrorInfo{Message: "An internal error occurred"}
	}
	return ErrorInfo{Message: err.Error()}
}

// GetErrorMessage returns a user-friendly message for an error
func GetErrorMessage(err error) string {
	return GetErrorInfo(err).Message
}

// GetErrorStopCodes returns stop codes for an error
func GetErrorStopCodes(err error) []string {
	return GetErrorInfo(err).StopCodes
}
