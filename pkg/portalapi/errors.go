package portalapi

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/fieldops/pkg/httpx"
)

// Error codes carried in the "error" field.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeUnauthenticated  = "unauthenticated"
	ErrorCodeForbidden        = "forbidden"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeConflict         = "conflict"
	ErrorCodeServerError      = "server_error"
	ErrorCodeRateLimited      = "rate_limit_exceeded"
	ErrorCodeDeactivated      = "profile_deactivated"
	ErrorCodeSystemRole       = "system_role"
	ErrorCodeValidationFailed = "validation_failed"
)

// APIError is the error envelope of every non-2xx API response. It is also
// the error type returned by Client.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e to the response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a more specific description.
func (e *APIError) WithDescription(desc string) *APIError {
	cp := *e
	cp.Description = desc
	return &cp
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed",
	}

	ErrUnauthenticated = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthenticated,
		Description: "sign in required",
	}

	ErrDeactivated = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeDeactivated,
		Description: "this profile has been deactivated",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "missing required permission",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "resource not found",
	}

	ErrConflict = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConflict,
		Description: "resource already exists",
	}

	ErrSystemRole = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeSystemRole,
		Description: "system roles cannot be deleted",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
