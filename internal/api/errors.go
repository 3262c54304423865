package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/kgdevtools/lca-auth-sub003/internal/errors"
)

// ErrorResponse is the body of every non-2xx response. It satisfies
// huma.StatusError so handlers can return domain errors directly.
type ErrorResponse struct {
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Per-field problems for VALIDATION errors"`
}

func (e *ErrorResponse) Error() string { return e.Message }

func (e *ErrorResponse) GetStatus() int { return e.status }

func (e *ErrorResponse) ContentType(_ string) string { return "application/json" }

var codeForStatus = map[int]domainerrors.Code{
	http.StatusBadRequest:         domainerrors.CodeValidation,
	http.StatusUnauthorized:       domainerrors.CodeUnauthorized,
	http.StatusForbidden:          domainerrors.CodeForbidden,
	http.StatusNotFound:           domainerrors.CodeNotFound,
	http.StatusConflict:           domainerrors.CodeConflict,
	http.StatusTooManyRequests:    domainerrors.CodeRateLimited,
	http.StatusServiceUnavailable: domainerrors.CodeUnavailable,
}

// RegisterErrorHandler replaces huma.NewError. It must run before routes
// are registered.
func RegisterErrorHandler() {
	huma.NewError = newErrorResponse
}

func newErrorResponse(status int, message string, errs ...error) huma.StatusError {
	for _, err := range errs {
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return &ErrorResponse{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}
	}

	// Request validation failures surface as 400 VALIDATION, not 422.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	code, ok := codeForStatus[status]
	if !ok {
		code = domainerrors.CodeInternal
	}

	resp := &ErrorResponse{status: status, Code: string(code), Message: message}
	if fields := fieldDetails(errs); len(fields) > 0 {
		resp.Details = fields
	}
	return resp
}

// fieldDetails keys huma's validation messages by location, e.g.
// "body.email" or "query.limit".
func fieldDetails(errs []error) map[string]string {
	fields := make(map[string]string)
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) && detail.Location != "" {
			fields[detail.Location] = detail.Message
		}
	}
	return fields
}
