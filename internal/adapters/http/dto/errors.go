// Package dto provides the request and response shapes of the HTTP API and
// the mapping from domain errors to error envelopes.
package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// ErrorResponse is the envelope for every error response.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Machine-readable error codes.
const (
	ErrorCodeNotFound    = "NOT_FOUND"
	ErrorCodeConflict    = "CONFLICT"
	ErrorCodeValidation  = "VALIDATION_ERROR"
	ErrorCodeFormat      = "INVALID_FORMAT"
	ErrorCodeParse       = "MALFORMED_DOCUMENT"
	ErrorCodeForbidden   = "FORBIDDEN"
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeStorage     = "STORAGE_ERROR"
	ErrorCodeInternal    = "INTERNAL_ERROR"
	ErrorCodeTimeout     = "TIMEOUT"
	ErrorCodeBadRequest  = "BAD_REQUEST"
)

// NewErrorResponse creates an envelope with code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// NewErrorResponseWithDetails creates an envelope with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets the trace id and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps an error code to its HTTP status.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest, ErrorCodeFormat, ErrorCodeParse:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps err to a status and envelope. A conflict is checked
// before storage failures because a refused overwrite arrives wrapped in
// an IOError. Unknown errors get a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	var code string

	switch {
	case err == nil:
		return http.StatusOK, nil
	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var verr *domain.ValidationError
		if errors.As(err, &verr) && verr.Field != "" {
			resp.Error.Details = map[string]string{verr.Field: verr.Message}
		}

		return http.StatusBadRequest, resp
	case domain.IsNotFound(err):
		code = ErrorCodeNotFound
	case domain.IsConflict(err), errors.Is(err, app.ErrDeclined):
		code = ErrorCodeConflict
	case domain.IsFormat(err):
		code = ErrorCodeFormat
	case domain.IsParse(err):
		code = ErrorCodeParse
	case domain.IsForbidden(err):
		code = ErrorCodeForbidden
	case domain.IsUnavailable(err):
		code = ErrorCodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = ErrorCodeTimeout
	case domain.IsIO(err):
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeStorage, "the collection could not be saved")
	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}

	return HTTPStatusFromCode(code), NewErrorResponse(code, err.Error())
}

// GetTraceID returns the id to correlate an error with: the span's trace
// id, else a "trace_id" set on the context, else the request id header.
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	if id, ok := c.Get("trace_id"); ok {
		s, _ := id.(string)
		return s
	}

	return c.GetHeader("X-Request-ID")
}

// HandleError writes the envelope for err. Server-side failures are
// logged with the full error.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed",
			"error", err.Error(),
			"trace_id", resp.TraceID)
	}

	c.JSON(status, resp)
}

// AbortWithCode aborts the chain with an envelope for code.
func AbortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 with field details.
func RespondWithValidationErrors(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest,
		NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", fields).WithTraceID(GetTraceID(c)))
}
