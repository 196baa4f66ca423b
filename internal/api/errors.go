package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

const internalMessage = "internal server error"

// RegisterErrorHandler configures huma to render domain errors.
// Call this after creating the huma.API but before serving requests.
// Errors that are not domain errors are logged and rendered as an opaque INTERNAL.
func RegisterErrorHandler(logger *slog.Logger) {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				if !domainErr.Code.IsClientFault() {
					logInternal(logger, message, errs)
				}
				if domainErr.Code == domainerrors.CodeInternal {
					return fromDomain(domainerrors.Internal(internalMessage))
				}
				return fromDomain(domainErr)
			}
		}

		// Request binding and schema failures from huma itself.
		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			return bindingError(message, errs)
		}

		if status >= http.StatusInternalServerError {
			logInternal(logger, message, errs)
			apiErr := fromDomain(domainerrors.Internal(internalMessage))
			apiErr.status = status
			return apiErr
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

// bindingError reports huma's input validation failures as a 400 VALIDATION
// whose message names the first offending location.
func bindingError(message string, errs []error) *APIError {
	details := make([]string, 0, len(errs))
	for _, err := range errs {
		var detail *huma.ErrorDetail
		if errors.As(err, &detail) && detail.Location != "" {
			details = append(details, fmt.Sprintf("%s: %s", detail.Location, detail.Message))
			continue
		}
		if err != nil {
			details = append(details, err.Error())
		}
	}

	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    string(domainerrors.CodeValidation),
		Message: message,
	}
	if len(details) > 0 {
		apiErr.Message = details[0]
		apiErr.Details = details
	}
	return apiErr
}

// fromDomain renders a domain error with the status its code maps to.
func fromDomain(err *domainerrors.Error) *APIError {
	return &APIError{
		status:  err.HTTPStatus(),
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
}

func logInternal(logger *slog.Logger, message string, errs []error) {
	if logger == nil {
		return
	}
	joined := errors.Join(errs...)
	logger.Error("request failed",
		"message", message,
		"code", domainerrors.CodeOf(joined),
		"error", joined,
	)
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case http.StatusBadGateway:
		return string(domainerrors.CodeUpstream)
	default:
		if status < http.StatusInternalServerError {
			return string(domainerrors.CodeValidation)
		}
		return string(domainerrors.CodeInternal)
	}
}
