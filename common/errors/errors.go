package errors

import (
	"github.com/labstack/echo/v4"
	"net/http"
)

type ErrorType string

// Error kinds used across the services. Data problems (malformed telemetry,
// schema mismatch, short datasets) surface as BadRequest/Mandatory, registry
// lifecycle violations as Conflict/NotFound, store failures as DBError and a
// fully unusable model as ModelError.
const (
	ErrorTypeNotFound              ErrorType = "NotFound"
	ErrorTypeServerError           ErrorType = "ServerError"
	ErrorTypeDBError               ErrorType = "DBError"
	ErrorTypeConflict              ErrorType = "Conflict"
	ErrorTypeBadRequest            ErrorType = "BadRequest"
	ErrorTypeMandatory             ErrorType = "Mandatory"
	ErrorTypeModel                 ErrorType = "ModelError"
	ErrorTypeUnknown               ErrorType = "Unknown"
	ErrorTypeConfig                ErrorType = "ConfigurationError"
	MaxLimitExceeded               ErrorType = "MaxLimitExceeded"
	ErrorTypeUnauthorized          ErrorType = "Unauthorized"
	ErrorTypeRequestEntityTooLarge ErrorType = "RequestEntityTooLarge"
)

type CommonPulseError struct {
	errorType ErrorType
	message   string
}

type PulseError interface {
	ErrorType() ErrorType
	Message() string
	IsErrorType(errorType ErrorType) bool
	Error() string
	ConvertToHTTPError() *echo.HTTPError
}

func (h CommonPulseError) ErrorType() ErrorType {
	return h.errorType
}

func (h CommonPulseError) Message() string {
	return h.message
}

func (h CommonPulseError) Error() string {
	return h.message
}

func (h CommonPulseError) IsErrorType(errorType ErrorType) bool {
	return errorType == h.errorType
}

func (h CommonPulseError) ConvertToHTTPError() *echo.HTTPError {
	return echo.NewHTTPError(errorTypeToCode(h.ErrorType()), h.Message())
}

func NewCommonPulseError(errorType ErrorType, message string) CommonPulseError {
	return CommonPulseError{errorType, message}
}

func errorTypeToCode(status ErrorType) int {
	switch status {
	case ErrorTypeServerError:
		return http.StatusInternalServerError
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeBadRequest, ErrorTypeMandatory:
		return http.StatusBadRequest
	case ErrorTypeModel:
		return http.StatusServiceUnavailable
	case ErrorTypeDBError, ErrorTypeUnknown, MaxLimitExceeded:
		return http.StatusInternalServerError
	case ErrorTypeRequestEntityTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
