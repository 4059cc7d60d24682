package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeServiceUnavailableConfig is used when a required integration is not configured
	ErrCodeServiceUnavailableConfig = "ERR_SERVICE_UNAVAILABLE_CONFIG"
	// ErrCodePaymentFailed is used when the payment provider rejects or fails a charge
	ErrCodePaymentFailed = "ERR_PAYMENT_FAILED"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict covers duplicate in-flight submissions
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Input error codes
const (
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput     = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeMethodNotAllowed = "ERR_METHOD_NOT_ALLOWED"
	ErrCodeRouteNotFound    = "ERR_ROUTE_NOT_FOUND"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:                  http.StatusInternalServerError,
	ErrCodeInternal:                 http.StatusInternalServerError,
	ErrCodeServiceUnavailableConfig: http.StatusInternalServerError,
	ErrCodePaymentFailed:            http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidState:  http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,
	ErrCodeRouteNotFound:    http.StatusNotFound,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes. Domain
// codes not listed here are returned to clients as ERR_INTERNAL.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                  ErrCodeNotFound,
	"ALREADY_EXISTS":             ErrCodeAlreadyExists,
	"EMAIL_TAKEN":                ErrCodeAlreadyExists,
	"CONFLICT":                   ErrCodeConflict,
	"INVALID_STATE":              ErrCodeInvalidState,
	"UNAUTHORIZED":               ErrCodeUnauthorized,
	"INVALID_CREDENTIALS":        ErrCodeInvalidCredentials,
	"FORBIDDEN":                  ErrCodeForbidden,
	"INVALID_INPUT":              ErrCodeInvalidInput,
	"VALIDATION_ERROR":           ErrCodeValidation,
	"BAD_REQUEST":                ErrCodeBadRequest,
	"INTERNAL_ERROR":             ErrCodeInternal,
	"PAYMENT_FAILED":             ErrCodePaymentFailed,
	"SERVICE_UNAVAILABLE_CONFIG": ErrCodeServiceUnavailableConfig,
}

// validationCodes are domain rule violations reported as ERR_VALIDATION
var validationCodes = map[string]struct{}{
	"EMPTY_CART":              {},
	"EMPTY_ORDER":             {},
	"INVALID_ITEM":            {},
	"INVALID_QUANTITY":        {},
	"INVALID_PRICE":           {},
	"INVALID_DISCOUNT":        {},
	"INVALID_STOCK":           {},
	"INVALID_STATUS":          {},
	"INVALID_AMOUNT":          {},
	"PAYMENT_METHOD_REQUIRED": {},
	"CARD_DETAILS_REQUIRED":   {},
	"INVALID_EMAIL":           {},
	"INVALID_PASSWORD":        {},
	"INVALID_NAME":            {},
	"INVALID_RESET_TOKEN":     {},
	"INVALID_TITLE":           {},
	"INVALID_CONTENT":         {},
	"INVALID_CATEGORY":        {},
	"INVALID_AUTHOR":          {},
	"INVALID_ADDRESS":         {},
	"INVALID_PRODUCT_NAME":    {},
	"INVALID_IDEMPOTENCY_KEY": {},
	"NO_IMAGE":                {},
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if _, ok := validationCodes[code]; ok {
		return ErrCodeValidation
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
