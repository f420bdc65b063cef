package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors keep their own code in the
// response body; these cover failures that never reach a service.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeNotFound        = "NOT_FOUND"
)

// errorStatus pins the codes whose status does not follow the naming rules
// in HTTPStatus.
var errorStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	"ALREADY_EXISTS":                http.StatusConflict,
	"DUPLICATE_REQUEST":             http.StatusConflict,
	"CONCURRENCY_CONFLICT":          http.StatusConflict,
	"SHIFT_ALREADY_OPEN":            http.StatusConflict,
	"TABLE_OCCUPIED":                http.StatusConflict,
	"ORDER_LOCKED_FOR_REASSIGNMENT": http.StatusConflict,
	"ALREADY_CANCELLED":             http.StatusConflict,
	"SHIFT_NOT_OPEN":                http.StatusConflict,
	"SPLIT_FINALIZED":               http.StatusConflict,

	"CATALOG_UNAVAILABLE": http.StatusServiceUnavailable,
	"COUPONS_UNAVAILABLE": http.StatusServiceUnavailable,

	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"INVALID_STATUS_TRANSITION": http.StatusUnprocessableEntity,
	"INVALID_TABLE_STATUS":      http.StatusUnprocessableEntity,
}

// HTTPStatus maps an error code to its response status. Codes outside the
// table fall back on their name: *NOT_FOUND is 404, INVALID_* is 400 and any
// other business rule rejection is 422.
func HTTPStatus(code string) int {
	if status, ok := errorStatus[code]; ok {
		return status
	}
	switch {
	case code == "":
		return http.StatusInternalServerError
	case strings.HasSuffix(code, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
