package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"NOT_FOUND", http.StatusNotFound},
		{"ITEM_NOT_FOUND", http.StatusNotFound},
		{"DUPLICATE_REQUEST", http.StatusConflict},
		{"TABLE_OCCUPIED", http.StatusConflict},
		{"CATALOG_UNAVAILABLE", http.StatusServiceUnavailable},
		{"INVALID_AMOUNT", http.StatusBadRequest},
		{"INVALID_SPLIT", http.StatusBadRequest},
		{"INVALID_STATUS_TRANSITION", http.StatusUnprocessableEntity},
		{"PAYMENT_EXCEEDS_BALANCE", http.StatusUnprocessableEntity},
		{"SPLIT_FINALIZED", http.StatusConflict},
		{"ALREADY_CANCELLED", http.StatusConflict},
		{"SHIFT_NOT_OPEN", http.StatusConflict},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.code))
		})
	}
}

func TestValidationErrorResponse_JSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "amount", Message: "This field is required"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
}
