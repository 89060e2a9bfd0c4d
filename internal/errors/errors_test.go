package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMarshalsWithoutCause(t *testing.T) {
	appErr := NewValidationError("bad input", "details here")

	raw, err := json.Marshal(appErr)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "bad input", body["message"])
	assert.Equal(t, string(CategoryValidation), body["category"])
	assert.Equal(t, float64(http.StatusBadRequest), body["http_status"])
	assert.Contains(t, body, "timestamp")
	assert.NotContains(t, body, "cause")
}

func TestRateLimitErrorMarshalsWithoutCause(t *testing.T) {
	appErr := NewRateLimitError("60s")

	raw, err := json.Marshal(appErr)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, string(CategoryRateLimit), body["category"])
	assert.Equal(t, float64(http.StatusTooManyRequests), body["http_status"])
	assert.Contains(t, body, "details")
}

func TestInternalErrorMarshalsCause(t *testing.T) {
	appErr := NewInternalError("boom", errors.New("disk on fire"))

	raw, err := json.Marshal(appErr)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "disk on fire", body["cause"])
	assert.Equal(t, float64(http.StatusInternalServerError), body["http_status"])
}

func TestToAppErrorPassthrough(t *testing.T) {
	appErr := NewValidationError("bad input")
	assert.Same(t, appErr, ToAppError(appErr))
	assert.Nil(t, ToAppError(nil))
}

func TestConfigurationErrorCategory(t *testing.T) {
	appErr := NewConfigurationError("bad knob", errors.New("not a number"))

	assert.Equal(t, CategoryConfiguration, appErr.Category)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)

	_, err := json.Marshal(appErr)
	assert.NoError(t, err)
}
