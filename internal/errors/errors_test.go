package errors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := NotFoundError("report")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "NOT_FOUND", err.ErrorCode)
	assert.Equal(t, "report not found", err.Error())
	assert.Equal(t, "report", err.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("limit", "must be at most 500")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, ValidationError{Field: "limit", Message: "must be at most 500"}, err.Details)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "limit", Message: "required"},
		{Field: "offset", Message: "must be positive"},
	})

	details, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "test not found", "/api/tests/x").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeNotFound, got["type"])
	assert.Equal(t, "test not found", got["detail"])
	assert.Equal(t, "/api/tests/x", got["instance"])
	assert.Equal(t, "abc", got["trace_id"])
	// standard members win over extensions
	assert.Equal(t, float64(http.StatusNotFound), got["status"])
}

func TestProblemDetails_OmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "Internal Server Error", Status: 500})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
}
