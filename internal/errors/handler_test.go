package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *ErrorHandler {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	return NewErrorHandler(logger, false)
}

func TestErrorToProblem(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/financial", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"api error 400", ErrInvalidDateRange, http.StatusBadRequest, TypeValidation},
		{"api error 404", ErrViewNotFound, http.StatusNotFound, TypeNotFound},
		{"api error 502", ErrUpstreamFetch, http.StatusBadGateway, TypeUpstream},
		{"deadline exceeded", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"canceled", context.Canceled, 499, TypeTimeout},
		{"unknown error hidden", errors.New("db password wrong"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/dashboard/financial", problem.Instance)
		})
	}

	t.Run("unknown errors never leak the message", func(t *testing.T) {
		problem := h.ErrorToProblem(errors.New("db password wrong"), req)
		assert.NotContains(t, problem.Detail, "password")
	})
}

func TestHandleError(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/months", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, ErrValidation("month", "unknown month option"))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	assert.Contains(t, body, "trace_id")

	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "month", details["field"])
}

func TestProblemDetailsMarshal(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "no such view", "/api/x").
		WithExtension("error_code", "VIEW_NOT_FOUND")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "VIEW_NOT_FOUND", flat["error_code"])
	assert.EqualValues(t, 404, flat["status"])
	assert.NotContains(t, flat, "Extensions")
}
