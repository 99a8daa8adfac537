package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewProviderError("search request failed"),
			expected: "search request failed",
		},
		{
			name:     "with cause",
			err:      NewPersistenceError("bulk upsert failed").WithCause(stderrors.New("connection reset")),
			expected: "bulk upsert failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	err := NewProviderError("page fetch failed").WithCause(cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestAppError_Builders(t *testing.T) {
	err := NewValidationError("invalid page size").
		WithCode("INVALID_PAGE_SIZE").
		WithComponent("ingestion").
		WithDetail("page_size", 0)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "INVALID_PAGE_SIZE", err.Code)
	assert.Equal(t, "ingestion", err.Component)
	assert.Equal(t, 0, err.Details["page_size"])
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode)
}

func TestErrorConstructors_Types(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		errType  ErrorType
		httpCode int
	}{
		{"configuration", NewConfigurationError("missing key"), ErrorTypeConfiguration, http.StatusInternalServerError},
		{"validation", NewValidationError("bad input"), ErrorTypeValidation, http.StatusBadRequest},
		{"provider", NewProviderError("upstream error"), ErrorTypeProvider, http.StatusBadGateway},
		{"persistence", NewPersistenceError("db error"), ErrorTypePersistence, http.StatusInternalServerError},
		{"not found", NewNotFoundError("business"), ErrorTypeNotFound, http.StatusNotFound},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.httpCode, tt.err.HTTPCode)
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("business")
	assert.Equal(t, "business not found", err.Message)
}

func TestIsConfiguration(t *testing.T) {
	cfgErr := NewConfigurationError("YELP_API_KEY is not set")
	require.True(t, IsConfiguration(cfgErr))
	require.True(t, IsConfiguration(fmt.Errorf("startup: %w", cfgErr)))
	require.False(t, IsConfiguration(NewProviderError("bad gateway")))
	require.False(t, IsConfiguration(stderrors.New("plain error")))
}
