package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	doerrors "github.com/Aman-CERP/docsearch/internal/errors"
)

func TestMapError_NilError(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		contains string
	}{
		{"no entries", ErrNoEntries, ErrCodeNoEntries, "No entries"},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout, "timed out"},
		{"canceled", context.Canceled, ErrCodeTimeout, "canceled"},
		{"invalid params", ErrInvalidParams, ErrCodeInvalidParams, "Invalid"},
		{"resource not found", ErrResourceNotFound, ErrCodeMethodNotFound, "Resource"},
		{"unknown", errors.New("boom"), ErrCodeInternalError, "Internal"},
		{"wrapped", fmt.Errorf("ctx: %w", ErrNoEntries), ErrCodeNoEntries, "No entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// When: mapping the error
			got := MapError(tt.err)

			// Then: the code and message match the category
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Contains(t, got.Message, tt.contains)
		})
	}
}

func TestMapError_PassesMCPErrorThrough(t *testing.T) {
	orig := NewInvalidParamsError("bad limit")

	got := MapError(fmt.Errorf("handler: %w", orig))

	assert.Same(t, orig, got)
}

func TestMCPError_Error(t *testing.T) {
	err := &MCPError{Code: -32602, Message: "Invalid parameters"}

	assert.Equal(t, "MCP error -32602: Invalid parameters", err.Error())
}

func TestNewErrors(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidParams, NewInvalidParamsError("x").Code)

	missing := NewResourceNotFoundError("docsearch://entries/x")
	assert.Equal(t, ErrCodeMethodNotFound, missing.Code)
	assert.Contains(t, missing.Message, "docsearch://entries/x")
}

func TestMapError_DocError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"file not found", doerrors.IOError("content.yaml missing", nil), ErrCodeFileNotFound},
		{"other io", doerrors.New(doerrors.ErrCodeFilePermission, "denied", nil), ErrCodeInternalError},
		{"validation", doerrors.ValidationError("bad query", nil), ErrCodeInvalidParams},
		{"config", doerrors.ConfigError("bad yaml", nil), ErrCodeInternalError},
		{"internal", doerrors.New(doerrors.ErrCodeInternal, "oops", nil), ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(fmt.Errorf("wrapped: %w", tt.err))

			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestMapError_DocError_WithSuggestion(t *testing.T) {
	// Given: a DocError carrying a suggestion
	err := doerrors.ConfigError("content dir missing", nil).
		WithSuggestion("Run 'docsearch config init'.")

	// When: mapping it
	got := MapError(err)

	// Then: the suggestion is appended to the message
	assert.Equal(t, "content dir missing Run 'docsearch config init'.", got.Message)
}
