package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
		severity Severity
	}{
		{"config error", ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{"io error", ErrCodeFileNotFound, CategoryIO, SeverityError},
		{"persistence is fatal", ErrCodePersistenceFailed, CategoryIO, SeverityFatal},
		{"corrupt index is fatal", ErrCodeCorruptIndex, CategoryIO, SeverityFatal},
		{"network timeout is warning", ErrCodeNetworkTimeout, CategoryNetwork, SeverityWarning},
		{"validation error", ErrCodeDimensionMismatch, CategoryValidation, SeverityError},
		{"internal error", ErrCodeEmbeddingFailed, CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrCodePersistenceFailed, cause)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "disk full", err.Message)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIs_MatchesByCode(t *testing.T) {
	err := New(ErrCodeDimensionMismatch, "expected 256, got 384", nil)
	target := New(ErrCodeDimensionMismatch, "", nil)

	assert.True(t, stderrors.Is(err, target))
	assert.False(t, stderrors.Is(err, New(ErrCodeSearchFailed, "", nil)))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(ErrCodePersistenceFailed, "write failed", nil)))
	assert.False(t, IsFatal(New(ErrCodeFileUnreadable, "bad file", nil)))
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(fmt.Errorf("plain error")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrCodeNetworkUnavailable, "ollama down", nil)))
	assert.False(t, IsRetryable(New(ErrCodeInvalidInput, "bad query", nil)))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeFileUnreadable, "cannot read", nil).
		WithDetail("path", "/corpus/a.md")

	assert.Equal(t, "/corpus/a.md", err.Details["path"])
	assert.Equal(t, "[ERR_202_FILE_UNREADABLE] cannot read", err.Error())
}
