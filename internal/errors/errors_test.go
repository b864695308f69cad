package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	cause := fmt.Errorf("disk full")
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", NewValidationError(ErrCodeInvalidRequest, "bad input", nil), "INVALID_REQUEST: bad input"},
		{"with cause", NewStorageError("SAVE_FAILED", "cannot save", cause), "SAVE_FAILED: cannot save (caused by: disk full)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConstructorsSetType(t *testing.T) {
	tests := []struct {
		err  *AppError
		want ErrorType
	}{
		{NewValidationError("C", "m", nil), ErrorTypeValidation},
		{NewIOError("C", "m", nil), ErrorTypeIO},
		{NewAIError("C", "m", nil), ErrorTypeAI},
		{NewNetworkError("C", "m", nil), ErrorTypeNetwork},
		{NewConfigError("C", "m", nil), ErrorTypeConfig},
		{NewInternalError("C", "m", nil), ErrorTypeInternal},
		{NewExtractionError("C", "m", nil), ErrorTypeExtraction},
		{NewAugmentationError("C", "m", nil), ErrorTypeAugmentation},
		{NewStorageError("C", "m", nil), ErrorTypeStorage},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
		})
	}
}

func TestIsTypeAndHasCodeFollowChain(t *testing.T) {
	inner := NewAugmentationError("AI_TIMEOUT", "timed out", nil)
	outer := NewInternalError("WRAPPED", "wrapped", fmt.Errorf("call failed: %w", inner))
	wrapped := fmt.Errorf("handler: %w", outer)

	assert.True(t, IsType(wrapped, ErrorTypeInternal))
	assert.True(t, IsType(wrapped, ErrorTypeAugmentation))
	assert.False(t, IsType(wrapped, ErrorTypeStorage))

	assert.True(t, HasCode(wrapped, "WRAPPED"))
	assert.True(t, HasCode(wrapped, "AI_TIMEOUT"))
	assert.False(t, HasCode(wrapped, "OTHER"))

	assert.False(t, IsType(nil, ErrorTypeInternal))
	assert.False(t, HasCode(stderrors.New("plain"), "WRAPPED"))

	var appErr *AppError
	require.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, "WRAPPED", appErr.Code)
}

func TestWithContext(t *testing.T) {
	err := NewIOError(ErrCodeFileNotFound, "missing", nil).
		WithContext("file", "resume.pdf").
		WithContext("size", 10)
	assert.Equal(t, map[string]any{"file": "resume.pdf", "size": 10}, err.Context)
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger.Slog())
	}

	_, err := New("verbose")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo)

	logger.LogError(
		NewExtractionError("UNSUPPORTED_FORMAT", "cannot read .docx", fmt.Errorf("no parser")).
			WithContext("file", "cv.docx"),
		"Extraction failed", "request_id", "r1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "Extraction failed", entry["msg"])
	assert.Equal(t, "extraction", entry["error_type"])
	assert.Equal(t, "UNSUPPORTED_FORMAT", entry["error_code"])
	assert.Equal(t, "no parser", entry["cause"])
	assert.Equal(t, "cv.docx", entry["file"])
	assert.Equal(t, "r1", entry["request_id"])

	buf.Reset()
	logger.LogError(fmt.Errorf("boom"), "Plain failure")
	entry = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])

	buf.Reset()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}
