package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrorTypeMalformedTable, "MALFORMED_TABLE"},
		{ErrorTypeBackendFailure, "BACKEND_FAILURE"},
		{ErrorTypeNoProcessableData, "NO_PROCESSABLE_DATA"},
		{ErrorTypeInvalidInput, "INVALID_INPUT"},
		{ErrorTypeUnknown, "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.errType.String())
	}
}

func TestErrorType_IsRecoverable(t *testing.T) {
	assert.True(t, ErrorTypeMalformedTable.IsRecoverable())
	assert.True(t, ErrorTypeBackendFailure.IsRecoverable())
	assert.False(t, ErrorTypeNoProcessableData.IsRecoverable())
	assert.False(t, ErrorTypeInvalidInput.IsRecoverable())
}

func TestExtractionError_Error(t *testing.T) {
	cause := fmt.Errorf("xref table not found")
	err := NewBackendFailureError("table grid extraction", 3, cause)

	assert.Equal(t, "[BACKEND_FAILURE] table grid extraction failed (page 3): xref table not found", err.Error())
	assert.True(t, err.Recoverable)
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Timestamp.IsZero())

	malformed := NewMalformedTableError("row-header", 2, 1, "row 4 has 3 cells, header has 5")
	assert.Contains(t, malformed.Error(), "row 4 has 3 cells")
	assert.Equal(t, "row-header", malformed.Strategy)
}

func TestNoProcessableData(t *testing.T) {
	err := NewNoProcessableDataError("/tmp/plan.pdf")
	wrapped := fmt.Errorf("extract: %w", err)

	assert.True(t, IsNoProcessableData(err))
	assert.True(t, IsNoProcessableData(wrapped))
	assert.True(t, stderrors.Is(wrapped, ErrNoProcessableData))
	assert.False(t, IsNoProcessableData(NewMalformedTableError("", 1, 0, "")))
	assert.False(t, IsNoProcessableData(nil))
	assert.Equal(t, "/tmp/plan.pdf", err.FilePath)
}

func TestErrorCollection(t *testing.T) {
	var ec ErrorCollection
	assert.False(t, ec.HasErrors())

	ec.Add(NewBackendFailureError("ocr", 1, fmt.Errorf("boom")))
	ec.Add(NewMalformedTableError("two-row-header", 2, 0, "short row"))
	ec.Add(NewBackendFailureError("page rendering", 4, fmt.Errorf("boom")))

	assert.True(t, ec.HasErrors())
	assert.Equal(t, 2, ec.CountByType(ErrorTypeBackendFailure))
	assert.Equal(t, 1, ec.CountByType(ErrorTypeMalformedTable))
	assert.Len(t, ec.Messages(), 3)
}
