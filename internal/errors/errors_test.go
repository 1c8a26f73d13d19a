package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvisorError_Error(t *testing.T) {
	err := NewAdvisorError(ErrorCategoryValidation, "risk", "calculate", "entry price must be positive")
	assert.Equal(t, "[VALIDATION:risk] calculate: entry price must be positive", err.Error())
}

func TestAdvisorError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := WrapError(cause, ErrorCategoryExtraction, "orchestrator", "parse_positions")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}

func TestWrapError_Nil(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrorCategoryExtraction, "orchestrator", "parse"))
}

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("risk_per_trade_pct", "risk_per_trade_pct must be in (0, 10]")
	assert.True(t, err.IsFatal())
	assert.Equal(t, "risk_per_trade_pct", err.Context["field"])
}

func TestWithContext(t *testing.T) {
	err := NewAdvisorError(ErrorCategoryExtraction, "orchestrator", "extract", "no entry price").
		WithContext("ticker", "AAPL")
	assert.Equal(t, "AAPL", err.Context["ticker"])
}
