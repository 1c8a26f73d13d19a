package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradingagents/advisor/internal/risk"
)

func newNode(t *testing.T) *RiskNode {
	t.Helper()
	node, err := NewRiskNode(risk.ModerateConfig(), nil)
	require.NoError(t, err)
	return node
}

// TestProcess_FullState tests extraction of every input from the agent state
func TestProcess_FullState(t *testing.T) {
	node := newNode(t)

	update := node.Process(State{
		KeyTicker:     "AAPL",
		KeyTraderPlan: "I recommend we BUY at the open, entry around $150.25 with conviction.",
		KeyBalance:    250000.0,
		KeyPositions: []interface{}{
			map[string]interface{}{
				"ticker":        "MSFT",
				"shares":        40.0,
				"current_price": 300.0,
				"market_value":  12000.0,
				"cost_basis":    11000.0,
				"sector":        "Technology",
			},
		},
	})

	result, ok := update[KeyRiskMetrics].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AAPL", result["ticker"])
	assert.Equal(t, 150.25, result["entry_price"])
	assert.NotNil(t, result["stop_loss"])
	assert.NotNil(t, result["position_size"])
	assert.NotNil(t, result["portfolio_risk"])
}

// TestProcess_EntryFromMarketReport tests the trader-plan-then-report order
func TestProcess_EntryFromMarketReport(t *testing.T) {
	node := newNode(t)

	update := node.Process(State{
		KeyTicker:       "AAPL",
		KeyTraderPlan:   "Strong setup, no specific level named.",
		KeyMarketReport: "Shares closed at $149.80 yesterday.",
	})

	result := update[KeyRiskMetrics].(map[string]interface{})
	assert.Equal(t, 149.80, result["entry_price"])
}

// TestProcess_MissingEntryPrice tests the error-bearing result
func TestProcess_MissingEntryPrice(t *testing.T) {
	node := newNode(t)

	update := node.Process(State{
		KeyTicker:     "AAPL",
		KeyTraderPlan: "Buy some shares at a good price.",
	})

	result := update[KeyRiskMetrics].(map[string]interface{})
	assert.Equal(t, "Could not extract entry price", result["error"])
	assert.Equal(t, "AAPL", result["ticker"])
}

// TestProcess_MissingTicker tests the UNKNOWN fallback
func TestProcess_MissingTicker(t *testing.T) {
	node := newNode(t)

	update := node.Process(State{
		KeyTraderPlan: "Entry at $100.",
	})

	result := update[KeyRiskMetrics].(map[string]interface{})
	assert.Equal(t, "UNKNOWN", result["ticker"])
}

// TestProcess_DefaultBalance tests the 100k account default
func TestProcess_DefaultBalance(t *testing.T) {
	node := newNode(t)

	update := node.Process(State{
		KeyTicker:     "AAPL",
		KeyTraderPlan: "Go long from $100.00.",
	})

	result := update[KeyRiskMetrics].(map[string]interface{})
	metadata := result["metadata"].(map[string]interface{})
	assert.Equal(t, 100000.0, metadata["account_value"])
}

// TestExtractDirection_Cues tests the directional cue words
func TestExtractDirection_Cues(t *testing.T) {
	assert.Equal(t, risk.DirectionLong, extractDirection("We should BUY this dip"))
	assert.Equal(t, risk.DirectionLong, extractDirection("bullish continuation expected"))
	assert.Equal(t, risk.DirectionShort, extractDirection("SELL into strength"))
	assert.Equal(t, risk.DirectionShort, extractDirection("clearly bearish structure"))
	assert.Equal(t, risk.DirectionLong, extractDirection("no cue words here"))
	// Long cues take precedence when both appear.
	assert.Equal(t, risk.DirectionLong, extractDirection("sell puts, stay long"))
}

// TestExtractDollarAmount tests the $-prefixed decimal pattern
func TestExtractDollarAmount(t *testing.T) {
	value, ok := extractDollarAmount("target near $123.45 soon")
	require.True(t, ok)
	assert.Equal(t, 123.45, value)

	value, ok = extractDollarAmount("round number $99 level")
	require.True(t, ok)
	assert.Equal(t, 99.0, value)

	_, ok = extractDollarAmount("no prices here")
	assert.False(t, ok)

	_, ok = extractDollarAmount("percent 45% and EUR 3,50 only")
	assert.False(t, ok)
}

// TestExtractPositions_SkipsBadEntries tests field-for-field mapping with skips
func TestExtractPositions_SkipsBadEntries(t *testing.T) {
	node := newNode(t)

	positions := node.extractPositions([]interface{}{
		map[string]interface{}{
			"ticker":        "MSFT",
			"shares":        40.0,
			"current_price": 300.0,
			"sector":        "Technology",
		},
		map[string]interface{}{
			"ticker": "NO_PRICE",
			"shares": 10.0,
		},
		"not a mapping",
		map[string]interface{}{
			"ticker":          "XOM",
			"shares":          "100",
			"current_price":   "110.5",
			"stop_loss_price": 100.0,
		},
	})

	require.Len(t, positions, 2)
	assert.Equal(t, "MSFT", positions[0].Ticker)
	assert.Equal(t, 12000.0, positions[0].MarketValue) // derived from shares * price
	assert.Equal(t, "XOM", positions[1].Ticker)
	assert.Equal(t, 110.5, positions[1].CurrentPrice)
	assert.Equal(t, 100.0, positions[1].StopLossPrice)
}
