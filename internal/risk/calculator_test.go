package risk

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradingagents/advisor/pkg/types"
)

func newCalculator(t *testing.T, cfg Config) *Calculator {
	t.Helper()
	calc, err := NewCalculator(cfg)
	require.NoError(t, err)
	return calc
}

// TestCalculateTradeRisk_ApprovesCleanTrade tests the happy pipeline path
func TestCalculateTradeRisk_ApprovesCleanTrade(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "AAPL",
		EntryPrice:   150.0,
		AccountValue: 100000,
		Direction:    DirectionLong,
		TargetPrice:  160.0,
	})

	assert.Equal(t, RecommendationApprove, metrics.Recommendation)
	require.NotNil(t, metrics.StopLoss)
	assert.Less(t, metrics.StopLoss.Price, 150.0)
	require.NotNil(t, metrics.PositionSize)
	assert.Greater(t, metrics.PositionSize.Shares, 0)
	assert.Nil(t, metrics.PortfolioRisk)
	assert.GreaterOrEqual(t, metrics.RiskScore, 0.0)
	assert.LessOrEqual(t, metrics.RiskScore, 100.0)
}

// TestCalculateTradeRisk_ShortStopAboveEntry tests the direction/stop invariant
func TestCalculateTradeRisk_ShortStopAboveEntry(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "TSLA",
		EntryPrice:   200.0,
		AccountValue: 100000,
		Direction:    DirectionShort,
	})

	require.NotNil(t, metrics.StopLoss)
	assert.Greater(t, metrics.StopLoss.Price, 200.0)
}

// TestCalculateTradeRisk_CatastrophicEntry tests the worst-case path
func TestCalculateTradeRisk_CatastrophicEntry(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "AAPL",
		EntryPrice:   -1.0,
		AccountValue: 100000,
	})

	assert.Equal(t, RecommendationReject, metrics.Recommendation)
	assert.Equal(t, 100.0, metrics.RiskScore)
	assert.NotEmpty(t, metrics.Metadata["error"])
	require.Len(t, metrics.Recommendations, 1)
	assert.Contains(t, metrics.Recommendations[0], "manual review required")
}

// TestCalculateTradeRisk_Deterministic tests byte-identical repeat runs
func TestCalculateTradeRisk_Deterministic(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	req := TradeRequest{
		Ticker:       "AAPL",
		EntryPrice:   150.0,
		AccountValue: 100000,
		Direction:    DirectionLong,
		TargetPrice:  165.0,
		ExistingPositions: []Position{
			{Ticker: "MSFT", Shares: 40, CurrentPrice: 300, MarketValue: 12000, Sector: "Technology"},
			{Ticker: "XOM", Shares: 100, CurrentPrice: 110, MarketValue: 11000, Sector: "Energy"},
		},
		Sector: "Technology",
	}

	first, err := json.Marshal(calc.CalculateTradeRisk(req))
	require.NoError(t, err)
	second, err := json.Marshal(calc.CalculateTradeRisk(req))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestCalculateTradeRisk_HypotheticalPositionFlatPnL tests that the candidate
// enters the portfolio with zero unrealized P&L
func TestCalculateTradeRisk_HypotheticalPositionFlatPnL(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "AAPL",
		EntryPrice:   150.0,
		AccountValue: 100000,
		ExistingPositions: []Position{
			{Ticker: "XOM", Shares: 100, CurrentPrice: 110, MarketValue: 11000, Sector: "Energy"},
		},
		Sector: "Technology",
	})

	require.NotNil(t, metrics.PortfolioRisk)
	// The candidate contributed exposure but no P&L distortion: its risk
	// entry reflects shares and stop distance only.
	assert.Contains(t, metrics.PortfolioRisk.PositionRisks, "AAPL")
}

// TestCalculateTradeRisk_ZeroSharesRejected tests the sizing feasibility rule
func TestCalculateTradeRisk_ZeroSharesRejected(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	// An account too small to afford a single share.
	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "BRK.A",
		EntryPrice:   600000,
		AccountValue: 10000,
	})

	require.NotNil(t, metrics.PositionSize)
	assert.Equal(t, 0, metrics.PositionSize.Shares)
	assert.Equal(t, RecommendationReject, metrics.Recommendation)
}

// TestCalculateTradeRisk_ATRFromHistory tests ATR estimation feeding the stop
func TestCalculateTradeRisk_ATRFromHistory(t *testing.T) {
	cfg := ModerateConfig()
	cfg.StopLossMethod = StopATR
	calc := newCalculator(t, cfg)

	history := make([]types.OHLCV, 30)
	for i := range history {
		history[i] = types.OHLCV{Open: 100, High: 102, Low: 98, Close: 100}
	}

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "AAPL",
		EntryPrice:   100.0,
		AccountValue: 100000,
		History:      history,
	})

	require.NotNil(t, metrics.StopLoss)
	assert.Equal(t, StopATR, metrics.StopLoss.Method)
	// True range is constantly 4, multiplier 2: stop at 92.
	assert.InDelta(t, 92.0, metrics.StopLoss.Price, 1e-9)
	assert.InDelta(t, 4.0, metrics.Metadata["atr"], 1e-9)
}

// TestCalculateTradeRisk_AnchorLevelSelection tests support level picking
func TestCalculateTradeRisk_AnchorLevelSelection(t *testing.T) {
	cfg := ModerateConfig()
	cfg.StopLossMethod = StopSupportResistance
	calc := newCalculator(t, cfg)

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:                  "AAPL",
		EntryPrice:              100.0,
		AccountValue:            100000,
		SupportResistanceLevels: []float64{80, 95, 105, 110},
	})

	require.NotNil(t, metrics.StopLoss)
	// Nearest support below entry is 95, buffered 1% lower.
	assert.InDelta(t, 94.05, metrics.StopLoss.Price, 1e-9)
}

// TestCalculateTradeRisk_SectorConcentration tests that loading up a hot
// sector surfaces the breach without lowering the score
func TestCalculateTradeRisk_SectorConcentration(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())
	assessor := newAssessor(t, ModerateConfig())

	existing := []Position{
		{Ticker: "AAPL", Shares: 80, CurrentPrice: 150, MarketValue: 12000, Sector: "Technology"},
		{Ticker: "MSFT", Shares: 40, CurrentPrice: 300, MarketValue: 12000, Sector: "Technology"},
		{Ticker: "NVDA", Shares: 22, CurrentPrice: 500, MarketValue: 11000, Sector: "Technology"},
	}
	baseline := assessor.Assess(existing, 100000, nil, nil)

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:            "AMD",
		EntryPrice:        100.0,
		AccountValue:      100000,
		ExistingPositions: existing,
		Sector:            "Technology",
	})

	require.NotNil(t, metrics.PortfolioRisk)
	assert.Greater(t, metrics.PortfolioRisk.SectorExposure["Technology"], 30.0)
	assert.GreaterOrEqual(t, metrics.PortfolioRisk.RiskScore, baseline.RiskScore)

	found := false
	for _, warning := range metrics.Warnings {
		if strings.Contains(warning, "Technology") {
			found = true
		}
	}
	assert.True(t, found, "expected a sector warning, got %v", metrics.Warnings)
}

// TestCalculateTradeRisk_HighRiskPortfolioReduces tests the reduce verdict on
// a portfolio that blows through every budget
func TestCalculateTradeRisk_HighRiskPortfolioReduces(t *testing.T) {
	cfg := ModerateConfig()
	cfg.StopLossMethod = StopATR
	calc := newCalculator(t, cfg)

	existing := []Position{
		{Ticker: "AAPL", Shares: 300, CurrentPrice: 100, MarketValue: 30000, StopLossPrice: 40, Sector: "Technology"},
		{Ticker: "MSFT", Shares: 300, CurrentPrice: 100, MarketValue: 30000, StopLossPrice: 40, Sector: "Technology"},
		{Ticker: "NVDA", Shares: 300, CurrentPrice: 100, MarketValue: 30000, StopLossPrice: 40, Sector: "Technology"},
	}

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:            "AMD",
		EntryPrice:        100.0,
		AccountValue:      100000,
		ATR:               10.0, // wide stop: 20% from entry
		ExistingPositions: existing,
		Sector:            "Technology",
	})

	assert.NotEqual(t, RecommendationApprove, metrics.Recommendation)
	assert.GreaterOrEqual(t, metrics.RiskScore, 50.0)
}

// TestReport_SectionOrder tests the fixed plaintext report contract
func TestReport_SectionOrder(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "AAPL",
		EntryPrice:   150.0,
		AccountValue: 100000,
		TargetPrice:  160.0,
		ExistingPositions: []Position{
			{Ticker: "XOM", Shares: 100, CurrentPrice: 110, MarketValue: 11000, Sector: "Energy"},
		},
		Sector: "Technology",
	})
	report := metrics.Report()

	sections := []string{
		"=== Risk Assessment for AAPL ===",
		"--- Stop-Loss ---",
		"--- Position Sizing ---",
		"--- Portfolio Risk ---",
		"--- Warnings ---",
		"--- Recommendations ---",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(report, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

// TestReport_OmitsEmptySections tests that nil sub-results drop their sections
func TestReport_OmitsEmptySections(t *testing.T) {
	metrics := RiskMetrics{
		Ticker:         "AAPL",
		EntryPrice:     150.0,
		Recommendation: RecommendationReject,
		RiskScore:      100,
	}
	report := metrics.Report()

	assert.NotContains(t, report, "--- Stop-Loss ---")
	assert.NotContains(t, report, "--- Position Sizing ---")
	assert.NotContains(t, report, "--- Portfolio Risk ---")
	assert.NotContains(t, report, "--- Warnings ---")
}

// TestRiskMetrics_ToMap tests the state-exchange serialization shape
func TestRiskMetrics_ToMap(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	metrics := calc.CalculateTradeRisk(TradeRequest{
		Ticker:       "AAPL",
		EntryPrice:   150.0,
		AccountValue: 100000,
	})
	out := metrics.ToMap()

	assert.Equal(t, "AAPL", out["ticker"])
	assert.Equal(t, 150.0, out["entry_price"])
	assert.Equal(t, string(metrics.Recommendation), out["recommendation"])

	stop, ok := out["stop_loss"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, metrics.StopLoss.Price, stop["price"])

	size, ok := out["position_size"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, metrics.PositionSize.Shares, size["shares"])

	assert.Nil(t, out["portfolio_risk"])
}

// TestCombinedScore_StopContributions tests the stop-loss score ladder
func TestCombinedScore_StopContributions(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	wide := calc.combinedScore(RiskMetrics{
		StopLoss:     &StopLoss{Percentage: 15},
		PositionSize: &PositionSize{Shares: 10, PositionPct: 5},
	})
	assert.InDelta(t, 10.0, wide, 1e-9) // min(2*(15-10), 25)

	tight := calc.combinedScore(RiskMetrics{
		StopLoss:     &StopLoss{Percentage: 0.5},
		PositionSize: &PositionSize{Shares: 10, PositionPct: 5},
	})
	assert.InDelta(t, 10.0, tight, 1e-9)

	missing := calc.combinedScore(RiskMetrics{
		PositionSize: &PositionSize{Shares: 10, PositionPct: 5},
	})
	assert.InDelta(t, 15.0, missing, 1e-9)
}

// TestRecommend_Thresholds tests the verdict boundaries
func TestRecommend_Thresholds(t *testing.T) {
	calc := newCalculator(t, ModerateConfig())

	assert.Equal(t, RecommendationReject, calc.recommend(RiskMetrics{RiskScore: 70}))
	assert.Equal(t, RecommendationReduce, calc.recommend(RiskMetrics{RiskScore: 50}))
	assert.Equal(t, RecommendationApprove, calc.recommend(RiskMetrics{RiskScore: 49.9}))
	assert.Equal(t, RecommendationReject, calc.recommend(RiskMetrics{
		RiskScore:    10,
		PositionSize: &PositionSize{Shares: 0},
	}))
}
