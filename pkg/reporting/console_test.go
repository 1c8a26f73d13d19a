package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradingagents/advisor/internal/risk"
)

// TestConsoleReporter_Render tests the human view carries the key figures
func TestConsoleReporter_Render(t *testing.T) {
	reporter := NewConsoleReporter()
	reporter.NoColors = true

	out := reporter.Render(sampleMetrics(t))

	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "$150.00")
	assert.Contains(t, out, "Portfolio Risk")
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "Recommendations:")
}

// TestConsoleReporter_NoPortfolio tests rendering without a portfolio section
func TestConsoleReporter_NoPortfolio(t *testing.T) {
	reporter := NewConsoleReporter()
	reporter.NoColors = true

	out := reporter.Render(risk.RiskMetrics{
		Ticker:         "TSLA",
		EntryPrice:     200,
		Recommendation: risk.RecommendationApprove,
		RiskScore:      12.5,
	})

	assert.Contains(t, out, "TSLA")
	assert.Contains(t, out, "APPROVE")
	assert.NotContains(t, out, "Portfolio Risk")
}
