package risk

import (
	"fmt"
	"sort"
	"strings"
)

// Report renders the plaintext assessment. The section order and label
// strings are a stable interface consumed by downstream agents; sections
// with no data are omitted. Prices and percentages print with two decimals,
// scores with one.
func (m RiskMetrics) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Risk Assessment for %s ===\n", m.Ticker)
	fmt.Fprintf(&b, "Entry Price: $%.2f\n", m.EntryPrice)
	fmt.Fprintf(&b, "Risk Score: %.1f/100\n", m.RiskScore)
	fmt.Fprintf(&b, "Recommendation: %s\n", strings.ToUpper(string(m.Recommendation)))

	if m.StopLoss != nil {
		b.WriteString("\n--- Stop-Loss ---\n")
		fmt.Fprintf(&b, "Price: $%.2f (%.2f%% from entry)\n", m.StopLoss.Price, m.StopLoss.Percentage)
		fmt.Fprintf(&b, "Method: %s\n", m.StopLoss.Method)
		fmt.Fprintf(&b, "Risk per Share: $%.2f\n", m.StopLoss.RiskPerShare)
		if m.StopLoss.RiskRewardRatio > 0 {
			favorable := "no"
			if m.StopLoss.IsFavorable {
				favorable = "yes"
			}
			fmt.Fprintf(&b, "Risk-Reward Ratio: %.2f (favorable: %s)\n", m.StopLoss.RiskRewardRatio, favorable)
		}
	}

	if m.PositionSize != nil {
		b.WriteString("\n--- Position Sizing ---\n")
		fmt.Fprintf(&b, "Shares: %d\n", m.PositionSize.Shares)
		fmt.Fprintf(&b, "Dollar Amount: $%.2f (%.2f%% of account)\n", m.PositionSize.DollarAmount, m.PositionSize.PositionPct)
		fmt.Fprintf(&b, "Risk Amount: $%.2f\n", m.PositionSize.RiskAmount)
		fmt.Fprintf(&b, "Method: %s\n", m.PositionSize.Method)
	}

	if m.PortfolioRisk != nil {
		b.WriteString("\n--- Portfolio Risk ---\n")
		fmt.Fprintf(&b, "Total Risk: %.2f%%\n", m.PortfolioRisk.TotalRiskPct)
		fmt.Fprintf(&b, "Concentration Risk: %.2f%%\n", m.PortfolioRisk.ConcentrationRisk)
		fmt.Fprintf(&b, "Correlation Risk: %.2f%%\n", m.PortfolioRisk.CorrelationRisk)
		fmt.Fprintf(&b, "Portfolio Risk Score: %.1f/100\n", m.PortfolioRisk.RiskScore)

		sectors := make([]string, 0, len(m.PortfolioRisk.SectorExposure))
		for sector := range m.PortfolioRisk.SectorExposure {
			sectors = append(sectors, sector)
		}
		sort.Strings(sectors)
		for _, sector := range sectors {
			fmt.Fprintf(&b, "Sector %s: %.2f%%\n", sector, m.PortfolioRisk.SectorExposure[sector])
		}
	}

	if len(m.Warnings) > 0 {
		b.WriteString("\n--- Warnings ---\n")
		for _, warning := range m.Warnings {
			fmt.Fprintf(&b, "- %s\n", warning)
		}
	}

	if len(m.Recommendations) > 0 {
		b.WriteString("\n--- Recommendations ---\n")
		for _, rec := range m.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	return b.String()
}
