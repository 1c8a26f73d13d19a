package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tradingagents/advisor/internal/risk"
)

// ConsoleReporter renders an assessment as styled tables for humans. The
// fixed-format plaintext contract report lives in the risk package; this
// view is free to change.
type ConsoleReporter struct {
	NoColors bool
}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// Render returns the full console view of an assessment.
func (r *ConsoleReporter) Render(m risk.RiskMetrics) string {
	var b strings.Builder

	b.WriteString(r.summaryTable(m))
	if m.PortfolioRisk != nil {
		b.WriteString("\n")
		b.WriteString(r.portfolioTable(*m.PortfolioRisk))
	}
	if len(m.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, warning := range m.Warnings {
			fmt.Fprintf(&b, "  ! %s\n", warning)
		}
	}
	if len(m.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range m.Recommendations {
			fmt.Fprintf(&b, "  > %s\n", rec)
		}
	}
	return b.String()
}

func (r *ConsoleReporter) summaryTable(m risk.RiskMetrics) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Risk Assessment: %s", m.Ticker)

	t.AppendRow(table.Row{"Entry Price", fmt.Sprintf("$%.2f", m.EntryPrice)})
	t.AppendRow(table.Row{"Risk Score", fmt.Sprintf("%.1f/100", m.RiskScore)})
	t.AppendRow(table.Row{"Recommendation", r.colorRecommendation(m.Recommendation)})

	if m.StopLoss != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Stop-Loss", fmt.Sprintf("$%.2f (%.2f%%)", m.StopLoss.Price, m.StopLoss.Percentage)})
		t.AppendRow(table.Row{"Stop Method", string(m.StopLoss.Method)})
		if m.StopLoss.RiskRewardRatio > 0 {
			t.AppendRow(table.Row{"Risk-Reward", fmt.Sprintf("%.2f", m.StopLoss.RiskRewardRatio)})
		}
	}
	if m.PositionSize != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"Shares", m.PositionSize.Shares})
		t.AppendRow(table.Row{"Dollar Amount", fmt.Sprintf("$%.2f (%.2f%%)", m.PositionSize.DollarAmount, m.PositionSize.PositionPct)})
		t.AppendRow(table.Row{"Risk Amount", fmt.Sprintf("$%.2f", m.PositionSize.RiskAmount)})
		t.AppendRow(table.Row{"Sizing Method", string(m.PositionSize.Method)})
	}

	return t.Render() + "\n"
}

func (r *ConsoleReporter) portfolioTable(p risk.PortfolioRisk) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Portfolio Risk (score %.1f/100)", p.RiskScore)
	t.AppendHeader(table.Row{"Component", "Value"})

	t.AppendRow(table.Row{"Total Risk", fmt.Sprintf("%.2f%%", p.TotalRiskPct)})
	t.AppendRow(table.Row{"Concentration", fmt.Sprintf("%.2f%%", p.ConcentrationRisk)})
	t.AppendRow(table.Row{"Correlation", fmt.Sprintf("%.2f%%", p.CorrelationRisk)})

	tickers := make([]string, 0, len(p.PositionRisks))
	for ticker := range p.PositionRisks {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	if len(tickers) > 0 {
		t.AppendSeparator()
		for _, ticker := range tickers {
			t.AppendRow(table.Row{"Risk " + ticker, fmt.Sprintf("%.2f%%", p.PositionRisks[ticker])})
		}
	}

	sectors := make([]string, 0, len(p.SectorExposure))
	for sector := range p.SectorExposure {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	if len(sectors) > 0 {
		t.AppendSeparator()
		for _, sector := range sectors {
			t.AppendRow(table.Row{"Sector " + sector, fmt.Sprintf("%.2f%%", p.SectorExposure[sector])})
		}
	}

	return t.Render() + "\n"
}

func (r *ConsoleReporter) colorRecommendation(rec risk.Recommendation) string {
	if r.NoColors {
		return strings.ToUpper(string(rec))
	}
	switch rec {
	case risk.RecommendationApprove:
		return text.FgGreen.Sprint("APPROVE")
	case risk.RecommendationReduce:
		return text.FgYellow.Sprint("REDUCE")
	default:
		return text.FgRed.Sprint("REJECT")
	}
}
