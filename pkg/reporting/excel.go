package reporting

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/tradingagents/advisor/internal/risk"
)

// ExcelReporter exports an assessment as a workbook with Summary,
// Portfolio and Warnings sheets.
type ExcelReporter struct{}

// NewExcelReporter creates a new excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// Write saves the assessment workbook to path.
func (r *ExcelReporter) Write(m risk.RiskMetrics, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("failed to prepare summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Ticker", m.Ticker},
		{"Entry Price", m.EntryPrice},
		{"Risk Score", m.RiskScore},
		{"Recommendation", string(m.Recommendation)},
	}
	if m.StopLoss != nil {
		rows = append(rows,
			[]interface{}{"Stop-Loss Price", m.StopLoss.Price},
			[]interface{}{"Stop-Loss %", m.StopLoss.Percentage},
			[]interface{}{"Stop Method", string(m.StopLoss.Method)},
			[]interface{}{"Risk-Reward Ratio", m.StopLoss.RiskRewardRatio},
		)
	}
	if m.PositionSize != nil {
		rows = append(rows,
			[]interface{}{"Shares", m.PositionSize.Shares},
			[]interface{}{"Dollar Amount", m.PositionSize.DollarAmount},
			[]interface{}{"Position %", m.PositionSize.PositionPct},
			[]interface{}{"Risk Amount", m.PositionSize.RiskAmount},
			[]interface{}{"Sizing Method", string(m.PositionSize.Method)},
		)
	}
	if err := writeRows(f, summary, rows); err != nil {
		return err
	}

	if m.PortfolioRisk != nil {
		if err := r.writePortfolioSheet(f, *m.PortfolioRisk); err != nil {
			return err
		}
	}
	if len(m.Warnings) > 0 || len(m.Recommendations) > 0 {
		if err := r.writeWarningsSheet(f, m); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (r *ExcelReporter) writePortfolioSheet(f *excelize.File, p risk.PortfolioRisk) error {
	const sheet = "Portfolio"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create portfolio sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Total Risk %", p.TotalRiskPct},
		{"Concentration Risk %", p.ConcentrationRisk},
		{"Correlation Risk %", p.CorrelationRisk},
		{"Portfolio Risk Score", p.RiskScore},
	}

	tickers := make([]string, 0, len(p.PositionRisks))
	for ticker := range p.PositionRisks {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		rows = append(rows, []interface{}{"Position Risk " + ticker, p.PositionRisks[ticker]})
	}

	sectors := make([]string, 0, len(p.SectorExposure))
	for sector := range p.SectorExposure {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	for _, sector := range sectors {
		rows = append(rows, []interface{}{"Sector " + sector, p.SectorExposure[sector]})
	}

	return writeRows(f, sheet, rows)
}

func (r *ExcelReporter) writeWarningsSheet(f *excelize.File, m risk.RiskMetrics) error {
	const sheet = "Warnings"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create warnings sheet: %w", err)
	}

	rows := [][]interface{}{}
	for _, warning := range m.Warnings {
		rows = append(rows, []interface{}{"Warning", warning})
	}
	for _, rec := range m.Recommendations {
		rows = append(rows, []interface{}{"Recommendation", rec})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return nil
}
