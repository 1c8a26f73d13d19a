package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tradingagents/advisor/cmd/common"
	"github.com/tradingagents/advisor/internal/config"
	"github.com/tradingagents/advisor/internal/monitoring"
	"github.com/tradingagents/advisor/internal/risk"
	"github.com/tradingagents/advisor/pkg/reporting"
)

func main() {
	commonFlags := common.RegisterCommonFlags()

	ticker := flag.String("ticker", "", "Ticker symbol of the candidate trade")
	entry := flag.Float64("entry", 0, "Entry price")
	direction := flag.String("direction", "long", "Trade direction (long or short)")
	atr := flag.Float64("atr", 0, "Average true range (optional)")
	target := flag.Float64("target", 0, "Target price (optional)")
	levels := flag.String("levels", "", "Comma-separated support/resistance levels (optional)")
	sector := flag.String("sector", "", "Sector of the candidate (optional)")
	portfolioFile := flag.String("portfolio", "", "JSON file with existing positions (optional)")
	excelOut := flag.String("excel-out", "", "Write the assessment workbook to this path")
	flag.Parse()

	if *commonFlags.Version {
		common.PrintVersion("risk-advisor")
		return
	}
	if *ticker == "" || *entry == 0 {
		common.Exitf("usage: risk-advisor -ticker SYM -entry PRICE [flags]")
	}

	// .env is optional; flags and real env win over it.
	_ = godotenv.Load(*commonFlags.EnvFile)

	// The preset flag seeds the env-driven config unless RISK_PRESET is set.
	if *commonFlags.Preset != "" && os.Getenv("RISK_PRESET") == "" {
		os.Setenv("RISK_PRESET", *commonFlags.Preset)
	}
	cfg, err := config.Load()
	if err != nil {
		common.Exitf("invalid risk configuration: %v", err)
	}

	account := *commonFlags.Account
	if account == 0 {
		account = config.DefaultAccountBalance()
	}

	var positions []risk.Position
	if *portfolioFile != "" {
		positions, err = reporting.ReadPositions(*portfolioFile)
		if err != nil {
			common.Exitf("failed to load portfolio: %v", err)
		}
	}

	calc, err := risk.NewCalculator(cfg)
	if err != nil {
		common.Exitf("failed to build calculator: %v", err)
	}

	metrics := calc.CalculateTradeRisk(risk.TradeRequest{
		Ticker:                  strings.ToUpper(*ticker),
		EntryPrice:              *entry,
		AccountValue:            account,
		Direction:               risk.Direction(*direction),
		ATR:                     *atr,
		TargetPrice:             *target,
		SupportResistanceLevels: parseLevels(*levels),
		Sector:                  *sector,
		ExistingPositions:       positions,
	})
	monitoring.RecordAssessment(string(metrics.Recommendation), metrics.RiskScore)

	fmt.Println(metrics.Report())

	reporter := reporting.NewConsoleReporter()
	reporter.NoColors = *commonFlags.NoColors
	fmt.Println(reporter.Render(metrics))

	if *commonFlags.JSONOut != "" {
		if err := reporting.WriteRiskMetricsJSON(metrics, *commonFlags.JSONOut); err != nil {
			common.Exitf("failed to write JSON: %v", err)
		}
	}
	if *excelOut != "" {
		if err := reporting.NewExcelReporter().Write(metrics, *excelOut); err != nil {
			common.Exitf("failed to write workbook: %v", err)
		}
	}

	if *commonFlags.MetricsAddr != "" {
		fmt.Printf("serving metrics on %s/metrics (ctrl-c to stop)\n", *commonFlags.MetricsAddr)
		http.Handle("/metrics", monitoring.NewMetricsHandler())
		if err := http.ListenAndServe(*commonFlags.MetricsAddr, nil); err != nil {
			common.Exitf("metrics server failed: %v", err)
		}
	}
}

func parseLevels(raw string) []float64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	levels := make([]float64, 0, len(parts))
	for _, part := range parts {
		var level float64
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%f", &level); err == nil {
			levels = append(levels, level)
		}
	}
	return levels
}
