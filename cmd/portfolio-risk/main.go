package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tradingagents/advisor/cmd/common"
	"github.com/tradingagents/advisor/internal/config"
	"github.com/tradingagents/advisor/internal/risk"
	"github.com/tradingagents/advisor/pkg/reporting"
)

func main() {
	commonFlags := common.RegisterCommonFlags()

	portfolioFile := flag.String("portfolio", "", "JSON file with existing positions (required)")
	ticker := flag.String("ticker", "", "Candidate ticker for position limits (optional)")
	price := flag.Float64("price", 0, "Candidate price for position limits")
	sector := flag.String("sector", "", "Candidate sector for position limits")
	flag.Parse()

	if *commonFlags.Version {
		common.PrintVersion("portfolio-risk")
		return
	}
	if *portfolioFile == "" {
		common.Exitf("usage: portfolio-risk -portfolio FILE [flags]")
	}

	_ = godotenv.Load(*commonFlags.EnvFile)
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

	positions, err := reporting.ReadPositions(*portfolioFile)
	if err != nil {
		common.Exitf("failed to load portfolio: %v", err)
	}

	assessor, err := risk.NewPortfolioAssessor(cfg)
	if err != nil {
		common.Exitf("failed to build assessor: %v", err)
	}

	assessment := assessor.Assess(positions, account, nil, nil)
	printAssessment(assessment)

	if *ticker != "" && *price > 0 {
		limit := assessor.Limit(strings.ToUpper(*ticker), *price, account, positions, *sector)
		fmt.Printf("\nPosition limits for %s at $%.2f:\n", strings.ToUpper(*ticker), *price)
		fmt.Printf("  Individual cap:       %d shares\n", limit.IndividualLimit)
		fmt.Printf("  Portfolio risk cap:   %d shares\n", limit.PortfolioRiskLimit)
		fmt.Printf("  Sector cap:           %d shares\n", limit.SectorLimit)
		fmt.Printf("  Recommended maximum:  %d shares\n", limit.RecommendedMax)
		fmt.Printf("  Current total risk:   %.2f%%\n", limit.CurrentTotalRiskPct)
		fmt.Printf("  Remaining budget:     %.2f%%\n", limit.RemainingRiskBudgetPct)
	}
}

func printAssessment(p risk.PortfolioRisk) {
	fmt.Printf("Portfolio risk score: %.1f/100\n", p.RiskScore)
	fmt.Printf("Total risk: %.2f%% (concentration %.2f%%, correlation %.2f%%)\n",
		p.TotalRiskPct, p.ConcentrationRisk, p.CorrelationRisk)

	sectors := make([]string, 0, len(p.SectorExposure))
	for sector := range p.SectorExposure {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	for _, sector := range sectors {
		fmt.Printf("  %s: %.2f%%\n", sector, p.SectorExposure[sector])
	}

	for _, warning := range p.Warnings {
		fmt.Printf("! %s\n", warning)
	}
	for _, rec := range p.Recommendations {
		fmt.Printf("> %s\n", rec)
	}
}
