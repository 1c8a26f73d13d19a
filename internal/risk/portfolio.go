package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/tradingagents/advisor/pkg/types"
)

// minCorrelationObservations is the smallest overlap of daily returns a pair
// must share before a Pearson estimate is trusted.
const minCorrelationObservations = 20

// Internal alert thresholds for the warning checks; risk contributions above
// these are surfaced even when no hard cap is breached.
const (
	concentrationWarnPct = 10.0
	correlationWarnPct   = 5.0
)

// CorrelationMatrix maps ticker pairs to return correlations. Lookups are
// symmetric; only one orientation needs to be populated.
type CorrelationMatrix map[string]map[string]float64

// Lookup returns the correlation for a pair in either orientation.
func (m CorrelationMatrix) Lookup(a, b string) (float64, bool) {
	if row, ok := m[a]; ok {
		if rho, ok := row[b]; ok {
			return rho, true
		}
	}
	if row, ok := m[b]; ok {
		if rho, ok := row[a]; ok {
			return rho, true
		}
	}
	return 0, false
}

// PortfolioRisk is the result of a portfolio assessment.
type PortfolioRisk struct {
	TotalRiskPct      float64            `json:"total_risk_pct"`
	ConcentrationRisk float64            `json:"concentration_risk"`
	CorrelationRisk   float64            `json:"correlation_risk"`
	SectorExposure    map[string]float64 `json:"sector_exposure"`
	PositionRisks     map[string]float64 `json:"position_risks"`
	RiskScore         float64            `json:"risk_score"`
	Warnings          []string           `json:"warnings,omitempty"`
	Recommendations   []string           `json:"recommendations,omitempty"`
}

// PositionLimit reports the share caps that bound a new purchase, plus the
// risk-budget diagnostics behind them. RecommendedMax is never negative.
type PositionLimit struct {
	IndividualLimit        int     `json:"individual_limit"`
	PortfolioRiskLimit     int     `json:"portfolio_risk_limit"`
	SectorLimit            int     `json:"sector_limit"`
	RecommendedMax         int     `json:"recommended_max"`
	CurrentTotalRiskPct    float64 `json:"current_total_risk_pct"`
	RemainingRiskBudgetPct float64 `json:"remaining_risk_budget_pct"`
}

// PortfolioAssessor evaluates aggregate risk across holdings.
type PortfolioAssessor struct {
	config Config
}

// NewPortfolioAssessor creates a new portfolio risk assessor.
func NewPortfolioAssessor(cfg Config) (*PortfolioAssessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PortfolioAssessor{config: cfg}, nil
}

// Assess computes per-position, concentration, correlation and sector risk
// for the given holdings. correlations may be nil; history (close series per
// ticker) is used to estimate missing pairs. With no correlation data at all
// a conservative default of 1% per position applies.
func (a *PortfolioAssessor) Assess(positions []Position, accountValue float64, correlations CorrelationMatrix, history map[string][]float64) PortfolioRisk {
	result := PortfolioRisk{
		SectorExposure: map[string]float64{},
		PositionRisks:  map[string]float64{},
	}
	if accountValue <= 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("account value %.2f is not positive", accountValue))
		return result
	}

	positionRiskTotal := 0.0
	for _, pos := range positions {
		risk := a.positionRiskPct(pos, accountValue)
		result.PositionRisks[pos.Ticker] = risk
		positionRiskTotal += risk
		result.SectorExposure[pos.SectorOrUnknown()] += pos.WeightPct(accountValue)
	}

	result.ConcentrationRisk = a.concentrationRisk(positions, accountValue)
	correlationRisk, noCorrelationData := a.correlationRisk(positions, accountValue, correlations, history)
	result.CorrelationRisk = correlationRisk
	if noCorrelationData {
		result.Warnings = append(result.Warnings, "no correlation data available, applying conservative default")
	}

	result.TotalRiskPct = math.Min(100, positionRiskTotal+result.ConcentrationRisk+result.CorrelationRisk)
	result.RiskScore = a.riskScore(result, positions)

	a.appendChecks(&result, positions, accountValue)
	return result
}

// positionRiskPct is the loss, as a percentage of the account, if the
// position's stop is hit. Without a stop the configured stop percentage is
// assumed against the position's weight.
func (a *PortfolioAssessor) positionRiskPct(pos Position, accountValue float64) float64 {
	if pos.StopLossPrice > 0 {
		return pos.Shares * math.Abs(pos.CurrentPrice-pos.StopLossPrice) / accountValue * 100
	}
	return pos.WeightPct(accountValue) * a.config.StopLossPercentage / 100
}

// concentrationRisk penalizes oversized positions and thin portfolios.
func (a *PortfolioAssessor) concentrationRisk(positions []Position, accountValue float64) float64 {
	risk := 0.0
	for _, pos := range positions {
		if excess := pos.WeightPct(accountValue) - a.config.MaxPositionSizePct; excess > 0 {
			risk += 0.5 * excess
		}
	}
	if len(positions) < 3 {
		risk += 2 * float64(3-len(positions))
	}
	return risk
}

// correlationRisk sums weighted contributions of highly correlated pairs.
// The bool reports that no correlation information could be obtained and the
// conservative default was applied.
func (a *PortfolioAssessor) correlationRisk(positions []Position, accountValue float64, correlations CorrelationMatrix, history map[string][]float64) (float64, bool) {
	if len(positions) < 2 {
		return 0, false
	}

	if correlations == nil {
		correlations = EstimateCorrelations(history)
	}

	haveData := false
	risk := 0.0
	// Sorted pair iteration keeps the assessment deterministic.
	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ticker < sorted[j].Ticker })

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			rho, ok := correlations.Lookup(sorted[i].Ticker, sorted[j].Ticker)
			if !ok {
				continue
			}
			haveData = true
			if math.Abs(rho) <= a.config.MaxCorrelation {
				continue
			}
			wi := sorted[i].WeightPct(accountValue) / 100
			wj := sorted[j].WeightPct(accountValue) / 100
			risk += wi * wj * math.Abs(rho) * 100
		}
	}

	if !haveData {
		return float64(len(positions)) * 1.0, true
	}
	return risk, false
}

// EstimateCorrelations builds a correlation matrix from per-ticker close
// series using pairwise Pearson on daily returns. Pairs with fewer than 20
// overlapping return observations are skipped.
func EstimateCorrelations(history map[string][]float64) CorrelationMatrix {
	if len(history) < 2 {
		return CorrelationMatrix{}
	}

	tickers := make([]string, 0, len(history))
	for ticker := range history {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	matrix := CorrelationMatrix{}
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			ri := types.DailyReturns(history[tickers[i]])
			rj := types.DailyReturns(history[tickers[j]])
			n := len(ri)
			if len(rj) < n {
				n = len(rj)
			}
			if n < minCorrelationObservations {
				continue
			}
			// Align on the most recent n observations.
			rho, ok := pearson(ri[len(ri)-n:], rj[len(rj)-n:])
			if !ok {
				continue
			}
			if matrix[tickers[i]] == nil {
				matrix[tickers[i]] = map[string]float64{}
			}
			matrix[tickers[i]][tickers[j]] = rho
		}
	}
	return matrix
}

// pearson computes the sample correlation of two equal-length series. It
// reports false when either series has zero variance.
func pearson(x, y []float64) (float64, bool) {
	n := float64(len(x))
	if n == 0 {
		return 0, false
	}

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// riskScore folds the component risks into a 0-100 score with capped
// additive contributions.
func (a *PortfolioAssessor) riskScore(result PortfolioRisk, positions []Position) float64 {
	score := 0.0

	if excess := result.TotalRiskPct - a.config.MaxPortfolioRiskPct; excess > 0 {
		score += math.Min(2*excess, 30)
	}
	score += math.Min(result.ConcentrationRisk, 25)
	score += math.Min(result.CorrelationRisk, 20)

	maxSector := 0.0
	for _, exposure := range result.SectorExposure {
		maxSector = math.Max(maxSector, exposure)
	}
	if excess := maxSector - a.config.MaxSectorConcentrationPct; excess > 0 {
		score += math.Min(0.5*excess, 15)
	}

	if sectors := len(result.SectorExposure); sectors < 3 {
		score += 5 * float64(3-sectors)
	}

	return math.Min(score, 100)
}

// appendChecks runs the deterministic warning checks in their fixed order,
// pairing each warning with a remediation suggestion.
func (a *PortfolioAssessor) appendChecks(result *PortfolioRisk, positions []Position, accountValue float64) {
	if result.TotalRiskPct > a.config.MaxPortfolioRiskPct {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"total portfolio risk %.2f%% exceeds maximum %.2f%%", result.TotalRiskPct, a.config.MaxPortfolioRiskPct))
		result.Recommendations = append(result.Recommendations,
			"Reduce existing position risk before adding new exposure")
	}

	if result.ConcentrationRisk > concentrationWarnPct {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"concentration risk %.2f%% is elevated", result.ConcentrationRisk))
		result.Recommendations = append(result.Recommendations,
			"Rebalance oversized positions toward the per-position cap")
	}

	oversized := []string{}
	for _, pos := range sortedByTicker(positions) {
		if pos.WeightPct(accountValue) > a.config.MaxPositionSizePct {
			oversized = append(oversized, pos.Ticker)
		}
	}
	for _, ticker := range oversized {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"position %s exceeds %.1f%% of the account", ticker, a.config.MaxPositionSizePct))
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"Trim %s below the %.1f%% position cap", ticker, a.config.MaxPositionSizePct))
	}

	if result.CorrelationRisk > correlationWarnPct {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"correlation risk %.2f%% is elevated", result.CorrelationRisk))
		result.Recommendations = append(result.Recommendations,
			"Diversify into assets with lower return correlation")
	}

	sectors := make([]string, 0, len(result.SectorExposure))
	for sector := range result.SectorExposure {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)
	for _, sector := range sectors {
		if result.SectorExposure[sector] > a.config.MaxSectorConcentrationPct {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"sector %s exposure %.2f%% exceeds maximum %.2f%%",
				sector, result.SectorExposure[sector], a.config.MaxSectorConcentrationPct))
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"Reduce %s exposure below %.1f%%", sector, a.config.MaxSectorConcentrationPct))
		}
	}

	if len(positions) < 3 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"portfolio holds only %d position(s)", len(positions)))
		result.Recommendations = append(result.Recommendations,
			"Add positions to improve diversification")
	}

	if len(result.SectorExposure) < 3 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"portfolio spans only %d sector(s)", len(result.SectorExposure)))
		result.Recommendations = append(result.Recommendations,
			"Spread holdings across more sectors")
	}

	riskyLimit := 2 * a.config.RiskPerTradePct
	for _, pos := range sortedByTicker(positions) {
		if result.PositionRisks[pos.Ticker] > riskyLimit {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"position %s risks %.2f%% of the account, above %.2f%%",
				pos.Ticker, result.PositionRisks[pos.Ticker], riskyLimit))
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"Tighten the stop or reduce size on %s", pos.Ticker))
		}
	}
}

// Limit computes the share caps that bound a new purchase of ticker at price
// given the existing holdings: the per-position cap, the remaining portfolio
// risk budget, and the sector headroom.
func (a *PortfolioAssessor) Limit(ticker string, price, accountValue float64, existing []Position, sector string) PositionLimit {
	limit := PositionLimit{}
	if price <= 0 || accountValue <= 0 {
		return limit
	}

	limit.IndividualLimit = int(math.Floor(accountValue * a.config.MaxPositionSizePct / 100 / price))

	currentRisk := 0.0
	for _, pos := range existing {
		currentRisk += a.positionRiskPct(pos, accountValue)
	}
	limit.CurrentTotalRiskPct = currentRisk
	limit.RemainingRiskBudgetPct = math.Max(0, a.config.MaxPortfolioRiskPct-currentRisk)

	// Risk per share for the candidate is assumed at the configured stop
	// percentage, matching the stop-less position risk rule.
	riskPerShare := price * a.config.StopLossPercentage / 100
	if riskPerShare > 0 {
		budget := accountValue * limit.RemainingRiskBudgetPct / 100
		limit.PortfolioRiskLimit = int(math.Floor(budget / riskPerShare))
	}

	if sector == "" {
		sector = "Unknown"
	}
	sectorExposure := 0.0
	for _, pos := range existing {
		if pos.SectorOrUnknown() == sector {
			sectorExposure += pos.WeightPct(accountValue)
		}
	}
	headroom := math.Max(0, a.config.MaxSectorConcentrationPct-sectorExposure)
	limit.SectorLimit = int(math.Floor(accountValue * headroom / 100 / price))

	limit.RecommendedMax = limit.IndividualLimit
	if limit.PortfolioRiskLimit < limit.RecommendedMax {
		limit.RecommendedMax = limit.PortfolioRiskLimit
	}
	if limit.SectorLimit < limit.RecommendedMax {
		limit.RecommendedMax = limit.SectorLimit
	}
	if limit.RecommendedMax < 0 {
		limit.RecommendedMax = 0
	}
	return limit
}

func sortedByTicker(positions []Position) []Position {
	sorted := make([]Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ticker < sorted[j].Ticker })
	return sorted
}
