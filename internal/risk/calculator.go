package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/tradingagents/advisor/internal/indicators"
	"github.com/tradingagents/advisor/pkg/types"
)

// Recommendation is the overall verdict on a candidate trade.
type Recommendation string

const (
	RecommendationApprove Recommendation = "approve"
	RecommendationReduce  Recommendation = "reduce"
	RecommendationReject  Recommendation = "reject"
)

// Score thresholds for the verdict.
const (
	rejectScore = 70.0
	reduceScore = 50.0
)

// RiskMetrics is the combined, serializable result of a trade risk
// assessment. Nil sub-results mean that stage could not produce output; the
// warnings explain why.
type RiskMetrics struct {
	Ticker          string                 `json:"ticker"`
	EntryPrice      float64                `json:"entry_price"`
	StopLoss        *StopLoss              `json:"stop_loss"`
	PositionSize    *PositionSize          `json:"position_size"`
	PortfolioRisk   *PortfolioRisk         `json:"portfolio_risk"`
	Recommendation  Recommendation         `json:"recommendation"`
	RiskScore       float64                `json:"risk_score"`
	Warnings        []string               `json:"warnings"`
	Recommendations []string               `json:"recommendations"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// TradeRequest carries the inputs of a single assessment. Optional fields
// are zero / nil / empty when absent.
type TradeRequest struct {
	Ticker                  string
	EntryPrice              float64
	AccountValue            float64
	Direction               Direction
	ATR                     float64
	TargetPrice             float64
	History                 []types.OHLCV
	ExistingPositions       []Position
	SupportResistanceLevels []float64
	Sector                  string
	Stats                   *SizingStats
}

// Calculator is the top-level entry point composing the three leaf
// calculators under one policy. It holds only the immutable config and is
// freely shareable.
type Calculator struct {
	config    Config
	stops     *StopLossCalculator
	sizer     *PositionSizeCalculator
	portfolio *PortfolioAssessor
}

// NewCalculator creates the orchestrating risk calculator. The config is
// validated once; all later calls are non-failing pure computation.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{
		config:    cfg,
		stops:     &StopLossCalculator{config: cfg},
		sizer:     &PositionSizeCalculator{config: cfg},
		portfolio: &PortfolioAssessor{config: cfg},
	}, nil
}

// Config returns the policy the calculator was built with.
func (c *Calculator) Config() Config {
	return c.config
}

// CalculateTradeRisk runs the full pipeline: stop-loss, position size,
// portfolio assessment, combined scoring and the final recommendation. It
// never returns an error; any unexpected fault yields a worst-case result.
func (c *Calculator) CalculateTradeRisk(req TradeRequest) (metrics RiskMetrics) {
	defer func() {
		if r := recover(); r != nil {
			metrics = c.failureMetrics(req, fmt.Errorf("internal fault: %v", r))
		}
	}()

	if req.EntryPrice <= 0 {
		return c.failureMetrics(req, fmt.Errorf("entry price %.2f is not positive", req.EntryPrice))
	}
	if req.AccountValue <= 0 {
		return c.failureMetrics(req, fmt.Errorf("account value %.2f is not positive", req.AccountValue))
	}

	direction := req.Direction
	if direction == "" {
		direction = DirectionLong
	}

	metrics = RiskMetrics{
		Ticker:          req.Ticker,
		EntryPrice:      req.EntryPrice,
		Warnings:        []string{},
		Recommendations: []string{},
		Metadata: map[string]interface{}{
			"account_value": req.AccountValue,
			"direction":     string(direction),
		},
	}

	atr := req.ATR
	if atr <= 0 && len(req.History) > 0 {
		if estimated, err := indicators.ATR(req.History, indicators.DefaultATRPeriod); err == nil {
			atr = estimated
			metrics.Metadata["atr"] = atr
		} else {
			metrics.Warnings = append(metrics.Warnings, "insufficient history to estimate ATR")
		}
	}

	// Stage 1: stop-loss.
	level := selectAnchorLevel(req.SupportResistanceLevels, req.EntryPrice, direction)
	stop := c.stops.Calculate(req.EntryPrice, direction, atr, level, req.TargetPrice)
	metrics.Warnings = append(metrics.Warnings, stop.Warnings...)
	stopPrice := 0.0
	if err := ValidateStopLoss(req.EntryPrice, stop.Price, direction); err != nil {
		metrics.Warnings = append(metrics.Warnings, fmt.Sprintf("stop-loss calculation failed: %v", err))
	} else {
		metrics.StopLoss = &stop
		stopPrice = stop.Price
	}

	// Stage 2: position size, consuming the stop if one was produced.
	size := c.sizer.Calculate(req.AccountValue, req.EntryPrice, stopPrice, atr, req.Stats)
	metrics.Warnings = append(metrics.Warnings, size.Warnings...)
	metrics.PositionSize = &size
	if size.Shares == 0 {
		metrics.Warnings = append(metrics.Warnings, "position sizing produced zero shares")
	}
	if size.PositionPct > c.config.MaxPositionSizePct {
		metrics.Warnings = append(metrics.Warnings, fmt.Sprintf(
			"position would be %.2f%% of the account, above the %.1f%% cap",
			size.PositionPct, c.config.MaxPositionSizePct))
	}

	// Stage 3: portfolio assessment with the hypothetical new position.
	if len(req.ExistingPositions) > 0 {
		candidate := Position{
			Ticker:        req.Ticker,
			Shares:        float64(size.Shares),
			CurrentPrice:  req.EntryPrice,
			MarketValue:   size.DollarAmount,
			CostBasis:     size.DollarAmount,
			Sector:        req.Sector,
			StopLossPrice: stopPrice,
		}
		combined := append(append([]Position{}, req.ExistingPositions...), candidate)
		assessment := c.portfolio.Assess(combined, req.AccountValue, nil, nil)
		metrics.PortfolioRisk = &assessment
		metrics.Warnings = append(metrics.Warnings, assessment.Warnings...)
	}

	// Stage 4: combined score and verdict.
	metrics.RiskScore = c.combinedScore(metrics)
	metrics.Recommendation = c.recommend(metrics)
	metrics.Recommendations = append(metrics.Recommendations, generalRecommendation(metrics.Recommendation))
	if metrics.PortfolioRisk != nil {
		metrics.Recommendations = append(metrics.Recommendations, metrics.PortfolioRisk.Recommendations...)
	}

	return metrics
}

// combinedScore adds the capped stage contributions: stop-loss 0-25,
// position size 0-25, portfolio 0-50.
func (c *Calculator) combinedScore(m RiskMetrics) float64 {
	score := 0.0

	switch {
	case m.StopLoss == nil:
		score += 15
	case m.StopLoss.Percentage > 10:
		score += math.Min(2*(m.StopLoss.Percentage-10), 25)
	case m.StopLoss.Percentage < 1:
		score += 10 // stop too tight, likely to be noise-triggered
	}

	switch {
	case m.PositionSize == nil:
		score += 20
	case m.PositionSize.PositionPct > c.config.MaxPositionSizePct:
		score += math.Min(2*(m.PositionSize.PositionPct-c.config.MaxPositionSizePct), 25)
	case m.PositionSize.Shares == 0:
		score += 20
	}

	if m.PortfolioRisk != nil {
		score += math.Min(m.PortfolioRisk.RiskScore/2, 50)
	}

	return math.Min(score, 100)
}

func (c *Calculator) recommend(m RiskMetrics) Recommendation {
	switch {
	case m.RiskScore >= rejectScore:
		return RecommendationReject
	case m.RiskScore >= reduceScore:
		return RecommendationReduce
	case m.PositionSize != nil && m.PositionSize.Shares == 0:
		return RecommendationReject
	default:
		return RecommendationApprove
	}
}

func generalRecommendation(r Recommendation) string {
	switch r {
	case RecommendationReject:
		return "Reject this trade: risk controls cannot accommodate it"
	case RecommendationReduce:
		return "Reduce the position size before entering this trade"
	default:
		return "Trade is within configured risk limits"
	}
}

// failureMetrics is the worst-case result of the catastrophic path.
func (c *Calculator) failureMetrics(req TradeRequest, err error) RiskMetrics {
	return RiskMetrics{
		Ticker:         req.Ticker,
		EntryPrice:     req.EntryPrice,
		Recommendation: RecommendationReject,
		RiskScore:      100,
		Warnings:       []string{err.Error()},
		Recommendations: []string{
			"Unable to calculate risk - manual review required",
		},
		Metadata: map[string]interface{}{
			"error": err.Error(),
		},
	}
}

// selectAnchorLevel picks the nearest support below entry for longs, or the
// nearest resistance above entry for shorts. Zero when none qualifies.
func selectAnchorLevel(levels []float64, entry float64, direction Direction) float64 {
	if len(levels) == 0 {
		return 0
	}
	sorted := append([]float64{}, levels...)
	sort.Float64s(sorted)

	if direction == DirectionShort {
		for _, level := range sorted {
			if level > entry {
				return level
			}
		}
		return 0
	}

	best := 0.0
	for _, level := range sorted {
		if level > 0 && level < entry {
			best = level
		}
	}
	return best
}

// ToMap serializes the metrics into the nested key/value structure exchanged
// with the surrounding orchestrator.
func (m RiskMetrics) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"ticker":          m.Ticker,
		"entry_price":     m.EntryPrice,
		"stop_loss":       nil,
		"position_size":   nil,
		"portfolio_risk":  nil,
		"recommendation":  string(m.Recommendation),
		"risk_score":      m.RiskScore,
		"warnings":        append([]string{}, m.Warnings...),
		"recommendations": append([]string{}, m.Recommendations...),
		"metadata":        m.Metadata,
	}

	if m.StopLoss != nil {
		out["stop_loss"] = map[string]interface{}{
			"price":        m.StopLoss.Price,
			"percentage":   m.StopLoss.Percentage,
			"method":       string(m.StopLoss.Method),
			"is_favorable": m.StopLoss.IsFavorable,
		}
	}
	if m.PositionSize != nil {
		out["position_size"] = map[string]interface{}{
			"shares":        m.PositionSize.Shares,
			"dollar_amount": m.PositionSize.DollarAmount,
			"position_pct":  m.PositionSize.PositionPct,
			"risk_amount":   m.PositionSize.RiskAmount,
			"method":        string(m.PositionSize.Method),
		}
	}
	if m.PortfolioRisk != nil {
		sectors := map[string]interface{}{}
		for sector, pct := range m.PortfolioRisk.SectorExposure {
			sectors[sector] = pct
		}
		out["portfolio_risk"] = map[string]interface{}{
			"total_risk_pct":     m.PortfolioRisk.TotalRiskPct,
			"concentration_risk": m.PortfolioRisk.ConcentrationRisk,
			"correlation_risk":   m.PortfolioRisk.CorrelationRisk,
			"risk_score":         m.PortfolioRisk.RiskScore,
			"sector_exposure":    sectors,
		}
	}

	return out
}
