package risk

import (
	"fmt"
	"math"
)

// PositionSize is the result of a sizing calculation. Shares of zero is a
// legal signaling outcome, never an error; the warnings explain why.
type PositionSize struct {
	Shares       int          `json:"shares"`
	DollarAmount float64      `json:"dollar_amount"`
	PositionPct  float64      `json:"position_pct"`
	RiskAmount   float64      `json:"risk_amount"`
	Method       SizingMethod `json:"method"`
	Warnings     []string     `json:"warnings,omitempty"`
}

// SizingStats carries the trade statistics Kelly sizing needs.
type SizingStats struct {
	WinRate float64 `json:"win_rate"`
	AvgWin  float64 `json:"avg_win"`
	AvgLoss float64 `json:"avg_loss"`
}

// PositionSizeCalculator turns account risk policy into share counts.
type PositionSizeCalculator struct {
	config Config
}

// NewPositionSizeCalculator creates a new position size calculator.
func NewPositionSizeCalculator(cfg Config) (*PositionSizeCalculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PositionSizeCalculator{config: cfg}, nil
}

// Calculate dispatches on the configured sizing method. atr and stats are
// optional (zero / nil when absent); methods missing their prerequisites
// fall back to fixed-fractional with a warning. Rounding is always floor.
func (c *PositionSizeCalculator) Calculate(accountBalance, entryPrice, stopLossPrice, atr float64, stats *SizingStats) PositionSize {
	result := PositionSize{Method: c.config.PositionSizingMethod}

	if accountBalance <= 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("account balance %.2f is not positive", accountBalance))
		return result
	}
	if entryPrice <= 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("entry price %.2f is not positive", entryPrice))
		return result
	}

	switch c.config.PositionSizingMethod {
	case SizingKelly:
		c.kelly(&result, accountBalance, entryPrice, stopLossPrice, stats)
	case SizingVolatility:
		c.volatilityScaled(&result, accountBalance, entryPrice, stopLossPrice, atr)
	default:
		c.fixedFractional(&result, accountBalance, entryPrice, stopLossPrice, c.config.RiskPerTradePct)
		result.Method = SizingFixedFractional
	}

	return result
}

// fixedFractional risks a fixed fraction of the account per trade, capped by
// the maximum position value.
func (c *PositionSizeCalculator) fixedFractional(result *PositionSize, accountBalance, entryPrice, stopLossPrice, riskPct float64) {
	if stopLossPrice <= 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("stop-loss price %.2f is not positive", stopLossPrice))
		return
	}

	riskPerShare := math.Abs(entryPrice - stopLossPrice)
	if riskPerShare == 0 {
		result.Warnings = append(result.Warnings, "entry equals stop-loss, risk per share is zero")
		return
	}

	riskAmount := accountBalance * riskPct / 100
	shares := math.Floor(riskAmount / riskPerShare)

	maxPositionValue := accountBalance * c.config.MaxPositionSizePct / 100
	if shares*entryPrice > maxPositionValue {
		shares = math.Floor(maxPositionValue / entryPrice)
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"position size capped at %.1f%% of account", c.config.MaxPositionSizePct))
	}
	if shares < 0 {
		shares = 0
	}

	result.Shares = int(shares)
	result.DollarAmount = shares * entryPrice
	result.RiskAmount = shares * riskPerShare
	result.PositionPct = result.DollarAmount / accountBalance * 100
}

// kelly sizes by fractional Kelly from historical win statistics. Missing or
// degenerate statistics fall back to fixed-fractional.
func (c *PositionSizeCalculator) kelly(result *PositionSize, accountBalance, entryPrice, stopLossPrice float64, stats *SizingStats) {
	if stats == nil || stats.WinRate < 0 || stats.WinRate > 1 || stats.AvgWin <= 0 || stats.AvgLoss == 0 {
		result.Warnings = append(result.Warnings, "Kelly statistics unavailable, falling back to fixed-fractional sizing")
		c.fixedFractional(result, accountBalance, entryPrice, stopLossPrice, c.config.RiskPerTradePct)
		result.Method = SizingFixedFractional
		return
	}

	b := stats.AvgWin / math.Abs(stats.AvgLoss)
	k := stats.WinRate - (1-stats.WinRate)/b
	k *= c.config.KellyFraction

	if k <= 0 {
		result.Warnings = append(result.Warnings, "Kelly criterion indicates negative edge, no position")
		return
	}

	maxFraction := c.config.MaxPositionSizePct / 100
	if k > maxFraction {
		k = maxFraction
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"position size capped at %.1f%% of account", c.config.MaxPositionSizePct))
	}

	shares := math.Floor(accountBalance * k / entryPrice)
	if shares < 0 {
		shares = 0
	}

	result.Shares = int(shares)
	result.DollarAmount = shares * entryPrice
	result.PositionPct = result.DollarAmount / accountBalance * 100
	if stopLossPrice > 0 {
		result.RiskAmount = shares * math.Abs(entryPrice-stopLossPrice)
	}
}

// volatilityScaled shrinks the per-trade risk fraction as volatility rises,
// then proceeds as fixed-fractional with the adjusted fraction.
func (c *PositionSizeCalculator) volatilityScaled(result *PositionSize, accountBalance, entryPrice, stopLossPrice, atr float64) {
	if atr <= 0 {
		result.Warnings = append(result.Warnings, "ATR unavailable, falling back to fixed-fractional sizing")
		c.fixedFractional(result, accountBalance, entryPrice, stopLossPrice, c.config.RiskPerTradePct)
		result.Method = SizingFixedFractional
		return
	}

	volatilityFactor := atr / entryPrice
	adjustedRiskPct := c.config.RiskPerTradePct / (1 + volatilityFactor)
	c.fixedFractional(result, accountBalance, entryPrice, stopLossPrice, adjustedRiskPct)
	result.Method = SizingVolatility
}
