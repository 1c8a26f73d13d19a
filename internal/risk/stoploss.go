package risk

import (
	"fmt"
	"math"
)

// Direction is the side of the candidate trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// supportBuffer places the stop 1% beyond the anchoring level so that a
// touch of the level itself does not trigger it.
const supportBuffer = 0.01

// StopLoss is the result of a stop-loss calculation. Method records the
// method actually applied, which may differ from the configured one after a
// fallback.
type StopLoss struct {
	Price           float64    `json:"price"`
	Percentage      float64    `json:"percentage"`
	RiskPerShare    float64    `json:"risk_per_share"`
	RiskRewardRatio float64    `json:"risk_reward_ratio"`
	Method          StopMethod `json:"method"`
	IsFavorable     bool       `json:"is_favorable"`
	Warnings        []string   `json:"warnings,omitempty"`
}

// StopLossCalculator derives protective stop prices under a fixed policy.
type StopLossCalculator struct {
	config Config
}

// NewStopLossCalculator creates a new stop-loss calculator. The config is
// validated once here; the calculator itself never fails at runtime.
func NewStopLossCalculator(cfg Config) (*StopLossCalculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &StopLossCalculator{config: cfg}, nil
}

// Calculate derives a stop price for the given entry and direction.
// atr, level and targetPrice are optional: zero means not supplied. For long
// trades level is a support price, for short trades a resistance price.
// Missing prerequisites fall back to the percentage method with a warning.
func (c *StopLossCalculator) Calculate(entry float64, direction Direction, atr, level, targetPrice float64) StopLoss {
	result := StopLoss{Method: c.config.StopLossMethod}

	if entry <= 0 {
		result.Method = StopPercentage
		result.Warnings = append(result.Warnings, fmt.Sprintf("entry price %.2f is not positive, no stop computed", entry))
		return result
	}
	if direction != DirectionLong && direction != DirectionShort {
		direction = DirectionLong
		result.Warnings = append(result.Warnings, "unknown direction, assuming long")
	}

	switch c.config.StopLossMethod {
	case StopATR:
		result.Price = c.atrStop(entry, direction, atr, &result.Warnings)
		result.Method = StopATR
		if result.Price == 0 {
			result.Price = c.percentageStop(entry, direction)
			result.Method = StopPercentage
		}
	case StopSupportResistance:
		result.Price = c.anchoredStop(entry, direction, level, &result.Warnings)
		result.Method = StopSupportResistance
		if result.Price == 0 {
			result.Price = c.percentageStop(entry, direction)
			result.Method = StopPercentage
		}
	default:
		result.Price = c.percentageStop(entry, direction)
		result.Method = StopPercentage
	}

	result.RiskPerShare = math.Abs(entry - result.Price)
	result.Percentage = result.RiskPerShare / entry * 100

	if targetPrice > 0 {
		reward := targetPrice - entry
		if direction == DirectionShort {
			reward = entry - targetPrice
		}
		if reward <= 0 {
			result.Warnings = append(result.Warnings, "target price is on the wrong side of entry")
		} else if result.RiskPerShare > 0 {
			result.RiskRewardRatio = reward / result.RiskPerShare
		}
		result.IsFavorable = result.RiskRewardRatio >= c.config.MinRiskRewardRatio
	} else {
		result.Warnings = append(result.Warnings, "no target price provided, risk-reward ratio unavailable")
	}

	return result
}

// percentageStop is the primary method and the universal fallback.
func (c *StopLossCalculator) percentageStop(entry float64, direction Direction) float64 {
	pct := c.config.StopLossPercentage / 100
	if direction == DirectionShort {
		return entry * (1 + pct)
	}
	return entry * (1 - pct)
}

// atrStop places the stop a multiple of the ATR away from entry. Returns 0
// when the prerequisites are missing so the caller can fall back.
func (c *StopLossCalculator) atrStop(entry float64, direction Direction, atr float64, warnings *[]string) float64 {
	if atr <= 0 {
		*warnings = append(*warnings, "ATR unavailable, falling back to percentage stop")
		return 0
	}

	distance := atr * c.config.ATRMultiplier
	stop := entry - distance
	if direction == DirectionShort {
		stop = entry + distance
	}
	if stop <= 0 {
		*warnings = append(*warnings, "ATR stop would be non-positive, falling back to percentage stop")
		return 0
	}
	return stop
}

// anchoredStop places the stop just beyond a support (long) or resistance
// (short) level. An anchor on the wrong side of entry forces a fallback.
func (c *StopLossCalculator) anchoredStop(entry float64, direction Direction, level float64, warnings *[]string) float64 {
	if level <= 0 {
		*warnings = append(*warnings, "no support/resistance level supplied, falling back to percentage stop")
		return 0
	}

	if direction == DirectionShort {
		stop := level * (1 + supportBuffer)
		if stop <= entry {
			*warnings = append(*warnings, "resistance level is below entry, falling back to percentage stop")
			return 0
		}
		return stop
	}

	stop := level * (1 - supportBuffer)
	if stop >= entry {
		*warnings = append(*warnings, "support level is above entry, falling back to percentage stop")
		return 0
	}
	return stop
}

// ValidateStopLoss confirms a computed stop sits on the correct side of entry
// and is positive. It returns the reason when the stop is unusable.
func ValidateStopLoss(entry, stop float64, direction Direction) error {
	if stop <= 0 {
		return fmt.Errorf("stop-loss price %.2f is not positive", stop)
	}
	if direction == DirectionShort {
		if stop <= entry {
			return fmt.Errorf("short stop-loss %.2f must be above entry %.2f", stop, entry)
		}
		return nil
	}
	if stop >= entry {
		return fmt.Errorf("long stop-loss %.2f must be below entry %.2f", stop, entry)
	}
	return nil
}
