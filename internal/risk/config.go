package risk

import (
	"fmt"

	advisorerrors "github.com/tradingagents/advisor/internal/errors"
)

// SizingMethod selects how position size is derived from account risk.
type SizingMethod string

const (
	SizingFixedFractional SizingMethod = "fixed_fractional"
	SizingKelly           SizingMethod = "kelly"
	SizingVolatility      SizingMethod = "volatility"
)

// StopMethod selects how the protective stop price is derived.
type StopMethod string

const (
	StopPercentage        StopMethod = "percentage"
	StopATR               StopMethod = "atr"
	StopSupportResistance StopMethod = "support_resistance"
)

// Config is the immutable policy bundle every calculator is built from.
// All percentage fields are expressed in percent (2.0 means 2%).
type Config struct {
	RiskPerTradePct           float64      `json:"risk_per_trade_pct"`
	MaxPortfolioRiskPct       float64      `json:"max_portfolio_risk_pct"`
	MaxPositionSizePct        float64      `json:"max_position_size_pct"`
	MinRiskRewardRatio        float64      `json:"min_risk_reward_ratio"`
	PositionSizingMethod      SizingMethod `json:"position_sizing_method"`
	KellyFraction             float64      `json:"kelly_fraction"`
	StopLossMethod            StopMethod   `json:"stop_loss_method"`
	StopLossPercentage        float64      `json:"stop_loss_percentage"`
	ATRMultiplier             float64      `json:"atr_multiplier"`
	MaxCorrelation            float64      `json:"max_correlation"`
	MaxSectorConcentrationPct float64      `json:"max_sector_concentration_pct"`
	StrictValidation          bool         `json:"strict_validation"`
}

// ModerateConfig returns the default policy.
func ModerateConfig() Config {
	return Config{
		RiskPerTradePct:           2.0,
		MaxPortfolioRiskPct:       10.0,
		MaxPositionSizePct:        20.0,
		MinRiskRewardRatio:        2.0,
		PositionSizingMethod:      SizingFixedFractional,
		KellyFraction:             0.5,
		StopLossMethod:            StopPercentage,
		StopLossPercentage:        2.0,
		ATRMultiplier:             2.0,
		MaxCorrelation:            0.7,
		MaxSectorConcentrationPct: 30.0,
		StrictValidation:          true,
	}
}

// ConservativeConfig returns a capital-preservation policy.
func ConservativeConfig() Config {
	cfg := ModerateConfig()
	cfg.RiskPerTradePct = 1.0
	cfg.MaxPortfolioRiskPct = 5.0
	cfg.MinRiskRewardRatio = 3.0
	cfg.MaxPositionSizePct = 10.0
	cfg.KellyFraction = 0.25
	cfg.StopLossPercentage = 1.5
	cfg.ATRMultiplier = 1.5
	return cfg
}

// AggressiveConfig returns a growth-oriented policy.
func AggressiveConfig() Config {
	cfg := ModerateConfig()
	cfg.RiskPerTradePct = 5.0
	cfg.MaxPortfolioRiskPct = 20.0
	cfg.MinRiskRewardRatio = 1.5
	cfg.MaxPositionSizePct = 30.0
	cfg.KellyFraction = 0.75
	cfg.StopLossPercentage = 3.0
	cfg.ATRMultiplier = 2.5
	return cfg
}

// PresetConfig resolves a named preset. Valid names are "conservative",
// "moderate" and "aggressive".
func PresetConfig(name string) (Config, error) {
	switch name {
	case "conservative":
		return ConservativeConfig(), nil
	case "moderate", "":
		return ModerateConfig(), nil
	case "aggressive":
		return AggressiveConfig(), nil
	default:
		return Config{}, advisorerrors.NewConfigurationError("preset",
			fmt.Sprintf("unknown preset %q, expected conservative, moderate or aggressive", name))
	}
}

// Validate checks every field against its accepted range. The first
// violation is returned as a configuration error naming the field.
func (c Config) Validate() error {
	checks := []struct {
		field   string
		value   float64
		min     float64
		max     float64
		minOpen bool
	}{
		{"risk_per_trade_pct", c.RiskPerTradePct, 0, 10, true},
		{"max_portfolio_risk_pct", c.MaxPortfolioRiskPct, 0, 50, true},
		{"max_position_size_pct", c.MaxPositionSizePct, 0, 100, true},
		{"min_risk_reward_ratio", c.MinRiskRewardRatio, 0, 10, true},
		{"kelly_fraction", c.KellyFraction, 0, 1, true},
		{"stop_loss_percentage", c.StopLossPercentage, 0, 20, true},
		{"atr_multiplier", c.ATRMultiplier, 0, 5, true},
		{"max_correlation", c.MaxCorrelation, 0, 1, false},
		{"max_sector_concentration_pct", c.MaxSectorConcentrationPct, 0, 100, true},
	}

	for _, check := range checks {
		if check.minOpen && check.value <= check.min {
			return advisorerrors.NewConfigurationError(check.field,
				fmt.Sprintf("%s is %v, must be in (%v, %v]", check.field, check.value, check.min, check.max))
		}
		if !check.minOpen && check.value < check.min {
			return advisorerrors.NewConfigurationError(check.field,
				fmt.Sprintf("%s is %v, must be in [%v, %v]", check.field, check.value, check.min, check.max))
		}
		if check.value > check.max {
			return advisorerrors.NewConfigurationError(check.field,
				fmt.Sprintf("%s is %v, must be at most %v", check.field, check.value, check.max))
		}
	}

	switch c.PositionSizingMethod {
	case SizingFixedFractional, SizingKelly, SizingVolatility:
	default:
		return advisorerrors.NewConfigurationError("position_sizing_method",
			fmt.Sprintf("unknown position sizing method %q", c.PositionSizingMethod))
	}

	switch c.StopLossMethod {
	case StopPercentage, StopATR, StopSupportResistance:
	default:
		return advisorerrors.NewConfigurationError("stop_loss_method",
			fmt.Sprintf("unknown stop loss method %q", c.StopLossMethod))
	}

	return nil
}

// ToMap converts the config into a plain key/value mapping for persistence.
func (c Config) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"risk_per_trade_pct":           c.RiskPerTradePct,
		"max_portfolio_risk_pct":       c.MaxPortfolioRiskPct,
		"max_position_size_pct":        c.MaxPositionSizePct,
		"min_risk_reward_ratio":        c.MinRiskRewardRatio,
		"position_sizing_method":       string(c.PositionSizingMethod),
		"kelly_fraction":               c.KellyFraction,
		"stop_loss_method":             string(c.StopLossMethod),
		"stop_loss_percentage":         c.StopLossPercentage,
		"atr_multiplier":               c.ATRMultiplier,
		"max_correlation":              c.MaxCorrelation,
		"max_sector_concentration_pct": c.MaxSectorConcentrationPct,
		"strict_validation":            c.StrictValidation,
	}
}

// ConfigFromMap rebuilds a Config from its key/value form. Missing keys keep
// the moderate defaults; the result is validated before it is returned.
func ConfigFromMap(values map[string]interface{}) (Config, error) {
	cfg := ModerateConfig()

	if v, ok := toFloat(values["risk_per_trade_pct"]); ok {
		cfg.RiskPerTradePct = v
	}
	if v, ok := toFloat(values["max_portfolio_risk_pct"]); ok {
		cfg.MaxPortfolioRiskPct = v
	}
	if v, ok := toFloat(values["max_position_size_pct"]); ok {
		cfg.MaxPositionSizePct = v
	}
	if v, ok := toFloat(values["min_risk_reward_ratio"]); ok {
		cfg.MinRiskRewardRatio = v
	}
	if v, ok := values["position_sizing_method"].(string); ok {
		cfg.PositionSizingMethod = SizingMethod(v)
	}
	if v, ok := toFloat(values["kelly_fraction"]); ok {
		cfg.KellyFraction = v
	}
	if v, ok := values["stop_loss_method"].(string); ok {
		cfg.StopLossMethod = StopMethod(v)
	}
	if v, ok := toFloat(values["stop_loss_percentage"]); ok {
		cfg.StopLossPercentage = v
	}
	if v, ok := toFloat(values["atr_multiplier"]); ok {
		cfg.ATRMultiplier = v
	}
	if v, ok := toFloat(values["max_correlation"]); ok {
		cfg.MaxCorrelation = v
	}
	if v, ok := toFloat(values["max_sector_concentration_pct"]); ok {
		cfg.MaxSectorConcentrationPct = v
	}
	if v, ok := values["strict_validation"].(bool); ok {
		cfg.StrictValidation = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
