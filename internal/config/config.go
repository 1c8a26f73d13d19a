package config

import (
	"os"
	"strconv"

	"github.com/tradingagents/advisor/internal/risk"
)

// Load assembles a risk policy for the CLIs: a named preset overlaid with
// RISK_* environment variables. The result is validated before return.
// Callers that want .env support load it with godotenv first.
func Load() (risk.Config, error) {
	cfg, err := risk.PresetConfig(getEnv("RISK_PRESET", "moderate"))
	if err != nil {
		return risk.Config{}, err
	}

	cfg.RiskPerTradePct = getEnvFloat("RISK_PER_TRADE_PCT", cfg.RiskPerTradePct)
	cfg.MaxPortfolioRiskPct = getEnvFloat("RISK_MAX_PORTFOLIO_PCT", cfg.MaxPortfolioRiskPct)
	cfg.MaxPositionSizePct = getEnvFloat("RISK_MAX_POSITION_PCT", cfg.MaxPositionSizePct)
	cfg.MinRiskRewardRatio = getEnvFloat("RISK_MIN_RR", cfg.MinRiskRewardRatio)
	cfg.PositionSizingMethod = risk.SizingMethod(getEnv("RISK_SIZING_METHOD", string(cfg.PositionSizingMethod)))
	cfg.KellyFraction = getEnvFloat("RISK_KELLY_FRACTION", cfg.KellyFraction)
	cfg.StopLossMethod = risk.StopMethod(getEnv("RISK_STOP_METHOD", string(cfg.StopLossMethod)))
	cfg.StopLossPercentage = getEnvFloat("RISK_STOP_PCT", cfg.StopLossPercentage)
	cfg.ATRMultiplier = getEnvFloat("RISK_ATR_MULTIPLIER", cfg.ATRMultiplier)
	cfg.MaxCorrelation = getEnvFloat("RISK_MAX_CORRELATION", cfg.MaxCorrelation)
	cfg.MaxSectorConcentrationPct = getEnvFloat("RISK_MAX_SECTOR_PCT", cfg.MaxSectorConcentrationPct)
	cfg.StrictValidation = getEnvBool("RISK_STRICT_VALIDATION", cfg.StrictValidation)

	if err := cfg.Validate(); err != nil {
		return risk.Config{}, err
	}
	return cfg, nil
}

// DefaultAccountBalance mirrors the orchestrator default when the agent
// state carries no balance.
func DefaultAccountBalance() float64 {
	return getEnvFloat("ACCOUNT_BALANCE", 100000.0)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
