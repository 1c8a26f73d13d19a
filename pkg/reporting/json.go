package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tradingagents/advisor/internal/risk"
)

// FormatRiskMetrics serializes an assessment to indented JSON.
func FormatRiskMetrics(m risk.RiskMetrics) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseRiskMetrics rebuilds an assessment from its JSON form.
func ParseRiskMetrics(data []byte) (risk.RiskMetrics, error) {
	var m risk.RiskMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return risk.RiskMetrics{}, fmt.Errorf("failed to parse risk metrics: %w", err)
	}
	return m, nil
}

// WriteRiskMetricsJSON writes an assessment to path, creating parent
// directories as needed.
func WriteRiskMetricsJSON(m risk.RiskMetrics, path string) error {
	data, err := FormatRiskMetrics(m)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// FormatConfig serializes a policy to indented JSON.
func FormatConfig(cfg risk.Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// ParseConfig rebuilds and validates a policy from its JSON form.
func ParseConfig(data []byte) (risk.Config, error) {
	cfg := risk.ModerateConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return risk.Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return risk.Config{}, err
	}
	return cfg, nil
}

// ReadPositions loads a portfolio file: a JSON array of positions.
func ReadPositions(path string) ([]risk.Position, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio file: %w", err)
	}
	var positions []risk.Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio file: %w", err)
	}
	return positions, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
