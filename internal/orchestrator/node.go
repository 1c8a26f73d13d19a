package orchestrator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tradingagents/advisor/internal/logger"
	"github.com/tradingagents/advisor/internal/monitoring"
	"github.com/tradingagents/advisor/internal/risk"
)

// State is the string-keyed mapping exchanged with the surrounding agent
// graph. The node reads its inputs from it and returns a single-key update.
type State map[string]interface{}

// State keys the node consumes.
const (
	KeyTicker       = "company_of_interest"
	KeyTraderPlan   = "trader_investment_plan"
	KeyMarketReport = "market_report"
	KeyBalance      = "account_balance"
	KeyPositions    = "existing_positions"
	KeyRiskMetrics  = "risk_metrics"
)

const defaultAccountBalance = 100000.0

var dollarAmountPattern = regexp.MustCompile(`\$(\d+(?:\.\d+)?)`)

// RiskNode extracts trade parameters from the agent state, runs the risk
// calculator and writes the serialized metrics back. All numeric decisions
// live in the risk package; the node only parses and forwards.
type RiskNode struct {
	calc *risk.Calculator
	log  *logger.Logger
}

// NewRiskNode creates the integration node for the given policy. The logger
// may be nil.
func NewRiskNode(cfg risk.Config, log *logger.Logger) (*RiskNode, error) {
	calc, err := risk.NewCalculator(cfg)
	if err != nil {
		return nil, err
	}
	return &RiskNode{calc: calc, log: log}, nil
}

// Process consumes the state and returns the risk_metrics update. A missing
// entry price yields an error-bearing result without invoking the pipeline.
func (n *RiskNode) Process(state State) State {
	ticker := stringValue(state[KeyTicker])
	if ticker == "" {
		ticker = "UNKNOWN"
	}

	plan := stringValue(state[KeyTraderPlan])
	report := stringValue(state[KeyMarketReport])

	entry, ok := extractDollarAmount(plan)
	if !ok {
		entry, ok = extractDollarAmount(report)
	}
	if !ok {
		n.log.Warn("no entry price found for %s", ticker)
		monitoring.RecordExtractionFailure()
		return State{KeyRiskMetrics: map[string]interface{}{
			"error":  "Could not extract entry price",
			"ticker": ticker,
		}}
	}

	balance := defaultAccountBalance
	if v, ok := floatValue(state[KeyBalance]); ok {
		balance = v
	}

	metrics := n.calc.CalculateTradeRisk(risk.TradeRequest{
		Ticker:            ticker,
		EntryPrice:        entry,
		AccountValue:      balance,
		Direction:         extractDirection(plan),
		ExistingPositions: n.extractPositions(state[KeyPositions]),
	})

	monitoring.RecordAssessment(string(metrics.Recommendation), metrics.RiskScore)
	return State{KeyRiskMetrics: metrics.ToMap()}
}

// extractDollarAmount finds the first $-prefixed decimal number in text.
func extractDollarAmount(text string) (float64, bool) {
	match := dollarAmountPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// extractDirection scans the trader plan for directional cue words. Long
// cues win over short cues; the default is long.
func extractDirection(plan string) risk.Direction {
	lower := strings.ToLower(plan)
	for _, cue := range []string{"buy", "long", "bullish"} {
		if strings.Contains(lower, cue) {
			return risk.DirectionLong
		}
	}
	for _, cue := range []string{"sell", "short", "bearish"} {
		if strings.Contains(lower, cue) {
			return risk.DirectionShort
		}
	}
	return risk.DirectionLong
}

// extractPositions maps the state's position entries into the core's shape.
// Entries that fail to parse are skipped with a log note.
func (n *RiskNode) extractPositions(raw interface{}) []risk.Position {
	entries, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	positions := make([]risk.Position, 0, len(entries))
	for i, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			n.log.Warn("skipping position %d: not a mapping", i)
			monitoring.RecordPositionSkipped()
			continue
		}

		ticker := stringValue(fields["ticker"])
		shares, haveShares := floatValue(fields["shares"])
		price, havePrice := floatValue(fields["current_price"])
		if ticker == "" || !haveShares || !havePrice {
			n.log.Warn("skipping position %d: missing ticker, shares or current_price", i)
			monitoring.RecordPositionSkipped()
			continue
		}

		pos := risk.Position{
			Ticker:       ticker,
			Shares:       shares,
			CurrentPrice: price,
			Sector:       stringValue(fields["sector"]),
		}
		if v, ok := floatValue(fields["market_value"]); ok {
			pos.MarketValue = v
		} else {
			pos.MarketValue = shares * price
		}
		if v, ok := floatValue(fields["cost_basis"]); ok {
			pos.CostBasis = v
		}
		if v, ok := floatValue(fields["stop_loss_price"]); ok {
			pos.StopLossPrice = v
		}
		positions = append(positions, pos)
	}
	return positions
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func floatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
