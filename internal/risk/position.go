package risk

// Position is an existing holding supplied by the caller. It is read-only
// inside the core. A zero StopLossPrice means no protective stop is attached;
// an empty Sector falls into the "Unknown" bucket.
type Position struct {
	Ticker        string  `json:"ticker"`
	Shares        float64 `json:"shares"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	CostBasis     float64 `json:"cost_basis"`
	Sector        string  `json:"sector,omitempty"`
	StopLossPrice float64 `json:"stop_loss_price,omitempty"`
}

// UnrealizedPnL returns the open profit or loss in dollars.
func (p Position) UnrealizedPnL() float64 {
	return p.MarketValue - p.CostBasis
}

// UnrealizedPnLPct returns the open profit or loss relative to cost basis.
func (p Position) UnrealizedPnLPct() float64 {
	if p.CostBasis == 0 {
		return 0
	}
	return p.UnrealizedPnL() / p.CostBasis * 100
}

// WeightPct returns the position's share of the account in percent.
func (p Position) WeightPct(accountValue float64) float64 {
	if accountValue <= 0 {
		return 0
	}
	return p.MarketValue / accountValue * 100
}

// SectorOrUnknown normalizes a missing sector label.
func (p Position) SectorOrUnknown() string {
	if p.Sector == "" {
		return "Unknown"
	}
	return p.Sector
}
