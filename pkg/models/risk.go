package models

// RiskControlConfig bounds what the risk gate allows a single user to do.
// All percentage fields are expressed as percent of portfolio value.
type RiskControlConfig struct {
	MaxPositionSize     float64 `json:"max_position_size"     validate:"gte=0"`
	MaxDailyLoss        float64 `json:"max_daily_loss"        validate:"gte=0"`
	MaxConcurrentTrades int     `json:"max_concurrent_trades" validate:"gte=0"`
	CooldownPeriod      int     `json:"cooldown_period"       validate:"gte=0"` // seconds
	MaxLossPerTrade     float64 `json:"max_loss_per_trade"    validate:"gte=0"`
}

// TradeResult reports the outcome of a completed trade back to the risk gate.
type TradeResult struct {
	UserID            string  `json:"user_id"`
	ExecutionID       string  `json:"execution_id,omitempty"`
	Symbol            string  `json:"symbol,omitempty"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}
