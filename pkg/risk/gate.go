package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tradewind-io/tradewind/pkg/models"
)

// Check names reported in assessments.
const (
	CheckPositionSize     = "position_size"
	CheckDailyLoss        = "daily_loss"
	CheckConcurrentTrades = "concurrent_trades"
	CheckCooldown         = "cooldown"
	CheckMaxLossPerTrade  = "max_loss_per_trade"
)

// Severity of a passing check that is close to its limit.
const (
	SeverityOK      = "ok"
	SeverityWarning = "warning"
	SeverityBlocked = "blocked"
)

// Checks within this fraction of their limit are flagged as warnings even
// when they pass.
const warningThreshold = 0.8

// Check is one evaluated limit.
type Check struct {
	Name     string  `json:"name"`
	Passed   bool    `json:"passed"`
	Severity string  `json:"severity"`
	Value    float64 `json:"value"`
	Limit    float64 `json:"limit"`
	Message  string  `json:"message,omitempty"`
}

// Assessment is the complete gate verdict. All checks are evaluated even
// when an earlier one fails so callers see the whole picture.
type Assessment struct {
	Allowed  bool     `json:"allowed"`
	Checks   []Check  `json:"checks"`
	Warnings []string `json:"warnings,omitempty"`
}

// Gate maintains per-user risk accounting and evaluates trade proposals
// against configured limits. All state mutations are serialized through one
// mutex so concurrent executions for the same user never lose updates.
type Gate struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewGate(store Store, logger *slog.Logger) *Gate {
	return &Gate{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CheckBeforeExecution evaluates the five gate checks for a proposed trade.
func (g *Gate) CheckBeforeExecution(ctx context.Context, userID string, tradeSize, portfolioValue float64, config *models.RiskControlConfig, contextID string) (*Assessment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.ensureUserState(ctx, userID)
	if err != nil {
		return nil, err
	}

	positionPercent := 0.0
	if portfolioValue > 0 {
		positionPercent = tradeSize / portfolioValue * 100
	}

	checks := []Check{
		limitCheck(CheckPositionSize, positionPercent, config.MaxPositionSize,
			"trade size exceeds the maximum position size"),
		dailyLossCheck(state, config),
		concurrentTradesCheck(state, config),
		cooldownCheck(state, config, g.now()),
		limitCheck(CheckMaxLossPerTrade, positionPercent, config.MaxLossPerTrade,
			"worst-case loss exceeds the per-trade limit"),
	}

	if portfolioValue <= 0 {
		checks[0].Passed = false
		checks[0].Severity = SeverityBlocked
		checks[0].Message = "portfolio value must be positive"
	}

	assessment := &Assessment{Allowed: true, Checks: checks}

	for _, check := range checks {
		if !check.Passed {
			assessment.Allowed = false
		}

		if check.Severity == SeverityWarning {
			assessment.Warnings = append(assessment.Warnings,
				fmt.Sprintf("%s at %.1f%% of limit", check.Name, safeRatio(check.Value, check.Limit)*100))
		}
	}

	g.logger.Info("Risk gate evaluated",
		"user_id", userID,
		"context_id", contextID,
		"allowed", assessment.Allowed,
		"warnings", len(assessment.Warnings),
	)

	return assessment, nil
}

// RegisterTrade increments the user's active-trade counter. Called after
// both gate checks pass, before the execute stage runs.
func (g *Gate) RegisterTrade(ctx context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.ensureUserState(ctx, userID)
	if err != nil {
		return err
	}

	state.ActiveTrades++

	return g.store.Save(ctx, state)
}

// RecordTradeResult feeds a settled trade back into daily-loss accounting.
// Losses accumulate, profits pay the accumulated loss down to zero, and the
// active-trade counter always decrements (floored at zero).
func (g *Gate) RecordTradeResult(ctx context.Context, result models.TradeResult) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, err := g.ensureUserState(ctx, result.UserID)
	if err != nil {
		return err
	}

	if result.ProfitLossPercent < 0 {
		state.DailyLossPercent += -result.ProfitLossPercent

		now := g.now().UTC()
		state.LastLossTimestamp = &now
	} else {
		state.DailyLossPercent -= result.ProfitLossPercent
		if state.DailyLossPercent < 0 {
			state.DailyLossPercent = 0
		}
	}

	if state.ActiveTrades > 0 {
		state.ActiveTrades--
	}

	g.logger.Info("Trade result recorded",
		"user_id", result.UserID,
		"profit_loss_percent", result.ProfitLossPercent,
		"daily_loss_percent", state.DailyLossPercent,
		"active_trades", state.ActiveTrades,
	)

	return g.store.Save(ctx, state)
}

// ResetAllDailyLoss zeroes daily-loss accounting for every user whose last
// reset happened on an earlier UTC day. Same-day users are untouched.
func (g *Gate) ResetAllDailyLoss(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	users, err := g.store.Users(ctx)
	if err != nil {
		return err
	}

	today := g.now().UTC().Format(DateKeyLayout)

	for _, userID := range users {
		state, err := g.store.Get(ctx, userID)
		if err != nil {
			return err
		}

		if state == nil || state.LastResetDate == today {
			continue
		}

		state.DailyLossPercent = 0
		state.LastResetDate = today

		err = g.store.Save(ctx, state)
		if err != nil {
			return err
		}

		g.logger.Info("Daily loss reset", "user_id", userID)
	}

	return nil
}

// ensureUserState lazily initializes state and applies the once-per-UTC-day
// daily-loss reset on first touch. Caller must hold g.mu.
func (g *Gate) ensureUserState(ctx context.Context, userID string) (*UserRiskState, error) {
	today := g.now().UTC().Format(DateKeyLayout)

	state, err := g.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if state == nil {
		state = &UserRiskState{UserID: userID, LastResetDate: today}

		err = g.store.Save(ctx, state)
		if err != nil {
			return nil, err
		}

		return state, nil
	}

	if state.LastResetDate != today {
		state.DailyLossPercent = 0
		state.LastResetDate = today

		err = g.store.Save(ctx, state)
		if err != nil {
			return nil, err
		}
	}

	return state, nil
}

func limitCheck(name string, value, limit float64, failMessage string) Check {
	check := Check{Name: name, Value: value, Limit: limit, Passed: value <= limit, Severity: SeverityOK}

	if !check.Passed {
		check.Severity = SeverityBlocked
		check.Message = failMessage
	} else if limit > 0 && value/limit >= warningThreshold {
		check.Severity = SeverityWarning
	}

	return check
}

func dailyLossCheck(state *UserRiskState, config *models.RiskControlConfig) Check {
	check := Check{
		Name:   CheckDailyLoss,
		Value:  state.DailyLossPercent,
		Limit:  config.MaxDailyLoss,
		Passed: state.DailyLossPercent < config.MaxDailyLoss,
	}

	switch {
	case !check.Passed:
		check.Severity = SeverityBlocked
		check.Message = "daily loss limit reached"
	case config.MaxDailyLoss > 0 && state.DailyLossPercent/config.MaxDailyLoss >= warningThreshold:
		check.Severity = SeverityWarning
	default:
		check.Severity = SeverityOK
	}

	return check
}

func concurrentTradesCheck(state *UserRiskState, config *models.RiskControlConfig) Check {
	check := Check{
		Name:   CheckConcurrentTrades,
		Value:  float64(state.ActiveTrades),
		Limit:  float64(config.MaxConcurrentTrades),
		Passed: state.ActiveTrades < config.MaxConcurrentTrades,
	}

	switch {
	case !check.Passed:
		check.Severity = SeverityBlocked
		check.Message = "maximum concurrent trades reached"
	case config.MaxConcurrentTrades > 0 && float64(state.ActiveTrades)/float64(config.MaxConcurrentTrades) >= warningThreshold:
		check.Severity = SeverityWarning
	default:
		check.Severity = SeverityOK
	}

	return check
}

// cooldownCheck fails while the user is inside the cooldown window after a
// loss and the account is still net-loss for the day.
func cooldownCheck(state *UserRiskState, config *models.RiskControlConfig, now time.Time) Check {
	check := Check{Name: CheckCooldown, Limit: float64(config.CooldownPeriod), Severity: SeverityOK, Passed: true}

	if state.LastLossTimestamp == nil || config.CooldownPeriod <= 0 || state.DailyLossPercent <= 0 {
		return check
	}

	elapsed := now.UTC().Sub(*state.LastLossTimestamp)
	check.Value = elapsed.Seconds()

	cooldown := time.Duration(config.CooldownPeriod) * time.Second
	if elapsed < cooldown {
		remaining := cooldown - elapsed
		check.Passed = false
		check.Severity = SeverityBlocked
		check.Message = fmt.Sprintf("cooldown active, %.0f seconds remaining", remaining.Seconds())
	}

	return check
}

func safeRatio(value, limit float64) float64 {
	if limit == 0 {
		return 0
	}

	return value / limit
}
