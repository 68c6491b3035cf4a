// Package analytics computes read-only aggregates over a snapshot.
package analytics

import (
	"github.com/Dan9191/bankshot/internal/models"
)

// Empty-state values shown before any history exists.
const (
	DefaultCurrentBalance      = 1650
	DefaultBalanceDelta        = 130
	DefaultGoalProgressPercent = 58
)

// Shares are spending percentages over needs + wants + savings
type Shares struct {
	Needs   float64 `json:"needs"`
	Wants   float64 `json:"wants"`
	Savings float64 `json:"savings"`
}

// Derive computes the derived view of snap. A nil snapshot yields the
// empty-state defaults.
func Derive(snap *models.FinancialSnapshot) models.DerivedView {
	if snap == nil {
		snap = &models.FinancialSnapshot{}
	}
	history := snap.BalanceHistory

	view := models.DerivedView{
		CurrentBalance:      DefaultCurrentBalance,
		BalanceDelta:        DefaultBalanceDelta,
		GoalProgressPercent: GoalProgress(snap.Spending.Savings, snap.Goal),
		TrendDirection:      TrendOf(history),
	}
	if n := len(history); n > 0 {
		view.CurrentBalance = history[n-1].Balance
		view.BestMonth, _ = BestMonth(history)
	}
	if n := len(history); n > 1 {
		view.BalanceDelta = history[n-1].Balance - history[n-2].Balance
	}
	return view
}

// GoalProgress returns savings as a percentage of goal, or the documented
// default when there is no positive goal.
func GoalProgress(savings int64, goal float64) float64 {
	if !(goal > 0) {
		return DefaultGoalProgressPercent
	}
	return float64(savings) / goal * 100
}

// BestMonth returns the period with the highest balance. Ties go to the
// earliest period.
func BestMonth(history []models.BalancePoint) (models.BalancePoint, bool) {
	if len(history) == 0 {
		return models.BalancePoint{}, false
	}
	best := history[0]
	for _, p := range history[1:] {
		if p.Balance > best.Balance {
			best = p
		}
	}
	return best, true
}

// IsUpward reports whether the last balance is at least the first one.
func IsUpward(history []models.BalancePoint) bool {
	if len(history) == 0 {
		return true
	}
	return history[len(history)-1].Balance >= history[0].Balance
}

// TrendOf classifies the history. A flat history counts as upward.
func TrendOf(history []models.BalancePoint) models.Trend {
	if IsUpward(history) {
		return models.Upward
	}
	return models.Downward
}

// SharesOf converts a breakdown to percentages. A zero total gives zero shares.
func SharesOf(b models.SpendingBreakdown) Shares {
	total := float64(b.Total())
	if total <= 0 {
		return Shares{}
	}
	return Shares{
		Needs:   float64(b.Needs) / total * 100,
		Wants:   float64(b.Wants) / total * 100,
		Savings: float64(b.Savings) / total * 100,
	}
}
