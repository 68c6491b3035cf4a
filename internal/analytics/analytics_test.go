package analytics

import (
	"math"
	"testing"

	"github.com/Dan9191/bankshot/internal/models"
	"github.com/stretchr/testify/assert"
)

func series(balances ...int64) []models.BalancePoint {
	labels := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul"}
	out := make([]models.BalancePoint, len(balances))
	for i, b := range balances {
		out[i] = models.BalancePoint{Period: labels[i], Balance: b}
	}
	return out
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		snap *models.FinancialSnapshot
		want models.DerivedView
	}{
		{
			name: "nil snapshot uses defaults",
			snap: nil,
			want: models.DerivedView{
				CurrentBalance:      DefaultCurrentBalance,
				BalanceDelta:        DefaultBalanceDelta,
				GoalProgressPercent: DefaultGoalProgressPercent,
				TrendDirection:      models.Upward,
			},
		},
		{
			name: "single point keeps default delta",
			snap: &models.FinancialSnapshot{BalanceHistory: series(900), Goal: 500,
				Spending: models.SpendingBreakdown{Savings: 250}},
			want: models.DerivedView{
				CurrentBalance:      900,
				BalanceDelta:        DefaultBalanceDelta,
				GoalProgressPercent: 50,
				BestMonth:           models.BalancePoint{Period: "Jan", Balance: 900},
				TrendDirection:      models.Upward,
			},
		},
		{
			name: "downward series",
			snap: &models.FinancialSnapshot{BalanceHistory: series(3000, 2800, 2900, 2500, 2400, 2350), Goal: 1000,
				Spending: models.SpendingBreakdown{Savings: 400}},
			want: models.DerivedView{
				CurrentBalance:      2350,
				BalanceDelta:        -50,
				GoalProgressPercent: 40,
				BestMonth:           models.BalancePoint{Period: "Jan", Balance: 3000},
				TrendDirection:      models.Downward,
			},
		},
		{
			name: "flat series is upward",
			snap: &models.FinancialSnapshot{BalanceHistory: series(1200, 1100, 1200), Goal: 300,
				Spending: models.SpendingBreakdown{Savings: 300}},
			want: models.DerivedView{
				CurrentBalance:      1200,
				BalanceDelta:        100,
				GoalProgressPercent: 100,
				BestMonth:           models.BalancePoint{Period: "Jan", Balance: 1200},
				TrendDirection:      models.Upward,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.snap))
		})
	}
}

func TestGoalProgress_Sentinel(t *testing.T) {
	for _, goal := range []float64{0, -10, math.NaN()} {
		got := GoalProgress(400, goal)
		assert.Equal(t, float64(DefaultGoalProgressPercent), got)
		assert.False(t, math.IsNaN(got))
	}
	assert.Equal(t, float64(DefaultGoalProgressPercent), Derive(&models.FinancialSnapshot{}).GoalProgressPercent)
}

func TestBestMonth(t *testing.T) {
	best, ok := BestMonth(series(100, 400, 300))
	assert.True(t, ok)
	assert.Equal(t, models.BalancePoint{Period: "Feb", Balance: 400}, best)

	// two equal maxima: the earlier period wins
	best, _ = BestMonth(series(100, 700, 300, 700, 200))
	assert.Equal(t, "Feb", best.Period)

	_, ok = BestMonth(nil)
	assert.False(t, ok)
}

func TestSharesOf(t *testing.T) {
	s := SharesOf(models.SpendingBreakdown{Needs: 500, Wants: 300, Savings: 200})
	assert.InDelta(t, 50, s.Needs, 1e-9)
	assert.InDelta(t, 30, s.Wants, 1e-9)
	assert.InDelta(t, 20, s.Savings, 1e-9)

	assert.Equal(t, Shares{}, SharesOf(models.SpendingBreakdown{}))
}
