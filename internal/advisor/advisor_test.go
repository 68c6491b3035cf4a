package advisor

import (
	"strings"
	"testing"

	"github.com/Dan9191/bankshot/internal/generator"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(balances ...int64) []models.BalancePoint {
	out := make([]models.BalancePoint, len(balances))
	for i, b := range balances {
		out[i] = models.BalancePoint{Period: string(rune('A' + i)), Balance: b}
	}
	return out
}

func containsAll(t *testing.T, pool []string, fragments ...string) {
	t.Helper()
	for _, frag := range fragments {
		found := false
		for _, s := range pool {
			if strings.Contains(s, frag) {
				found = true
				break
			}
		}
		assert.True(t, found, "no candidate contains %q", frag)
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name      string
		spending  models.SpendingBreakdown
		history   []models.BalancePoint
		wantLen   int
		fragments []string
	}{
		{
			name:      "upward with strong savings and low wants",
			spending:  models.SpendingBreakdown{Needs: 600, Wants: 100, Savings: 300},
			history:   history(1000, 1500),
			wantLen:   4,
			fragments: []string{"trending upward", "MVP-level", "30% savings rate", "disciplined at 10%"},
		},
		{
			name:      "downward with heavy needs",
			spending:  models.SpendingBreakdown{Needs: 800, Wants: 150, Savings: 50},
			history:   history(2000, 1500),
			wantLen:   4,
			fragments: []string{"took a dip", "bounce back", "savings are at 5%", "80% on needs"},
		},
		{
			name:      "middling shares only give trend sentences",
			spending:  models.SpendingBreakdown{Needs: 550, Wants: 300, Savings: 150},
			history:   history(1000, 1000),
			wantLen:   2,
			fragments: []string{"trending upward"},
		},
		{
			name:     "heavy wants",
			spending: models.SpendingBreakdown{Needs: 400, Wants: 450, Savings: 150},
			history:  history(1000, 900, 800),
			wantLen:  3,
			fragments: []string{
				"45% on wants",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := Candidates(tt.spending, tt.history)
			require.Len(t, pool, tt.wantLen)
			containsAll(t, pool, tt.fragments...)
		})
	}
}

func TestInsightEngine_InsufficientData(t *testing.T) {
	e := NewInsightEngine(generator.NewSource(1))
	assert.Equal(t, InsufficientDataInsight, e.Pick(models.SpendingBreakdown{Needs: 1}, history(1000)))
	assert.Equal(t, InsufficientDataInsight, e.Pick(models.SpendingBreakdown{}, nil))
}

func TestInsightEngine_PicksFromPool(t *testing.T) {
	spending := models.SpendingBreakdown{Needs: 600, Wants: 100, Savings: 300}
	h := history(1000, 1500)
	pool := Candidates(spending, h)

	e := NewInsightEngine(generator.NewSource(3))
	for i := 0; i < 50; i++ {
		assert.Contains(t, pool, e.Pick(spending, h))
	}
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		question string
		want     Topic
	}{
		{"How is my BUDGET vs my goal?", TopicBudget},
		{"How am I doing?", TopicBudget},
		{"Should I save more toward my goal?", TopicSaving},
		{"What's my balance trend?", TopicTrend},
		{"goal status", TopicGoal},
		{"any tip?", TopicTips},
		{"Give me advice", TopicTips},
		{"hello coach", TopicDefault},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.question))
		})
	}
}

func testSnapshot() *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		BalanceHistory: history(1000, 1200, 1400),
		Spending:       models.SpendingBreakdown{Needs: 500, Wants: 300, Savings: 200},
		Goal:           500,
	}
}

func TestResponder_Placeholder(t *testing.T) {
	r := NewResponder(generator.NewSource(1))

	assert.Equal(t, PlaceholderResponse, r.Respond("budget?", nil))
	assert.Equal(t, PlaceholderResponse, r.Respond("budget?", &models.FinancialSnapshot{BalanceHistory: history(1000)}))

	noBreakdown := testSnapshot()
	noBreakdown.Spending = models.SpendingBreakdown{}
	assert.Equal(t, PlaceholderResponse, r.Respond("budget?", noBreakdown))
}

func TestResponder_BudgetWinsOverGoal(t *testing.T) {
	r := NewResponder(generator.NewSource(1))
	got := r.Respond("How does my budget compare to my goal?", testSnapshot())

	assert.Equal(t, "Looking at your current game plan: You're spending 50% on needs, 30% on wants, and saving 20%. Your balance is trending upward. Your savings discipline is solid!", got)
}

func TestResponder_Templates(t *testing.T) {
	r := NewResponder(generator.NewSource(1))
	snap := testSnapshot()

	assert.Equal(t,
		"You're currently saving 20% of your spending, with 200 towards your 500 goal (40% complete). Solid progress, keep the momentum going!",
		r.Respond("how can I save?", snap))
	assert.Equal(t,
		"Your current savings goal is 500, and you're at 40% completion with 200 saved. Remember, every champion started with the first step. Stay focused on your goal.",
		r.Respond("my goal", snap))
	assert.Contains(t, r.Respond("trend?", snap), "Your balance trend is upward - that's the kind of momentum")

	down := testSnapshot()
	down.BalanceHistory = history(1400, 1000)
	assert.Contains(t, r.Respond("balance?", down), "Your balance trend is downward - time for some strategic adjustments")
}

func TestResponder_ZeroGoalUsesSentinel(t *testing.T) {
	r := NewResponder(generator.NewSource(1))
	snap := testSnapshot()
	snap.Goal = 0

	assert.Contains(t, r.Respond("goal?", snap), "you're at 58% completion")
}

func TestResponder_Variants(t *testing.T) {
	r := NewResponder(generator.NewSource(5))
	snap := testSnapshot()

	tips := tipAnswers(facts{wants: 30, savings: 20, upward: true, trend: models.Upward})
	defaults := defaultAnswers(facts{needs: 50, wants: 30, savings: 20, progress: 40, goal: 500, trend: models.Upward})

	for i := 0; i < 30; i++ {
		assert.Contains(t, tips, r.Respond("got a tip?", snap))
		assert.Contains(t, defaults, r.Respond("hello", snap))
	}
}
