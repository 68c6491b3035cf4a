// Package advisor holds the rule-based advisory text engines: the insight
// picker shown on the dashboard and the keyword responder used when remote
// inference is unavailable.
package advisor

import (
	"fmt"

	"github.com/Dan9191/bankshot/internal/analytics"
	"github.com/Dan9191/bankshot/internal/generator"
	"github.com/Dan9191/bankshot/internal/models"
)

// InsufficientDataInsight is returned while the history is too short to judge.
const InsufficientDataInsight = "Loading your financial game plan..."

// InsightEngine selects one advisory sentence from the rules that currently hold
type InsightEngine struct {
	src generator.Source
}

// NewInsightEngine creates an engine drawing from src
func NewInsightEngine(src generator.Source) *InsightEngine {
	return &InsightEngine{src: src}
}

// Pick returns one sentence chosen uniformly from Candidates.
func (e *InsightEngine) Pick(spending models.SpendingBreakdown, history []models.BalancePoint) string {
	pool := Candidates(spending, history)
	if len(pool) == 0 {
		return InsufficientDataInsight
	}
	return generator.Pick(e.src, pool)
}

// Candidates builds the pool of sentences whose threshold predicates hold.
// Fewer than two balance points yield an empty pool.
func Candidates(spending models.SpendingBreakdown, history []models.BalancePoint) []string {
	if len(history) < 2 {
		return nil
	}
	shares := analytics.SharesOf(spending)

	var pool []string
	if analytics.IsUpward(history) {
		pool = append(pool,
			"You're crushing it this month! Your balance is trending upward like LeBron's fourth quarter performance. Keep this championship momentum going!",
			"That upward trend is looking MVP-level! You're playing financial basketball like a seasoned pro - consistent execution and smart plays.",
		)
	} else {
		pool = append(pool,
			"Your balance took a dip this period, but even Jordan had off games. Time to review the playbook and make some strategic adjustments for the comeback.",
			"The trend shows some challenges, but champions know how to bounce back. Focus on tightening up your financial defense and you'll be back on track.",
		)
	}

	switch {
	case shares.Savings >= 20:
		pool = append(pool, fmt.Sprintf("Your %.0f%% savings rate is championship-level! You're building wealth like Tim Duncan built rings - steady, reliable fundamentals.", shares.Savings))
	case shares.Savings < 10:
		pool = append(pool, fmt.Sprintf("Your savings are at %.0f%% - time to bench some of those want purchases and get your savings game stronger. Even superstars need solid fundamentals.", shares.Savings))
	}

	switch {
	case shares.Wants > 40:
		pool = append(pool, fmt.Sprintf("You're spending %.0f%% on wants - that's like taking too many three-pointers. Mix in some practical plays to balance your financial offense.", shares.Wants))
	case shares.Wants < 15:
		pool = append(pool, fmt.Sprintf("Your wants spending is disciplined at %.0f%%. You're playing smart financial defense, but remember to reward yourself occasionally for staying motivated.", shares.Wants))
	}

	if shares.Needs > 70 {
		pool = append(pool, fmt.Sprintf("%.0f%% on needs shows solid fundamentals, but see if you can optimize some of those essential expenses to free up cap space for your financial future.", shares.Needs))
	}
	return pool
}
