package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/Dan9191/bankshot/internal/analytics"
	"github.com/Dan9191/bankshot/internal/generator"
	"github.com/Dan9191/bankshot/internal/models"
)

// PlaceholderResponse is returned when the snapshot cannot support an answer.
const PlaceholderResponse = "Coach is reviewing the playbook. Try asking again in a moment!"

// Topic is the keyword group a question dispatched to
type Topic string

const (
	TopicBudget  Topic = "budget"
	TopicSaving  Topic = "saving"
	TopicTrend   Topic = "trend"
	TopicGoal    Topic = "goal"
	TopicTips    Topic = "tips"
	TopicDefault Topic = "default"
)

// keyword groups in priority order; the first group with a hit wins
var topics = []struct {
	topic    Topic
	keywords []string
}{
	{TopicBudget, []string{"budget", "spending", "doing"}},
	{TopicSaving, []string{"save", "saving"}},
	{TopicTrend, []string{"trend", "balance"}},
	{TopicGoal, []string{"goal"}},
	{TopicTips, []string{"tip", "advice"}},
}

// Classify returns the topic a question dispatches to.
func Classify(question string) Topic {
	q := strings.ToLower(question)
	for _, group := range topics {
		for _, kw := range group.keywords {
			if strings.Contains(q, kw) {
				return group.topic
			}
		}
	}
	return TopicDefault
}

// Responder answers free-text questions from the live snapshot values.
type Responder struct {
	src generator.Source
}

// NewResponder creates a responder drawing phrasing variants from src
func NewResponder(src generator.Source) *Responder {
	return &Responder{src: src}
}

type facts struct {
	needs, wants, savings int64 // whole percentages
	progress              int64 // whole goal progress percentage
	saved                 int64
	goal                  float64
	upward                bool
	trend                 models.Trend
}

// Respond answers question about snap.
func (r *Responder) Respond(question string, snap *models.FinancialSnapshot) string {
	if snap == nil || len(snap.BalanceHistory) < 2 || snap.Spending.Total() <= 0 {
		return PlaceholderResponse
	}

	shares := analytics.SharesOf(snap.Spending)
	f := facts{
		needs:    whole(shares.Needs),
		wants:    whole(shares.Wants),
		savings:  whole(shares.Savings),
		progress: whole(analytics.GoalProgress(snap.Spending.Savings, snap.Goal)),
		saved:    snap.Spending.Savings,
		goal:     snap.Goal,
		upward:   analytics.IsUpward(snap.BalanceHistory),
		trend:    analytics.TrendOf(snap.BalanceHistory),
	}

	switch Classify(question) {
	case TopicBudget:
		return budgetAnswer(f)
	case TopicSaving:
		return savingAnswer(f)
	case TopicTrend:
		return trendAnswer(f)
	case TopicGoal:
		return goalAnswer(f)
	case TopicTips:
		return generator.Pick(r.src, tipAnswers(f))
	default:
		return generator.Pick(r.src, defaultAnswers(f))
	}
}

func budgetAnswer(f facts) string {
	verdict := "Consider boosting that savings percentage for a stronger financial foundation."
	if f.savings >= 15 {
		verdict = "Your savings discipline is solid!"
	}
	return fmt.Sprintf("Looking at your current game plan: You're spending %d%% on needs, %d%% on wants, and saving %d%%. Your balance is trending %s. %s",
		f.needs, f.wants, f.savings, f.trend, verdict)
}

func savingAnswer(f facts) string {
	var verdict string
	switch {
	case f.progress >= 50:
		verdict = "You're more than halfway there - championship level!"
	case f.progress >= 25:
		verdict = "Solid progress, keep the momentum going!"
	default:
		verdict = "Time to amp up that savings game plan!"
	}
	return fmt.Sprintf("You're currently saving %d%% of your spending, with %d towards your %s goal (%d%% complete). %s",
		f.savings, f.saved, formatGoal(f.goal), f.progress, verdict)
}

func trendAnswer(f facts) string {
	if f.upward {
		return fmt.Sprintf("Your balance trend is %s - that's the kind of momentum champions are made of! Keep executing your game plan.", f.trend)
	}
	return fmt.Sprintf("Your balance trend is %s - time for some strategic adjustments. Even the best teams have rough stretches, but winners bounce back stronger.", f.trend)
}

func goalAnswer(f facts) string {
	var verdict string
	switch {
	case f.progress >= 75:
		verdict = "You're in the final stretch - finish strong!"
	case f.progress >= 50:
		verdict = "Halfway there! Keep that discipline up."
	default:
		verdict = "Remember, every champion started with the first step. Stay focused on your goal."
	}
	return fmt.Sprintf("Your current savings goal is %s, and you're at %d%% completion with %d saved. %s",
		formatGoal(f.goal), f.progress, f.saved, verdict)
}

func tipAnswers(f facts) []string {
	wants := "you're showing good spending discipline"
	if f.wants > 30 {
		wants = "consider trimming some of those discretionary expenses"
	}
	trend := "suggests it's time to tighten up your financial game plan"
	if f.upward {
		trend = "shows you're making smart moves"
	}
	var savings string
	switch {
	case f.savings >= 20:
		savings = "you're playing at an All-Star level"
	case f.savings >= 10:
		savings = "you're building good habits"
	default:
		savings = "there's room to level up your savings game"
	}
	return []string{
		fmt.Sprintf("With %d%% going to wants, %s.", f.wants, wants),
		fmt.Sprintf("Your %s trend %s.", f.trend, trend),
		fmt.Sprintf("At %d%% savings rate, %s.", f.savings, savings),
	}
}

func defaultAnswers(f facts) []string {
	return []string{
		fmt.Sprintf("Your financial playbook shows %d%% savings and a %s balance trend. What specific area would you like to focus on?", f.savings, f.trend),
		fmt.Sprintf("Looking at your numbers: %d%% needs, %d%% wants, %d%% savings. How can I help optimize your game plan?", f.needs, f.wants, f.savings),
		fmt.Sprintf("You're %d%% toward your %s goal with a %s trending balance. What's your next financial play?", f.progress, formatGoal(f.goal), f.trend),
	}
}

func whole(v float64) int64 {
	return int64(math.Round(v))
}

func formatGoal(goal float64) string {
	if goal == math.Trunc(goal) {
		return fmt.Sprintf("%.0f", goal)
	}
	return fmt.Sprintf("%.2f", goal)
}
