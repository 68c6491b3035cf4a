// Package generator produces synthetic financial data within fixed bounds.
// Generators hold no state besides the injected Source and clock.
package generator

import (
	"math"
	"sort"
	"time"

	"github.com/Dan9191/bankshot/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Periods is the number of points in a balance history.
const Periods = 6

// TransactionCount is the number of synthetic transactions per draw.
const TransactionCount = 12

var (
	merchants = []string{
		"Starbucks", "McDonald's", "Target", "Amazon", "Uber", "Netflix",
		"Spotify", "CVS Pharmacy", "Shell Gas", "Whole Foods", "Costco",
		"Apple Store", "Chipotle", "Uber Eats", "Home Depot", "Best Buy",
	}
	categories = []string{
		"Food & Dining", "Shopping", "Transportation", "Entertainment",
		"Gas & Fuel", "Groceries", "Bills & Utilities", "Health & Fitness",
	}
	creditLimits = []int64{2500, 3000, 3500, 4000, 5000, 7500, 10000}
	goals        = []float64{300, 500, 750, 1000, 1250, 1500, 2000}
)

type trendClass int

const (
	trendUp trendClass = iota
	trendDown
	trendMixed
)

// Generator draws synthetic snapshot parts.
type Generator struct {
	src Source
	now func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a generator drawing from src
func New(src Source, opts ...Option) *Generator {
	g := &Generator{src: src, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Source exposes the generator's randomness to collaborators that must share it.
func (g *Generator) Source() Source {
	return g.src
}

// Now returns the generator's clock reading.
func (g *Generator) Now() time.Time {
	return g.now()
}

// SpendingSplit draws a needs/wants/savings split of a synthetic monthly
// income. The shares always sum to the returned income exactly: savings is
// whatever needs and wants leave over.
func (g *Generator) SpendingSplit() (models.SpendingBreakdown, int64) {
	needsPct := Uniform(g.src, 30, 90)
	remaining := 100 - needsPct
	wantsPct := g.src.Float64() * remaining * 0.8

	income := decimal.NewFromFloat(Uniform(g.src, 2000, 5000)).Round(0)
	hundred := decimal.NewFromInt(100)
	needs := decimal.NewFromFloat(needsPct).Div(hundred).Mul(income).Round(0)
	wants := decimal.NewFromFloat(wantsPct).Div(hundred).Mul(income).Round(0)
	savings := income.Sub(needs).Sub(wants)

	return models.SpendingBreakdown{
		Needs:   needs.IntPart(),
		Wants:   wants.IntPart(),
		Savings: savings.IntPart(),
	}, income.IntPart()
}

// SplitSpend divides observed spending into randomized shares. Each share is
// rounded on its own, so the result need not add up to totalSpend.
func (g *Generator) SplitSpend(totalSpend float64) models.SpendingBreakdown {
	total := decimal.NewFromFloat(totalSpend)
	needs := total.Mul(decimal.NewFromFloat(Uniform(g.src, 0.4, 0.7)))
	wants := total.Mul(decimal.NewFromFloat(Uniform(g.src, 0.2, 0.5)))
	savings := decimal.Max(
		total.Mul(decimal.NewFromFloat(0.1)),
		decimal.NewFromFloat(Uniform(g.src, 100, 600)),
	)
	return models.SpendingBreakdown{
		Needs:   needs.Round(0).IntPart(),
		Wants:   wants.Round(0).IntPart(),
		Savings: savings.Round(0).IntPart(),
	}
}

// BalanceHistory draws a synthetic six period balance series.
func (g *Generator) BalanceHistory() []models.BalancePoint {
	start := Uniform(g.src, 1000, 4000)

	var class trendClass
	switch r := g.src.Float64(); {
	case r < 0.4:
		class = trendUp
	case r < 0.8:
		class = trendDown
	default:
		class = trendMixed
	}

	volatility := Uniform(g.src, 150, 350)
	labels := g.PeriodLabels(Periods)
	points := make([]models.BalancePoint, 0, Periods)

	var drift float64
	for i, label := range labels {
		var component float64
		switch class {
		case trendUp:
			if i > 0 {
				drift += Uniform(g.src, 40, 120)
			}
			component = drift
		case trendDown:
			if i > 0 {
				drift -= Uniform(g.src, 40, 120)
			}
			component = drift
		default:
			component = (g.src.Float64() - 0.5) * 400
		}
		noise := (g.src.Float64() - 0.5) * volatility
		points = append(points, models.BalancePoint{
			Period:  label,
			Balance: floorBalance(start + component + noise),
		})
	}
	return points
}

// AnchoredHistory builds a six period series that converges on a real
// current balance at the final period.
func (g *Generator) AnchoredHistory(current float64) []models.BalancePoint {
	variation := current * 0.15
	direction := 1.0
	if g.src.Float64() <= 0.5 {
		direction = -1
	}

	labels := g.PeriodLabels(Periods)
	weights := []float64{1.2, 0.8, 0.4, 0.1}
	points := make([]models.BalancePoint, 0, Periods)

	for i, w := range weights {
		noise := (g.src.Float64() - 0.5) * 200
		points = append(points, models.BalancePoint{
			Period:  labels[i],
			Balance: floorBalance(current + direction*variation*w + noise),
		})
	}
	points = append(points,
		models.BalancePoint{Period: labels[4], Balance: floorBalance(current + (g.src.Float64()-0.5)*100)},
		models.BalancePoint{Period: labels[5], Balance: floorBalance(current)},
	)
	return points
}

// Transactions draws TransactionCount synthetic transactions, newest first.
func (g *Generator) Transactions() []models.Transaction {
	now := g.now()
	txs := make([]models.Transaction, 0, TransactionCount)
	for i := 0; i < TransactionCount; i++ {
		tx := models.Transaction{ID: uuid.NewString()}
		if g.src.Float64() > 0.85 {
			tx.Merchant = "Direct Deposit"
			tx.Amount = cents(Uniform(g.src, 500, 2000))
			tx.Kind = models.Deposit
			tx.Category = "Income"
		} else {
			tx.Merchant = Pick(g.src, merchants)
			tx.Amount = cents(Uniform(g.src, 10, 210))
			tx.Kind = models.Withdrawal
			tx.Category = Pick(g.src, categories)
		}
		age := time.Duration(g.src.Float64() * float64(30*24*time.Hour))
		tx.OccurredOn = now.Add(-age)
		txs = append(txs, tx)
	}
	SortNewestFirst(txs)
	return txs
}

// Credit draws a credit line with utilization between 10% and 90%.
func (g *Generator) Credit() models.CreditState {
	limit := Pick(g.src, creditLimits)
	utilization := Uniform(g.src, 0.1, 0.9)
	used := int64(math.Round(float64(limit) * utilization))
	return models.CreditState{
		Limit:              limit,
		Used:               used,
		Available:          limit - used,
		UtilizationPercent: int(math.Round(utilization * 100)),
	}
}

// Goal draws a savings goal from the fixed catalog.
func (g *Generator) Goal() float64 {
	return Pick(g.src, goals)
}

// PeriodLabels returns short month names for the n months ending with the
// current one, oldest first.
func (g *Generator) PeriodLabels(n int) []string {
	now := g.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = first.AddDate(0, i-(n-1), 0).Format("Jan")
	}
	return labels
}

// SortNewestFirst orders transactions by date, most recent first.
func SortNewestFirst(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].OccurredOn.After(txs[j].OccurredOn)
	})
}

func floorBalance(v float64) int64 {
	return int64(math.Round(math.Max(models.BalanceFloor, v)))
}

func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
