package service

import (
	"math"
	"strings"
	"time"

	"github.com/Dan9191/bankshot/internal/advisor"
	"github.com/Dan9191/bankshot/internal/generator"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// syntheticBackfill is how many generated transactions are mixed into live ones.
const syntheticBackfill = 4

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"}

// Fetch is the outcome of one external fetch.
type Fetch[T any] struct {
	Records []T
	Err     error
}

// HasData reports whether the fetch succeeded with at least one record.
func (f Fetch[T]) HasData() bool {
	return f.Err == nil && len(f.Records) > 0
}

// Merger assembles snapshots from live records and generated backfill
type Merger struct {
	gen     *generator.Generator
	insight *advisor.InsightEngine
}

// NewMerger creates a merger drawing from gen
func NewMerger(gen *generator.Generator) *Merger {
	return &Merger{
		gen:     gen,
		insight: advisor.NewInsightEngine(gen.Source()),
	}
}

// Merge builds a snapshot, using live data per category where the matching
// fetch returned any and generated data everywhere else.
func (m *Merger) Merge(accounts Fetch[models.Account], txs Fetch[models.RawTransaction], customerID string) *models.FinancialSnapshot {
	if !accounts.HasData() && !txs.HasData() {
		return m.Fallback()
	}

	snap := &models.FinancialSnapshot{
		SourceCustomerID: customerID,
		Mode:             models.ModeMerged,
		GeneratedAt:      m.gen.Now(),
	}

	if accounts.HasData() {
		snap.BalanceHistory = m.gen.AnchoredHistory(primaryAccount(accounts.Records).Balance)
	} else {
		snap.BalanceHistory = m.gen.BalanceHistory()
	}

	if txs.HasData() {
		snap.Transactions = m.mergeTransactions(txs.Records)
	} else {
		snap.Transactions = m.gen.Transactions()
	}

	if spend := totalSpend(snap.Transactions); spend > 0 {
		snap.Spending = m.gen.SplitSpend(spend)
	} else {
		snap.Spending, _ = m.gen.SpendingSplit()
	}

	m.finish(snap)
	return snap
}

// Fallback builds a snapshot from generated data only.
func (m *Merger) Fallback() *models.FinancialSnapshot {
	snap := &models.FinancialSnapshot{
		BalanceHistory: m.gen.BalanceHistory(),
		Transactions:   m.gen.Transactions(),
		Mode:           models.ModeFallback,
		GeneratedAt:    m.gen.Now(),
	}
	snap.Spending, _ = m.gen.SpendingSplit()
	m.finish(snap)
	return snap
}

func (m *Merger) finish(snap *models.FinancialSnapshot) {
	snap.Goal = m.gen.Goal()
	credit := m.gen.Credit()
	snap.Credit = &credit
	snap.AdvisoryText = m.insight.Pick(snap.Spending, snap.BalanceHistory)
}

func (m *Merger) mergeTransactions(raw []models.RawTransaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(raw)+syntheticBackfill)
	for _, r := range raw {
		out = append(out, m.normalize(r))
	}
	synthetic := m.gen.Transactions()
	out = append(out, synthetic[:min(syntheticBackfill, len(synthetic))]...)

	generator.SortNewestFirst(out)
	if len(out) > generator.TransactionCount {
		out = out[:generator.TransactionCount]
	}
	return out
}

// normalize maps one source record onto the canonical transaction shape.
func (m *Merger) normalize(r models.RawTransaction) models.Transaction {
	tx := models.Transaction{
		ID:       firstNonEmpty(r.MongoID, r.ID),
		Merchant: firstNonEmpty(r.MerchantName, r.Merchant, r.Description),
		Category: strings.TrimSpace(r.Category),
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Merchant == "" {
		tx.Merchant = "Unknown Merchant"
	}
	if tx.Category == "" {
		tx.Category = "Other"
	} else {
		tx.Category = cases.Title(language.English).String(tx.Category)
	}

	var signed float64
	if r.Amount != nil {
		signed = *r.Amount
	}
	if signed == 0 || math.IsNaN(signed) || math.IsInf(signed, 0) {
		tx.Amount = decimal.NewFromFloat(generator.Uniform(m.gen.Source(), 10, 110)).Round(2).InexactFloat64()
	} else {
		tx.Amount = decimal.NewFromFloat(math.Abs(signed)).Round(2).InexactFloat64()
	}

	switch t := strings.ToLower(strings.TrimSpace(r.Type)); {
	case t == "deposit":
		tx.Kind = models.Deposit
	case t != "":
		tx.Kind = models.Withdrawal
	case signed > 0:
		tx.Kind = models.Deposit
	default:
		tx.Kind = models.Withdrawal
	}

	tx.OccurredOn = m.gen.Now()
	for _, raw := range []string{r.Date, r.TransactionDate} {
		if when, ok := parseDate(raw); ok {
			tx.OccurredOn = when
			break
		}
	}
	return tx
}

// primaryAccount prefers the checking account, then the first one listed.
func primaryAccount(accounts []models.Account) models.Account {
	for _, a := range accounts {
		if strings.EqualFold(strings.TrimSpace(a.Type), "checking") {
			return a
		}
	}
	return accounts[0]
}

// totalSpend sums every non-deposit amount.
func totalSpend(txs []models.Transaction) float64 {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.Kind != models.Deposit {
			sum = sum.Add(decimal.NewFromFloat(tx.Amount))
		}
	}
	return sum.InexactFloat64()
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
