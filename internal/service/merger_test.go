package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/bankshot/internal/generator"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestMerger(seed int64) *Merger {
	gen := generator.New(generator.NewSource(seed), generator.WithClock(func() time.Time { return fixedNow }))
	return NewMerger(gen)
}

func amount(v float64) *float64 { return &v }

func assertCompleteSnapshot(t *testing.T, snap *models.FinancialSnapshot) {
	t.Helper()
	require.NotNil(t, snap)
	require.Len(t, snap.BalanceHistory, generator.Periods)
	for _, p := range snap.BalanceHistory {
		assert.GreaterOrEqual(t, p.Balance, int64(models.BalanceFloor))
		assert.NotEmpty(t, p.Period)
	}
	assert.NotEmpty(t, snap.Transactions)
	assert.LessOrEqual(t, len(snap.Transactions), generator.TransactionCount)
	for i := 1; i < len(snap.Transactions); i++ {
		assert.False(t, snap.Transactions[i].OccurredOn.After(snap.Transactions[i-1].OccurredOn), "transactions must be newest first")
	}
	for _, tx := range snap.Transactions {
		assert.NotEmpty(t, tx.ID)
		assert.GreaterOrEqual(t, tx.Amount, 0.0)
	}
	assert.Positive(t, snap.Spending.Total())
	assert.Contains(t, []float64{300, 500, 750, 1000, 1250, 1500, 2000}, snap.Goal)
	require.NotNil(t, snap.Credit)
	assert.Equal(t, snap.Credit.Limit, snap.Credit.Used+snap.Credit.Available)
	assert.NotEmpty(t, snap.AdvisoryText)
}

func TestMerge_BothFailed(t *testing.T) {
	m := newTestMerger(1)
	snap := m.Merge(
		Fetch[models.Account]{Err: errors.New("timeout")},
		Fetch[models.RawTransaction]{Err: errors.New("500")},
		"c1",
	)
	assertCompleteSnapshot(t, snap)
	assert.Equal(t, models.ModeFallback, snap.Mode)
	assert.Empty(t, snap.SourceCustomerID)
	assert.Len(t, snap.Transactions, generator.TransactionCount)
}

func TestMerge_EmptyResultsCountAsNoData(t *testing.T) {
	m := newTestMerger(2)
	snap := m.Merge(Fetch[models.Account]{}, Fetch[models.RawTransaction]{Records: []models.RawTransaction{}}, "c1")
	assert.Equal(t, models.ModeFallback, snap.Mode)
}

func TestMerge_AnchorsOnCheckingAccount(t *testing.T) {
	m := newTestMerger(3)
	snap := m.Merge(
		Fetch[models.Account]{Records: []models.Account{
			{ID: "a1", Type: "Savings", Balance: 9000},
			{ID: "a2", Type: "CHECKING", Balance: 2500},
		}},
		Fetch[models.RawTransaction]{Err: errors.New("down")},
		"c1",
	)
	assertCompleteSnapshot(t, snap)
	assert.Equal(t, models.ModeMerged, snap.Mode)
	assert.Equal(t, "c1", snap.SourceCustomerID)
	assert.Equal(t, int64(2500), snap.BalanceHistory[generator.Periods-1].Balance)
	assert.Len(t, snap.Transactions, generator.TransactionCount)
}

func TestMerge_AnchorsOnFirstAccountWithoutChecking(t *testing.T) {
	m := newTestMerger(4)
	snap := m.Merge(
		Fetch[models.Account]{Records: []models.Account{{Type: "Credit Card", Balance: 1800}, {Type: "Savings", Balance: 7000}}},
		Fetch[models.RawTransaction]{},
		"c1",
	)
	assert.Equal(t, int64(1800), snap.BalanceHistory[generator.Periods-1].Balance)
}

func TestMerge_TransactionsOnlySpendingBands(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		m := newTestMerger(seed)
		raw := []models.RawTransaction{
			{ID: "t1", MerchantName: "Target", Amount: amount(-50), Type: "withdrawal", Category: "shopping", Date: "2024-06-14"},
			{ID: "t2", Description: "Shell", Amount: amount(40), Type: "Withdrawal", Date: "2024-06-13"},
			{ID: "t3", Merchant: "Chipotle", Amount: amount(60), Type: "withdrawal", Category: "food & dining", TransactionDate: "2024-06-12 18:30:00"},
		}
		snap := m.Merge(Fetch[models.Account]{Err: errors.New("down")}, Fetch[models.RawTransaction]{Records: raw}, "c1")
		assertCompleteSnapshot(t, snap)
		require.Len(t, snap.Transactions, len(raw)+syntheticBackfill)

		ids := map[string]bool{}
		for _, tx := range snap.Transactions {
			ids[tx.ID] = true
		}
		assert.True(t, ids["t1"] && ids["t2"] && ids["t3"])

		// The three live withdrawals contribute 150 to the spend basis.
		total := totalSpend(snap.Transactions)
		assert.GreaterOrEqual(t, total, 150.0)

		s := snap.Spending
		assert.InDelta(t, 0.55*total, float64(s.Needs), 0.15*total+0.5)
		assert.InDelta(t, 0.35*total, float64(s.Wants), 0.15*total+0.5)
		assert.GreaterOrEqual(t, float64(s.Savings), max(0.1*total, 100)-0.5)
		assert.LessOrEqual(t, float64(s.Savings), max(0.1*total, 600)+0.5)
	}
}

func TestMerge_TruncatesToNewest(t *testing.T) {
	m := newTestMerger(5)
	raw := make([]models.RawTransaction, 20)
	for i := range raw {
		raw[i] = models.RawTransaction{Amount: amount(10), Date: fixedNow.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)}
	}
	snap := m.Merge(Fetch[models.Account]{}, Fetch[models.RawTransaction]{Records: raw}, "c1")
	require.Len(t, snap.Transactions, generator.TransactionCount)
	assert.Equal(t, fixedNow.Add(19*time.Hour), snap.Transactions[0].OccurredOn)
}

func TestNormalize(t *testing.T) {
	m := newTestMerger(6)

	tests := []struct {
		name  string
		raw   models.RawTransaction
		check func(t *testing.T, tx models.Transaction)
	}{
		{
			name: "mongo id and merchant name win",
			raw:  models.RawTransaction{MongoID: "m1", ID: "i1", MerchantName: "Whole Foods", Merchant: "WF", Amount: amount(12.345), Type: "withdrawal", Category: "GROCERIES", Date: "2024-06-01"},
			check: func(t *testing.T, tx models.Transaction) {
				assert.Equal(t, "m1", tx.ID)
				assert.Equal(t, "Whole Foods", tx.Merchant)
				assert.Equal(t, 12.35, tx.Amount)
				assert.Equal(t, models.Withdrawal, tx.Kind)
				assert.Equal(t, "Groceries", tx.Category)
				assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), tx.OccurredOn)
			},
		},
		{
			name: "description fallback and signed deposit",
			raw:  models.RawTransaction{Description: "Payroll", Amount: amount(1500)},
			check: func(t *testing.T, tx models.Transaction) {
				assert.NotEmpty(t, tx.ID)
				assert.Equal(t, "Payroll", tx.Merchant)
				assert.Equal(t, models.Deposit, tx.Kind)
				assert.Equal(t, "Other", tx.Category)
				assert.Equal(t, fixedNow, tx.OccurredOn)
			},
		},
		{
			name: "negative amount is a withdrawal of its magnitude",
			raw:  models.RawTransaction{Amount: amount(-42)},
			check: func(t *testing.T, tx models.Transaction) {
				assert.Equal(t, "Unknown Merchant", tx.Merchant)
				assert.Equal(t, 42.0, tx.Amount)
				assert.Equal(t, models.Withdrawal, tx.Kind)
			},
		},
		{
			name: "provided type overrides sign",
			raw:  models.RawTransaction{Amount: amount(-42), Type: "Deposit"},
			check: func(t *testing.T, tx models.Transaction) {
				assert.Equal(t, models.Deposit, tx.Kind)
			},
		},
		{
			name: "missing amount is drawn",
			raw:  models.RawTransaction{Type: "withdrawal", TransactionDate: "not a date"},
			check: func(t *testing.T, tx models.Transaction) {
				assert.GreaterOrEqual(t, tx.Amount, 10.0)
				assert.LessOrEqual(t, tx.Amount, 110.0)
				assert.Equal(t, fixedNow, tx.OccurredOn)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, m.normalize(tt.raw))
		})
	}
}
