package models

import "time"

// SnapshotMode records how a snapshot was assembled
type SnapshotMode string

const (
	// ModeMerged mixes live external data with synthetic backfill.
	ModeMerged SnapshotMode = "merged"
	// ModeFallback uses generated data only.
	ModeFallback SnapshotMode = "fallback"
)

// BalanceFloor is the lowest balance any history point may show.
const BalanceFloor = 100

// BalancePoint is the balance at the end of one labeled period
type BalancePoint struct {
	Period  string `json:"period"`
	Balance int64  `json:"balance"`
}

// SpendingBreakdown splits spending into needs, wants and savings
type SpendingBreakdown struct {
	Needs   int64 `json:"needs"`
	Wants   int64 `json:"wants"`
	Savings int64 `json:"savings"`
}

// Total returns needs + wants + savings.
func (b SpendingBreakdown) Total() int64 {
	return b.Needs + b.Wants + b.Savings
}

// FinancialSnapshot is everything rendered for one session. A snapshot is
// replaced wholesale on refresh; only Goal is ever patched.
type FinancialSnapshot struct {
	BalanceHistory   []BalancePoint    `json:"balance_history"`
	Transactions     []Transaction     `json:"transactions"`
	Spending         SpendingBreakdown `json:"spending"`
	Goal             float64           `json:"goal"`
	Credit           *CreditState      `json:"credit,omitempty"`
	AdvisoryText     string            `json:"advisory_text"`
	SourceCustomerID string            `json:"source_customer_id,omitempty"`
	Mode             SnapshotMode      `json:"mode"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

// WithGoal returns a copy of the snapshot with a new goal. The slices are
// shared, they are never mutated after creation.
func (s *FinancialSnapshot) WithGoal(goal float64) *FinancialSnapshot {
	cp := *s
	cp.Goal = goal
	return &cp
}
