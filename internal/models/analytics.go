package models

// Trend is the direction of the balance history
type Trend string

const (
	Upward   Trend = "upward"
	Downward Trend = "downward"
)

// DerivedView holds read-only aggregates recomputed on every snapshot change
type DerivedView struct {
	CurrentBalance      int64        `json:"current_balance"`
	BalanceDelta        int64        `json:"balance_delta"`
	GoalProgressPercent float64      `json:"goal_progress_percent"`
	BestMonth           BalancePoint `json:"best_month"`
	TrendDirection      Trend        `json:"trend_direction"`
}
