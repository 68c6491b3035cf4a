package models

// Outcome of an investment simulation
type Outcome string

const (
	Gain      Outcome = "Gain"
	Loss      Outcome = "Loss"
	BreakEven Outcome = "Break-even"
)

// SimulationResult represents one single-asset investment simulation
type SimulationResult struct {
	Asset         string  `json:"asset"`
	Stake         float64 `json:"stake"`
	FinalValue    float64 `json:"final_value"`
	GainLoss      float64 `json:"gain_loss"`
	PercentChange float64 `json:"percent_change"`
	Outcome       Outcome `json:"outcome"`
	Narrative     string  `json:"narrative"`
	Period        string  `json:"period"`
}
