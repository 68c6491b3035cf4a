// Package simulation runs the local single-asset investment simulation used
// when the remote simulator is unreachable.
package simulation

import (
	"github.com/Dan9191/bankshot/internal/generator"
	"github.com/Dan9191/bankshot/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultStake is the fixed amount every simulation invests.
const DefaultStake = 25.0

// Period labels the simulated holding period.
const Period = "1 month simulation"

var (
	assets = []string{"Apple (AAPL)", "Microsoft (MSFT)", "Tesla (TSLA)", "Amazon (AMZN)"}

	narratives = []string{
		"Apple played solid fundamentals! That's how you build a championship portfolio.",
		"Market volatility is like defense - it can be tough, but champions stay focused on the long game.",
		"Nice pick! You're reading the market like a point guard reading the defense.",
		"Even MJ had off nights. This stock will bounce back - keep your investment game strong!",
	}

	oneCent = decimal.New(1, -2)
)

// Engine produces bounded randomized simulation outcomes
type Engine struct {
	src             generator.Source
	gainProbability float64
}

// NewEngine creates an engine. gainProbability outside [0,1] falls back to 0.5.
func NewEngine(src generator.Source, gainProbability float64) *Engine {
	if gainProbability < 0 || gainProbability > 1 {
		gainProbability = 0.5
	}
	return &Engine{src: src, gainProbability: gainProbability}
}

// Run simulates DefaultStake.
func (e *Engine) Run() models.SimulationResult {
	return e.RunStake(DefaultStake)
}

// RunStake simulates one holding period for stake. A gain grows the stake by
// up to 30%, a loss shrinks it by up to 20%, and either moves it by at least
// one cent.
func (e *Engine) RunStake(stake float64) models.SimulationResult {
	outcome := models.Loss
	if e.src.Float64() < e.gainProbability {
		outcome = models.Gain
	}

	var multiplier float64
	if outcome == models.Gain {
		multiplier = 1 + generator.UniformOpen(e.src, 0.3)
	} else {
		multiplier = 1 - generator.UniformOpen(e.src, 0.2)
	}

	s := decimal.NewFromFloat(stake)
	final := s.Mul(decimal.NewFromFloat(multiplier)).Round(2)
	switch {
	case outcome == models.Gain && final.LessThanOrEqual(s):
		final = s.Add(oneCent)
	case outcome == models.Loss && final.GreaterThanOrEqual(s):
		final = s.Sub(oneCent)
	}

	result := finish(stake, final.InexactFloat64())
	result.Asset = generator.Pick(e.src, assets)
	result.Outcome = outcome
	result.Narrative = generator.Pick(e.src, narratives)
	return result
}

// Complete fills the derived fields of a result that carries only an asset,
// stake and final value, classifying the outcome from the values.
func Complete(r models.SimulationResult) models.SimulationResult {
	out := finish(r.Stake, r.FinalValue)
	out.Asset = r.Asset
	if r.Period != "" {
		out.Period = r.Period
	}
	out.Outcome = Classify(r.Stake, r.FinalValue)
	out.Narrative = r.Narrative
	if out.Narrative == "" {
		out.Narrative = genericNarrative(out.Outcome)
	}
	return out
}

// genericNarrative picks a narrative that names no asset.
func genericNarrative(o models.Outcome) string {
	if o == models.Gain {
		return narratives[2]
	}
	return narratives[1]
}

// Classify compares a final value to the stake at cent precision.
func Classify(stake, final float64) models.Outcome {
	s := decimal.NewFromFloat(stake).Round(2)
	f := decimal.NewFromFloat(final).Round(2)
	switch f.Cmp(s) {
	case 1:
		return models.Gain
	case -1:
		return models.Loss
	default:
		return models.BreakEven
	}
}

func finish(stake, final float64) models.SimulationResult {
	s := decimal.NewFromFloat(stake)
	f := decimal.NewFromFloat(final)
	gainLoss := f.Sub(s)

	pct := decimal.Zero
	if !s.IsZero() {
		pct = gainLoss.Div(s).Mul(decimal.NewFromInt(100))
	}
	return models.SimulationResult{
		Stake:         stake,
		FinalValue:    f.Round(2).InexactFloat64(),
		GainLoss:      gainLoss.Round(2).InexactFloat64(),
		PercentChange: pct.Round(2).InexactFloat64(),
		Period:        Period,
	}
}
