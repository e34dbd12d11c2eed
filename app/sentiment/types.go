package sentiment

import (
	"math"
)

// Scores holds the per-label model output for one headline.
type Scores struct {
	Negative float64
	Positive float64
	Neutral  float64
}

// Compound reduces label scores to a single scalar in [-1, 1]. The
// formula is the max-magnitude form: positive when positive > negative,
// otherwise the negated negative score. It is intentionally not
// (positive - negative); historical data was produced with this form
// and the two disagree on mixed headlines.
func (s Scores) Compound() float64 {
	compound := -s.Negative
	if s.Positive > s.Negative {
		compound = s.Positive
	}

	compound = math.Round(compound*10000) / 10000

	if compound > 1 {
		compound = 1
	}
	if compound < -1 {
		compound = -1
	}

	return compound
}
