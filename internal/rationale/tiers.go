// Package rationale renders human-readable explanations for template
// recommendations.
package rationale

// Tier is one of the five performance bands. Bands are contiguous,
// half-open and lower-inclusive: a boundary Sharpe belongs to the higher
// band.
type Tier struct {
	Label     string  `json:"label"`
	MinSharpe float64 `json:"min_sharpe"`
}

var tiers = []Tier{
	{Label: "Champion", MinSharpe: 2.0},
	{Label: "Contender", MinSharpe: 1.5},
	{Label: "Solid", MinSharpe: 1.0},
	{Label: "Archive", MinSharpe: 0.5},
	{Label: "Poor", MinSharpe: 0.0},
}

// TierFor returns the performance tier for a Sharpe ratio. Anything below
// 0.5 (including negatives) is Poor.
func TierFor(sharpe float64) Tier {
	for _, t := range tiers[:len(tiers)-1] {
		if sharpe >= t.MinSharpe {
			return t
		}
	}
	return tiers[len(tiers)-1]
}
