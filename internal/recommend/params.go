package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Exploration widens each default by ±30% so the search covers values the
// grid itself never materializes.
var (
	exploreLow  = decimal.NewFromFloat(0.7)
	exploreHigh = decimal.NewFromFloat(1.3)
)

func explorationRange(mid float64) (float64, float64) {
	d := decimal.NewFromFloat(mid)
	low, _ := d.Mul(exploreLow).Round(4).Float64()
	high, _ := d.Mul(exploreHigh).Round(4).Float64()
	return low, high
}

func clampValue(v, lo, hi float64) float64 {
	dv := decimal.NewFromFloat(v)
	dlo := decimal.NewFromFloat(lo)
	dhi := decimal.NewFromFloat(hi)
	if dv.LessThan(dlo) {
		return lo
	}
	if dv.GreaterThan(dhi) {
		return hi
	}
	return v
}

// describeExplorationParams renders the default plus its widened range for
// the exploration rationale.
func describeExplorationParams(defaults map[string]float64) string {
	if len(defaults) == 0 {
		return "no grid parameters defined"
	}
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		mid := defaults[name]
		low, high := explorationRange(mid)
		parts = append(parts, fmt.Sprintf("%s=%g (explore %g..%g)", name, mid, low, high))
	}
	return strings.Join(parts, ", ")
}
