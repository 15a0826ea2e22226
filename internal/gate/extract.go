package gate

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// extractMetrics pulls the gate inputs out of the three raw reports.
// Only diversity_score is structurally required; every other field has a
// documented permissive default.
func extractMetrics(validation, duplicates, diversity json.RawMessage) (Metrics, error) {
	score := gjson.GetBytes(diversity, "diversity_score")
	if !score.Exists() {
		return Metrics{}, fmt.Errorf("diversity report is missing required field %q", "diversity_score")
	}

	var m Metrics
	m.DiversityScore = score.Float()
	m.AvgCorrelation = gjson.GetBytes(diversity, "avg_correlation").Float()
	m.FactorDiversity = gjson.GetBytes(diversity, "factor_diversity").Float()
	m.RiskDiversity = gjson.GetBytes(diversity, "risk_diversity").Float()

	m.TotalStrategies = int(gjson.GetBytes(diversity, "total_strategies").Int())
	if m.TotalStrategies == 0 {
		m.TotalStrategies = int(gjson.GetBytes(duplicates, "total_strategies").Int())
	}
	m.UniqueStrategies = uniqueStrategies(m.TotalStrategies, duplicates)

	m.ValidationFixed = validationFixed(validation)
	m.ExecutionSuccessRate = executionSuccessRate(validation)
	return m, nil
}

// uniqueStrategies subtracts duplicates from the total: each duplicate
// group of size n contributes n-1 duplicates, so a singleton group
// contributes none. The result is floored at zero.
func uniqueStrategies(total int, duplicates json.RawMessage) int {
	dupes := 0
	groups := gjson.GetBytes(duplicates, "duplicate_groups")
	groups.ForEach(func(_, group gjson.Result) bool {
		if n := len(group.Array()); n > 1 {
			dupes += n - 1
		}
		return true
	})
	unique := total - dupes
	if unique < 0 {
		return 0
	}
	return unique
}

func validationFixed(validation json.RawMessage) bool {
	if v := gjson.GetBytes(validation, "validation_framework_fixed"); v.Exists() {
		return v.Bool()
	}
	return gjson.GetBytes(validation, "framework_fixed").Bool()
}

// executionSuccessRate resolves the success rate through the documented
// fallback chain. A report with no execution evidence at all defaults to
// 100: absence of evidence of failure is treated as success. Permissive,
// and kept for compatibility with existing gating outcomes.
func executionSuccessRate(validation json.RawMessage) float64 {
	if v := gjson.GetBytes(validation, "execution_success_rate"); v.Exists() && v.Float() != 0 {
		return v.Float()
	}
	if v := gjson.GetBytes(validation, "execution_validation.success_rate"); v.Exists() && v.Float() != 0 {
		return v.Float()
	}
	pairs := [][2]string{
		{"execution_validation.successful", "execution_validation.total"},
		{"successful_executions", "total_executions"},
	}
	for _, pair := range pairs {
		ok := gjson.GetBytes(validation, pair[0])
		total := gjson.GetBytes(validation, pair[1])
		if ok.Exists() && total.Exists() && total.Float() > 0 {
			return ok.Float() / total.Float() * 100
		}
	}
	return 100
}
