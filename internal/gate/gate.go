package gate

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Gate thresholds. The GO tier requires every check to pass; the
// conditional tier requires only its CRITICAL checks.
const (
	minUniqueStrategies    = 3
	goDiversityScore       = 60.0
	conditionalDiversity   = 40.0
	maxAvgCorrelation      = 0.8
	minFactorDiversity     = 0.5
	minRiskDiversity       = 0.3
	requiredSuccessRate    = 100.0
	validationFixedOK      = 1.0
)

// Evaluate runs the two-tier gate over the three raw report documents.
// It is side-effect free: the same inputs always produce the same decision.
func Evaluate(validation, duplicates, diversity json.RawMessage) (Report, error) {
	metrics, err := extractMetrics(validation, duplicates, diversity)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		ID:          uuid.NewString(),
		Metrics:     metrics,
		GeneratedAt: time.Now(),
	}

	goCriteria := evaluateGoTier(metrics)
	if allPassed(goCriteria) {
		report.Decision = DecisionGo
		report.RiskLevel = RiskLow
		report.CriteriaMet, report.CriteriaFailed = split(goCriteria)
	} else {
		conditional := evaluateConditionalTier(metrics)
		if criticalPassed(conditional) {
			report.Decision = DecisionConditionalGo
			// fixed MEDIUM regardless of which non-critical checks failed;
			// see DESIGN.md for the open-question resolution
			report.RiskLevel = RiskMedium
		} else {
			report.Decision = DecisionNoGo
			report.RiskLevel = RiskHigh
		}
		report.CriteriaMet, report.CriteriaFailed = split(conditional)
	}

	report.Warnings = buildWarnings(report.CriteriaFailed)
	report.Recommendations = buildRecommendations(report.Decision, report.CriteriaFailed)
	report.Summary = buildSummary(report)
	return report, nil
}

func evaluateGoTier(m Metrics) []Criterion {
	return []Criterion{
		check("unique_strategies", float64(m.UniqueStrategies), minUniqueStrategies, CompareGTE, WeightCritical),
		check("diversity_score", m.DiversityScore, goDiversityScore, CompareGTE, WeightHigh),
		check("avg_correlation", m.AvgCorrelation, maxAvgCorrelation, CompareLT, WeightMedium),
		check("factor_diversity", m.FactorDiversity, minFactorDiversity, CompareGTE, WeightHigh),
		check("risk_diversity", m.RiskDiversity, minRiskDiversity, CompareGTE, WeightMedium),
		check("validation_framework_fixed", boolValue(m.ValidationFixed), validationFixedOK, CompareEQ, WeightCritical),
		check("execution_success_rate", m.ExecutionSuccessRate, requiredSuccessRate, CompareGTE, WeightHigh),
	}
}

func evaluateConditionalTier(m Metrics) []Criterion {
	return []Criterion{
		check("unique_strategies", float64(m.UniqueStrategies), minUniqueStrategies, CompareGTE, WeightCritical),
		check("diversity_score", m.DiversityScore, conditionalDiversity, CompareGTE, WeightHigh),
		check("avg_correlation", m.AvgCorrelation, maxAvgCorrelation, CompareLT, WeightCritical),
		check("validation_framework_fixed", boolValue(m.ValidationFixed), validationFixedOK, CompareEQ, WeightCritical),
		check("execution_success_rate", m.ExecutionSuccessRate, requiredSuccessRate, CompareGTE, WeightCritical),
		// informational only: recorded but never decisive in this tier
		check("factor_diversity", m.FactorDiversity, minFactorDiversity, CompareGTE, WeightMedium),
		check("risk_diversity", m.RiskDiversity, minRiskDiversity, CompareGTE, WeightLow),
	}
}

func check(name string, actual, threshold float64, cmp Comparison, w Weight) Criterion {
	c := Criterion{Name: name, Threshold: threshold, Actual: actual, Comparison: cmp, Weight: w}
	switch cmp {
	case CompareGTE:
		c.Passed = actual >= threshold
	case CompareLTE:
		c.Passed = actual <= threshold
	case CompareLT:
		c.Passed = actual < threshold
	case CompareGT:
		c.Passed = actual > threshold
	case CompareEQ:
		c.Passed = actual == threshold
	}
	return c
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func allPassed(criteria []Criterion) bool {
	for _, c := range criteria {
		if !c.Passed {
			return false
		}
	}
	return true
}

func criticalPassed(criteria []Criterion) bool {
	for _, c := range criteria {
		if c.Weight == WeightCritical && !c.Passed {
			return false
		}
	}
	return true
}

func split(criteria []Criterion) (met, failed []Criterion) {
	for _, c := range criteria {
		if c.Passed {
			met = append(met, c)
		} else {
			failed = append(failed, c)
		}
	}
	return met, failed
}

func buildWarnings(failed []Criterion) []string {
	warnings := make([]string, 0, len(failed))
	for _, c := range failed {
		warnings = append(warnings, fmt.Sprintf("%s is %.2f but must be %s %.2f (%s)",
			c.Name, c.Actual, c.Comparison, c.Threshold, c.Weight))
	}
	return warnings
}

func buildRecommendations(decision Decision, failed []Criterion) []string {
	switch decision {
	case DecisionGo:
		return []string{
			"Keep the current generation configuration; it satisfies every gate criterion.",
			"Re-run the gate after the next batch to confirm stability.",
		}
	case DecisionConditionalGo:
		return []string{
			"Proceed with close monitoring of the failed non-critical dimensions.",
			"Set alert thresholds slightly above the conditional minimums to catch regressions early.",
			"Plan remediation for the failed criteria before the next phase boundary.",
		}
	default:
		return noGoRecommendations(failed)
	}
}

// noGoRecommendations targets the worst-failing dimensions first:
// criteria sorted by weight severity, then by name for determinism.
func noGoRecommendations(failed []Criterion) []string {
	sorted := append([]Criterion(nil), failed...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if weightOrder[sorted[i].Weight] != weightOrder[sorted[j].Weight] {
			return weightOrder[sorted[i].Weight] < weightOrder[sorted[j].Weight]
		}
		return sorted[i].Name < sorted[j].Name
	})
	recs := make([]string, 0, len(sorted)+1)
	for _, c := range sorted {
		switch c.Name {
		case "unique_strategies":
			recs = append(recs, "Increase the generation population size or loosen duplicate detection to yield at least 3 unique strategies.")
		case "diversity_score":
			recs = append(recs, "Tune generation prompts toward under-represented factor families to raise the diversity score.")
		case "avg_correlation":
			recs = append(recs, "Penalize correlated factor combinations during generation to bring average correlation under 0.8.")
		case "validation_framework_fixed":
			recs = append(recs, "Fix the known validation-framework defect before re-running the gate.")
		case "execution_success_rate":
			recs = append(recs, "Debug failing strategy executions until the success rate returns to 100%.")
		case "factor_diversity":
			recs = append(recs, "Broaden the factor universe used by the generator.")
		case "risk_diversity":
			recs = append(recs, "Vary position sizing and stop-loss styles across the population.")
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "Review the gate inputs; the decision failed without an attributable criterion.")
	}
	return recs
}

func buildSummary(r Report) string {
	switch r.Decision {
	case DecisionGo:
		return fmt.Sprintf("All %d gate criteria passed: the strategy batch is ready for the next phase.",
			len(r.CriteriaMet))
	case DecisionConditionalGo:
		return fmt.Sprintf("Minimal criteria passed with %d non-critical failure(s): proceed with required monitoring.",
			len(r.CriteriaFailed))
	default:
		blocking := "a critical criterion"
		for _, c := range r.CriteriaFailed {
			if c.Weight == WeightCritical {
				blocking = c.Name
				break
			}
		}
		return fmt.Sprintf("Gate blocked: %s failed. The batch must not advance.", blocking)
	}
}
