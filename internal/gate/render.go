package gate

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Document renders the full structured gate report.
func (r Report) Document() string {
	var b strings.Builder
	b.WriteString("# Phase Gate Report\n\n")
	fmt.Fprintf(&b, "Decision: %s\n", r.Decision)
	fmt.Fprintf(&b, "Risk level: %s\n", r.RiskLevel)
	fmt.Fprintf(&b, "Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))

	b.WriteString("\n## Executive Summary\n")
	b.WriteString(r.Summary)
	b.WriteString("\n")

	b.WriteString("\n## Criteria\n")
	all := append(append([]Criterion(nil), r.CriteriaMet...), r.CriteriaFailed...)
	sort.SliceStable(all, func(i, j int) bool {
		if weightOrder[all[i].Weight] != weightOrder[all[j].Weight] {
			return weightOrder[all[i].Weight] < weightOrder[all[j].Weight]
		}
		return all[i].Name < all[j].Name
	})
	fmt.Fprintf(&b, "%-28s %-10s %-10s %-10s %-8s %s\n", "criterion", "actual", "op", "threshold", "weight", "result")
	for _, c := range all {
		result := "PASS"
		if !c.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(&b, "%-28s %-10.2f %-10s %-10.2f %-8s %s\n",
			c.Name, c.Actual, c.Comparison, c.Threshold, c.Weight, result)
	}

	b.WriteString("\n## Decision Matrix\n")
	b.WriteString("GO requires all seven GO-tier checks to pass:\n")
	b.WriteString("unique_strategies >= 3, diversity_score >= 60, avg_correlation < 0.8,\n")
	b.WriteString("factor_diversity >= 0.5, risk_diversity >= 0.3, validation framework fixed,\n")
	b.WriteString("execution_success_rate >= 100.\n")
	b.WriteString("If GO fails, CONDITIONAL_GO requires every CRITICAL conditional check:\n")
	b.WriteString("unique_strategies >= 3, avg_correlation < 0.8, validation framework fixed,\n")
	b.WriteString("execution_success_rate >= 100 (diversity_score >= 40 is advisory).\n")
	b.WriteString("Anything else is NO-GO.\n")

	b.WriteString("\n## Metrics\n")
	fmt.Fprintf(&b, "Total strategies: %d\n", r.Metrics.TotalStrategies)
	fmt.Fprintf(&b, "Unique strategies: %d\n", r.Metrics.UniqueStrategies)
	fmt.Fprintf(&b, "Diversity score: %.2f\n", r.Metrics.DiversityScore)
	fmt.Fprintf(&b, "Average correlation: %.2f\n", r.Metrics.AvgCorrelation)
	fmt.Fprintf(&b, "Factor diversity: %.2f\n", r.Metrics.FactorDiversity)
	fmt.Fprintf(&b, "Risk diversity: %.2f\n", r.Metrics.RiskDiversity)
	fmt.Fprintf(&b, "Validation framework fixed: %t\n", r.Metrics.ValidationFixed)
	fmt.Fprintf(&b, "Execution success rate: %.1f%%\n", r.Metrics.ExecutionSuccessRate)

	if len(r.Warnings) > 0 {
		b.WriteString("\n## Warnings\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	b.WriteString("\n## Risk Assessment\n")
	b.WriteString(riskNarrative(r.RiskLevel))

	b.WriteString("\n## Next Steps\n")
	b.WriteString(nextSteps(r.Decision))
	return b.String()
}

func riskNarrative(level RiskLevel) string {
	switch level {
	case RiskLow:
		return "Risk is LOW. Every gate criterion passed; the main residual risk is regression in the next batch, which routine re-gating covers.\n"
	case RiskMedium:
		return "Risk is MEDIUM. The batch clears only the minimal bar; failures in non-critical dimensions can compound if unmonitored. Monitoring and early alerts are mandatory.\n"
	default:
		return "Risk is HIGH. At least one critical criterion failed; advancing this batch would propagate known defects into the next phase.\n"
	}
}

func nextSteps(decision Decision) string {
	switch decision {
	case DecisionGo:
		return "- Promote the batch to the next research phase.\n" +
			"- Archive this report alongside the batch artifacts.\n" +
			"- Schedule the next gate after the following generation cycle.\n"
	case DecisionConditionalGo:
		return "- Promote the batch with monitoring enabled on the failed dimensions.\n" +
			"- Define alert thresholds and an owner for each failed criterion.\n" +
			"- Re-run the gate before the phase after next.\n"
	default:
		return "- Hold the batch; do not promote.\n" +
			"- Work through the recommendations above in order.\n" +
			"- Re-run the gate once the critical failures are addressed.\n"
	}
}
