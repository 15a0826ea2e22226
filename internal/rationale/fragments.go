package rationale

import (
	"fmt"
	"strings"
)

// The fragment helpers below are pure functions: each renders one
// multi-line text block and can be used on its own or composed by Render.

// PerformanceFragment explains where a Sharpe ratio sits in the tier bands.
func PerformanceFragment(sharpe float64) string {
	tier := TierFor(sharpe)
	var b strings.Builder
	fmt.Fprintf(&b, "Current Sharpe ratio is %.2f, which falls in the %s tier", sharpe, tier.Label)
	if tier.MinSharpe > 0 {
		fmt.Fprintf(&b, " (>= %.1f)", tier.MinSharpe)
	} else {
		b.WriteString(" (< 0.5)")
	}
	b.WriteString(".\n")
	switch tier.Label {
	case "Champion":
		b.WriteString("Performance is already championship grade; the goal shifts to consolidation and robustness.")
	case "Contender":
		b.WriteString("Performance is close to champion grade; incremental parameter refinement is the priority.")
	case "Solid":
		b.WriteString("Performance is solid; drawdown control decides the next direction.")
	case "Archive":
		b.WriteString("Performance is archivable but not competitive; structural improvement is needed.")
	default:
		b.WriteString("Performance is weak; fast, low-cost iteration beats careful tuning at this stage.")
	}
	return b.String()
}

// ExplorationFragment explains a forced-exploration pick.
func ExplorationFragment(templateName string, recentlyUsed []string) string {
	var b strings.Builder
	b.WriteString("This is a scheduled exploration round.\n")
	fmt.Fprintf(&b, "Template %s was selected because it is under-used in the recent window.\n", templateName)
	if len(recentlyUsed) > 0 {
		fmt.Fprintf(&b, "Recently used templates: %s.", strings.Join(recentlyUsed, ", "))
	} else {
		b.WriteString("No templates have been used recently.")
	}
	return b.String()
}

// ChampionFragment explains a champion-based parameter transfer.
func ChampionFragment(genomeID string, sharpe float64) string {
	return fmt.Sprintf(
		"Parameters were transferred from champion %s.\nThat configuration achieved a Sharpe ratio of %.2f and serves as the starting point for this iteration.",
		genomeID, sharpe)
}

// ValidationFeedbackFragment summarizes how validation issues shaped the
// recommendation.
func ValidationFeedbackFragment(critical, moderate int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation feedback reported %d critical and %d moderate issue(s).\n", critical, moderate)
	if critical > 0 {
		b.WriteString("Critical issues can override the template choice or force parameter clamping.")
	} else {
		b.WriteString("Moderate issues adjust parameters but leave the template choice intact.")
	}
	return b.String()
}

// RiskProfileFragment explains a direct risk-profile override.
func RiskProfileFragment(profile, templateName string) string {
	return fmt.Sprintf(
		"Risk profile %q was requested explicitly.\nIt maps directly to template %s regardless of current performance metrics.",
		profile, templateName)
}
