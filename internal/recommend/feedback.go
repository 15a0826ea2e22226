package recommend

import (
	"fmt"
	"sort"
	"strings"

	"alphaforge/internal/pkg/convert"
	"alphaforge/internal/template"
)

type issueCategory int

const (
	categoryParamRange issueCategory = iota
	categoryComplexity
	categoryDataAccess
)

var categoryKeywords = map[issueCategory][]string{
	categoryParamRange: {"parameter", "range", "out of range", "bounds", "exceeds"},
	categoryComplexity: {"complex", "architecture", "structure", "nested"},
	categoryDataAccess: {"data", "field", "column", "missing factor"},
}

func classifyIssue(msg string) map[issueCategory]bool {
	lowered := strings.ToLower(msg)
	out := make(map[issueCategory]bool)
	for cat, words := range categoryKeywords {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				out[cat] = true
				break
			}
		}
	}
	return out
}

// applyFeedback folds validation feedback into the recommendation.
// Categories compound: a parameter clamp does not suppress an architecture
// downgrade triggered in the same call.
func (r *Recommender) applyFeedback(rec *Recommendation, fb *ValidationFeedback, currentParams map[string]any) {
	if fb == nil || len(fb.Issues) == 0 {
		return
	}
	var hasParamIssue, hasDataIssue, hasCriticalComplexity bool
	for _, issue := range fb.Issues {
		cats := classifyIssue(issue.Message)
		if cats[categoryParamRange] {
			hasParamIssue = true
		}
		if cats[categoryDataAccess] {
			hasDataIssue = true
		}
		if cats[categoryComplexity] && issue.Severity == SeverityCritical {
			hasCriticalComplexity = true
		}
	}

	if hasParamIssue {
		clamped := r.clampParams(rec, currentParams)
		if len(clamped) > 0 {
			rec.Rationale += fmt.Sprintf("\nValidation feedback: clamped %s into known-safe ranges.",
				strings.Join(clamped, ", "))
		}
	}

	if hasCriticalComplexity {
		if tpl, ok := r.registry.Template(rec.TemplateName); ok && tpl.Complexity == template.ComplexityComplex {
			if simple, ok := r.registry.Simplest(); ok {
				rec.Rationale += fmt.Sprintf(
					"\nCritical architecture-complexity issues reported: downgrading %s to structurally simpler %s.",
					rec.TemplateName, simple.ID)
				rec.TemplateName = simple.ID
				rec.MatchScore = downgradedScore
			}
		}
	}

	if hasDataIssue {
		rec.Rationale += "\nData-access issues reported: prefer widely available fields (close, volume, market_cap) over exotic factors."
	}
}

// clampParams pulls candidate values from suggested then current params and
// clamps the known-risk keys. Returns the names that were written back.
func (r *Recommender) clampParams(rec *Recommendation, currentParams map[string]any) []string {
	if rec.SuggestedParams == nil {
		rec.SuggestedParams = make(map[string]any)
	}
	var touched []string
	for name, bounds := range clampRanges {
		raw, ok := rec.SuggestedParams[name]
		if !ok {
			raw, ok = currentParams[name]
		}
		if !ok {
			continue
		}
		v, numeric := convert.ToFloat64(raw)
		if !numeric {
			continue
		}
		rec.SuggestedParams[name] = clampValue(v, bounds[0], bounds[1])
		touched = append(touched, name)
	}
	sort.Strings(touched)
	return touched
}
