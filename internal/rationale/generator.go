package rationale

import (
	"fmt"
	"sort"
	"strings"

	"alphaforge/internal/champion"
	"alphaforge/internal/logger"
	"alphaforge/internal/pkg/convert"
	"alphaforge/internal/recommend"
	"alphaforge/internal/template"
	"alphaforge/internal/usage"
)

// Provenance metadata keys are excluded from the rendered parameter list.
var metadataKeys = map[string]bool{
	"source_champion": true,
	"champion_sharpe": true,
}

// StatsProvider supplies empirical statistics for the chosen template.
type StatsProvider interface {
	TemplateStats(name string) (usage.Stats, error)
}

// Generator renders recommendation documents. All fields are optional:
// a nil stats provider or registry degrades to generic text, never a panic.
type Generator struct {
	registry *template.Registry
	stats    StatsProvider
}

func NewGenerator(registry *template.Registry, stats StatsProvider) *Generator {
	return &Generator{registry: registry, stats: stats}
}

// Render builds the full multi-section explanation document.
func (g *Generator) Render(rec recommend.Recommendation, metrics *recommend.Metrics, champ *champion.Champion) string {
	var b strings.Builder
	b.WriteString("# Template Recommendation\n\n")
	fmt.Fprintf(&b, "Template: %s\n", rec.TemplateName)
	fmt.Fprintf(&b, "Confidence: %.2f\n\n", rec.MatchScore)

	b.WriteString("## Selection Rationale\n")
	b.WriteString(strings.TrimSpace(rec.Rationale))
	b.WriteString("\n")
	b.WriteString(g.historyLine(rec.TemplateName))
	b.WriteString("\n")

	if metrics != nil {
		b.WriteString("\n## Current Performance\n")
		b.WriteString(PerformanceFragment(metrics.SharpeRatio))
		b.WriteString("\n")
	}

	b.WriteString("\n## Suggested Parameters\n")
	b.WriteString(renderParams(rec.SuggestedParams))

	if rec.ChampionReference != "" {
		b.WriteString("\n## Champion Reference\n")
		if champ != nil && champ.GenomeID == rec.ChampionReference {
			b.WriteString(ChampionFragment(champ.GenomeID, champ.SharpeRatio))
		} else {
			fmt.Fprintf(&b, "This recommendation was influenced by champion %s.", rec.ChampionReference)
		}
		b.WriteString("\n")
	}

	if rec.ExplorationMode {
		b.WriteString("\n## Exploration Mode\n")
		b.WriteString("This pick is exploratory: a scheduled diversity round, not a performance-optimal choice.\n")
		b.WriteString("Expect wider parameter ranges and a lower confidence score.\n")
	}

	b.WriteString("\n## Expected Characteristics\n")
	b.WriteString(g.expectedCharacteristics(rec.TemplateName))
	return b.String()
}

// historyLine reports the template's empirical track record. The absence
// of history is stated explicitly, never silently omitted.
func (g *Generator) historyLine(name string) string {
	if g.stats == nil {
		return "No historical data is available for this template yet."
	}
	stats, err := g.stats.TemplateStats(name)
	if err != nil {
		logger.Warnf("stats provider failed for %s, rendering without history: %v", name, err)
		return "No historical data is available for this template yet."
	}
	if !stats.HasData {
		return "No historical data is available for this template yet."
	}
	return fmt.Sprintf("Historically, %s succeeded in %.0f%% of %d run(s) with an average Sharpe of %.2f.",
		name, stats.SuccessRate*100, stats.TotalUsage, stats.AvgSharpe)
}

func (g *Generator) expectedCharacteristics(name string) string {
	if g.registry != nil {
		if tpl, ok := g.registry.Template(name); ok {
			var b strings.Builder
			fmt.Fprintf(&b, "Architecture: %s\n", tpl.Architecture)
			fmt.Fprintf(&b, "Structural complexity: %s\n", tpl.Complexity)
			if tpl.ExpectedRange != "" {
				fmt.Fprintf(&b, "Expected Sharpe range: %s\n", tpl.ExpectedRange)
			}
			return b.String()
		}
	}
	return fmt.Sprintf("No registered description for template %s.\n", name)
}

func renderParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if metadataKeys[k] {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "No parameter suggestions for this iteration.\n"
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, convert.ToString(params[k]))
	}
	return b.String()
}
