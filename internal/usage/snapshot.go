package usage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const snapshotRecentCount = 20

// SnapshotReport combines every template's statistics with the current best
// template and the most recent ledger entries.
type SnapshotReport struct {
	ID           string           `json:"id"`
	GeneratedAt  time.Time        `json:"generated_at"`
	TotalRecords int              `json:"total_records"`
	PerTemplate  map[string]Stats `json:"per_template"`
	BestTemplate string           `json:"best_template,omitempty"`
	Recent       []Record         `json:"recent"`
}

// Snapshot builds a point-in-time report over the whole ledger.
func (s *Store) Snapshot() SnapshotReport {
	report := SnapshotReport{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		PerTemplate: make(map[string]Stats),
		Recent:      s.Recent("", snapshotRecentCount),
	}
	for _, name := range s.templateNames() {
		report.PerTemplate[name] = s.StatsFor(name)
	}
	if best, ok := s.BestTemplate(); ok {
		report.BestTemplate = best
	}
	report.TotalRecords = s.Len()
	return report
}

// Document renders the snapshot as a plain-text report.
func (r SnapshotReport) Document() string {
	var b strings.Builder
	b.WriteString("# Template Usage Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Records: %d\n\n", r.TotalRecords)

	b.WriteString("## Per-Template Statistics\n")
	if len(r.PerTemplate) == 0 {
		b.WriteString("No usage recorded yet.\n")
	}
	names := make([]string, 0, len(r.PerTemplate))
	for name := range r.PerTemplate {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := r.PerTemplate[name]
		reliability := "unreliable"
		if st.Reliable {
			reliability = "reliable"
		}
		fmt.Fprintf(&b, "- %s: uses=%d success=%.0f%% avg_sharpe=%.2f best=%.2f worst=%.2f (%s)\n",
			name, st.TotalUsage, st.SuccessRate*100, st.AvgSharpe, st.BestSharpe, st.WorstSharpe, reliability)
	}
	if r.BestTemplate != "" {
		fmt.Fprintf(&b, "\nBest template: %s\n", r.BestTemplate)
	}

	if len(r.Recent) > 0 {
		b.WriteString("\n## Recent Usage\n")
		for _, rec := range r.Recent {
			flags := ""
			if rec.ExplorationMode {
				flags += " [exploration]"
			}
			if rec.ChampionBased {
				flags += " [champion]"
			}
			fmt.Fprintf(&b, "- iter %d: %s sharpe=%.2f passed=%t%s\n",
				rec.Iteration, rec.TemplateName, rec.SharpeRatio, rec.ValidationPassed, flags)
		}
	}
	return b.String()
}
