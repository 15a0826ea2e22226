// Package feedback glues the recommendation engine to the usage ledger and
// keeps a bounded per-iteration history for trend analysis.
package feedback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"alphaforge/internal/recommend"
	"alphaforge/internal/usage"
)

// IterationRecord is one entry of the rolling iteration history.
type IterationRecord struct {
	Iteration    int       `json:"iteration"`
	TemplateName string    `json:"template_name"`
	MatchScore   float64   `json:"match_score"`
	Exploration  bool      `json:"exploration_mode"`
	Champion     bool      `json:"champion_based"`
	Sharpe       *float64  `json:"sharpe,omitempty"`
	At           time.Time `json:"at"`
}

// TrendStats summarizes the recent iteration window.
type TrendStats struct {
	Iterations       int     `json:"iterations"`
	Direction        string  `json:"direction"` // improving / declining / flat
	BestSharpe       float64 `json:"best_sharpe"`
	AvgSharpe        float64 `json:"avg_sharpe"`
	ExplorationShare float64 `json:"exploration_share"`
}

// trendDeadBand is the mean-Sharpe difference below which the trend
// counts as flat.
const trendDeadBand = 0.1

// Integrator orchestrates one recommendation per iteration and folds the
// outcome back into the usage store.
type Integrator struct {
	recommender *recommend.Recommender
	store       *usage.Store
	historyCap  int
	trendWindow int

	mu      sync.Mutex
	history []IterationRecord
}

type Options struct {
	HistoryCap  int
	TrendWindow int
}

func NewIntegrator(r *recommend.Recommender, store *usage.Store, opts Options) *Integrator {
	in := &Integrator{
		recommender: r,
		store:       store,
		historyCap:  opts.HistoryCap,
		trendWindow: opts.TrendWindow,
	}
	if in.historyCap <= 0 {
		in.historyCap = 50
	}
	if in.trendWindow <= 0 {
		in.trendWindow = 10
	}
	return in
}

// NextRecommendation asks the engine for the iteration's template and
// appends the choice to the bounded history.
func (in *Integrator) NextRecommendation(ctx context.Context, req recommend.Request) recommend.Recommendation {
	rec := in.recommender.Recommend(ctx, req)
	in.mu.Lock()
	in.history = append(in.history, IterationRecord{
		Iteration:    req.Iteration,
		TemplateName: rec.TemplateName,
		MatchScore:   rec.MatchScore,
		Exploration:  rec.ExplorationMode,
		Champion:     rec.ChampionReference != "",
		At:           time.Now(),
	})
	if len(in.history) > in.historyCap {
		in.history = in.history[len(in.history)-in.historyCap:]
	}
	in.mu.Unlock()
	return rec
}

// RecordOutcome writes the realized result into the usage ledger and, when
// the iteration is still in the history window, attaches the Sharpe to it.
func (in *Integrator) RecordOutcome(rec usage.Record) error {
	if err := in.store.RecordUsage(rec); err != nil {
		return err
	}
	in.mu.Lock()
	for i := len(in.history) - 1; i >= 0; i-- {
		if in.history[i].Iteration == rec.Iteration && in.history[i].TemplateName == rec.TemplateName {
			sharpe := rec.SharpeRatio
			in.history[i].Sharpe = &sharpe
			break
		}
	}
	in.mu.Unlock()
	return nil
}

// History returns a copy of the rolling iteration history.
func (in *Integrator) History() []IterationRecord {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]IterationRecord(nil), in.history...)
}

// TrendStats computes direction and aggregates over the last trendWindow
// iterations that have a recorded outcome.
func (in *Integrator) TrendStats() TrendStats {
	history := in.History()
	var window []IterationRecord
	for i := len(history) - 1; i >= 0 && len(window) < in.trendWindow; i-- {
		if history[i].Sharpe != nil {
			window = append([]IterationRecord{history[i]}, window...)
		}
	}
	stats := TrendStats{Direction: "flat", Iterations: len(window)}
	if len(window) == 0 {
		return stats
	}
	var sum float64
	explorations := 0
	stats.BestSharpe = *window[0].Sharpe
	for _, rec := range window {
		sum += *rec.Sharpe
		if *rec.Sharpe > stats.BestSharpe {
			stats.BestSharpe = *rec.Sharpe
		}
		if rec.Exploration {
			explorations++
		}
	}
	stats.AvgSharpe = sum / float64(len(window))
	stats.ExplorationShare = float64(explorations) / float64(len(window))

	if len(window) >= 4 {
		half := len(window) / 2
		older := mean(window[:half])
		newer := mean(window[half:])
		switch {
		case newer-older > trendDeadBand:
			stats.Direction = "improving"
		case older-newer > trendDeadBand:
			stats.Direction = "declining"
		}
	}
	return stats
}

// Summary renders the current loop state as a short text document.
func (in *Integrator) Summary() string {
	trend := in.TrendStats()
	history := in.History()
	var b strings.Builder
	b.WriteString("# Feedback Loop Summary\n")
	fmt.Fprintf(&b, "Iterations tracked: %d (with outcomes: %d)\n", len(history), trend.Iterations)
	fmt.Fprintf(&b, "Trend: %s\n", trend.Direction)
	if trend.Iterations > 0 {
		fmt.Fprintf(&b, "Best Sharpe: %.2f\n", trend.BestSharpe)
		fmt.Fprintf(&b, "Average Sharpe: %.2f\n", trend.AvgSharpe)
		fmt.Fprintf(&b, "Exploration share: %.0f%%\n", trend.ExplorationShare*100)
	}
	if len(history) > 0 {
		last := history[len(history)-1]
		fmt.Fprintf(&b, "Last recommendation: iter %d -> %s (score %.2f)\n",
			last.Iteration, last.TemplateName, last.MatchScore)
	}
	return b.String()
}

func mean(records []IterationRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range records {
		sum += *rec.Sharpe
	}
	return sum / float64(len(records))
}
