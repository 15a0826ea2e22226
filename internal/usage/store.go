// Package usage keeps the durable ledger of template outcomes and derives
// per-template statistics from it.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"alphaforge/internal/logger"
)

const (
	// MinReliableUsage is the record count below which statistics are not
	// considered reliable enough to drive template ranking.
	MinReliableUsage = 3

	// DefaultSuccessSharpe is the Sharpe bar a validated record must clear
	// to count as a success.
	DefaultSuccessSharpe = 1.0
)

// Record is one row of the ledger: a single template invocation outcome.
type Record struct {
	Iteration        int     `json:"iteration"`
	Timestamp        string  `json:"timestamp"`
	TemplateName     string  `json:"template_name"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	ValidationPassed bool    `json:"validation_passed"`
	ExplorationMode  bool    `json:"exploration_mode"`
	ChampionBased    bool    `json:"champion_based"`
	MatchScore       float64 `json:"match_score"`
}

// Stats are the derived per-template aggregates. HasData distinguishes a
// template that has never been used from one that has all-zero metrics.
type Stats struct {
	TemplateName       string  `json:"template_name"`
	TotalUsage         int     `json:"total_usage"`
	SuccessRate        float64 `json:"success_rate"`
	AvgSharpe          float64 `json:"avg_sharpe"`
	BestSharpe         float64 `json:"best_sharpe"`
	WorstSharpe        float64 `json:"worst_sharpe"`
	ValidationPassRate float64 `json:"validation_pass_rate"`
	ExplorationUsage   int     `json:"exploration_usage"`
	ChampionUsage      int     `json:"champion_usage"`
	Reliable           bool    `json:"reliable"`
	HasData            bool    `json:"has_data"`
}

// SuccessSummary reports the success rate against a caller-chosen Sharpe bar.
type SuccessSummary struct {
	TotalUsage           int     `json:"total_usage"`
	SuccessfulStrategies int     `json:"successful_strategies"`
	SuccessRate          float64 `json:"success_rate"`
	AvgSharpe            float64 `json:"avg_sharpe"`
	AvgSharpeSuccessful  float64 `json:"avg_sharpe_successful"`
}

// Store is the append-only usage ledger. Every mutation persists the full
// ledger via write-to-temp then atomic rename, so readers never observe a
// partial file. The store itself is safe for concurrent use within one
// process; multi-process writers need external serialization.
type Store struct {
	mu            sync.Mutex
	path          string
	records       []Record
	successSharpe float64
}

// Option adjusts store construction.
type Option func(*Store)

// WithSuccessSharpe overrides the Sharpe bar used by StatsFor success rates.
func WithSuccessSharpe(min float64) Option {
	return func(s *Store) { s.successSharpe = min }
}

// NewStore opens (or creates) the ledger at path. A corrupt ledger is
// logged and discarded: history loss is recoverable, crashing the caller
// is not.
func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("usage store requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	s := &Store{path: path, successSharpe: DefaultSuccessSharpe}
	for _, opt := range opts {
		opt(s)
	}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// first run
	case err != nil:
		return nil, fmt.Errorf("read usage ledger failed: %w", err)
	default:
		var records []Record
		if uerr := json.Unmarshal(raw, &records); uerr != nil {
			logger.Warnf("usage ledger %s is corrupt, starting empty: %v", path, uerr)
		} else {
			s.records = records
		}
	}
	return s, nil
}

// RecordUsage appends one outcome and persists the ledger. On a write
// failure the in-memory append is rolled back and the error returned, so
// memory and disk never diverge past this call.
func (s *Store) RecordUsage(rec Record) error {
	if rec.Timestamp == "" {
		rec.Timestamp = time.Now().Format(time.RFC3339)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if err := s.persistLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return fmt.Errorf("persist usage ledger failed: %w", err)
	}
	return nil
}

// Len reports the current record count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// StatsFor computes the aggregates for one template. Unknown templates get
// the zero sentinel (HasData=false), never an error.
func (s *Store) StatsFor(name string) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{TemplateName: name}
	var sum float64
	successes := 0
	validated := 0
	for _, rec := range s.records {
		if rec.TemplateName != name {
			continue
		}
		if stats.TotalUsage == 0 {
			stats.BestSharpe = rec.SharpeRatio
			stats.WorstSharpe = rec.SharpeRatio
		}
		stats.TotalUsage++
		sum += rec.SharpeRatio
		if rec.SharpeRatio > stats.BestSharpe {
			stats.BestSharpe = rec.SharpeRatio
		}
		if rec.SharpeRatio < stats.WorstSharpe {
			stats.WorstSharpe = rec.SharpeRatio
		}
		if rec.ValidationPassed {
			validated++
			if rec.SharpeRatio >= s.successSharpe {
				successes++
			}
		}
		if rec.ExplorationMode {
			stats.ExplorationUsage++
		}
		if rec.ChampionBased {
			stats.ChampionUsage++
		}
	}
	if stats.TotalUsage == 0 {
		return stats
	}
	stats.HasData = true
	stats.AvgSharpe = sum / float64(stats.TotalUsage)
	stats.SuccessRate = float64(successes) / float64(stats.TotalUsage)
	stats.ValidationPassRate = float64(validated) / float64(stats.TotalUsage)
	stats.Reliable = stats.TotalUsage >= MinReliableUsage
	return stats
}

// TemplateStats adapts StatsFor to the rationale generator's provider
// contract.
func (s *Store) TemplateStats(name string) (Stats, error) {
	return s.StatsFor(name), nil
}

// SuccessRateFor reports success against minSharpe. A record is successful
// when it passed validation and its Sharpe cleared the bar.
func (s *Store) SuccessRateFor(name string, minSharpe float64) SuccessSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out SuccessSummary
	var sum, successSum float64
	for _, rec := range s.records {
		if rec.TemplateName != name {
			continue
		}
		out.TotalUsage++
		sum += rec.SharpeRatio
		if rec.ValidationPassed && rec.SharpeRatio >= minSharpe {
			out.SuccessfulStrategies++
			successSum += rec.SharpeRatio
		}
	}
	if out.TotalUsage == 0 {
		return out
	}
	out.SuccessRate = float64(out.SuccessfulStrategies) / float64(out.TotalUsage)
	out.AvgSharpe = sum / float64(out.TotalUsage)
	if out.SuccessfulStrategies > 0 {
		out.AvgSharpeSuccessful = successSum / float64(out.SuccessfulStrategies)
	}
	return out
}

// BestTemplate returns the top template among those with reliable
// statistics, ranked by success rate then average Sharpe. The sorted
// template-name walk keeps ties deterministic.
func (s *Store) BestTemplate() (string, bool) {
	names := s.templateNames()
	best := ""
	var bestStats Stats
	for _, name := range names {
		stats := s.StatsFor(name)
		if !stats.Reliable {
			continue
		}
		if best == "" ||
			stats.SuccessRate > bestStats.SuccessRate ||
			(stats.SuccessRate == bestStats.SuccessRate && stats.AvgSharpe > bestStats.AvgSharpe) {
			best = name
			bestStats = stats
		}
	}
	return best, best != ""
}

// Recent returns up to n records, most recent iteration first. A non-empty
// name filters to that template before truncation.
func (s *Store) Recent(name string, n int) []Record {
	s.mu.Lock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		if name != "" && rec.TemplateName != name {
			continue
		}
		out = append(out, rec)
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Iteration > out[j].Iteration })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (s *Store) templateNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	for _, rec := range s.records {
		seen[rec.TemplateName] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	// atomic replace: readers see the old file or the new one, never a
	// partial write
	return os.Rename(tmp, s.path)
}
