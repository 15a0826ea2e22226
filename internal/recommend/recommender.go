package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"alphaforge/internal/champion"
	"alphaforge/internal/logger"
	"alphaforge/internal/template"
)

// Confidence scores per selection path. Exploration deliberately scores
// below every performance-based pick so downstream consumers can tell an
// exploratory choice from an exploitative one.
const (
	scoreChampionTier  = 0.85
	scoreContenderTier = 0.75
	scoreSolidTier     = 0.70
	scoreArchiveTier   = 0.60
	scorePoorTier      = 0.55
	scoreExploration   = 0.50
	scoreNoMetrics     = 0.50
	downgradedScore    = 0.40
	championBoost      = 0.05
)

// StatsProvider supplies the historically best template for the champion
// performance band. The usage store satisfies it.
type StatsProvider interface {
	BestTemplate() (string, bool)
}

// Options configures a Recommender. Zero values fall back to defaults.
type Options struct {
	Champions           champion.Repository
	Stats               StatsProvider
	ExplorationInterval int
	RecentWindow        int
	HistoryCap          int
	ChampionMinSharpe   float64
}

// Recommender is the template decision engine. It keeps a bounded rolling
// window of recently chosen template names to avoid immediate repetition
// during exploration.
type Recommender struct {
	registry  *template.Registry
	champions champion.Repository
	stats     StatsProvider

	explorationInterval int
	recentWindow        int
	historyCap          int
	championMinSharpe   float64

	mu     sync.Mutex
	recent []string
}

func New(registry *template.Registry, opts Options) *Recommender {
	r := &Recommender{
		registry:            registry,
		champions:           opts.Champions,
		stats:               opts.Stats,
		explorationInterval: opts.ExplorationInterval,
		recentWindow:        opts.RecentWindow,
		historyCap:          opts.HistoryCap,
		championMinSharpe:   opts.ChampionMinSharpe,
	}
	if r.explorationInterval <= 0 {
		r.explorationInterval = 5
	}
	if r.recentWindow <= 0 {
		r.recentWindow = 3
	}
	if r.historyCap <= 0 {
		r.historyCap = 10
	}
	if r.championMinSharpe <= 0 {
		r.championMinSharpe = 1.5
	}
	return r
}

// Recommend produces the template recommendation for one iteration. It
// never returns an error: collaborator failures are logged and the best
// recommendation assembled so far is returned.
func (r *Recommender) Recommend(ctx context.Context, req Request) Recommendation {
	iteration := req.Iteration
	if iteration < 1 {
		iteration = 1
	}

	var rec Recommendation
	if iteration%r.explorationInterval == 0 {
		// Deterministic, iteration-indexed schedule: the same iteration
		// number always explores.
		rec = r.explore()
	} else {
		rec = r.selectByPerformance(req)
		r.enrichFromChampions(ctx, &rec)
	}
	r.applyFeedback(&rec, req.Feedback, req.CurrentParams)
	r.trackUsage(rec.TemplateName)
	return rec
}

// RecentTemplates returns a copy of the rolling history window.
func (r *Recommender) RecentTemplates() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.recent...)
}

func (r *Recommender) explore() Recommendation {
	ids := r.registry.IDs()
	window := r.RecentTemplates()
	if len(window) > r.recentWindow {
		window = window[len(window)-r.recentWindow:]
	}
	used := make(map[string]int, len(window))
	for _, name := range window {
		used[name]++
	}

	candidates := make([]string, 0, len(ids))
	for _, id := range ids {
		if used[id] == 0 {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		// everything was used recently; never recommend from an empty set
		candidates = ids
	}
	choice := candidates[0]
	for _, id := range candidates[1:] {
		if used[id] < used[choice] {
			choice = id
		}
	}

	rec := Recommendation{
		TemplateName:    choice,
		MatchScore:      scoreExploration,
		ExplorationMode: true,
		SuggestedParams: map[string]any{},
	}
	tpl, ok := r.registry.Template(choice)
	if !ok {
		rec.Rationale = fmt.Sprintf("Exploration round: trying %s to maintain template diversity.", choice)
		return rec
	}
	defaults := tpl.DefaultParams()
	for name, v := range defaults {
		rec.SuggestedParams[name] = v
	}
	rec.Rationale = fmt.Sprintf(
		"Exploration round: %s was used least in the recent window. Grid defaults with a widened search range: %s.",
		choice, describeExplorationParams(defaults))
	return rec
}

func (r *Recommender) selectByPerformance(req Request) Recommendation {
	if tpl, ok := r.templateForRiskProfile(req.RiskProfile); ok {
		return Recommendation{
			TemplateName: tpl.ID,
			MatchScore:   scoreContenderTier,
			Rationale: fmt.Sprintf("Risk profile %q requested: mapping directly to %s (%s).",
				req.RiskProfile, tpl.ID, tpl.Description),
			SuggestedParams: map[string]any{},
		}
	}

	if req.Metrics == nil {
		name := r.mostReliableTemplate()
		return Recommendation{
			TemplateName: name,
			MatchScore:   scoreNoMetrics,
			Rationale: fmt.Sprintf("No metrics available for this iteration: falling back to the most historically reliable template %s.",
				name),
			SuggestedParams: map[string]any{},
		}
	}

	sharpe := req.Metrics.SharpeRatio
	switch {
	case sharpe >= 2.0:
		name := r.mostReliableTemplate()
		return Recommendation{
			TemplateName: name,
			MatchScore:   scoreChampionTier,
			Rationale: fmt.Sprintf("Sharpe %.2f is in champion territory (>= 2.0): staying with the most robust template %s to consolidate.",
				sharpe, name),
			SuggestedParams: map[string]any{},
		}
	case sharpe >= 1.5:
		tpl := r.roleOrFirst(template.RoleChampionDefault)
		return Recommendation{
			TemplateName: tpl,
			MatchScore:   scoreContenderTier,
			Rationale: fmt.Sprintf("Sharpe %.2f is contender tier (1.5 <= s < 2.0): pushing toward champion performance with %s.",
				sharpe, tpl),
			SuggestedParams: map[string]any{},
		}
	case sharpe >= 1.0:
		dd := math.Abs(req.Metrics.MaxDrawdown)
		if dd <= 0.15 {
			tpl := r.roleOrFirst(template.RoleStability)
			return Recommendation{
				TemplateName: tpl,
				MatchScore:   scoreSolidTier,
				Rationale: fmt.Sprintf("Sharpe %.2f is solid tier (1.0 <= s < 1.5) with contained drawdown %.2f (<= 0.15): favoring stability-oriented %s.",
					sharpe, dd, tpl),
				SuggestedParams: map[string]any{},
			}
		}
		tpl := r.roleOrFirst(template.RoleDefensive)
		return Recommendation{
			TemplateName: tpl,
			MatchScore:   scoreSolidTier,
			Rationale: fmt.Sprintf("Sharpe %.2f is solid tier (1.0 <= s < 1.5) but drawdown %.2f exceeds 0.15: favoring defensively filtered %s.",
				sharpe, dd, tpl),
			SuggestedParams: map[string]any{},
		}
	case sharpe >= 0.5:
		tpl := r.roleOrFirst(template.RoleImprovement)
		return Recommendation{
			TemplateName: tpl,
			MatchScore:   scoreArchiveTier,
			Rationale: fmt.Sprintf("Sharpe %.2f is archive tier (0.5 <= s < 1.0): switching to the default improvement template %s.",
				sharpe, tpl),
			SuggestedParams: map[string]any{},
		}
	default:
		tpl := r.roleOrFirst(template.RoleFastIteration)
		return Recommendation{
			TemplateName: tpl,
			MatchScore:   scorePoorTier,
			Rationale: fmt.Sprintf("Sharpe %.2f is below 0.5: iterating cheaply and quickly with %s.",
				sharpe, tpl),
			SuggestedParams: map[string]any{},
		}
	}
}

func (r *Recommender) templateForRiskProfile(profile string) (template.Template, bool) {
	var role string
	switch profile {
	case RiskProfileConcentrated:
		role = template.RoleChampionDefault
	case RiskProfileStable:
		role = template.RoleStability
	case RiskProfileFast:
		role = template.RoleFastIteration
	default:
		return template.Template{}, false
	}
	return r.registry.ByRole(role)
}

// mostReliableTemplate prefers the usage-statistics winner, falling back to
// the champion-default role, then the first registered template.
func (r *Recommender) mostReliableTemplate() string {
	if r.stats != nil {
		if best, ok := r.stats.BestTemplate(); ok {
			if _, known := r.registry.Template(best); known {
				return best
			}
		}
	}
	return r.roleOrFirst(template.RoleChampionDefault)
}

func (r *Recommender) roleOrFirst(role string) string {
	if tpl, ok := r.registry.ByRole(role); ok {
		return tpl.ID
	}
	ids := r.registry.IDs()
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// enrichFromChampions transfers parameters from the best same-template
// champion. Cross-template borrowing is deliberately not performed here.
func (r *Recommender) enrichFromChampions(ctx context.Context, rec *Recommendation) {
	if r.champions == nil {
		return
	}
	champs, err := r.champions.Champions(ctx, r.championMinSharpe)
	if err != nil {
		logger.Warnf("champion repository query failed, continuing without enrichment: %v", err)
		return
	}
	var best *champion.Champion
	for i := range champs {
		if champs[i].TemplateName != rec.TemplateName {
			continue
		}
		if best == nil || champs[i].SharpeRatio > best.SharpeRatio {
			best = &champs[i]
		}
	}
	if best == nil {
		rec.Rationale += fmt.Sprintf("\nNo champion with Sharpe >= %.1f exists for %s yet.",
			r.championMinSharpe, rec.TemplateName)
		return
	}
	if rec.SuggestedParams == nil {
		rec.SuggestedParams = make(map[string]any)
	}
	names := make([]string, 0, len(best.Parameters))
	for name := range best.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rec.SuggestedParams[name] = best.Parameters[name]
	}
	rec.SuggestedParams["source_champion"] = best.GenomeID
	rec.SuggestedParams["champion_sharpe"] = best.SharpeRatio
	rec.ChampionReference = best.GenomeID
	rec.MatchScore = math.Min(1.0, rec.MatchScore+championBoost)
	rec.Rationale += fmt.Sprintf("\nParameters transferred from champion %s (Sharpe %.2f).",
		best.GenomeID, best.SharpeRatio)
}

func (r *Recommender) trackUsage(name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = append(r.recent, name)
	if len(r.recent) > r.historyCap {
		r.recent = r.recent[len(r.recent)-r.historyCap:]
	}
}
