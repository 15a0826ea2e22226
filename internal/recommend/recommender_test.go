package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphaforge/internal/champion"
	"alphaforge/internal/template"
)

type stubChampions struct {
	champs []champion.Champion
	err    error
}

func (s stubChampions) Champions(ctx context.Context, minSharpe float64) ([]champion.Champion, error) {
	return s.champs, s.err
}

type stubStats struct {
	best string
	ok   bool
}

func (s stubStats) BestTemplate() (string, bool) { return s.best, s.ok }

func builtinRecommender(opts Options) *Recommender {
	return New(template.NewStaticRegistry(template.Builtin()), opts)
}

func fourTemplateRegistry() *template.Registry {
	return template.NewStaticRegistry([]template.Template{
		{ID: "alpha", Role: template.RoleChampionDefault, Complexity: template.ComplexityComplex},
		{ID: "bravo", Role: template.RoleStability},
		{ID: "charlie", Role: template.RoleImprovement},
		{ID: "delta", Role: template.RoleFastIteration},
	})
}

func TestRecommend_ExplorationSchedule(t *testing.T) {
	r := builtinRecommender(Options{ExplorationInterval: 5})
	metrics := &Metrics{SharpeRatio: 1.7}
	for iter := 20; iter <= 25; iter++ {
		rec := r.Recommend(context.Background(), Request{Iteration: iter, Metrics: metrics})
		want := iter%5 == 0
		assert.Equalf(t, want, rec.ExplorationMode, "iteration %d", iter)
		if want {
			assert.Equal(t, scoreExploration, rec.MatchScore)
		}
	}
}

func TestRecommend_ExplorationAvoidsRecentTemplates(t *testing.T) {
	r := New(fourTemplateRegistry(), Options{ExplorationInterval: 5, RecentWindow: 3})

	// seed the rolling window: alpha, alpha, bravo
	r.Recommend(context.Background(), Request{Iteration: 1, RiskProfile: RiskProfileConcentrated})
	r.Recommend(context.Background(), Request{Iteration: 2, RiskProfile: RiskProfileConcentrated})
	r.Recommend(context.Background(), Request{Iteration: 3, RiskProfile: RiskProfileStable})
	require.Equal(t, []string{"alpha", "alpha", "bravo"}, r.RecentTemplates())

	rec := r.Recommend(context.Background(), Request{Iteration: 5})
	assert.True(t, rec.ExplorationMode)
	assert.NotContains(t, []string{"alpha", "bravo"}, rec.TemplateName)
	// deterministic tie-break: first unused ID in sorted order
	assert.Equal(t, "charlie", rec.TemplateName)
}

func TestRecommend_ExplorationFallsBackToFullSet(t *testing.T) {
	registry := template.NewStaticRegistry([]template.Template{
		{ID: "alpha", Role: template.RoleChampionDefault},
		{ID: "bravo", Role: template.RoleStability},
	})
	r := New(registry, Options{ExplorationInterval: 5, RecentWindow: 3})
	r.Recommend(context.Background(), Request{Iteration: 1, RiskProfile: RiskProfileConcentrated})
	r.Recommend(context.Background(), Request{Iteration: 2, RiskProfile: RiskProfileStable})
	r.Recommend(context.Background(), Request{Iteration: 3, RiskProfile: RiskProfileConcentrated})

	rec := r.Recommend(context.Background(), Request{Iteration: 5})
	assert.True(t, rec.ExplorationMode)
	// both were used recently; the least-used one wins
	assert.Equal(t, "bravo", rec.TemplateName)
}

func TestRecommend_PerformanceBands(t *testing.T) {
	cases := []struct {
		name      string
		metrics   *Metrics
		wantTpl   string
		wantScore float64
	}{
		{"champion tier", &Metrics{SharpeRatio: 2.5}, "concentrated_topk", scoreChampionTier},
		{"contender tier", &Metrics{SharpeRatio: 1.7}, "concentrated_topk", scoreContenderTier},
		{"solid tier low drawdown", &Metrics{SharpeRatio: 1.2, MaxDrawdown: 0.10}, "stable_lowvol", scoreSolidTier},
		{"solid tier high drawdown", &Metrics{SharpeRatio: 1.2, MaxDrawdown: 0.25}, "defensive_quality", scoreSolidTier},
		{"archive tier", &Metrics{SharpeRatio: 0.7}, "balanced_multifactor", scoreArchiveTier},
		{"poor tier", &Metrics{SharpeRatio: 0.2}, "fast_smallcap", scorePoorTier},
		{"no metrics", nil, "concentrated_topk", scoreNoMetrics},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := builtinRecommender(Options{})
			rec := r.Recommend(context.Background(), Request{Iteration: 1, Metrics: tc.metrics})
			assert.Equal(t, tc.wantTpl, rec.TemplateName)
			assert.Equal(t, tc.wantScore, rec.MatchScore)
			assert.NotEmpty(t, rec.Rationale)
			assert.False(t, rec.ExplorationMode)
		})
	}
}

func TestRecommend_NegativeDrawdownNormalized(t *testing.T) {
	r := builtinRecommender(Options{})
	rec := r.Recommend(context.Background(), Request{
		Iteration: 1,
		Metrics:   &Metrics{SharpeRatio: 1.2, MaxDrawdown: -0.10},
	})
	assert.Equal(t, "stable_lowvol", rec.TemplateName)
}

func TestRecommend_StatsWinnerPreferredInChampionTier(t *testing.T) {
	r := builtinRecommender(Options{Stats: stubStats{best: "stable_lowvol", ok: true}})
	rec := r.Recommend(context.Background(), Request{Iteration: 1, Metrics: &Metrics{SharpeRatio: 2.5}})
	assert.Equal(t, "stable_lowvol", rec.TemplateName)
}

func TestRecommend_RiskProfileOverride(t *testing.T) {
	r := builtinRecommender(Options{})
	cases := map[string]string{
		RiskProfileConcentrated: "concentrated_topk",
		RiskProfileStable:       "stable_lowvol",
		RiskProfileFast:         "fast_smallcap",
	}
	for profile, want := range cases {
		rec := r.Recommend(context.Background(), Request{
			Iteration:   1,
			Metrics:     &Metrics{SharpeRatio: 2.5},
			RiskProfile: profile,
		})
		assert.Equalf(t, want, rec.TemplateName, "profile %s", profile)
	}
}

func TestRecommend_ChampionEnrichment(t *testing.T) {
	repo := stubChampions{champs: []champion.Champion{
		{GenomeID: "g-1", TemplateName: "concentrated_topk", SharpeRatio: 2.2,
			Parameters: map[string]float64{"stock_count": 10, "stop_loss": 0.08}},
		{GenomeID: "g-2", TemplateName: "stable_lowvol", SharpeRatio: 2.9,
			Parameters: map[string]float64{"vol_window": 40}},
	}}
	r := builtinRecommender(Options{Champions: repo})

	rec := r.Recommend(context.Background(), Request{Iteration: 1, Metrics: &Metrics{SharpeRatio: 1.7}})
	assert.Equal(t, "concentrated_topk", rec.TemplateName)
	assert.Equal(t, "g-1", rec.ChampionReference)
	assert.Equal(t, 10.0, rec.SuggestedParams["stock_count"])
	assert.Equal(t, 0.08, rec.SuggestedParams["stop_loss"])
	assert.Equal(t, "g-1", rec.SuggestedParams["source_champion"])
	assert.Equal(t, 2.2, rec.SuggestedParams["champion_sharpe"])
	assert.InDelta(t, scoreContenderTier+championBoost, rec.MatchScore, 1e-9)
	assert.Contains(t, rec.Rationale, "g-1")
}

func TestRecommend_NoMatchingChampion(t *testing.T) {
	repo := stubChampions{champs: []champion.Champion{
		{GenomeID: "g-2", TemplateName: "stable_lowvol", SharpeRatio: 2.9},
	}}
	r := builtinRecommender(Options{Champions: repo})
	rec := r.Recommend(context.Background(), Request{Iteration: 1, Metrics: &Metrics{SharpeRatio: 1.7}})
	assert.Empty(t, rec.ChampionReference)
	assert.Equal(t, scoreContenderTier, rec.MatchScore)
	assert.Contains(t, rec.Rationale, "No champion")
}

func TestRecommend_ChampionRepoErrorIsNotFatal(t *testing.T) {
	repo := stubChampions{err: fmt.Errorf("db locked")}
	r := builtinRecommender(Options{Champions: repo})
	rec := r.Recommend(context.Background(), Request{Iteration: 1, Metrics: &Metrics{SharpeRatio: 1.7}})
	assert.Equal(t, "concentrated_topk", rec.TemplateName)
	assert.Empty(t, rec.ChampionReference)
}

func TestRecommend_FeedbackClampsParams(t *testing.T) {
	r := builtinRecommender(Options{})
	rec := r.Recommend(context.Background(), Request{
		Iteration: 1,
		Metrics:   &Metrics{SharpeRatio: 1.7},
		Feedback: &ValidationFeedback{Issues: []ValidationIssue{
			{Severity: SeverityModerate, Message: "parameter stock_count out of range"},
		}},
		CurrentParams: map[string]any{"stock_count": 100, "stop_loss": 0.5},
	})
	assert.Equal(t, 50.0, rec.SuggestedParams["stock_count"])
	assert.Equal(t, 0.20, rec.SuggestedParams["stop_loss"])
	assert.Contains(t, rec.Rationale, "clamped")
}

func TestRecommend_CriticalComplexityDowngrades(t *testing.T) {
	r := builtinRecommender(Options{})
	rec := r.Recommend(context.Background(), Request{
		Iteration: 1,
		Metrics:   &Metrics{SharpeRatio: 1.7}, // picks complex concentrated_topk
		Feedback: &ValidationFeedback{Issues: []ValidationIssue{
			{Severity: SeverityCritical, Message: "strategy architecture is too complex to validate"},
		}},
	})
	assert.Equal(t, "balanced_multifactor", rec.TemplateName)
	assert.Equal(t, downgradedScore, rec.MatchScore)
	assert.Contains(t, rec.Rationale, "downgrading")
}

func TestRecommend_ModerateComplexityDoesNotDowngrade(t *testing.T) {
	r := builtinRecommender(Options{})
	rec := r.Recommend(context.Background(), Request{
		Iteration: 1,
		Metrics:   &Metrics{SharpeRatio: 1.7},
		Feedback: &ValidationFeedback{Issues: []ValidationIssue{
			{Severity: SeverityModerate, Message: "architecture is somewhat complex"},
		}},
	})
	assert.Equal(t, "concentrated_topk", rec.TemplateName)
}

func TestRecommend_FeedbackCategoriesCompound(t *testing.T) {
	r := builtinRecommender(Options{})
	rec := r.Recommend(context.Background(), Request{
		Iteration: 1,
		Metrics:   &Metrics{SharpeRatio: 1.7},
		Feedback: &ValidationFeedback{Issues: []ValidationIssue{
			{Severity: SeverityModerate, Message: "stop_loss exceeds allowed range"},
			{Severity: SeverityCritical, Message: "nested architecture is too complex"},
			{Severity: SeverityModerate, Message: "missing factor data for pe_ratio field"},
		}},
		CurrentParams: map[string]any{"stop_loss": 0.5},
	})
	assert.Equal(t, "balanced_multifactor", rec.TemplateName)
	assert.Equal(t, downgradedScore, rec.MatchScore)
	assert.Equal(t, 0.20, rec.SuggestedParams["stop_loss"])
	assert.Contains(t, rec.Rationale, "Data-access issues")
}

func TestRecommend_IterationFloorsAtOne(t *testing.T) {
	r := builtinRecommender(Options{ExplorationInterval: 5})
	rec := r.Recommend(context.Background(), Request{Iteration: 0, Metrics: &Metrics{SharpeRatio: 1.7}})
	// iteration 0 is treated as 1, which is not an exploration round
	assert.False(t, rec.ExplorationMode)
}

func TestRecommend_HistoryCap(t *testing.T) {
	r := builtinRecommender(Options{HistoryCap: 4})
	for i := 1; i <= 10; i++ {
		r.Recommend(context.Background(), Request{Iteration: i, Metrics: &Metrics{SharpeRatio: 1.7}})
	}
	assert.Len(t, r.RecentTemplates(), 4)
}
