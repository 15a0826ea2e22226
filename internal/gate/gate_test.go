package gate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

const (
	healthyValidation = `{"validation_framework_fixed": true, "execution_success_rate": 100}`
	noDuplicates      = `{"duplicate_groups": []}`
	healthyDiversity  = `{"diversity_score": 75, "avg_correlation": 0.4, "factor_diversity": 0.7, "risk_diversity": 0.5, "total_strategies": 5}`
)

func TestEvaluate_AllCriteriaPass(t *testing.T) {
	report, err := Evaluate(raw(healthyValidation), raw(noDuplicates), raw(healthyDiversity))
	require.NoError(t, err)

	assert.Equal(t, DecisionGo, report.Decision)
	assert.Equal(t, RiskLow, report.RiskLevel)
	assert.Len(t, report.CriteriaMet, 7)
	assert.Empty(t, report.CriteriaFailed)
	assert.Empty(t, report.Warnings)
	assert.NotEmpty(t, report.ID)
	assert.Contains(t, report.Summary, "All 7 gate criteria passed")
}

func TestEvaluate_SingleNonCriticalFailureIsConditional(t *testing.T) {
	// factor diversity below the GO bar, every conditional CRITICAL intact
	diversity := `{"diversity_score": 75, "avg_correlation": 0.4, "factor_diversity": 0.3, "risk_diversity": 0.5, "total_strategies": 5}`
	report, err := Evaluate(raw(healthyValidation), raw(noDuplicates), raw(diversity))
	require.NoError(t, err)

	assert.Equal(t, DecisionConditionalGo, report.Decision)
	assert.Equal(t, RiskMedium, report.RiskLevel)
	require.Len(t, report.CriteriaFailed, 1)
	assert.Equal(t, "factor_diversity", report.CriteriaFailed[0].Name)
	assert.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "factor_diversity")
	assert.Contains(t, report.Summary, "monitoring")
}

func TestEvaluate_BorderlineDiversityIsConditional(t *testing.T) {
	// between the conditional minimum (40) and the GO bar (60)
	diversity := `{"diversity_score": 50, "avg_correlation": 0.4, "factor_diversity": 0.7, "risk_diversity": 0.5, "total_strategies": 5}`
	report, err := Evaluate(raw(healthyValidation), raw(noDuplicates), raw(diversity))
	require.NoError(t, err)
	assert.Equal(t, DecisionConditionalGo, report.Decision)
	assert.Equal(t, RiskMedium, report.RiskLevel)
}

func TestEvaluate_TooFewUniqueStrategiesBlocks(t *testing.T) {
	// 5 generated, one triple and one pair of duplicates leave 2 unique
	duplicates := `{"duplicate_groups": [["s1","s2","s3"],["s4","s5"]]}`
	report, err := Evaluate(raw(healthyValidation), raw(duplicates), raw(healthyDiversity))
	require.NoError(t, err)

	assert.Equal(t, DecisionNoGo, report.Decision)
	assert.Equal(t, RiskHigh, report.RiskLevel)
	assert.Equal(t, 2, report.Metrics.UniqueStrategies)
	assert.Contains(t, report.Summary, "unique_strategies")

	var names []string
	for _, c := range report.CriteriaFailed {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "unique_strategies")
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "unique strategies")
}

func TestEvaluate_BrokenValidationFrameworkBlocks(t *testing.T) {
	validation := `{"validation_framework_fixed": false, "execution_success_rate": 100}`
	report, err := Evaluate(raw(validation), raw(noDuplicates), raw(healthyDiversity))
	require.NoError(t, err)
	assert.Equal(t, DecisionNoGo, report.Decision)
	assert.Equal(t, RiskHigh, report.RiskLevel)
	assert.Contains(t, report.Summary, "validation_framework_fixed")
}

func TestEvaluate_RiskLevelTracksDecision(t *testing.T) {
	cases := []struct {
		name       string
		validation string
		duplicates string
		diversity  string
		decision   Decision
		risk       RiskLevel
	}{
		{"go", healthyValidation, noDuplicates, healthyDiversity, DecisionGo, RiskLow},
		{"conditional", healthyValidation, noDuplicates,
			`{"diversity_score": 45, "avg_correlation": 0.4, "factor_diversity": 0.7, "risk_diversity": 0.5, "total_strategies": 5}`,
			DecisionConditionalGo, RiskMedium},
		{"no-go", healthyValidation, noDuplicates,
			`{"diversity_score": 30, "avg_correlation": 0.9, "factor_diversity": 0.1, "risk_diversity": 0.1, "total_strategies": 5}`,
			DecisionNoGo, RiskHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report, err := Evaluate(raw(tc.validation), raw(tc.duplicates), raw(tc.diversity))
			require.NoError(t, err)
			assert.Equal(t, tc.decision, report.Decision)
			assert.Equal(t, tc.risk, report.RiskLevel)
		})
	}
}

func TestEvaluate_MissingDiversityScore(t *testing.T) {
	_, err := Evaluate(raw(healthyValidation), raw(noDuplicates), raw(`{"avg_correlation": 0.4}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diversity_score")
}

func TestUniqueStrategies(t *testing.T) {
	t.Run("singleton groups contribute nothing", func(t *testing.T) {
		assert.Equal(t, 5, uniqueStrategies(5, raw(`{"duplicate_groups": [["s1"],["s2"]]}`)))
	})
	t.Run("group of n removes n-1", func(t *testing.T) {
		assert.Equal(t, 3, uniqueStrategies(5, raw(`{"duplicate_groups": [["s1","s2","s3"]]}`)))
	})
	t.Run("floored at zero", func(t *testing.T) {
		assert.Equal(t, 0, uniqueStrategies(1, raw(`{"duplicate_groups": [["s1","s2","s3"]]}`)))
	})
	t.Run("no groups key", func(t *testing.T) {
		assert.Equal(t, 4, uniqueStrategies(4, raw(`{}`)))
	})
}

func TestValidationFixedFallback(t *testing.T) {
	assert.True(t, validationFixed(raw(`{"validation_framework_fixed": true}`)))
	assert.True(t, validationFixed(raw(`{"framework_fixed": true}`)))
	assert.False(t, validationFixed(raw(`{}`)))
	// the primary key wins even when false
	assert.False(t, validationFixed(raw(`{"validation_framework_fixed": false, "framework_fixed": true}`)))
}

func TestExecutionSuccessRateFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"direct field", `{"execution_success_rate": 95}`, 95},
		{"nested rate", `{"execution_validation": {"success_rate": 90}}`, 90},
		{"nested counts", `{"execution_validation": {"successful": 4, "total": 5}}`, 80},
		{"flat counts", `{"successful_executions": 3, "total_executions": 4}`, 75},
		{"no evidence defaults to 100", `{}`, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, executionSuccessRate(raw(tc.in)))
		})
	}
}

func TestReport_Document(t *testing.T) {
	report, err := Evaluate(raw(healthyValidation), raw(noDuplicates), raw(healthyDiversity))
	require.NoError(t, err)
	doc := report.Document()
	assert.Contains(t, doc, "GO")
	assert.Contains(t, doc, "unique_strategies")
	assert.Contains(t, doc, "LOW")
}
