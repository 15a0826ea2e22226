// Package gate evaluates whether a batch of generated strategies is fit to
// advance to the next research phase.
package gate

import "time"

// Decision is the three-valued progression gate outcome. The plain string
// form makes exit-code mapping at the CLI layer trivial.
type Decision string

const (
	DecisionGo            Decision = "GO"
	DecisionConditionalGo Decision = "CONDITIONAL_GO"
	DecisionNoGo          Decision = "NO-GO"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Weight ranks a criterion's importance within its tier.
type Weight string

const (
	WeightCritical Weight = "CRITICAL"
	WeightHigh     Weight = "HIGH"
	WeightMedium   Weight = "MEDIUM"
	WeightLow      Weight = "LOW"
)

var weightOrder = map[Weight]int{
	WeightCritical: 0,
	WeightHigh:     1,
	WeightMedium:   2,
	WeightLow:      3,
}

// Comparison is the literal operator used to evaluate a criterion.
type Comparison string

const (
	CompareGTE Comparison = ">="
	CompareLTE Comparison = "<="
	CompareLT  Comparison = "<"
	CompareGT  Comparison = ">"
	CompareEQ  Comparison = "="
)

// Criterion is one named pass/fail check.
type Criterion struct {
	Name       string     `json:"name"`
	Threshold  float64    `json:"threshold"`
	Actual     float64    `json:"actual"`
	Comparison Comparison `json:"comparison"`
	Weight     Weight     `json:"weight"`
	Passed     bool       `json:"passed"`
}

// Metrics are the values extracted from the three input reports.
type Metrics struct {
	TotalStrategies      int     `json:"total_strategies"`
	UniqueStrategies     int     `json:"unique_strategies"`
	DiversityScore       float64 `json:"diversity_score"`
	AvgCorrelation       float64 `json:"avg_correlation"`
	FactorDiversity      float64 `json:"factor_diversity"`
	RiskDiversity        float64 `json:"risk_diversity"`
	ValidationFixed      bool    `json:"validation_fixed"`
	ExecutionSuccessRate float64 `json:"execution_success_rate"`
}

// Report is the aggregate output of one gate evaluation. It is never
// mutated after construction.
type Report struct {
	ID              string      `json:"id"`
	Decision        Decision    `json:"decision"`
	RiskLevel       RiskLevel   `json:"risk_level"`
	Metrics         Metrics     `json:"metrics"`
	CriteriaMet     []Criterion `json:"criteria_met"`
	CriteriaFailed  []Criterion `json:"criteria_failed"`
	Warnings        []string    `json:"warnings"`
	Recommendations []string    `json:"recommendations"`
	Summary         string      `json:"summary"`
	GeneratedAt     time.Time   `json:"generated_at"`
}
