// Package recommend chooses the strategy template and parameters for the
// next research iteration.
package recommend

// Recommendation is the decision engine output. Instances are built fresh
// per call and never mutated afterwards.
type Recommendation struct {
	TemplateName      string         `json:"template_name"`
	Rationale         string         `json:"rationale"`
	MatchScore        float64        `json:"match_score"`
	SuggestedParams   map[string]any `json:"suggested_params"`
	ChampionReference string         `json:"champion_reference,omitempty"`
	ExplorationMode   bool           `json:"exploration_mode"`
}

// Metrics carries the current strategy performance. A nil *Metrics means
// no metrics are available for this iteration.
type Metrics struct {
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// Severity classifies a validation issue. It is a required field: the
// consuming code never probes for its presence.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
)

// ValidationIssue is one entry of upstream validation feedback.
type ValidationIssue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ValidationFeedback is the optional validator output folded into a
// recommendation.
type ValidationFeedback struct {
	Status string            `json:"status"`
	Issues []ValidationIssue `json:"issues"`
}

// Risk profile overrides map directly to a template regardless of metrics.
const (
	RiskProfileConcentrated = "concentrated"
	RiskProfileStable       = "stable"
	RiskProfileFast         = "fast"
)

// Request bundles the optional inputs of one Recommend call.
type Request struct {
	Iteration     int
	Metrics       *Metrics
	Feedback      *ValidationFeedback
	CurrentParams map[string]any
	RiskProfile   string
}

// Param keys recognized by validation-feedback clamping, with their
// known-safe ranges.
var clampRanges = map[string][2]float64{
	"stock_count": {5, 50},
	"stop_loss":   {0.05, 0.20},
	"ma_window":   {5, 120},
}
