// Package template holds the registry of strategy-construction templates.
// The registry is built once at startup and passed into consumers by
// reference; nothing in this package relies on import side effects.
package template

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Template roles drive the performance-band mapping in the recommender.
const (
	RoleChampionDefault = "champion_default"
	RoleStability       = "stability"
	RoleDefensive       = "defensive"
	RoleImprovement     = "improvement"
	RoleFastIteration   = "fast_iteration"
)

// Complexity classes. Structurally complex templates are downgrade
// candidates when validation reports critical architecture issues.
const (
	ComplexitySimple  = "simple"
	ComplexityComplex = "complex"
)

// Template describes one reusable strategy-construction pattern.
type Template struct {
	ID            string               `mapstructure:"id" yaml:"id"`
	Description   string               `mapstructure:"description" yaml:"description"`
	Architecture  string               `mapstructure:"architecture" yaml:"architecture"`
	Complexity    string               `mapstructure:"complexity" yaml:"complexity"`
	Role          string               `mapstructure:"role" yaml:"role"`
	ExpectedRange string               `mapstructure:"expected_sharpe" yaml:"expected_sharpe"`
	ParamGrid     map[string][]float64 `mapstructure:"param_grid" yaml:"param_grid"`
	Schema        map[string]any       `mapstructure:"schema" yaml:"schema"`

	schemaCompiled *jsonschema.Schema
}

// DefaultParams returns the representative default for every grid
// parameter: the middle element of the sorted candidate list.
func (t Template) DefaultParams() map[string]float64 {
	if len(t.ParamGrid) == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(t.ParamGrid))
	for name, values := range t.ParamGrid {
		if len(values) == 0 {
			continue
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		out[name] = sorted[len(sorted)/2]
	}
	return out
}

// Validate checks params against the template's compiled schema. Templates
// without a schema accept anything.
func (t Template) Validate(params map[string]any) error {
	if t.schemaCompiled == nil {
		return nil
	}
	return t.schemaCompiled.Validate(normalizeParams(params))
}

func compileSchema(data map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// normalizeParams coerces numeric values to float64 so schema validation
// sees a uniform shape regardless of how the params were decoded.
func normalizeParams(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalizeParams(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalizeParams(child)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return val
	}
}
