package template

// Builtin returns the default template set used when no registry file is
// configured. IDs and param grids mirror configs/templates.yaml.
func Builtin() []Template {
	return []Template{
		{
			ID:            "concentrated_topk",
			Description:   "Concentrated top-K momentum selection",
			Architecture:  "momentum ranking, top-K concentration, monthly rebalance",
			Complexity:    ComplexityComplex,
			Role:          RoleChampionDefault,
			ExpectedRange: "1.8 - 2.5",
			ParamGrid: map[string][]float64{
				"stock_count": {5, 10, 15, 20},
				"ma_window":   {10, 20, 40, 60},
				"stop_loss":   {0.06, 0.08, 0.10, 0.12},
			},
		},
		{
			ID:            "stable_lowvol",
			Description:   "Low-volatility stability screen",
			Architecture:  "volatility screen, equal weight, quarterly rebalance",
			Complexity:    ComplexitySimple,
			Role:          RoleStability,
			ExpectedRange: "1.2 - 1.8",
			ParamGrid: map[string][]float64{
				"stock_count": {20, 30, 40},
				"vol_window":  {20, 40, 60},
				"stop_loss":   {0.08, 0.10, 0.12},
			},
		},
		{
			ID:            "defensive_quality",
			Description:   "Quality plus drawdown-filtered defensive basket",
			Architecture:  "quality factor, drawdown filter, defensive sector tilt",
			Complexity:    ComplexityComplex,
			Role:          RoleDefensive,
			ExpectedRange: "1.0 - 1.6",
			ParamGrid: map[string][]float64{
				"stock_count": {15, 25, 35},
				"dd_filter":   {0.10, 0.15, 0.20},
				"stop_loss":   {0.06, 0.08, 0.10},
			},
		},
		{
			ID:            "balanced_multifactor",
			Description:   "Equal-weight multi-factor improvement blend",
			Architecture:  "value/momentum/quality blend, equal factor weights",
			Complexity:    ComplexitySimple,
			Role:          RoleImprovement,
			ExpectedRange: "0.8 - 1.4",
			ParamGrid: map[string][]float64{
				"stock_count": {20, 30, 40, 50},
				"ma_window":   {20, 40, 60},
				"stop_loss":   {0.08, 0.10, 0.15},
			},
		},
		{
			ID:            "fast_smallcap",
			Description:   "Small-cap fast rotation with low iteration cost",
			Architecture:  "small-cap universe, weekly rotation, cheap signals",
			Complexity:    ComplexitySimple,
			Role:          RoleFastIteration,
			ExpectedRange: "0.5 - 1.2",
			ParamGrid: map[string][]float64{
				"stock_count": {10, 15, 20},
				"ma_window":   {5, 10, 20},
				"stop_loss":   {0.05, 0.08, 0.10},
			},
		},
	}
}
