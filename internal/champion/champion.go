// Package champion stores previously discovered high-performing strategy
// configurations for reference and parameter transfer.
package champion

import "context"

// Champion is one retained strategy configuration.
type Champion struct {
	GenomeID     string             `json:"genome_id"`
	TemplateName string             `json:"template_name"`
	SharpeRatio  float64            `json:"sharpe_ratio"`
	Parameters   map[string]float64 `json:"parameters"`
}

// Repository lists known champions at or above a Sharpe bar. An empty
// repository returns an empty slice, not an error.
type Repository interface {
	Champions(ctx context.Context, minSharpe float64) ([]Champion, error)
}
