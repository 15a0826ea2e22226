package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplorationRange(t *testing.T) {
	low, high := explorationRange(20)
	assert.Equal(t, 14.0, low)
	assert.Equal(t, 26.0, high)

	// decimal arithmetic keeps fractional bounds exact
	low, high = explorationRange(0.1)
	assert.Equal(t, 0.07, low)
	assert.Equal(t, 0.13, high)
}

func TestClampValue(t *testing.T) {
	assert.Equal(t, 5.0, clampValue(2, 5, 50))
	assert.Equal(t, 50.0, clampValue(100, 5, 50))
	assert.Equal(t, 25.0, clampValue(25, 5, 50))
	assert.Equal(t, 0.20, clampValue(0.35, 0.05, 0.20))
}

func TestDescribeExplorationParams(t *testing.T) {
	out := describeExplorationParams(map[string]float64{"ma_window": 20, "stock_count": 10})
	assert.Equal(t, "ma_window=20 (explore 14..26), stock_count=10 (explore 7..13)", out)
	assert.Equal(t, "no grid parameters defined", describeExplorationParams(nil))
}
