package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{float32(2), 2, true},
		{int(7), 7, true},
		{int64(-3), -3, true},
		{json.Number("0.08"), 0.08, true},
		{" 42 ", 42, true},
		{"not a number", 0, false},
		{true, 1, true},
		{false, 0, true},
		{nil, 0, false},
		{[]string{"x"}, 0, false},
	}
	for _, tc := range cases {
		got, ok := ToFloat64(tc.in)
		assert.Equalf(t, tc.ok, ok, "input %v", tc.in)
		if tc.ok {
			assert.Equalf(t, tc.want, got, "input %v", tc.in)
		}
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "10", ToString(10.0))
	assert.Equal(t, "0.08", ToString(0.08))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "", ToString(nil))
}
