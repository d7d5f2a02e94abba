package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/grass-estimator/internal/model"
)

func ptr(v float64) *float64 { return &v }

func TestPrice(t *testing.T) {
	got := Price(ptr(120.5), ptr(2.50))
	require.NotNil(t, got)
	assert.InDelta(t, 301.25, *got, 1e-9)
}

func TestPrice_RoundsToCents(t *testing.T) {
	got := Price(ptr(33.333), ptr(3))
	require.NotNil(t, got)
	assert.InDelta(t, 100.0, *got, 1e-9)

	got = Price(ptr(10.005), ptr(1))
	require.NotNil(t, got)
	assert.InDelta(t, 10.01, *got, 0.0051)
}

func TestPrice_Unknown(t *testing.T) {
	tests := []struct {
		name string
		area *float64
		rate *float64
	}{
		{"nil area", nil, ptr(2.5)},
		{"nil rate", ptr(80), nil},
		{"both nil", nil, nil},
		{"NaN area", ptr(math.NaN()), ptr(2.5)},
		{"infinite area", ptr(math.Inf(1)), ptr(2.5)},
		{"infinite rate", ptr(10), ptr(math.Inf(-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Price(tt.area, tt.rate))
		})
	}
}

func TestPrice_ZeroRate(t *testing.T) {
	got := Price(ptr(80), ptr(0))
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestApply(t *testing.T) {
	parsed := model.ParsedEstimate{
		AreaLabel:       "Approx 120.5 m²",
		AreaM2:          ptr(120.5),
		LengthBucket:    "Moderately overgrown (8–15cm)",
		ConditionBucket: "Healthy and green",
	}

	priced := Apply(parsed, ptr(2.5))
	assert.Equal(t, parsed, priced.ParsedEstimate)
	require.NotNil(t, priced.Price)
	assert.InDelta(t, 301.25, *priced.Price, 1e-9)

	unpriced := Apply(parsed, nil)
	assert.Nil(t, unpriced.Price)
}
