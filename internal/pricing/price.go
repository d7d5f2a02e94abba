// Package pricing derives a money value from an estimated area and the
// session's per-square-metre rate.
package pricing

import (
	"math"

	"github.com/sells-group/grass-estimator/internal/model"
)

// Price returns round2(area*rate), or nil when either operand is unknown or
// the area is not a finite number.
func Price(areaM2, rate *float64) *float64 {
	if areaM2 == nil || rate == nil {
		return nil
	}
	a, r := *areaM2, *rate
	if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	p := Round2(a * r)
	return &p
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Apply prices a parsed estimate.
func Apply(parsed model.ParsedEstimate, rate *float64) model.PricedEstimate {
	return model.PricedEstimate{
		ParsedEstimate: parsed,
		Price:          Price(parsed.AreaM2, rate),
	}
}
