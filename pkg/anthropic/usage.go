package anthropic

import "go.uber.org/zap"

// Usage counts the tokens one call consumed.
type Usage struct {
	Input      int64
	Output     int64
	CacheWrite int64
	CacheRead  int64
}

// perMTok is USD per million input and output tokens.
type perMTok struct {
	in, out float64
}

var modelRates = map[string]perMTok{
	"claude-haiku-4-5-20251001":  {in: 0.80, out: 4.00},
	"claude-sonnet-4-5-20250929": {in: 3.00, out: 15.00},
	"claude-opus-4-6":            {in: 15.00, out: 75.00},
}

// Cost estimates the call's price in USD. Unknown models cost 0.
func (u Usage) Cost(model string) float64 {
	r, ok := modelRates[model]
	if !ok {
		return 0
	}
	const m = 1e6
	return float64(u.Input)/m*r.in +
		float64(u.Output)/m*r.out +
		float64(u.CacheWrite)/m*r.in*1.25 +
		float64(u.CacheRead)/m*r.in*0.1
}

// Log records the usage and estimated cost under label.
func (u Usage) Log(model, label string) {
	zap.L().Info("vision usage",
		zap.String("model", model),
		zap.String("label", label),
		zap.Int64("input_tokens", u.Input),
		zap.Int64("output_tokens", u.Output),
		zap.Float64("estimated_cost_usd", u.Cost(model)),
	)
}
