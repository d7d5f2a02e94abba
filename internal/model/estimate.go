package model

// ParsedEstimate is the structured form of the service's three-line response.
// Empty strings and a nil AreaM2 mean the field was absent.
type ParsedEstimate struct {
	AreaLabel       string   `json:"areaLabel,omitempty" yaml:"areaLabel,omitempty"`
	AreaM2          *float64 `json:"areaM2" yaml:"areaM2"`
	LengthBucket    string   `json:"lengthBucket,omitempty" yaml:"lengthBucket,omitempty"`
	ConditionBucket string   `json:"conditionBucket,omitempty" yaml:"conditionBucket,omitempty"`
}

// PricedEstimate is a ParsedEstimate plus the derived price. Price is nil when
// the area or the rate is unknown.
type PricedEstimate struct {
	ParsedEstimate `yaml:",inline"`
	Price          *float64 `json:"price" yaml:"price"`
}

// LengthBuckets are the grass-length labels the service is known to return.
var LengthBuckets = []string{
	"Freshly mowed (under 5cm)",
	"Slightly overgrown (5–8cm)",
	"Moderately overgrown (8–15cm)",
	"Heavily overgrown (over 15cm)",
}

// ConditionBuckets are the grass-condition labels the service is known to return.
var ConditionBuckets = []string{
	"Healthy and green",
	"Patchy or thinning",
	"Dry or brown",
	"Weedy",
}
