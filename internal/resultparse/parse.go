// Package resultparse decodes the estimation service's numbered three-line
// reply. Shape deviations never fail; they leave fields absent.
package resultparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/grass-estimator/internal/model"
)

var (
	markerRe = regexp.MustCompile(`^\s*\d+\.`)
	numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Parser turns raw service text into a ParsedEstimate.
type Parser interface {
	Parse(raw string) model.ParsedEstimate
}

// Numbered is the Parser for the "1./2./3." reply format.
type Numbered struct{}

// Parse implements Parser.
func (Numbered) Parse(raw string) model.ParsedEstimate {
	return Parse(raw)
}

// Parse reads line 1 as the area phrase, line 2 as the length bucket and
// line 3 as the condition bucket. Lines past the third are ignored.
func Parse(raw string) model.ParsedEstimate {
	var out model.ParsedEstimate

	// Lines are positional, so a blank leading line still occupies index 0.
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return out
	}
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines) && i < 3; i++ {
		v := StripMarker(lines[i])
		switch i {
		case 0:
			out.AreaLabel = v
			out.AreaM2 = LeadingNumber(v)
		case 1:
			out.LengthBucket = v
		case 2:
			out.ConditionBucket = v
		}
	}
	return out
}

// StripMarker removes a leading "<n>." marker and surrounding whitespace. A
// dot followed by a digit is a decimal point, so "120.5 m²" is left alone.
func StripMarker(line string) string {
	loc := markerRe.FindStringIndex(line)
	if loc == nil {
		return strings.TrimSpace(line)
	}
	rest := line[loc[1]:]
	if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(rest)
}

// LeadingNumber returns the first decimal number in s, or nil.
func LeadingNumber(s string) *float64 {
	tok := numberRe.FindString(s)
	if tok == "" {
		return nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil
	}
	return &v
}

// MatchBucket reports the index of label within buckets, ignoring case and
// surrounding whitespace. Unknown labels report false.
func MatchBucket(label string, buckets []string) (int, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return -1, false
	}
	for i, b := range buckets {
		if strings.EqualFold(label, b) {
			return i, true
		}
	}
	return -1, false
}
