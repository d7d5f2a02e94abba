// Package profile validates and remembers the customer's contact details.
package profile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/grass-estimator/internal/model"
)

// Field keys used in FieldErrors.
const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldEmail   = "email"
	FieldAddress = "address"
)

var (
	// Australian mobile: 04XXXXXXXX or +614XXXXXXXX.
	phonePattern = regexp.MustCompile(`^(?:04|\+614)\d{8}$`)
	// local@domain.tld where the TLD is at least two characters.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(?:\.[^\s@.]+)*\.[^\s@.]{2,}$`)
)

// FieldErrors maps a field key to a user-facing message. Empty means valid.
type FieldErrors map[string]string

// Valid reports whether no field failed.
func (fe FieldErrors) Valid() bool {
	return len(fe) == 0
}

// Fields returns the failing field keys in stable order.
func (fe FieldErrors) Fields() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks every field of p and collects per-field messages.
func Validate(p model.ContactProfile) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(p.Name) == "" {
		errs[FieldName] = "Name is required."
	}
	if !ValidPhone(p.Phone) {
		errs[FieldPhone] = "Enter an Australian mobile number (04XXXXXXXX or +614XXXXXXXX)."
	}
	if !ValidEmail(p.Email) {
		errs[FieldEmail] = "Enter a valid email address."
	}
	if strings.TrimSpace(p.Address) == "" {
		errs[FieldAddress] = "Service address is required."
	}

	return errs
}

// ValidPhone reports whether s is an Australian mobile number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
