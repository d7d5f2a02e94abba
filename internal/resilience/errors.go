package resilience

import (
	"errors"
	"net"
	"syscall"
)

// transient is implemented by client errors that know whether a retry can
// help, such as an HTTP status error.
type transient interface {
	Transient() bool
}

// IsTransient reports whether err, or any error it wraps, declares itself
// transient, is a network timeout, or is a refused or reset connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te transient
	if errors.As(err, &te) {
		return te.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}
