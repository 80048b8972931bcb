package base

import (
	"errors"
	"syscall"
	"time"
)

// isTransient reports whether err is a "not ready" condition after which the
// same operation can simply be retried
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR)
}

// nextBackoff doubles current within [lo, hi]. A zero current starts at lo.
func nextBackoff(current, lo, hi time.Duration) time.Duration {
	if current < lo {
		return lo
	}
	if current*2 > hi {
		return hi
	}
	return current * 2
}
