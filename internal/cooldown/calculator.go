// Package cooldown computes the escalating lockout window applied to limited
// apps. Each recorded use of a limited app doubles the next lockout.
package cooldown

import (
	"fmt"
	"math"
	"time"
)

// BaseDelay is the lockout applied at the first cooldown-triggering use.
const BaseDelay = 8 * time.Second

// maxShift is the largest doubling that still fits in a time.Duration when
// applied to BaseDelay. Beyond it the result saturates instead of wrapping.
const maxShift = 30

// Duration returns the lockout window for the given usage count:
// BaseDelay * 2^(usageCount-1), so 8s, 16s, 32s, 64s, ...
//
// The sequence saturates at the maximum representable duration rather than
// overflowing. usageCount must be >= 1; a zero or negative count is a
// contract violation and panics.
func Duration(usageCount int) time.Duration {
	if usageCount < 1 {
		panic(fmt.Sprintf("cooldown: usage count must be >= 1, got %d", usageCount))
	}

	shift := usageCount - 1
	if shift > maxShift {
		return time.Duration(math.MaxInt64)
	}
	return BaseDelay << shift
}

// Progress returns how far a cooldown has advanced as a fraction in [0, 1],
// where 0 means just started and 1 means expired. total is the full window
// the cooldown began with.
func Progress(remaining, total time.Duration) float64 {
	if total <= 0 || remaining <= 0 {
		return 1
	}
	if remaining >= total {
		return 0
	}
	return 1 - float64(remaining)/float64(total)
}
