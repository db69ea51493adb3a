package submission

import (
	"math"
	"time"
)

// Policy governs how the submission Layer schedules resubmission of a
// pending transaction and when it gives up on it, per spec.md §4.4.
type Policy struct {
	// Wait returns how long to wait before the next resubmission after
	// the attempts-th failure.
	Wait func(attempts uint32) time.Duration

	// Cap is the attempt count beyond which a transaction is declared
	// cancelled.
	Cap uint32
}

// DefaultBase and DefaultCap match spec.md §4.4's default policy:
// exponential backoff with base 1.25 and a cap of 255 attempts.
const (
	DefaultBase = 1.25
	DefaultCap  = 255
)

// DefaultPolicy is the exponential-backoff policy spec.md §4.4 names as the
// default: wait(k) = base^k seconds, cancel once attempts exceed 255.
var DefaultPolicy = Policy{
	Wait: func(attempts uint32) time.Duration {
		seconds := math.Pow(DefaultBase, float64(attempts))
		return time.Duration(seconds * float64(time.Second))
	},
	Cap: DefaultCap,
}
