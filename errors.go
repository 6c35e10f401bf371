package localsched

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// https://github.com/sirupsen/logrus
var Log = logrus.New()

// ErrorCategory distinguishes the three failure kinds the core recognizes (see spec §7).
type ErrorCategory int

const (
	// CategoryInvariant marks a programming-invariant violation. Fatal.
	CategoryInvariant ErrorCategory = iota
	// CategoryTransient marks an expected, deferrable condition.
	CategoryTransient
	// CategoryInformational marks a condition that is logged and otherwise ignored.
	CategoryInformational
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryInvariant:
		return "invariant"
	case CategoryTransient:
		return "transient"
	case CategoryInformational:
		return "informational"
	default:
		return "unknown"
	}
}

// schedError carries a category alongside the usual reason, so tests can
// assert which of the three §7 buckets a code path took.
type schedError struct {
	category ErrorCategory
	reason   error
}

func (e *schedError) Error() string {
	return fmt.Sprintf("%s: %v", e.category, e.reason)
}

func (e *schedError) Unwrap() error { return e.reason }

// panicOnFatal lets tests observe an invariant violation as a recoverable
// panic instead of killing the whole test binary via logrus.Fatal. Production
// callers leave this false.
var panicOnFatal = false

// fatalf logs and terminates the process (or panics, under test) on a
// programming-invariant violation (§7 category 1). Never returns normally.
func fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	Log.WithField("category", CategoryInvariant).Error(msg)
	if panicOnFatal {
		panic(&schedError{category: CategoryInvariant, reason: fmt.Errorf("%s", msg)})
	}
	Log.Fatal(msg)
}

// assertf is fatalf gated on a boolean condition.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		fatalf(format, args...)
	}
}

// transientf logs an expected, deferrable condition (§7 category 2).
func transientf(format string, args ...interface{}) {
	Log.WithField("category", CategoryTransient).Info(fmt.Sprintf(format, args...))
}

// informationalf logs a reported informational condition (§7 category 3).
func informationalf(format string, args ...interface{}) {
	Log.WithField("category", CategoryInformational).Warn(fmt.Sprintf(format, args...))
}
