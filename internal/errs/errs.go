// Package errs formats the panic messages the ecs package raises for
// precondition violations. Every failure in the core is programmer-error
// class (spec.md §7): a violated precondition aborts the process via panic
// rather than being surfaced as a recoverable error. No library in the
// example pack reaches for an error-wrapping dependency to build an
// assertion message — go.uber.org/multierr, the closest pack usage
// (rdtc8822-debug-L1JGO-Whale/go.mod), aggregates independent recoverable
// errors on a server shutdown path, a different problem from a single
// fail-fast precondition string. This package stays on fmt.Errorf, the
// one place the ambient error-handling stack is, deliberately, just the
// standard library.
package errs

import "fmt"

// Precondition formats a fail-fast message for a violated precondition. Its
// result is intended to be passed straight to panic.
func Precondition(format string, args ...any) error {
	return fmt.Errorf("ecs: "+format, args...)
}
