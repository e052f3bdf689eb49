// Package errs provides the typed errors shared by the planner packages.
//
// Every error type follows the same pattern:
//   - a sentinel variable usable with errors.Is (e.g. ErrValueIsRequired)
//   - a struct carrying the offending parameter and an optional cause
//   - constructors with and without cause
//   - Unwrap returning the sentinel
//
// InfeasibleInputError is the only error the optimization core treats as a hard
// failure; constraint violations travel as data in reports.
package errs
