package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/refit/domain"
)

// FileError pairs one staged file's path with the *domain.EngineError
// the Orchestrator classified for it — the per-file analogue of the
// teacher's concurrent-task TaskError, reused here for a strictly
// sequential loop (spec.md §5 rules out goroutines; only the
// error-aggregation shape is kept).
type FileError struct {
	Path string
	Err  *domain.EngineError
}

func (e FileError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// RunErrors collects every per-file failure the Orchestrator recorded
// over the course of one run, in the order they occurred.
type RunErrors struct {
	Errors []FileError
}

// Add appends a FileError to the collection.
func (a *RunErrors) Add(path string, err *domain.EngineError) {
	a.Errors = append(a.Errors, FileError{Path: path, Err: err})
}

// Error renders every collected failure, one per line, numbered.
func (a *RunErrors) Error() string {
	if len(a.Errors) == 0 {
		return "no errors"
	}
	if len(a.Errors) == 1 {
		return a.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d files failed:\n", len(a.Errors))
	for i, e := range a.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, e.Error())
	}
	return b.String()
}

// Strings renders each collected failure as "path: message" for the
// OrchestrationResult.Errors slice (spec.md §6).
func (a *RunErrors) Strings() []string {
	out := make([]string, 0, len(a.Errors))
	for _, e := range a.Errors {
		out = append(out, fmt.Sprintf("%s: %s", e.Path, e.Err.Error()))
	}
	return out
}

// Decide applies the normative recovery table (domain.RecoveryFor) to
// err and reports what the Orchestrator's per-file loop should do next.
type RecoveryDecision struct {
	MarkFailed   bool
	RequireRollback bool
	HaltRun         bool
}

// Decide classifies err's family and combines its recovery strategy
// with the run's stopOnError setting (spec.md §4.10/§4.12 step 5.e):
// a rollback-required error always halts the run; otherwise stopOnError
// decides whether this failure also stops the loop.
func Decide(err *domain.EngineError, stopOnError bool) RecoveryDecision {
	strat := err.Strategy()
	return RecoveryDecision{
		MarkFailed:      true,
		RequireRollback: strat.Rollback,
		HaltRun:         strat.Rollback || stopOnError,
	}
}
