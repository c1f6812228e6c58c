package domain

import (
	"fmt"
	"strings"
)

// ErrorFamily is one of the five error kinds named in spec.md §7, plus
// the Unknown fallback.
type ErrorFamily string

const (
	ErrorFamilyFilesystem ErrorFamily = "filesystem"
	ErrorFamilyParse      ErrorFamily = "parse"
	ErrorFamilyBuild      ErrorFamily = "build"
	ErrorFamilyMerge      ErrorFamily = "merge"
	ErrorFamilyDependency ErrorFamily = "dependency"
	ErrorFamilyUnknown    ErrorFamily = "unknown"
)

// RecoveryStrategy is what the Orchestrator should do after an error of
// a given family is classified.
type RecoveryStrategy struct {
	CanAutoRecover bool
	Retryable      bool
	Escalate       bool
	Rollback       bool
}

// recoveryTable is the normative table from spec.md §4.10.
var recoveryTable = map[ErrorFamily]RecoveryStrategy{
	ErrorFamilyFilesystem: {CanAutoRecover: true, Retryable: true, Escalate: false, Rollback: false},
	ErrorFamilyParse:      {CanAutoRecover: false, Retryable: false, Escalate: true, Rollback: false},
	ErrorFamilyBuild:      {CanAutoRecover: true, Retryable: false, Escalate: false, Rollback: true},
	ErrorFamilyMerge:      {CanAutoRecover: false, Retryable: false, Escalate: true, Rollback: false},
	ErrorFamilyDependency: {CanAutoRecover: false, Retryable: false, Escalate: true, Rollback: false},
	ErrorFamilyUnknown:    {CanAutoRecover: false, Retryable: false, Escalate: true, Rollback: true},
}

// RecoveryFor returns the normative strategy for a family.
func RecoveryFor(family ErrorFamily) RecoveryStrategy {
	if s, ok := recoveryTable[family]; ok {
		return s
	}
	return recoveryTable[ErrorFamilyUnknown]
}

// EngineError wraps an underlying cause with the originating path and,
// when present, a structured code, so the recovery decision is made
// from the wrapped form rather than the raw cause (spec.md §7).
type EngineError struct {
	Family  ErrorFamily
	Path    string
	Code    string
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Family))
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	return b.String()
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Strategy returns the normative recovery strategy for this error's
// family.
func (e *EngineError) Strategy() RecoveryStrategy {
	return RecoveryFor(e.Family)
}

func newEngineError(family ErrorFamily, path, code, message string, cause error) *EngineError {
	return &EngineError{Family: family, Path: path, Code: code, Message: message, Cause: cause}
}

func NewFilesystemError(path, message string, cause error) *EngineError {
	return newEngineError(ErrorFamilyFilesystem, path, "", message, cause)
}

func NewParseError(path, message string, cause error) *EngineError {
	return newEngineError(ErrorFamilyParse, path, "", message, cause)
}

func NewBuildError(path, code, message string, cause error) *EngineError {
	return newEngineError(ErrorFamilyBuild, path, code, message, cause)
}

func NewMergeError(path string, kind ConflictKind, message string) *EngineError {
	return newEngineError(ErrorFamilyMerge, path, string(kind), message, nil)
}

func NewDependencyError(path, message string, cause error) *EngineError {
	return newEngineError(ErrorFamilyDependency, path, "", message, cause)
}

func NewUnknownError(path, message string, cause error) *EngineError {
	return newEngineError(ErrorFamilyUnknown, path, "", message, cause)
}

// ClassifyMessage inspects raw error text for well-known substrings
// (HTTP-ish status codes, database error codes, filesystem errno text)
// and returns the family it most likely belongs to. Used when an error
// arrives as unstructured text (e.g. from a subprocess) rather than as
// a typed cause.
func ClassifyMessage(path, message string) *EngineError {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(message, "404"), strings.Contains(message, "410"),
		strings.Contains(lower, "no such file"), strings.Contains(lower, "not found"),
		strings.Contains(lower, "permission denied"), strings.Contains(lower, "no space left"):
		return NewFilesystemError(path, message, nil)
	case strings.Contains(lower, "unexpected token"), strings.Contains(lower, "syntaxerror"),
		strings.Contains(lower, "malformed import"), strings.Contains(lower, "invalid syntax"):
		return NewParseError(path, message, nil)
	case strings.Contains(lower, "cannot find module"), strings.Contains(lower, "module not found"),
		strings.Contains(lower, "circular"):
		return NewDependencyError(path, message, nil)
	case strings.Contains(lower, "type error"), strings.Contains(lower, "is not assignable"),
		strings.Contains(lower, "does not exist on type"), strings.Contains(lower, "cannot find name"),
		isPostgresCode(message):
		return NewBuildError(path, extractTSCode(message), message, nil)
	case strings.Contains(lower, "duplicate export"), strings.Contains(lower, "incompatible kind"),
		strings.Contains(lower, "already exported"):
		return NewMergeError(path, ConflictDuplicateExport, message)
	default:
		return NewUnknownError(path, message, nil)
	}
}

// isPostgresCode reports whether the message embeds a well-known
// 5-character SQLSTATE code (e.g. "23505" unique_violation), the way
// database-fronted build tooling sometimes surfaces constraint errors
// through a generic build failure.
func isPostgresCode(message string) bool {
	knownCodes := []string{"23505", "23503", "42601", "42P01"}
	for _, c := range knownCodes {
		if strings.Contains(message, c) {
			return true
		}
	}
	return false
}

// extractTSCode pulls a "TSxxxx" or "TS####" style code out of message
// text, mirroring the diagnostic format the Build Gate parses.
func extractTSCode(message string) string {
	idx := strings.Index(message, "TS")
	if idx == -1 {
		return ""
	}
	end := idx + 2
	for end < len(message) && message[end] >= '0' && message[end] <= '9' {
		end++
	}
	if end == idx+2 {
		return ""
	}
	return message[idx:end]
}

// FormatRecoveryBlock renders a human-readable remediation block for an
// EngineError, per spec.md §4.10's "formatter emits... file path, code,
// strategy flags, and category-specific remediation hints".
func FormatRecoveryBlock(err *EngineError) string {
	strat := err.Strategy()
	var b strings.Builder
	fmt.Fprintf(&b, "%s error", err.Family)
	if err.Path != "" {
		fmt.Fprintf(&b, " in %s", err.Path)
	}
	if err.Code != "" {
		fmt.Fprintf(&b, " (%s)", err.Code)
	}
	b.WriteString(":\n  ")
	b.WriteString(err.Message)
	b.WriteString("\n  recovery: ")
	parts := []string{}
	if strat.CanAutoRecover {
		parts = append(parts, "auto-recoverable")
	}
	if strat.Retryable {
		parts = append(parts, "retryable")
	}
	if strat.Escalate {
		parts = append(parts, "escalate")
	}
	if strat.Rollback {
		parts = append(parts, "rollback")
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("\n  hint: ")
	b.WriteString(remediationHint(err.Family))
	return b.String()
}

func remediationHint(family ErrorFamily) string {
	switch family {
	case ErrorFamilyFilesystem:
		return "check permissions and available disk space, then retry"
	case ErrorFamilyParse:
		return "fix the syntax in the staged file before re-running"
	case ErrorFamilyBuild:
		return "resolve the type error or missing dependency reported by the build gate"
	case ErrorFamilyMerge:
		return "resolve the conflicting export manually, then re-stage the file"
	case ErrorFamilyDependency:
		return "break the circular dependency or add the missing module"
	default:
		return "inspect the run's error log for details"
	}
}
