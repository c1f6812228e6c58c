package service

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ludo-technologies/refit/domain"
)

// diagnosticRe matches the grep-friendly contract the build gate's
// subprocess is required to emit: `PATH(L,C): error CODE: MSG` and its
// warning variant (spec.md §4.9/§6).
var diagnosticRe = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\):\s*(error|warning)\s+([A-Za-z0-9]+):\s*(.+)$`)

// nonRecoverableCategories are the diagnostic categories that force
// Diagnostics.AutoRecoverable to false (spec.md §4.9).
var nonRecoverableCategories = map[string]bool{
	"syntax-error": true,
	"config":       true,
	"unknown":      true,
}

// Diagnostic is one parsed compiler message.
type Diagnostic struct {
	Path     string
	Line     int
	Col      int
	Severity string
	Code     string
	Message  string
	Category string
}

// BuildGateResult is the Build Gate's verdict for one invocation
// (spec.md §4.9).
type BuildGateResult struct {
	Success         bool
	ExitCode        int
	Diagnostics     []Diagnostic
	AutoRecoverable bool
	SuggestedFixes  []string
	Summary         string
}

// BuildGate invokes an external, no-emit type-check subprocess and
// classifies its textual diagnostics (spec.md §4.9).
type BuildGate struct {
	cfg domain.BuildGateConfig
}

// NewBuildGate builds a gate that runs cfg.Command with cfg.Args in
// cfg.Dir (the project root, when set).
func NewBuildGate(cfg domain.BuildGateConfig) *BuildGate {
	return &BuildGate{cfg: cfg}
}

// Run executes the configured command and returns its classified
// verdict. A zero exit is success with no diagnostics; a nonzero exit
// without any diagnostics lines still returns success=false but an
// empty diagnostics slice — the caller is responsible for wrapping
// that as a generic BuildError.
func (g *BuildGate) Run() (*BuildGateResult, error) {
	cmd := exec.Command(g.cfg.Command, g.cfg.Args...)
	if g.cfg.Dir != "" {
		cmd.Dir = g.cfg.Dir
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("failed to invoke build gate %q: %w", g.cfg.Command, runErr)
		}
	}

	if exitCode == 0 {
		return &BuildGateResult{Success: true, AutoRecoverable: true, Summary: "build gate passed"}, nil
	}

	diagnostics := parseDiagnostics(out.String())
	return &BuildGateResult{
		Success:         false,
		ExitCode:        exitCode,
		Diagnostics:     diagnostics,
		AutoRecoverable: autoRecoverable(diagnostics),
		SuggestedFixes:  suggestedFixes(diagnostics),
		Summary:         summarize(diagnostics),
	}, nil
}

func parseDiagnostics(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		m := diagnosticRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		msg := m[6]
		diags = append(diags, Diagnostic{
			Path:     m[1],
			Line:     lineNo,
			Col:      col,
			Severity: m[4],
			Code:     m[5],
			Message:  msg,
			Category: categorize(m[5], msg),
		})
	}
	return diags
}

// categorize sorts one diagnostic into the category set spec.md §4.9
// names by case-insensitive substrings of its message. A diagnostic
// that matches none of them is "unknown" when it has no code and
// "generic" otherwise.
func categorize(code, message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "cannot find module"), strings.Contains(lower, "has no exported member"):
		return "module-resolution"
	case strings.Contains(lower, "cannot find name"), strings.Contains(lower, "is not a module"):
		return "import-error"
	case strings.Contains(lower, "does not exist on type"):
		return "property-error"
	case strings.Contains(lower, "jsx"):
		return "jsx-error"
	case strings.Contains(lower, "is not assignable"), strings.Contains(lower, "type "):
		return "type-error"
	case strings.Contains(lower, "unexpected token"), strings.Contains(lower, "expected"):
		return "syntax-error"
	case strings.Contains(lower, "tsconfig"), strings.Contains(lower, "compiler option"):
		return "config"
	case code == "":
		return "unknown"
	default:
		return "generic"
	}
}

func autoRecoverable(diags []Diagnostic) bool {
	for _, d := range diags {
		if nonRecoverableCategories[d.Category] {
			return false
		}
	}
	return true
}

var fixTemplates = map[string]string{
	"module-resolution": "verify the import path and that the module is staged or installed",
	"import-error":       "check the exported member name matches the source module",
	"type-error":         "adjust the assigned value or widen the target type",
	"property-error":      "verify the property exists on the type or extend the type definition",
	"jsx-error":           "confirm the file extension supports JSX and tsconfig has jsx enabled",
	"syntax-error":        "fix the syntax error at the reported location before re-running",
	"config":              "review tsconfig.json for the reported compiler option",
	"generic":              "inspect the diagnostic message for the specific fix",
	"unknown":              "inspect the raw compiler output; the diagnostic did not match a known shape",
}

func suggestedFixes(diags []Diagnostic) []string {
	seen := make(map[string]bool)
	var fixes []string
	for _, d := range diags {
		fix, ok := fixTemplates[d.Category]
		if !ok || seen[fix] {
			continue
		}
		seen[fix] = true
		fixes = append(fixes, fix)
	}
	return fixes
}

// summarize renders the "N type errors, M module-resolution errors, …"
// line spec.md §4.9 describes, in descending frequency then
// alphabetical category order.
func summarize(diags []Diagnostic) string {
	if len(diags) == 0 {
		return "build failed with no parseable diagnostics"
	}
	counts := make(map[string]int)
	for _, d := range diags {
		counts[d.Category]++
	}
	type entry struct {
		category string
		count    int
	}
	entries := make([]entry, 0, len(counts))
	for c, n := range counts {
		entries = append(entries, entry{c, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].category < entries[j].category
	})

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%d %s error%s", e.count, e.category, plural(e.count)))
	}
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
