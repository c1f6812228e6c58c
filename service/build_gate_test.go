package service

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func TestBuildGate_Run_Success(t *testing.T) {
	gate := NewBuildGate(domain.BuildGateConfig{Command: "/bin/sh", Args: []string{"-c", "exit 0"}})
	result, err := gate.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	if !result.AutoRecoverable {
		t.Error("expected AutoRecoverable true on success")
	}
}

func TestBuildGate_Run_FailureWithDiagnostics(t *testing.T) {
	script := `echo 'src/foo.ts(10,5): error TS2304: Cannot find name "Bar".'; exit 1`
	gate := NewBuildGate(domain.BuildGateConfig{Command: "/bin/sh", Args: []string{"-c", script}})

	result, err := gate.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Error("expected failure")
	}
	if result.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", result.ExitCode)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d: %+v", len(result.Diagnostics), result.Diagnostics)
	}
	d := result.Diagnostics[0]
	if d.Path != "src/foo.ts" || d.Line != 10 || d.Col != 5 || d.Code != "TS2304" {
		t.Errorf("unexpected diagnostic parse: %+v", d)
	}
	if d.Category != "import-error" {
		t.Errorf("expected import-error category, got %q", d.Category)
	}
}

func TestBuildGate_Run_InvocationFailure(t *testing.T) {
	gate := NewBuildGate(domain.BuildGateConfig{Command: "/no/such/binary-xyz"})
	_, err := gate.Run()
	if err == nil {
		t.Fatal("expected an error invoking a nonexistent binary")
	}
}

func TestParseDiagnostics_WarningSeverity(t *testing.T) {
	diags := parseDiagnostics(`src/a.ts(1,1): warning TS6133: 'x' is declared but never used.`)
	if len(diags) != 1 || diags[0].Severity != "warning" {
		t.Fatalf("expected one warning diagnostic, got %+v", diags)
	}
}

func TestCategorize(t *testing.T) {
	cases := map[string]string{
		"Cannot find module './foo'":            "module-resolution",
		"Cannot find name 'Bar'":                "import-error",
		"Property 'x' does not exist on type 'Y'": "property-error",
		"JSX element implicitly has type 'any'":  "jsx-error",
		"Type 'string' is not assignable to type 'number'": "type-error",
		"Unexpected token":                        "syntax-error",
		"Unknown compiler option 'foo'":           "config",
	}
	for msg, want := range cases {
		if got := categorize("TS0000", msg); got != want {
			t.Errorf("categorize(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestCategorize_UnknownWhenNoCode(t *testing.T) {
	if got := categorize("", "something unparseable"); got != "unknown" {
		t.Errorf("expected unknown category, got %q", got)
	}
}

func TestAutoRecoverable(t *testing.T) {
	recoverable := []Diagnostic{{Category: "type-error"}}
	if !autoRecoverable(recoverable) {
		t.Error("expected type-error diagnostics to be auto-recoverable")
	}

	blocking := []Diagnostic{{Category: "syntax-error"}}
	if autoRecoverable(blocking) {
		t.Error("expected syntax-error diagnostics to block auto-recovery")
	}
}

func TestSuggestedFixes_DedupesByCategory(t *testing.T) {
	diags := []Diagnostic{{Category: "type-error"}, {Category: "type-error"}, {Category: "config"}}
	fixes := suggestedFixes(diags)
	if len(fixes) != 2 {
		t.Fatalf("expected 2 deduped fixes, got %d: %v", len(fixes), fixes)
	}
}

func TestSummarize_OrdersByFrequencyThenAlpha(t *testing.T) {
	diags := []Diagnostic{
		{Category: "type-error"}, {Category: "type-error"},
		{Category: "config"},
		{Category: "jsx-error"},
	}
	summary := summarize(diags)
	if !strings.HasPrefix(summary, "2 type-error errors") {
		t.Errorf("expected type-error (count 2) first, got %q", summary)
	}
}

func TestSummarize_NoDiagnostics(t *testing.T) {
	if got := summarize(nil); got != "build failed with no parseable diagnostics" {
		t.Errorf("unexpected summary: %q", got)
	}
}
