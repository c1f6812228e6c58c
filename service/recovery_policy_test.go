package service

import (
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func TestDecide_BuildErrorAlwaysRollsBackAndHalts(t *testing.T) {
	err := domain.NewBuildError("staging/a.ts", "TS2304", "type error", nil)
	decision := Decide(err, false)
	if !decision.RequireRollback {
		t.Error("expected RequireRollback true for a build error")
	}
	if !decision.HaltRun {
		t.Error("expected HaltRun true for a build error regardless of stopOnError")
	}
}

func TestDecide_FilesystemErrorHaltsOnlyWithStopOnError(t *testing.T) {
	err := domain.NewFilesystemError("staging/a.ts", "disk full", nil)

	if d := Decide(err, false); d.HaltRun {
		t.Error("expected filesystem error not to halt when stopOnError is off")
	}
	if d := Decide(err, true); !d.HaltRun {
		t.Error("expected filesystem error to halt when stopOnError is on")
	}
}

func TestDecide_AlwaysMarksFailed(t *testing.T) {
	err := domain.NewMergeError("staging/a.ts", domain.ConflictDuplicateExport, "conflict")
	decision := Decide(err, false)
	if !decision.MarkFailed {
		t.Error("expected MarkFailed true")
	}
}

func TestRunErrors_Add(t *testing.T) {
	var re RunErrors
	re.Add("staging/a.ts", domain.NewParseError("staging/a.ts", "bad syntax", nil))
	if len(re.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(re.Errors))
	}
}

func TestRunErrors_Error_Empty(t *testing.T) {
	var re RunErrors
	if got := re.Error(); got != "no errors" {
		t.Errorf("expected 'no errors', got %q", got)
	}
}

func TestRunErrors_Error_Single(t *testing.T) {
	var re RunErrors
	re.Add("staging/a.ts", domain.NewParseError("staging/a.ts", "bad syntax", nil))
	got := re.Error()
	want := re.Errors[0].Error()
	if got != want {
		t.Errorf("expected single error rendered directly, got %q want %q", got, want)
	}
}

func TestRunErrors_Error_Multiple(t *testing.T) {
	var re RunErrors
	re.Add("staging/a.ts", domain.NewParseError("staging/a.ts", "bad syntax", nil))
	re.Add("staging/b.ts", domain.NewParseError("staging/b.ts", "bad syntax too", nil))
	got := re.Error()
	if got == "" {
		t.Fatal("expected non-empty rendering")
	}
	if got[0] != '2' {
		t.Errorf("expected numbered summary starting with count, got %q", got)
	}
}

func TestRunErrors_Strings(t *testing.T) {
	var re RunErrors
	re.Add("staging/a.ts", domain.NewParseError("staging/a.ts", "bad syntax", nil))
	strs := re.Strings()
	if len(strs) != 1 {
		t.Fatalf("expected 1 string, got %d", len(strs))
	}
}
