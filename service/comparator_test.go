package service

import (
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func TestCompareExports_Common(t *testing.T) {
	staged := []byte("export const foo = 1;\n")
	existing := []byte("export const foo = 1;\n")
	report := CompareExports(staged, existing,
		[]domain.NamedExport{{Name: "foo", Kind: domain.ExportKindConst}},
		[]domain.NamedExport{{Name: "foo", Kind: domain.ExportKindConst}},
	)
	if len(report.Common) != 1 || report.Common[0] != "foo" {
		t.Errorf("expected foo in Common, got %+v", report)
	}
	if len(report.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %+v", report.Conflicts)
	}
}

func TestCompareExports_DuplicateExportConflict(t *testing.T) {
	staged := []byte("export const foo = 1;\n")
	existing := []byte("export const foo = 2;\n")
	report := CompareExports(staged, existing,
		[]domain.NamedExport{{Name: "foo", Kind: domain.ExportKindConst}},
		[]domain.NamedExport{{Name: "foo", Kind: domain.ExportKindConst}},
	)
	if len(report.Conflicts) != 1 || report.Conflicts[0].Kind != domain.ConflictDuplicateExport {
		t.Fatalf("expected a DuplicateExport conflict, got %+v", report.Conflicts)
	}
}

func TestCompareExports_IncompatibleKindConflict(t *testing.T) {
	staged := []byte("export function foo() {}\n")
	existing := []byte("export const foo = 1;\n")
	report := CompareExports(staged, existing,
		[]domain.NamedExport{{Name: "foo", Kind: domain.ExportKindFunction}},
		[]domain.NamedExport{{Name: "foo", Kind: domain.ExportKindConst}},
	)
	if len(report.Conflicts) != 1 || report.Conflicts[0].Kind != domain.ConflictIncompatibleKind {
		t.Fatalf("expected an IncompatibleKind conflict, got %+v", report.Conflicts)
	}
}

func TestCompareExports_DefaultExportCollision(t *testing.T) {
	staged := []byte("export default function Widget() { return 1; }\n")
	existing := []byte("export default function Widget() { return 2; }\n")
	report := CompareExports(staged, existing,
		[]domain.NamedExport{{Name: "Widget", Kind: domain.ExportKindFunction, IsDefault: true}},
		[]domain.NamedExport{{Name: "Widget", Kind: domain.ExportKindFunction, IsDefault: true}},
	)
	found := false
	for _, c := range report.Conflicts {
		if c.Kind == domain.ConflictDefaultExportCollision {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DefaultExportCollision conflict, got %+v", report.Conflicts)
	}
}

func TestCompareExports_NewAndPreservedOnly(t *testing.T) {
	staged := []byte("export const bar = 1;\n")
	existing := []byte("export const foo = 1;\n")
	report := CompareExports(staged, existing,
		[]domain.NamedExport{{Name: "bar", Kind: domain.ExportKindConst}},
		[]domain.NamedExport{{Name: "foo", Kind: domain.ExportKindConst}},
	)
	if len(report.New) != 1 || report.New[0] != "bar" {
		t.Errorf("expected bar in New, got %+v", report.New)
	}
	if len(report.PreservedOnly) != 1 || report.PreservedOnly[0] != "foo" {
		t.Errorf("expected foo in PreservedOnly, got %+v", report.PreservedOnly)
	}
}

func TestExtractDeclaration_FunctionBody(t *testing.T) {
	content := []byte("export function foo() {\n  return 1;\n}\n")
	got := ExtractDeclaration(content, "foo", false)
	want := "export function foo() {\n  return 1;\n}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractDeclaration_SimpleConst(t *testing.T) {
	content := []byte("export const foo = 1;\n")
	got := ExtractDeclaration(content, "foo", false)
	if got != "export const foo = 1;" {
		t.Errorf("got %q", got)
	}
}

func TestExtractDeclaration_NotFound(t *testing.T) {
	content := []byte("export const foo = 1;\n")
	if got := ExtractDeclaration(content, "missing", false); got != "" {
		t.Errorf("expected empty string for a missing declaration, got %q", got)
	}
}

func TestExtractDeclaration_Default(t *testing.T) {
	content := []byte("export default class Widget {\n  render() {}\n}\n")
	got := ExtractDeclaration(content, "Widget", true)
	if got == "" {
		t.Error("expected a non-empty declaration for the default export")
	}
}

func TestComparisonReport_String(t *testing.T) {
	r := ComparisonReport{Common: []string{"a"}, New: []string{"b", "c"}}
	got := r.String()
	want := "common=1 new=2 preserved=0 conflicts=0"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
