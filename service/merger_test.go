package service

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func TestMerge_RefusesOnConflictWithRequestUserInput(t *testing.T) {
	staged := []byte("export const foo = 1;\n")
	existing := []byte("export const foo = 2;\n")
	report := ComparisonReport{
		Conflicts: []domain.Conflict{{Kind: domain.ConflictDuplicateExport, Name: "foo"}},
	}
	policy := domain.MergePolicy{RequestUserInput: true}

	result := Merge(staged, existing, report, policy)
	if !result.Refused {
		t.Fatal("expected merge to be refused")
	}
	if string(result.Content) != string(existing) {
		t.Errorf("expected existing content unchanged, got %q", result.Content)
	}
	if len(result.Conflicts) != 1 {
		t.Errorf("expected conflicts surfaced, got %+v", result.Conflicts)
	}
}

func TestMerge_ProceedsOnConflictWithoutRequestUserInput(t *testing.T) {
	staged := []byte("export const foo = 1;\n")
	existing := []byte("export const foo = 2;\n")
	report := ComparisonReport{
		Conflicts: []domain.Conflict{{Kind: domain.ConflictDuplicateExport, Name: "foo"}},
	}
	policy := domain.MergePolicy{RequestUserInput: false, AddNewExports: true}

	result := Merge(staged, existing, report, policy)
	if result.Refused {
		t.Fatal("expected merge to proceed when RequestUserInput is off")
	}
}

func TestMerge_AddsNewExports(t *testing.T) {
	staged := []byte("export const bar = 2;\n")
	existing := []byte("export const foo = 1;\n")
	report := ComparisonReport{New: []string{"bar"}}
	policy := domain.MergePolicy{AddNewExports: true}

	result := Merge(staged, existing, report, policy)
	if len(result.AddedExports) != 1 || result.AddedExports[0] != "bar" {
		t.Fatalf("expected bar added, got %+v", result.AddedExports)
	}
	if !strings.Contains(string(result.Content), "export const foo = 1;") {
		t.Error("expected existing body preserved")
	}
	if !strings.Contains(string(result.Content), "export const bar = 2;") {
		t.Error("expected new export appended")
	}
	if !strings.Contains(string(result.Content), mergeDelimiter) {
		t.Error("expected merge delimiter before the appended block")
	}
}

func TestMerge_SkipsNewExportsWhenPolicyDisallows(t *testing.T) {
	staged := []byte("export const bar = 2;\n")
	existing := []byte("export const foo = 1;\n")
	report := ComparisonReport{New: []string{"bar"}}
	policy := domain.MergePolicy{AddNewExports: false}

	result := Merge(staged, existing, report, policy)
	if len(result.AddedExports) != 0 {
		t.Errorf("expected no exports added, got %+v", result.AddedExports)
	}
	if strings.Contains(string(result.Content), "bar") {
		t.Error("expected bar not to appear in merged content")
	}
}

func TestMerge_PreservedExportsUnion(t *testing.T) {
	report := ComparisonReport{Common: []string{"a"}, PreservedOnly: []string{"b"}}
	result := Merge([]byte("export const a=1;\n"), []byte("export const a=1;\nexport const b=2;\n"), report, domain.MergePolicy{})
	if len(result.PreservedExports) != 2 {
		t.Errorf("expected 2 preserved exports, got %+v", result.PreservedExports)
	}
}

func TestUnionImportStatements_DedupesAndSorts(t *testing.T) {
	a := []byte("import { b } from './b';\nimport { a } from './a';\n")
	b := []byte("import { a } from './a';\nimport { c } from './c';\n")

	out := unionImportStatements(a, b)
	want := []string{"import { a } from './a';", "import { b } from './b';", "import { c } from './c';"}
	if len(out) != len(want) {
		t.Fatalf("expected %d statements, got %d: %v", len(want), len(out), out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("at %d: got %q, want %q", i, out[i], want[i])
		}
	}
}

func TestStripImportLines_RemovesImportsKeepsBody(t *testing.T) {
	content := []byte("import { a } from './a';\n\nexport const x = 1;\n")
	got := stripImportLines(content)
	if strings.Contains(got, "import") {
		t.Errorf("expected imports stripped, got %q", got)
	}
	if !strings.Contains(got, "export const x = 1;") {
		t.Errorf("expected body preserved, got %q", got)
	}
}

func TestImportStatements_MultiLineImport(t *testing.T) {
	content := []byte("import {\n  a,\n  b\n} from './ab';\nexport const x = 1;\n")
	stmts := importStatements(content)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 joined import statement, got %d: %v", len(stmts), stmts)
	}
	if !strings.Contains(stmts[0], "a,") || !strings.Contains(stmts[0], "./ab") {
		t.Errorf("expected joined multi-line import, got %q", stmts[0])
	}
}
