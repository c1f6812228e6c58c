package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func baseConfig(t *testing.T, root string) *domain.IntegrationConfig {
	t.Helper()
	cfg := domain.DefaultIntegrationConfig()
	cfg.SourceDirectory = filepath.Join(root, "staging")
	cfg.TargetDirectory = filepath.Join(root, "src")
	cfg.StateStore.Path = filepath.Join(root, ".refit-state.json")
	cfg.VerifyAfterEach = false
	cfg.CreateBackups = true
	cfg.MergeStrategy.RequestUserInput = false
	return cfg
}

func writeStagedFile(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "staging")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIntegrationUseCase_Execute_EmptyStagingDirectory(t *testing.T) {
	root := t.TempDir()
	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)

	result, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected success for an empty staging directory")
	}
}

func TestIntegrationUseCase_Execute_CreatesNewUtility(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "formatDate.ts", `export function formatDate(d) { return d.toString(); }`)

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)

	result, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.CompletedFiles != 1 {
		t.Fatalf("expected 1 completed file, got %d", result.CompletedFiles)
	}

	dest := filepath.Join(root, "src", "utils", "formatDate.ts")
	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("expected file at %s: %v", dest, err)
	}
	if len(content) == 0 {
		t.Error("expected non-empty destination content")
	}
}

func TestIntegrationUseCase_Execute_MergesIntoExistingFile(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "helper.ts", `export const bar = 2;`)

	destDir := filepath.Join(root, "src", "utils")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(destDir, "helper.ts"), []byte("export const foo = 1;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)
	cfg.MergeStrategy.AddNewExports = true

	result, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.CompletedFiles != 1 {
		t.Fatalf("expected successful merge, got %+v", result)
	}

	content, err := os.ReadFile(filepath.Join(destDir, "helper.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if !contains(string(content), "foo") || !contains(string(content), "bar") {
		t.Errorf("expected both foo and bar preserved in merged content, got %q", content)
	}

	entries, _ := os.ReadDir(destDir)
	backupFound := false
	for _, e := range entries {
		if len(e.Name()) > 8 && e.Name()[:8] == ".backup_" {
			backupFound = true
		}
	}
	if !backupFound {
		t.Error("expected a backup file created before overwriting the existing destination")
	}
}

func TestIntegrationUseCase_Execute_SkipsConflictingMerge(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "helper.ts", `export const foo = 2;`)

	destDir := filepath.Join(root, "src", "utils")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(destDir, "helper.ts"), []byte("export const foo = 1;\n"), 0644); err != nil {
		t.Fatal(err)
	}

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)
	cfg.MergeStrategy.RequestUserInput = true

	result, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SkippedFiles != 1 {
		t.Fatalf("expected 1 skipped file on conflict, got %+v", result)
	}
	if len(result.PerFileResults) != 1 || len(result.PerFileResults[0].Conflicts) == 0 {
		t.Errorf("expected conflicts surfaced on the per-file result, got %+v", result.PerFileResults)
	}
}

func TestIntegrationUseCase_Execute_UnknownRoleIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "constants.ts", `const x = 1;`)

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)

	result, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SkippedFiles != 1 {
		t.Fatalf("expected 1 skipped file for an unresolved destination, got %+v", result)
	}
}

func TestIntegrationUseCase_Execute_DependencyOrderRespected(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "a.ts", `import { b } from "./b";
export const aService = () => b();`)
	writeStagedFile(t, root, "b.ts", `export const b = () => 1;`)

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)

	result, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FailedFiles != 0 {
		t.Fatalf("expected no failures, got %+v", result)
	}
}

func TestIntegrationUseCase_Execute_ResumesFromPersistedState(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "formatDate.ts", `export function formatDate(d) { return d.toString(); }`)

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)

	if _, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg}); err != nil {
		t.Fatalf("unexpected error on first run: %v", err)
	}

	result, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if result.CompletedFiles != 0 {
		t.Errorf("expected the already-completed file to be skipped on resume, got %+v", result)
	}
}

func TestIntegrationUseCase_Graph_ReportsCycle(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "a.ts", `import { b } from "./b";
export const aThing = () => b();`)
	writeStagedFile(t, root, "b.ts", `import { aThing } from "./a";
export const b = () => aThing();`)

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)

	report, err := uc.Graph(domain.IntegrationRequest{Config: cfg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Cycles) == 0 {
		t.Error("expected a detected cycle between a.ts and b.ts")
	}
	if report.Sortable {
		t.Error("expected Sortable=false when a cycle exists")
	}
}

func TestIntegrationUseCase_Status_ReflectsPersistedRun(t *testing.T) {
	root := t.TempDir()
	writeStagedFile(t, root, "formatDate.ts", `export function formatDate(d) { return d.toString(); }`)

	uc := NewIntegrationUseCase()
	cfg := baseConfig(t, root)
	if _, err := uc.Execute(context.Background(), domain.IntegrationRequest{Config: cfg}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := uc.Status(cfg.StateStore.Path)
	if state.Processed != 1 {
		t.Errorf("expected Processed=1, got %d", state.Processed)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
