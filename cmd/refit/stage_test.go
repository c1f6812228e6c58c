package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/refit/app"
	"github.com/ludo-technologies/refit/domain"
	"github.com/ludo-technologies/refit/internal/config"
)

func TestStageAdHocFiles_CopiesSingleFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "scratch", "helper.ts")
	if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("export const helper = 1;"), 0644); err != nil {
		t.Fatal(err)
	}

	integrationCfg := &domain.IntegrationConfig{SourceDirectory: filepath.Join(root, "staging")}
	fileHelper := app.NewFileHelper()

	if err := stageAdHocFiles(fileHelper, integrationCfg, config.ScanConfig{}, []string{src}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	staged := filepath.Join(root, "staging", "helper.ts")
	content, err := os.ReadFile(staged)
	if err != nil {
		t.Fatalf("expected staged file at %s: %v", staged, err)
	}
	if string(content) != "export const helper = 1;" {
		t.Errorf("unexpected staged content: %q", content)
	}
}

func TestStageAdHocFiles_CollectsDirectoryNonRecursively(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "scratch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export const a = 1;"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	integrationCfg := &domain.IntegrationConfig{SourceDirectory: filepath.Join(root, "staging")}
	fileHelper := app.NewFileHelper()

	if err := stageAdHocFiles(fileHelper, integrationCfg, config.ScanConfig{}, []string{dir}, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(integrationCfg.SourceDirectory)
	if err != nil {
		t.Fatalf("expected staging directory to exist: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.ts" {
		t.Errorf("expected only a.ts staged, got %v", entries)
	}
}
