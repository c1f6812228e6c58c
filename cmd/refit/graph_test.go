package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, configPath, root string) {
	t.Helper()
	staging := filepath.Join(root, "staging")
	src := filepath.Join(root, "src")
	statePath := filepath.Join(root, ".refit-state.json")
	content := `{
  "integration": {
    "sourceDirectory": "` + staging + `",
    "targetDirectory": "` + src + `",
    "stateStore": {"path": "` + statePath + `"}
  },
  "scan": {
    "includePatterns": ["*.ts", "*.tsx", "*.js", "*.jsx"],
    "excludePatterns": [],
    "recursive": false
  }
}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunGraph_NoCyclesOnEmptyStaging(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "refit.config.json")
	writeTestConfig(t, configPath, dir)

	cmd := graphCmd()
	cmd.Flags().Set("config", configPath)

	if err := runGraph(cmd, []string{dir}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunGraph_ReportsCycleAsExitError(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "refit.config.json")
	writeTestConfig(t, configPath, dir)

	staging := filepath.Join(dir, "staging")
	if err := os.MkdirAll(staging, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staging, "a.ts"), []byte(`import { b } from "./b";
export const aThing = () => b();`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staging, "b.ts"), []byte(`import { aThing } from "./a";
export const b = () => aThing();`), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := graphCmd()
	cmd.Flags().Set("config", configPath)

	err := runGraph(cmd, []string{dir})
	if err == nil {
		t.Fatal("expected a CheckExitError when a cycle is present")
	}
	exitErr, ok := err.(*CheckExitError)
	if !ok || exitErr.Code != 1 {
		t.Fatalf("expected CheckExitError with code 1, got %v", err)
	}
}
