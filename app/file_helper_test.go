package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileHelper_IsValidJSFile(t *testing.T) {
	h := NewFileHelper()
	valid := []string{"a.ts", "a.tsx", "a.js", "a.jsx", "a.mjs", "a.cjs"}
	for _, name := range valid {
		if !h.IsValidJSFile(name) {
			t.Errorf("expected %q to be a valid JS/TS file", name)
		}
	}
	if h.IsValidJSFile("a.py") {
		t.Error("expected a.py not to be a valid JS/TS file")
	}
}

func TestFileHelper_FileExists(t *testing.T) {
	dir := t.TempDir()
	h := NewFileHelper()

	file := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exists, err := h.FileExists(file)
	if err != nil || !exists {
		t.Fatalf("expected file to exist, got exists=%v err=%v", exists, err)
	}

	exists, err = h.FileExists(filepath.Join(dir, "missing.ts"))
	if err != nil || exists {
		t.Fatalf("expected file not to exist, got exists=%v err=%v", exists, err)
	}

	exists, err = h.FileExists(dir)
	if err != nil || exists {
		t.Fatalf("expected a directory not to count as a file, got exists=%v err=%v", exists, err)
	}
}

func TestFileHelper_CollectJSFiles_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	h := NewFileHelper()

	for _, name := range []string{"a.ts", "b.py", "c.tsx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "d.ts"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := h.CollectJSFiles([]string{dir}, false, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 top-level JS/TS files, got %d: %v", len(files), files)
	}
}

func TestFileHelper_CollectJSFiles_ExcludesPattern(t *testing.T) {
	dir := t.TempDir()
	h := NewFileHelper()

	for _, name := range []string{"a.ts", "a.test.ts"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := h.CollectJSFiles([]string{dir}, false, nil, []string{"*.test.ts"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file after exclusion, got %d: %v", len(files), files)
	}
}

func TestResolveFilePaths_AllFiles(t *testing.T) {
	dir := t.TempDir()
	h := NewFileHelper()
	file := filepath.Join(dir, "a.ts")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ResolveFilePaths(h, []string{file}, false, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0] != file {
		t.Errorf("expected the original file path returned, got %v", paths)
	}
}

func TestResolveFilePaths_Directory(t *testing.T) {
	dir := t.TempDir()
	h := NewFileHelper()
	if err := os.WriteFile(filepath.Join(dir, "a.ts"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ResolveFilePaths(h, []string{dir}, false, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("expected 1 collected file, got %v", paths)
	}
}
