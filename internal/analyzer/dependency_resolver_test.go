package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func TestDependencyResolver_ExternalSpecifier(t *testing.T) {
	r := NewDependencyResolver(DependencyResolverConfig{})
	sf := &domain.SourceFile{Path: "staging/widget.ts", Imports: []string{"react"}}
	deps := r.Resolve(sf)
	if len(deps) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(deps))
	}
	if !deps[0].External {
		t.Error("expected react to be classified external")
	}
}

func TestDependencyResolver_ExternalExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "react"), 0755); err != nil {
		t.Fatal(err)
	}
	r := NewDependencyResolver(DependencyResolverConfig{PackageCacheDir: dir})
	sf := &domain.SourceFile{Path: "staging/widget.ts", Imports: []string{"react"}}
	deps := r.Resolve(sf)
	if !deps[0].Resolved {
		t.Error("expected react to resolve since node_modules/react exists")
	}
}

func TestDependencyResolver_ScopedPackage(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "@scope", "pkg"), 0755); err != nil {
		t.Fatal(err)
	}
	r := NewDependencyResolver(DependencyResolverConfig{PackageCacheDir: dir})
	sf := &domain.SourceFile{Path: "staging/widget.ts", Imports: []string{"@scope/pkg/sub"}}
	deps := r.Resolve(sf)
	if !deps[0].Resolved {
		t.Error("expected scoped package to resolve")
	}
}

func TestDependencyResolver_InternalResolvesWithExtensionProbe(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "staging"), 0755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "staging", "helper.ts")
	if err := os.WriteFile(target, []byte("export const x = 1;"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewDependencyResolver(DependencyResolverConfig{})
	sf := &domain.SourceFile{
		Path:    filepath.Join(dir, "staging", "widget.ts"),
		Imports: []string{"./helper"},
	}
	deps := r.Resolve(sf)
	if len(deps) != 1 {
		t.Fatalf("expected 1 dependency, got %d", len(deps))
	}
	if !deps[0].Resolved {
		t.Fatal("expected ./helper to resolve via extension probe")
	}
	if deps[0].SourceFile != target {
		t.Errorf("expected resolved path %q, got %q", target, deps[0].SourceFile)
	}
}

func TestDependencyResolver_InternalResolvesIndex(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "staging", "widgets")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	index := filepath.Join(sub, "index.ts")
	if err := os.WriteFile(index, []byte("export const x = 1;"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewDependencyResolver(DependencyResolverConfig{})
	sf := &domain.SourceFile{
		Path:    filepath.Join(dir, "staging", "widget.ts"),
		Imports: []string{"./widgets"},
	}
	deps := r.Resolve(sf)
	if !deps[0].Resolved {
		t.Fatal("expected ./widgets to resolve via index probe")
	}
	if deps[0].SourceFile != index {
		t.Errorf("expected resolved path %q, got %q", index, deps[0].SourceFile)
	}
}

func TestDependencyResolver_InternalUnresolved(t *testing.T) {
	dir := t.TempDir()
	r := NewDependencyResolver(DependencyResolverConfig{})
	sf := &domain.SourceFile{
		Path:    filepath.Join(dir, "staging", "widget.ts"),
		Imports: []string{"./missing"},
	}
	deps := r.Resolve(sf)
	if deps[0].Resolved {
		t.Error("expected unresolved for a missing relative import")
	}
}

func TestPackageNameOf(t *testing.T) {
	cases := map[string]string{
		"react":              "react",
		"lodash/fp":          "lodash",
		"@scope/pkg":         "@scope/pkg",
		"@scope/pkg/sub/path": "@scope/pkg",
	}
	for spec, want := range cases {
		if got := packageNameOf(spec); got != want {
			t.Errorf("packageNameOf(%q) = %q, want %q", spec, got, want)
		}
	}
}
