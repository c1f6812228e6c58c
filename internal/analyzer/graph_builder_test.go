package analyzer

import (
	"testing"

	"github.com/ludo-technologies/refit/domain"
)

func TestBuildGraph_EdgesOnlyForResolvedInternalDeps(t *testing.T) {
	a := &domain.SourceFile{
		Path: "staging/a.ts",
		Dependencies: []domain.Dependency{
			{Specifier: "./b", External: false, Resolved: true, SourceFile: "staging/b.ts"},
			{Specifier: "react", External: true, Resolved: true},
			{Specifier: "./missing", External: false, Resolved: false},
		},
	}
	b := &domain.SourceFile{Path: "staging/b.ts"}

	g := BuildGraph([]*domain.SourceFile{a, b})

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}

	edges := g.GetOutgoingEdges("staging/a.ts")
	if len(edges) != 1 || edges[0].To != "staging/b.ts" {
		t.Fatalf("expected single edge a->b, got %+v", edges)
	}
}

func TestBuildGraph_IgnoresDependencyOutsideStagedSet(t *testing.T) {
	a := &domain.SourceFile{
		Path: "staging/a.ts",
		Dependencies: []domain.Dependency{
			{Specifier: "../shared/c", External: false, Resolved: true, SourceFile: "shared/c.ts"},
		},
	}

	g := BuildGraph([]*domain.SourceFile{a})
	if g.EdgeCount() != 0 {
		t.Errorf("expected no edges for a dependency outside the staged set, got %d", g.EdgeCount())
	}
}

func TestBuildGraph_NodeFlags(t *testing.T) {
	a := &domain.SourceFile{
		Path: "staging/a.ts",
		Dependencies: []domain.Dependency{
			{Specifier: "./b", External: false, Resolved: true, SourceFile: "staging/b.ts"},
		},
	}
	b := &domain.SourceFile{Path: "staging/b.ts"}

	g := BuildGraph([]*domain.SourceFile{a, b})

	nodeA := g.GetNode("staging/a.ts")
	nodeB := g.GetNode("staging/b.ts")

	if !nodeA.IsEntryPoint {
		t.Error("expected a to be an entry point (nothing depends on it)")
	}
	if nodeA.IsLeaf {
		t.Error("expected a not to be a leaf (it has an outgoing edge)")
	}
	if nodeB.IsEntryPoint {
		t.Error("expected b not to be an entry point (a depends on it)")
	}
	if !nodeB.IsLeaf {
		t.Error("expected b to be a leaf (no outgoing edges)")
	}
}

func TestBuildGraph_ExportsCarriedOntoNode(t *testing.T) {
	a := &domain.SourceFile{
		Path:    "staging/a.ts",
		Exports: []domain.NamedExport{{Name: "foo", Kind: domain.ExportKindFunction}},
	}
	g := BuildGraph([]*domain.SourceFile{a})
	node := g.GetNode("staging/a.ts")
	if len(node.Exports) != 1 || node.Exports[0] != "foo" {
		t.Errorf("expected exports [foo], got %v", node.Exports)
	}
}
