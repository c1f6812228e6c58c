package analyzer

import (
	"path/filepath"

	"github.com/ludo-technologies/refit/domain"
)

// BuildGraph constructs a node-per-staged-file, edge-per-internal-
// dependency graph (spec.md §3/§4.5). An edge u→v exists only when a
// resolved internal dependency of u lands on another file in files;
// external dependencies and internal dependencies that resolve
// outside the staged set yield no edges.
func BuildGraph(files []*domain.SourceFile) *domain.DependencyGraph {
	g := domain.NewDependencyGraph()

	byPath := make(map[string]*domain.SourceFile, len(files))
	for _, sf := range files {
		byPath[cleanPath(sf.Path)] = sf
	}

	for _, sf := range files {
		g.AddNode(nodeFor(sf))
	}

	for _, sf := range files {
		from := cleanPath(sf.Path)
		for _, dep := range sf.Dependencies {
			if dep.External || !dep.Resolved {
				continue
			}
			to := cleanPath(dep.SourceFile)
			if _, ok := byPath[to]; !ok {
				continue
			}
			g.AddEdge(&domain.DependencyEdge{
				From:     from,
				To:       to,
				EdgeType: domain.EdgeTypeImport,
				Weight:   1,
			})
		}
	}

	g.UpdateNodeFlags()
	return g
}

func nodeFor(sf *domain.SourceFile) *domain.ModuleNode {
	exports := make([]string, 0, len(sf.Exports))
	for _, e := range sf.Exports {
		exports = append(exports, e.Name)
	}
	return &domain.ModuleNode{
		ID:         cleanPath(sf.Path),
		Name:       sf.Stem(),
		FilePath:   sf.Path,
		ModuleType: domain.ModuleTypeRelative,
		Exports:    exports,
	}
}

func cleanPath(p string) string {
	if p == "" {
		return p
	}
	return filepath.Clean(p)
}
