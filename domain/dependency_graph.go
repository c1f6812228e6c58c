package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ModuleType classifies how a dependency specifier resolves: relative
// to the staged file, an absolute path, a bare package name, a Node
// builtin, or a configured path alias.
type ModuleType string

const (
	ModuleTypeRelative ModuleType = "relative"
	ModuleTypeAbsolute ModuleType = "absolute"
	ModuleTypePackage  ModuleType = "package"
	ModuleTypeBuiltin  ModuleType = "builtin"
	ModuleTypeAlias    ModuleType = "alias"
)

// DependencyEdgeType represents the type of dependency relationship
type DependencyEdgeType string

const (
	// EdgeTypeImport represents static ES6/CommonJS import
	EdgeTypeImport DependencyEdgeType = "import"

	// EdgeTypeDynamic represents dynamic import()
	EdgeTypeDynamic DependencyEdgeType = "dynamic"

	// EdgeTypeTypeOnly represents TypeScript type-only import
	EdgeTypeTypeOnly DependencyEdgeType = "type_only"

	// EdgeTypeReExport represents export { } from
	EdgeTypeReExport DependencyEdgeType = "re_export"
)

// ModuleNode represents a node in the dependency graph
type ModuleNode struct {
	// ID is the unique identifier (normalized path)
	ID string `json:"id"`

	// Name is the module name (filename without extension)
	Name string `json:"name"`

	// FilePath is the full file path
	FilePath string `json:"file_path"`

	// ModuleType is the classification (relative, package, builtin, alias)
	ModuleType ModuleType `json:"module_type"`

	// IsExternal indicates if the module is not in the project (e.g., node_modules)
	IsExternal bool `json:"is_external"`

	// IsEntryPoint indicates if no other modules depend on this one
	IsEntryPoint bool `json:"is_entry_point"`

	// IsLeaf indicates if this module has no dependencies
	IsLeaf bool `json:"is_leaf"`

	// Exports lists the exported names from this module
	Exports []string `json:"exports,omitempty"`
}

// DependencyEdge represents a directed edge in the dependency graph
type DependencyEdge struct {
	// From is the source module ID
	From string `json:"from"`

	// To is the target module ID
	To string `json:"to"`

	// EdgeType is the type of dependency (import/dynamic/type_only/re_export)
	EdgeType DependencyEdgeType `json:"edge_type"`

	// Specifiers are the individual imported items
	Specifiers []string `json:"specifiers,omitempty"`

	// Location is the source code location of the import statement
	Location *SourceLocation `json:"location,omitempty"`

	// Weight is the number of uses (for coupling calculations)
	Weight int `json:"weight"`
}

// DependencyGraph represents the complete dependency graph
type DependencyGraph struct {
	// Nodes maps module ID to ModuleNode
	Nodes map[string]*ModuleNode `json:"nodes"`

	// Edges maps source module ID to its outgoing edges
	Edges map[string][]*DependencyEdge `json:"edges"`

	// ReverseEdges maps target module ID to incoming edges (for afferent coupling)
	ReverseEdges map[string][]*DependencyEdge `json:"-"`
}

// NewDependencyGraph creates a new empty DependencyGraph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Nodes:        make(map[string]*ModuleNode),
		Edges:        make(map[string][]*DependencyEdge),
		ReverseEdges: make(map[string][]*DependencyEdge),
	}
}

// AddNode adds a node to the graph
func (g *DependencyGraph) AddNode(node *ModuleNode) {
	if node == nil {
		return
	}
	g.Nodes[node.ID] = node
}

// AddEdge adds an edge to the graph and updates reverse edges
func (g *DependencyGraph) AddEdge(edge *DependencyEdge) {
	if edge == nil {
		return
	}
	g.Edges[edge.From] = append(g.Edges[edge.From], edge)
	g.ReverseEdges[edge.To] = append(g.ReverseEdges[edge.To], edge)
}

// GetNode returns a node by ID
func (g *DependencyGraph) GetNode(id string) *ModuleNode {
	return g.Nodes[id]
}

// GetOutgoingEdges returns all edges from a node (efferent)
func (g *DependencyGraph) GetOutgoingEdges(nodeID string) []*DependencyEdge {
	return g.Edges[nodeID]
}

// GetIncomingEdges returns all edges to a node (afferent)
func (g *DependencyGraph) GetIncomingEdges(nodeID string) []*DependencyEdge {
	return g.ReverseEdges[nodeID]
}

// NodeCount returns the number of nodes in the graph
func (g *DependencyGraph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the total number of edges in the graph
func (g *DependencyGraph) EdgeCount() int {
	count := 0
	for _, edges := range g.Edges {
		count += len(edges)
	}
	return count
}

// GetAllNodeIDs returns all node IDs in the graph
func (g *DependencyGraph) GetAllNodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	return ids
}

// UpdateNodeFlags updates IsEntryPoint and IsLeaf flags for all nodes
func (g *DependencyGraph) UpdateNodeFlags() {
	for _, node := range g.Nodes {
		// IsEntryPoint: no incoming edges (no dependents)
		node.IsEntryPoint = len(g.ReverseEdges[node.ID]) == 0

		// IsLeaf: no outgoing edges (no dependencies)
		node.IsLeaf = len(g.Edges[node.ID]) == 0
	}
}

// CycleError reports that TopologicalSort aborted on re-entering a node
// still on the DFS stack.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// TopologicalSort performs a depth-first post-order traversal with a
// stable lexicographic tie-break: independent nodes are visited in
// ascending filename order, and each node's dependencies are iterated
// in the same order. A node re-entered while still on the active stack
// means a cycle exists; the sort aborts with a *CycleError carrying the
// offending path (spec.md §4.5).
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	ids := g.GetAllNodeIDs()
	sort.Strings(ids)

	visited := make(map[string]bool, len(ids))
	onStack := make(map[string]bool, len(ids))
	stack := make([]string, 0, len(ids))
	order := make([]string, 0, len(ids))

	var visit func(id string) error
	visit = func(id string) error {
		if onStack[id] {
			cyclePath := append(append([]string{}, stack...), id)
			if idx := indexOf(stack, id); idx >= 0 {
				cyclePath = append(append([]string{}, stack[idx:]...), id)
			}
			return &CycleError{Cycle: cyclePath}
		}
		if visited[id] {
			return nil
		}

		onStack[id] = true
		stack = append(stack, id)

		deps := g.sortedDependencyIDs(id)
		for _, dep := range deps {
			if _, exists := g.Nodes[dep]; !exists {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, id := range ids {
		if !visited[id] {
			if err := visit(id); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// sortedDependencyIDs returns the lexicographically sorted set of
// distinct target node IDs that id has outgoing edges to.
func (g *DependencyGraph) sortedDependencyIDs(id string) []string {
	edges := g.Edges[id]
	seen := make(map[string]bool, len(edges))
	deps := make([]string, 0, len(edges))
	for _, e := range edges {
		if !seen[e.To] {
			seen[e.To] = true
			deps = append(deps, e.To)
		}
	}
	sort.Strings(deps)
	return deps
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// Cycle is one detected circular-dependency chain, canonicalized for
// deduplication by sorting its member node set.
type Cycle struct {
	Nodes       []string `json:"nodes"`
	Description string   `json:"description"`
}

// DetectCycles runs a second, separate DFS from TopologicalSort that
// tracks the active stack as a path; on a back-edge to a node still on
// the stack, it extracts the subpath from the re-entry point as the
// cycle, canonicalizes it by sorting the node set for dedup, and
// records a human-readable "a → b → c → a" description (spec.md
// §4.5). Unlike TopologicalSort, this never aborts early: it keeps
// searching so every cycle in the graph is reported, not just the
// first one found.
func (g *DependencyGraph) DetectCycles() []Cycle {
	ids := g.GetAllNodeIDs()
	sort.Strings(ids)

	visited := make(map[string]bool, len(ids))
	onStack := make(map[string]bool, len(ids))
	stack := make([]string, 0, len(ids))
	seenCycles := make(map[string]bool)
	var cycles []Cycle

	var visit func(id string)
	visit = func(id string) {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, dep := range g.sortedDependencyIDs(id) {
			if _, exists := g.Nodes[dep]; !exists {
				continue
			}
			if onStack[dep] {
				idx := indexOf(stack, dep)
				if idx >= 0 {
					cyclePath := append([]string{}, stack[idx:]...)
					cyclePath = append(cyclePath, dep)
					key := canonicalCycleKey(cyclePath)
					if !seenCycles[key] {
						seenCycles[key] = true
						cycles = append(cycles, Cycle{
							Nodes:       cyclePath,
							Description: strings.Join(cyclePath, " → "),
						})
					}
				}
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[id] = false
	}

	for _, id := range ids {
		if !visited[id] {
			visit(id)
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Description < cycles[j].Description })
	return cycles
}

// canonicalCycleKey sorts the (deduplicated, endpoint-stripped) node set
// of a cycle so that the same cycle found from different entry points
// dedupes to one record.
func canonicalCycleKey(path []string) string {
	members := append([]string{}, path[:len(path)-1]...)
	sort.Strings(members)
	return strings.Join(members, ",")
}

// GraphReport is the plain JSON view `refit graph` emits: the built
// graph plus whatever cycles DetectCycles found, without the
// risk/coupling analysis machinery the teacher's deps command used
// (see DESIGN.md on why that machinery was cut instead of ported).
type GraphReport struct {
	Graph   *DependencyGraph `json:"graph"`
	Cycles  []Cycle          `json:"cycles,omitempty"`
	Order   []string         `json:"topological_order,omitempty"`
	Sortable bool            `json:"sortable"`
}
