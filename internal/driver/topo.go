package driver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/daisy-lang/daisy/internal/ast"
)

// DepGraph maps a module name to the names of the modules it imports.
type DepGraph map[string][]string

// buildDepGraph walks every loaded module's import statements, keeping
// only edges to modules that were actually resolved into the project
// (spec.md §4.I). Grounded on driver.py's _module_dep_graph.
func buildDepGraph(modules map[string]*ast.Module) DepGraph {
	graph := DepGraph{}
	for name, mod := range modules {
		var deps []string
		for _, stmt := range mod.Body {
			imp, ok := stmt.(*ast.ImportDecl)
			if !ok {
				continue
			}
			if _, exists := modules[imp.Path]; exists {
				deps = append(deps, imp.Path)
			}
		}
		graph[name] = deps
	}
	return graph
}

// CycleError reports a dependency cycle found during topological sort.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular module dependency: %s", strings.Join(e.Cycle, " -> "))
}

// topoSort orders a module graph dependencies-first via post-order DFS,
// matching the teacher's internal/link/topo.go TopoSortFromRoot shape
// (DFS with an in-path set for cycle detection), generalized here to sort
// every node reachable from the graph rather than a single root.
func topoSort(graph DepGraph) ([]string, error) {
	visited := map[string]bool{}
	inPath := map[string]bool{}
	var path []string
	var sorted []string

	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		if inPath[name] {
			cycle := append([]string{}, path...)
			for i, n := range cycle {
				if n == name {
					cycle = append(cycle[i:], name)
					break
				}
			}
			return &CycleError{Cycle: cycle}
		}
		inPath[name] = true
		path = append(path, name)
		for _, dep := range graph[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		inPath[name] = false
		visited[name] = true
		sorted = append(sorted, name)
		return nil
	}

	var names []string
	for name := range graph {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}
