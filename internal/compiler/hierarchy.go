package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/dexmatch/internal/ir"
)

// CycleWarning represents a cycle in the class hierarchy.
//
// A cycle makes every class on it unusable by the runtime, but the matcher
// still terminates on cyclic input, so cycles are warnings rather than
// compile errors.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["La;", "Lb;", "La;"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeHierarchy detects inheritance cycles among defined classes.
//
// Edges run from each class to its superclass and to every interface it
// implements. Tarjan's algorithm finds strongly connected components; each
// component with more than one class, or a class naming itself, is a cycle.
// Classes are visited in definition order so the output is deterministic.
func AnalyzeHierarchy(reg *ir.Registry) []CycleWarning {
	graph, order := buildHierarchyGraph(reg)

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// hierarchyGraph maps class descriptor → supertypes that are defined.
type hierarchyGraph map[string][]string

func buildHierarchyGraph(reg *ir.Registry) (hierarchyGraph, []string) {
	graph := make(hierarchyGraph)
	var order []string
	for _, cls := range reg.Classes() {
		name := cls.Name()
		order = append(order, name)
		graph[name] = []string{}
		supers := append([]*ir.Type{cls.Super}, cls.Interfaces...)
		for _, s := range supers {
			if s != nil && reg.TypeClass(s) != nil {
				graph[name] = append(graph[name], s.Name())
			}
		}
	}
	return graph, order
}

func hasSelfLoop(node string, graph hierarchyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(graph hierarchyGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// Root node: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleSCCToWarning(scc []string, graph hierarchyGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("class extends itself: %s → %s", name, name),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("inheritance cycle: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath walks SCC members from the last-popped node until it
// returns to the start.
func reconstructCyclePath(scc []string, graph hierarchyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[len(scc)-1]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
