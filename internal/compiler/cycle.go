package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/dimcheck/internal/ir"
)

// CycleError reports expressions that depend on themselves.
// A model with a cycle has no evaluation order, so cycles are errors.
type CycleError struct {
	Path    []string `json:"path"`    // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
	Code    string   `json:"code"`
}

func (e CycleError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// AnalyzeCycles finds dependency cycles among a model's expressions.
//
// The algorithm:
//  1. Build expression → expression-operand dependency graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// Nodes are visited in declaration order so reports are stable.
// A DAG returns an empty list.
func AnalyzeCycles(m *ir.Model) []CycleError {
	if len(m.Expressions) == 0 {
		return []CycleError{}
	}

	graph, order := buildDependencyGraph(m)
	sccs := tarjanSCC(graph, order)

	cycles := []CycleError{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, cycleSCCToError(scc, graph))
		}
	}
	return cycles
}

// dependencyGraph maps expression name → expressions it reads.
type dependencyGraph map[string][]string

// buildDependencyGraph links each expression to the args that are themselves
// expressions. Variables are leaves and never appear as nodes.
func buildDependencyGraph(m *ir.Model) (dependencyGraph, []string) {
	graph := make(dependencyGraph)
	order := make([]string, 0, len(m.Expressions))

	isExpr := make(map[string]bool)
	for _, e := range m.Expressions {
		isExpr[e.Name] = true
	}

	for _, e := range m.Expressions {
		if _, seen := graph[e.Name]; !seen {
			order = append(order, e.Name)
			graph[e.Name] = []string{}
		}
		for _, arg := range e.Args {
			if isExpr[arg] {
				graph[e.Name] = append(graph[e.Name], arg)
			}
		}
	}

	return graph, order
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph, order []string) [][]string {
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

		// Root node: pop the stack into an SCC.
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

// cycleSCCToError converts an SCC to a CycleError.
func cycleSCCToError(scc []string, graph dependencyGraph) CycleError {
	if len(scc) == 1 {
		name := scc[0]
		return CycleError{
			Path:    []string{name, name},
			Message: fmt.Sprintf("expression uses itself as an operand: %s → %s", name, name),
			Code:    ErrExpressionCycle,
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleError{
		Path:    path,
		Message: fmt.Sprintf("dependency cycle: %s", strings.Join(path, " → ")),
		Code:    ErrExpressionCycle,
	}
}

// reconstructCyclePath starts at the SCC root (the member the search reached
// first, popped last) and follows edges inside the SCC back to it.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
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
