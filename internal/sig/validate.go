package sig

import (
	"fmt"
	"strings"
)

// Problem is one defect found by Validate.
type Problem struct {
	Path    []string `json:"path,omitempty"` // cycle path: ["a", "b", "a"]
	Message string   `json:"message"`
}

// ValidationError aggregates the problems found in a graph.
type ValidationError struct {
	Problems []Problem
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Message
	}
	return "invalid signal graph: " + strings.Join(msgs, "; ")
}

// Validate checks the graph before the loop starts. Evaluation never guards
// against cycles, so a cycle reported here would recurse without bound.
//
// The algorithm:
//  1. Build the node → upstream dependency graph from each evaluator
//  2. Report unregistered nodes and dangling upstream handles
//  3. Use Tarjan's algorithm to find strongly connected components
//  4. Report each SCC with size > 1 or a self-loop as a cycle
//
// Returns nil for a well-formed DAG.
func (g *Graph[T]) Validate() error {
	var problems []Problem
	deps := make(map[Ref][]Ref, len(g.nodes))

	for _, ref := range g.Refs() {
		node := g.Node(ref)
		if node == nil {
			problems = append(problems, Problem{Message: fmt.Sprintf("node %s is nil", g.label(ref))})
			continue
		}
		deps[ref] = nil
		if node.Eval == nil {
			continue
		}
		for _, up := range node.Eval.Upstream() {
			if g.Node(up) == nil {
				problems = append(problems, Problem{
					Message: fmt.Sprintf("node %s references unknown node %s", g.label(ref), g.label(up)),
				})
				continue
			}
			deps[ref] = append(deps[ref], up)
		}
	}

	for _, scc := range tarjanSCC(g.Refs(), deps) {
		if len(scc) > 1 || hasSelfLoop(scc[0], deps) {
			path := g.cyclePath(scc, deps)
			problems = append(problems, Problem{
				Path:    path,
				Message: "cycle detected: " + strings.Join(path, " → "),
			})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func (g *Graph[T]) label(ref Ref) string {
	if node := g.Node(ref); node != nil && node.Name != "" {
		return node.Name
	}
	return fmt.Sprintf("#%d", ref)
}

func hasSelfLoop(ref Ref, deps map[Ref][]Ref) bool {
	for _, up := range deps[ref] {
		if up == ref {
			return true
		}
	}
	return false
}

// tarjanSCC visits nodes in registration order so results are deterministic.
func tarjanSCC(order []Ref, deps map[Ref][]Ref) [][]Ref {
	var (
		index   = 0
		stack   []Ref
		indices = make(map[Ref]int)
		lowlink = make(map[Ref]int)
		onStack = make(map[Ref]bool)
		sccs    [][]Ref
	)

	var strongConnect func(Ref)
	strongConnect = func(v Ref) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range deps[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []Ref
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

	for _, ref := range order {
		if _, ok := deps[ref]; !ok {
			continue
		}
		if _, visited := indices[ref]; !visited {
			strongConnect(ref)
		}
	}
	return sccs
}

// cyclePath searches depth-first inside the SCC from its first member until
// an edge returns to the start. Edges are tried in upstream order and dead
// ends are backtracked, so the path always closes.
func (g *Graph[T]) cyclePath(scc []Ref, deps map[Ref][]Ref) []string {
	members := make(map[Ref]bool, len(scc))
	for _, ref := range scc {
		members[ref] = true
	}

	start := scc[0]
	visited := make(map[Ref]bool)

	var walk func(Ref) []Ref
	walk = func(current Ref) []Ref {
		visited[current] = true
		for _, up := range deps[current] {
			if up == start {
				return []Ref{current, start}
			}
			if !members[up] || visited[up] {
				continue
			}
			if rest := walk(up); rest != nil {
				return append([]Ref{current}, rest...)
			}
		}
		return nil
	}

	cycle := walk(start)
	path := make([]string, len(cycle))
	for i, ref := range cycle {
		path[i] = g.label(ref)
	}
	return path
}
