package graph

import (
	"fmt"

	"github.com/forgeplan/forgeplan/internal/errors"
	"github.com/forgeplan/forgeplan/internal/feature"
)

// Analysis is the result of analyzing a built dependency graph.
type Analysis struct {
	// IsValid is true when no errors were found (warnings allowed)
	IsValid bool

	// Errors lists blocking problems: cycles and missing dependencies
	Errors []string

	// Warnings lists advisories that do not block planning
	Warnings []string

	// CriticalPath is the longest dependency chain, in dependency to
	// consumer order
	CriticalPath []string

	// MaxDepth is the maximum node depth in the graph
	MaxDepth int
}

// Analyze validates the built graph and computes its critical path.
//
// Cycle detection stops at the first cycle found; every missing dependency
// is reported. A high-complexity feature with no edges at all yields an
// orphan warning.
func (g *DependencyGraph) Analyze() (*Analysis, error) {
	if !g.built {
		return nil, errors.New(errors.ErrCodeGraphNotBuilt, "dependency graph analyzed before Build")
	}

	analysis := &Analysis{
		IsValid:  true,
		MaxDepth: g.MaxDepth(),
	}

	if cycle := g.detectCycle(); cycle != nil {
		analysis.Errors = append(analysis.Errors, errors.NewCycleError(cycle).Message)
	}

	for _, id := range g.order {
		node := g.nodes[id]
		for _, dep := range node.Feature.Dependencies {
			if dep == id {
				analysis.Errors = append(analysis.Errors,
					fmt.Sprintf("feature %q depends on itself", id))
				continue
			}
			if _, ok := g.nodes[dep]; !ok {
				analysis.Errors = append(analysis.Errors,
					errors.NewMissingDependencyError(id, dep).Message)
			}
		}

		if node.Feature.Complexity == feature.ComplexityHigh &&
			len(node.Dependencies) == 0 && len(node.Dependents) == 0 {
			analysis.Warnings = append(analysis.Warnings,
				fmt.Sprintf("feature %q is high complexity but fully isolated; verify it is really independent", id))
		}
	}

	analysis.CriticalPath = g.criticalPath()
	analysis.IsValid = len(analysis.Errors) == 0

	return analysis, nil
}

// detectCycle runs an iterative depth-first search with an explicit
// on-path marker and returns the first cycle found as a closed id sequence
// (first element repeated at the end), or nil for acyclic graphs.
func (g *DependencyGraph) detectCycle() []string {
	const (
		unvisited  = 0
		inProgress = 1
		done       = 2
	)

	state := make(map[string]int, len(g.nodes))

	type frame struct {
		id   string
		next int
	}

	for _, start := range g.order {
		if state[start] != unvisited {
			continue
		}

		stack := []frame{{id: start}}
		state[start] = inProgress

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := g.nodes[top.id]

			if top.next < len(node.Dependencies) {
				dep := node.Dependencies[top.next]
				top.next++

				switch state[dep] {
				case unvisited:
					state[dep] = inProgress
					stack = append(stack, frame{id: dep})
				case inProgress:
					// Revisited a node on the current path: slice the
					// cycle out of the explicit stack.
					cycle := []string{dep}
					take := false
					for _, fr := range stack {
						if fr.id == dep {
							take = true
							continue
						}
						if take {
							cycle = append(cycle, fr.id)
						}
					}
					return append(cycle, dep)
				}
				continue
			}

			state[top.id] = done
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}

// criticalPath returns the longest dependency chain by node count. Walks
// start from every node with no dependents; ties are broken by discovery
// order. The result runs from the deepest dependency to its final consumer.
func (g *DependencyGraph) criticalPath() []string {
	if len(g.order) == 0 {
		return nil
	}

	chainLen := make(map[string]int, len(g.nodes))
	bestNext := make(map[string]string, len(g.nodes))

	const (
		unvisited  = 0
		inProgress = 1
		done       = 2
	)
	state := make(map[string]int, len(g.nodes))

	for _, start := range g.order {
		if state[start] == done {
			continue
		}
		stack := []string{start}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			node := g.nodes[id]

			if state[id] == unvisited {
				state[id] = inProgress
				for _, dep := range node.Dependencies {
					if state[dep] == unvisited {
						stack = append(stack, dep)
					}
				}
				continue
			}

			stack = stack[:len(stack)-1]
			if state[id] == done {
				continue
			}
			best := 0
			for _, dep := range node.Dependencies {
				// Deps still on the path belong to a cycle and end the chain.
				if state[dep] == done && chainLen[dep] > best {
					best = chainLen[dep]
					bestNext[id] = dep
				}
			}
			chainLen[id] = best + 1
			state[id] = done
		}
	}

	// Pick the longest chain among terminal nodes, first wins on ties.
	var head string
	bestLen := -1
	for _, id := range g.order {
		if len(g.nodes[id].Dependents) != 0 {
			continue
		}
		if chainLen[id] > bestLen {
			bestLen = chainLen[id]
			head = id
		}
	}
	if bestLen < 0 {
		// Every node has dependents, which only happens with cycles.
		return nil
	}

	// Walk consumer -> dependency, then reverse.
	var path []string
	for id := head; id != ""; id = bestNext[id] {
		path = append(path, id)
		if _, ok := bestNext[id]; !ok {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
