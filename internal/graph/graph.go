// Package graph builds and analyzes the feature dependency graph: depth
// computation, cycle detection, critical path and readiness queries.
//
// A DependencyGraph is owned by a single orchestration run. It is fully
// rebuilt on every Build call; there is no incremental update.
package graph

import (
	"sort"

	"github.com/forgeplan/forgeplan/internal/errors"
	"github.com/forgeplan/forgeplan/internal/feature"
)

// Node is a feature plus its resolved edges and computed depth.
type Node struct {
	Feature feature.Feature

	// Dependencies holds ids of features this node depends on that exist
	// in the active set. Declared ids absent from the set are excluded
	// here and surfaced by Analyze instead.
	Dependencies []string

	// Dependents holds ids of features that depend on this node.
	Dependents []string

	// Depth is the longest dependency chain below this node:
	// 0 with no dependencies, otherwise 1 + max depth of dependencies.
	Depth int
}

// DependencyGraph holds the node graph for one feature set.
type DependencyGraph struct {
	nodes map[string]*Node
	order []string // feature ids in discovery (input) order
	built bool
}

// New creates an empty graph. Build must be called before any query.
func New() *DependencyGraph {
	return &DependencyGraph{}
}

// Build constructs the node graph from the given features: one node per
// feature, forward and back edges for dependency ids present in the set,
// and a memoized depth per node. Building twice from the same input yields
// an identical graph.
func (g *DependencyGraph) Build(features []feature.Feature) {
	g.nodes = make(map[string]*Node, len(features))
	g.order = make([]string, 0, len(features))

	for _, f := range features {
		g.nodes[f.ID] = &Node{Feature: f}
		g.order = append(g.order, f.ID)
	}

	for _, id := range g.order {
		node := g.nodes[id]
		for _, dep := range node.Feature.Dependencies {
			if dep == id {
				// Self-edges would corrupt depth computation; Analyze
				// reports them as errors.
				continue
			}
			target, ok := g.nodes[dep]
			if !ok {
				// Unknown ids are ignored for ordering and reported
				// by Analyze.
				continue
			}
			node.Dependencies = append(node.Dependencies, dep)
			target.Dependents = append(target.Dependents, id)
		}
	}

	g.computeDepths()
	g.built = true
}

// computeDepths assigns each node's depth with an explicit stack and a
// three-state marker, so cyclic inputs terminate instead of recursing
// forever. A node on the current path contributes depth 0 to its consumers;
// Analyze reports the cycle itself.
func (g *DependencyGraph) computeDepths() {
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

			// All reachable dependencies settled (or on the path).
			stack = stack[:len(stack)-1]
			if state[id] == done {
				continue
			}
			depth := 0
			for _, dep := range node.Dependencies {
				if state[dep] == done && g.nodes[dep].Depth+1 > depth {
					depth = g.nodes[dep].Depth + 1
				}
			}
			node.Depth = depth
			state[id] = done
		}
	}
}

// Node returns the node for a feature id, or nil if absent.
func (g *DependencyGraph) Node(id string) *Node {
	return g.nodes[id]
}

// Len returns the number of nodes in the graph.
func (g *DependencyGraph) Len() int {
	return len(g.nodes)
}

// MaxDepth returns the maximum node depth computed during Build.
func (g *DependencyGraph) MaxDepth() int {
	max := 0
	for _, node := range g.nodes {
		if node.Depth > max {
			max = node.Depth
		}
	}
	return max
}

// ReadyFeatures returns the features not yet completed whose full dependency
// set is contained in completed, ordered ascending by priority and stable on
// ties. Declared dependencies missing from the active set do not block
// readiness.
func (g *DependencyGraph) ReadyFeatures(completed map[string]bool) ([]feature.Feature, error) {
	if !g.built {
		return nil, errors.New(errors.ErrCodeGraphNotBuilt, "dependency graph queried before Build")
	}

	var ready []feature.Feature
	for _, id := range g.order {
		if completed[id] {
			continue
		}
		node := g.nodes[id]
		satisfied := true
		for _, dep := range node.Dependencies {
			if !completed[dep] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, node.Feature)
		}
	}

	sort.SliceStable(ready, func(i, j int) bool {
		return ready[i].Priority < ready[j].Priority
	})

	return ready, nil
}
