// Package planner turns dependency-ordered features or flat artifact lists
// into capacity-bounded execution phases and aggregates them into a plan.
package planner

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/errors"
	"github.com/forgeplan/forgeplan/internal/feature"
)

// DefaultCapacity is the default number of work units per phase.
const DefaultCapacity = 20

// Phase is an ordered, capacity-bounded batch of features or artifacts
// built and validated together. Phases are immutable once planned.
type Phase struct {
	// Sequence is the 1-based, contiguous phase number
	Sequence int `json:"sequence"`

	// Name labels the phase for humans
	Name string `json:"name"`

	// Features holds the phase's features, in dependency-respecting order
	// (feature-planning mode)
	Features []feature.Feature `json:"features,omitempty"`

	// Artifacts holds the phase's artifact placeholders, in planned order
	// (artifact-planning mode)
	Artifacts []artifact.Artifact `json:"artifacts,omitempty"`

	// TotalWorkUnits is the phase cost; at most the capacity except for
	// a singleton phase carrying one over-capacity feature
	TotalWorkUnits int `json:"total_work_units"`

	// EstimatedDuration is a coarse duration bucket derived from the
	// phase's total work units
	EstimatedDuration string `json:"estimated_duration"`

	// DependsOn names the phases that must complete first
	DependsOn []string `json:"depends_on"`

	// ReadyToStart is true only for phase 1 at planning time; later
	// phases become ready as predecessors complete
	ReadyToStart bool `json:"ready_to_start"`
}

// ExpectedArtifacts returns how many artifacts the phase should produce.
func (p *Phase) ExpectedArtifacts() int {
	if len(p.Artifacts) > 0 {
		return len(p.Artifacts)
	}
	return p.TotalWorkUnits
}

// Plan is the complete output of planning: phases plus aggregate totals.
type Plan struct {
	ID                string   `json:"id"`
	Phases            []Phase  `json:"phases"`
	TotalFeatures     int      `json:"total_features"`
	TotalWorkUnits    int      `json:"total_work_units"`
	EstimatedTimeline string   `json:"estimated_timeline"`
	ExternalAPIs      []string `json:"external_apis,omitempty"`
	DataEntities      []string `json:"data_entities,omitempty"`

	// RequiredResources lists third-party resource requirements detected
	// by an external catalog, not derived from the graph
	RequiredResources []string `json:"required_resources,omitempty"`
}

// Planner produces phase plans. The zero value is not usable; construct
// with New.
type Planner struct {
	capacity int
}

// New creates a Planner with the given work-unit capacity per phase.
func New(capacity int) (*Planner, error) {
	if capacity <= 0 {
		return nil, errors.New(errors.ErrCodePlanInvalidCap,
			fmt.Sprintf("phase capacity must be positive, got %d", capacity))
	}
	return &Planner{capacity: capacity}, nil
}

// Capacity returns the planner's work-unit capacity per phase.
func (p *Planner) Capacity() int {
	return p.capacity
}

// TopologicalSort orders features so every feature follows the dependencies
// that exist in the set. A cycle aborts planning with a fatal error; no
// partial order is returned.
func (p *Planner) TopologicalSort(features []feature.Feature) ([]feature.Feature, error) {
	byID := make(map[string]*feature.Feature, len(features))
	for i := range features {
		byID[features[i].ID] = &features[i]
	}

	const (
		unvisited  = 0
		inProgress = 1
		done       = 2
	)
	state := make(map[string]int, len(features))
	ordered := make([]feature.Feature, 0, len(features))

	for _, f := range features {
		if state[f.ID] != unvisited {
			continue
		}

		stack := []frame{{id: f.ID}}
		state[f.ID] = inProgress

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := byID[top.id].Dependencies

			advanced := false
			for top.next < len(deps) {
				dep := deps[top.next]
				top.next++

				if dep == top.id {
					continue
				}
				if _, ok := byID[dep]; !ok {
					// Ids outside the active set don't constrain ordering.
					continue
				}
				switch state[dep] {
				case unvisited:
					state[dep] = inProgress
					stack = append(stack, frame{id: dep})
					advanced = true
				case inProgress:
					cycle := cycleFromStack(stack, dep)
					return nil, errors.New(errors.ErrCodePlanCyclicDep,
						fmt.Sprintf("Circular dependency aborts planning: %s", joinArrow(cycle)))
				}
				if advanced {
					break
				}
			}
			if advanced {
				continue
			}

			state[top.id] = done
			ordered = append(ordered, *byID[top.id])
			stack = stack[:len(stack)-1]
		}
	}

	return ordered, nil
}

// GroupIntoPhases bins ordered features greedily: the current phase keeps
// absorbing features while the running total stays within capacity. A
// feature costing more than the capacity becomes a singleton phase rather
// than being dropped.
func (p *Planner) GroupIntoPhases(ordered []feature.Feature) []Phase {
	var phases []Phase
	var current []feature.Feature
	currentUnits := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		phases = append(phases, p.newPhase(len(phases)+1, current, nil, currentUnits))
		current = nil
		currentUnits = 0
	}

	for _, f := range ordered {
		units := f.EstimatedWorkUnits
		if currentUnits+units > p.capacity && len(current) > 0 {
			flush()
		}
		current = append(current, f)
		currentUnits += units
	}
	flush()

	return phases
}

// PlanFeatures runs the full feature-planning pipeline: topological sort,
// capacity binning and aggregation. detectedResources carries externally
// detected third-party requirements straight through to the plan.
func (p *Planner) PlanFeatures(features []feature.Feature, detectedResources []string) (*Plan, error) {
	if len(features) == 0 {
		return nil, errors.New(errors.ErrCodePlanEmpty, "no features to plan")
	}

	ordered, err := p.TopologicalSort(features)
	if err != nil {
		return nil, err
	}

	phases := p.GroupIntoPhases(ordered)

	plan := &Plan{
		ID:                uuid.NewString(),
		Phases:            phases,
		TotalFeatures:     len(ordered),
		RequiredResources: append([]string(nil), detectedResources...),
	}

	apiSet := map[string]bool{}
	entitySet := map[string]bool{}
	for _, f := range ordered {
		plan.TotalWorkUnits += f.EstimatedWorkUnits
		for _, api := range f.RequiredAPIs {
			if !apiSet[api] {
				apiSet[api] = true
				plan.ExternalAPIs = append(plan.ExternalAPIs, api)
			}
		}
		for _, entity := range f.DataEntities {
			if !entitySet[entity] {
				entitySet[entity] = true
				plan.DataEntities = append(plan.DataEntities, entity)
			}
		}
	}
	sort.Strings(plan.ExternalAPIs)
	sort.Strings(plan.DataEntities)

	plan.EstimatedTimeline = estimateTimeline(phases)

	return plan, nil
}

func (p *Planner) newPhase(sequence int, features []feature.Feature, artifacts []artifact.Artifact, units int) Phase {
	phase := Phase{
		Sequence:          sequence,
		Name:              fmt.Sprintf("Phase %d", sequence),
		Features:          features,
		Artifacts:         artifacts,
		TotalWorkUnits:    units,
		EstimatedDuration: durationBucket(units),
		ReadyToStart:      sequence == 1,
	}
	if sequence > 1 {
		phase.DependsOn = []string{fmt.Sprintf("Phase %d", sequence-1)}
	}
	return phase
}

// durationBucket maps a phase's work units to a coarse wall-clock estimate.
func durationBucket(units int) string {
	switch {
	case units <= 5:
		return "10-15 minutes"
	case units <= 10:
		return "15-25 minutes"
	case units <= 20:
		return "25-40 minutes"
	default:
		return "40-60 minutes"
	}
}

// bucketUpperMinutes is the upper bound used for timeline estimates.
func bucketUpperMinutes(units int) int {
	switch {
	case units <= 5:
		return 15
	case units <= 10:
		return 25
	case units <= 20:
		return 40
	default:
		return 60
	}
}

// estimateTimeline sums each phase's upper-bound minutes, switching to
// hours at or beyond one hour.
func estimateTimeline(phases []Phase) string {
	minutes := 0
	for _, phase := range phases {
		minutes += bucketUpperMinutes(phase.TotalWorkUnits)
	}
	if minutes >= 60 {
		hours := float64(minutes) / 60
		return fmt.Sprintf("~%.1f hours", hours)
	}
	return fmt.Sprintf("~%d minutes", minutes)
}

// frame is one entry of the explicit depth-first traversal stack.
type frame struct {
	id   string
	next int
}

// cycleFromStack slices the cycle out of the traversal stack, closed with
// the repeated start id.
func cycleFromStack(stack []frame, start string) []string {
	cycle := []string{start}
	take := false
	for _, fr := range stack {
		if fr.id == start {
			take = true
			continue
		}
		if take {
			cycle = append(cycle, fr.id)
		}
	}
	return append(cycle, start)
}

func joinArrow(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}
