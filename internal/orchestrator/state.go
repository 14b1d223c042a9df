package orchestrator

import (
	"context"
	"sort"
	"time"

	"github.com/forgeplan/forgeplan/internal/artifact"
)

// PersistenceStore is the durable side of a run. The orchestrator hands
// it completed artifacts and run state between phases; anything that must
// survive a process restart lives behind this interface, including the
// ability to resume a timed-out run.
type PersistenceStore interface {
	// SaveRunState persists the run's progress snapshot
	SaveRunState(ctx context.Context, state *RunState) error

	// SaveArtifacts persists a completed phase's artifacts
	SaveArtifacts(ctx context.Context, artifacts []artifact.Artifact) error
}

// RunState is the progress snapshot handed to the store after each
// completed phase. An external resumer can reconstruct where a run
// stopped from the completed phase and feature sets.
type RunState struct {
	RunID             string    `json:"run_id" yaml:"run_id"`
	CompletedPhases   []int     `json:"completed_phases" yaml:"completed_phases"`
	CompletedFeatures []string  `json:"completed_features" yaml:"completed_features"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewRunState builds a snapshot from the orchestrator's tracking sets,
// sorted for stable serialization.
func NewRunState(runID string, phases map[int]bool, features map[string]bool) *RunState {
	state := &RunState{
		RunID:     runID,
		UpdatedAt: time.Now(),
	}
	for seq := range phases {
		state.CompletedPhases = append(state.CompletedPhases, seq)
	}
	sort.Ints(state.CompletedPhases)
	for id := range features {
		state.CompletedFeatures = append(state.CompletedFeatures, id)
	}
	sort.Strings(state.CompletedFeatures)
	return state
}
