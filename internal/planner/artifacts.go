package planner

import (
	"github.com/google/uuid"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/errors"
)

// BreakdownIntoPhases plans a flat artifact list without a feature graph.
// Artifacts are classified by path into roles and assembled in fixed
// priority order: foundation and shared utilities first, then behavioral
// units padded with a bounded slice of UI units, then everything left,
// chunked strictly by capacity. Each phase after the first declares a single
// linear dependency on its predecessor.
func (p *Planner) BreakdownIntoPhases(artifacts []artifact.Artifact) (*Plan, error) {
	if len(artifacts) == 0 {
		return nil, errors.New(errors.ErrCodePlanEmpty, "no artifacts to plan")
	}

	buckets := map[artifact.Role][]artifact.Artifact{}
	for _, a := range artifacts {
		role := artifact.Classify(a.Path)
		buckets[role] = append(buckets[role], a)
	}

	// Stage 1: foundation and shared utilities.
	stage1 := append(append([]artifact.Artifact{}, buckets[artifact.RoleFoundation]...),
		buckets[artifact.RoleUtility]...)

	// Stage 2: behavioral units plus as many UI units as capacity allows.
	behavioral := buckets[artifact.RoleBehavior]
	ui := buckets[artifact.RoleUIUnit]
	uiSlice := p.capacity - len(behavioral)
	if uiSlice < 0 {
		uiSlice = 0
	}
	if uiSlice > len(ui) {
		uiSlice = len(ui)
	}
	stage2 := append(append([]artifact.Artifact{}, behavioral...), ui[:uiSlice]...)

	// Stage 3: everything else, chunked strictly by capacity.
	stage3 := append(append(append([]artifact.Artifact{}, ui[uiSlice:]...),
		buckets[artifact.RolePage]...), buckets[artifact.RoleEndpoint]...)

	var phases []Phase
	addChunks := func(stage []artifact.Artifact) {
		for len(stage) > 0 {
			n := len(stage)
			if n > p.capacity {
				n = p.capacity
			}
			chunk := stage[:n]
			stage = stage[n:]
			phases = append(phases, p.newPhase(len(phases)+1, nil, chunk, len(chunk)))
		}
	}
	addChunks(stage1)
	addChunks(stage2)
	addChunks(stage3)

	plan := &Plan{
		ID:                uuid.NewString(),
		Phases:            phases,
		TotalFeatures:     len(artifacts),
		TotalWorkUnits:    len(artifacts),
		EstimatedTimeline: estimateTimeline(phases),
	}

	return plan, nil
}
