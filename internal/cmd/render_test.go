package cmd

import (
	"strings"
	"testing"

	"github.com/forgeplan/forgeplan/internal/feature"
	"github.com/forgeplan/forgeplan/internal/graph"
	"github.com/forgeplan/forgeplan/internal/planner"
)

func TestRenderAnalysis(t *testing.T) {
	g := graph.New()
	g.Build([]feature.Feature{
		{ID: "database", Name: "Database", EstimatedWorkUnits: 4},
		{ID: "auth", Name: "Auth", Dependencies: []string{"database"}, EstimatedWorkUnits: 6},
	})
	analysis, err := g.Analyze()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := renderAnalysis(analysis)
	if !strings.Contains(out, "Dependency Analysis") {
		t.Errorf("missing title in output: %s", out)
	}
	if !strings.Contains(out, "Max Depth") {
		t.Errorf("missing max depth in output: %s", out)
	}
	if !strings.Contains(out, "database") || !strings.Contains(out, "auth") {
		t.Errorf("missing critical path nodes in output: %s", out)
	}
}

func TestRenderAnalysisWithErrors(t *testing.T) {
	g := graph.New()
	g.Build([]feature.Feature{
		{ID: "f1", Dependencies: []string{"f2"}},
		{ID: "f2", Dependencies: []string{"f1"}},
	})
	analysis, err := g.Analyze()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := renderAnalysis(analysis)
	if !strings.Contains(out, "Circular") {
		t.Errorf("expected cycle error in output: %s", out)
	}
}

func TestRenderPlan(t *testing.T) {
	p, err := planner.New(planner.DefaultCapacity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plan, err := p.PlanFeatures([]feature.Feature{
		{ID: "database", Name: "Database", EstimatedWorkUnits: 4},
		{ID: "auth", Name: "Auth", Dependencies: []string{"database"}, EstimatedWorkUnits: 6, RequiredAPIs: []string{"oauth"}},
	}, []string{"postgres"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := renderPlan(plan)
	for _, want := range []string{"Phase Plan", "Phase 1", "Database", "Auth", "oauth", "postgres", plan.EstimatedTimeline} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in rendered plan:\n%s", want, out)
		}
	}
}
