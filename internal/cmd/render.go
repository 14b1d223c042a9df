package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/forgeplan/forgeplan/internal/graph"
	"github.com/forgeplan/forgeplan/internal/planner"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("2"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
)

// renderAnalysis formats a dependency analysis for terminal display.
func renderAnalysis(analysis *graph.Analysis) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("🔍 Dependency Analysis") + "\n\n")

	if analysis.IsValid {
		s.WriteString(okStyle.Render("✓ No dependency problems found") + "\n")
	} else {
		for _, e := range analysis.Errors {
			s.WriteString(errStyle.Render("✗ "+e) + "\n")
		}
	}
	for _, w := range analysis.Warnings {
		s.WriteString(warnStyle.Render("! "+w) + "\n")
	}

	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Max Depth:     %s\n", headerStyle.Render(fmt.Sprintf("%d", analysis.MaxDepth))))
	if len(analysis.CriticalPath) > 0 {
		s.WriteString(fmt.Sprintf("Critical Path: %s\n", headerStyle.Render(strings.Join(analysis.CriticalPath, " → "))))
	}

	return s.String()
}

// renderPlan formats a phase plan for terminal display.
func renderPlan(plan *planner.Plan) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("📋 Phase Plan") + "\n\n")

	s.WriteString(fmt.Sprintf("Plan ID:        %s\n", labelStyle.Render(plan.ID)))
	s.WriteString(fmt.Sprintf("Total Features: %s\n", headerStyle.Render(fmt.Sprintf("%d", plan.TotalFeatures))))
	s.WriteString(fmt.Sprintf("Total Work:     %s units\n", headerStyle.Render(fmt.Sprintf("%d", plan.TotalWorkUnits))))
	s.WriteString(fmt.Sprintf("Timeline:       %s\n\n", headerStyle.Render(plan.EstimatedTimeline)))

	for i := range plan.Phases {
		phase := &plan.Phases[i]

		s.WriteString(headerStyle.Render(phase.Name) + " ")
		s.WriteString(labelStyle.Render(fmt.Sprintf("(%d units, %s)", phase.TotalWorkUnits, phase.EstimatedDuration)))
		s.WriteString("\n")

		for _, f := range phase.Features {
			line := fmt.Sprintf("  • %s", f.Name)
			if len(f.Dependencies) > 0 {
				line += labelStyle.Render(fmt.Sprintf("  needs: %s", strings.Join(f.Dependencies, ", ")))
			}
			s.WriteString(line + "\n")
		}
		for _, a := range phase.Artifacts {
			s.WriteString(fmt.Sprintf("  • %s\n", a.Path))
		}
		if len(phase.DependsOn) > 0 {
			s.WriteString(labelStyle.Render(fmt.Sprintf("  after: %s", strings.Join(phase.DependsOn, ", "))) + "\n")
		}
		s.WriteString("\n")
	}

	if len(plan.ExternalAPIs) > 0 {
		s.WriteString(labelStyle.Render("External APIs: ") + strings.Join(plan.ExternalAPIs, ", ") + "\n")
	}
	if len(plan.DataEntities) > 0 {
		s.WriteString(labelStyle.Render("Data Entities: ") + strings.Join(plan.DataEntities, ", ") + "\n")
	}
	if len(plan.RequiredResources) > 0 {
		s.WriteString(labelStyle.Render("Resources:     ") + strings.Join(plan.RequiredResources, ", ") + "\n")
	}

	return s.String()
}
