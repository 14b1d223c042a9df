package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeplan/forgeplan/internal/feature"
	"github.com/forgeplan/forgeplan/internal/graph"
	"github.com/forgeplan/forgeplan/internal/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Analyze features and render the phase plan",
	Long: `Analyze a feature file's dependency graph and produce a capacity-bounded
phase plan.

The analysis reports cycles, missing dependencies, the critical path and
the maximum dependency depth. Planning fails on any dependency cycle; no
partial plan is produced.`,
	RunE: runPlan,
}

var (
	planFeaturesPath string
	planCapacity     int
	planJSON         bool
)

func init() {
	planCmd.Flags().StringVarP(&planFeaturesPath, "features", "f", "", "feature file (YAML)")
	planCmd.Flags().IntVarP(&planCapacity, "capacity", "c", planner.DefaultCapacity, "work units per phase")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "output plan as JSON")
	_ = planCmd.MarkFlagRequired("features")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	in, err := loadFeatureFile(planFeaturesPath, feature.DefaultCatalog())
	if err != nil {
		return err
	}
	features, artifacts := in.Features, in.Artifacts

	capacity := planCapacity
	if in.Capacity > 0 && !cmd.Flags().Changed("capacity") {
		capacity = in.Capacity
	}
	p, err := planner.New(capacity)
	if err != nil {
		return err
	}

	// Artifact-only mode skips graph analysis; there is no feature graph
	// to analyze.
	if len(features) == 0 {
		plan, err := p.BreakdownIntoPhases(artifacts)
		if err != nil {
			return err
		}
		return printPlan(cmd, plan)
	}

	g := graph.New()
	g.Build(features)
	analysis, err := g.Analyze()
	if err != nil {
		return err
	}

	if !planJSON {
		fmt.Fprintln(cmd.OutOrStdout(), renderAnalysis(analysis))
	}
	if !analysis.IsValid {
		return fmt.Errorf("planning aborted: %s", analysis.Errors[0])
	}

	plan, err := p.PlanFeatures(features, nil)
	if err != nil {
		return err
	}
	return printPlan(cmd, plan)
}

func printPlan(cmd *cobra.Command, plan *planner.Plan) error {
	if planJSON {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), renderPlan(plan))
	return nil
}
