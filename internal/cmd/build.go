package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgeplan/forgeplan/internal/feature"
	"github.com/forgeplan/forgeplan/internal/orchestrator"
	"github.com/forgeplan/forgeplan/internal/planner"
	"github.com/forgeplan/forgeplan/internal/progress"
	"github.com/forgeplan/forgeplan/internal/store"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Execute the phase plan",
	Long: `Plan and execute a feature file phase by phase.

Each phase is snapshotted before it runs, built through the artifact
generator, and validated against its completion gates. A failed phase
halts the remaining phases; its rollback point stays available until the
process exits.

Without a configured generation service this runs the built-in stub
generator, which produces artifact shells locally.`,
	RunE: runBuild,
}

var (
	buildFeaturesPath string
	buildCapacity     int
	buildTimeout      time.Duration
	buildOutDir       string
	buildStateDir     string
	buildAPIs         []string
)

func init() {
	buildCmd.Flags().StringVarP(&buildFeaturesPath, "features", "f", "", "feature file (YAML)")
	buildCmd.Flags().IntVarP(&buildCapacity, "capacity", "c", planner.DefaultCapacity, "work units per phase")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 30*time.Minute, "wall-clock limit for the whole run")
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "build", "output directory for generated artifacts")
	buildCmd.Flags().StringVar(&buildStateDir, "state-dir", ".forgeplan/runs", "directory for run state snapshots")
	buildCmd.Flags().StringSliceVar(&buildAPIs, "api", nil, "external API available to the run (repeatable)")
	_ = buildCmd.MarkFlagRequired("features")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	in, err := loadFeatureFile(buildFeaturesPath, feature.DefaultCatalog())
	if err != nil {
		return err
	}
	features, artifacts := in.Features, in.Artifacts

	config := orchestrator.Config{
		Capacity:      buildCapacity,
		Timeout:       buildTimeout,
		AvailableAPIs: buildAPIs,
	}
	if in.Capacity > 0 && !cmd.Flags().Changed("capacity") {
		config.Capacity = in.Capacity
	}
	if in.Timeout > 0 && !cmd.Flags().Changed("timeout") {
		config.Timeout = in.Timeout
	}

	o := orchestrator.New(stubGenerator{}, config)
	o.SetPersistenceStore(store.NewFileStore(buildStateDir, buildOutDir))

	indicator := progress.NewIndicator(progress.Config{
		Writer:      cmd.OutOrStdout(),
		Total:       expectedArtifacts(features, len(artifacts)),
		ShowSpinner: true,
	})
	o.SetProgressCallback(indicator.Callback())

	indicator.Start()
	var result *orchestrator.RunResult
	if len(features) > 0 {
		result, err = o.Run(cmd.Context(), features)
	} else {
		result, err = o.RunArtifacts(cmd.Context(), artifacts)
	}
	indicator.Stop()

	if err != nil {
		return err
	}

	indicator.PrintSummary()

	if !result.Success {
		return fmt.Errorf("run %s halted at phase %d: %s",
			result.RunID, result.HaltedPhase, firstError(result.Errors))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun %s completed: %d phases, artifacts written to %s\n",
		result.RunID, len(result.Plan.Phases), buildOutDir)
	return nil
}

func expectedArtifacts(features []feature.Feature, artifactCount int) int {
	if len(features) == 0 {
		return artifactCount
	}
	total := 0
	for _, f := range features {
		units := f.EstimatedWorkUnits
		if units < 1 {
			units = 1
		}
		total += units
	}
	return total
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	return errs[0]
}
