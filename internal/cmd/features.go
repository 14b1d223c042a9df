package cmd

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/errors"
	"github.com/forgeplan/forgeplan/internal/feature"
)

// featureFile is the on-disk input format. Features can be given inline
// or as known catalog kinds; artifact lists drive the artifact-only
// planning mode. Capacity and timeout are optional defaults that flags
// override.
type featureFile struct {
	// Kinds names catalog entries materialized with their defaults
	Kinds []string `yaml:"kinds,omitempty"`

	// Features are fully specified inline
	Features []feature.Feature `yaml:"features,omitempty"`

	// Artifacts switch planning to artifact-only mode when no features
	// are given
	Artifacts []artifact.Artifact `yaml:"artifacts,omitempty"`

	Capacity int    `yaml:"capacity,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

// runInput is a parsed feature file ready for planning.
type runInput struct {
	Features  []feature.Feature
	Artifacts []artifact.Artifact
	Capacity  int
	Timeout   time.Duration
}

// loadFeatureFile parses a YAML feature file. Catalog kinds are
// materialized first, then inline features override any kind with the
// same id.
func loadFeatureFile(path string, catalog *feature.Catalog) (*runInput, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "feature file not found: "+path).
				WithSuggestion("Check the --features path")
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read feature file", err)
	}

	var file featureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	in := &runInput{Artifacts: file.Artifacts, Capacity: file.Capacity}
	if file.Timeout != "" {
		d, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileUnmarshal, "invalid timeout in "+path, err)
		}
		in.Timeout = d
	}

	byID := map[string]int{}
	for _, kind := range file.Kinds {
		f := catalog.Materialize(kind)
		byID[f.ID] = len(in.Features)
		in.Features = append(in.Features, f)
	}
	for _, f := range file.Features {
		if idx, ok := byID[f.ID]; ok {
			in.Features[idx] = f
			continue
		}
		byID[f.ID] = len(in.Features)
		in.Features = append(in.Features, f)
	}

	return in, nil
}
