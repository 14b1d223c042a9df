// Package store persists run progress and generated artifacts to disk.
// It implements the orchestrator's PersistenceStore boundary; the engine
// itself never touches the filesystem during a phase.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/errors"
	"github.com/forgeplan/forgeplan/internal/orchestrator"
)

// FileStore writes run state as JSON under a state directory and
// generated artifacts under an output directory.
type FileStore struct {
	stateDir string
	outDir   string
}

// NewFileStore creates a store rooted at the given directories.
func NewFileStore(stateDir, outDir string) *FileStore {
	return &FileStore{stateDir: stateDir, outDir: outDir}
}

// SaveRunState persists the run's progress snapshot, one file per run,
// overwritten on each phase boundary.
func (s *FileStore) SaveRunState(_ context.Context, state *orchestrator.RunState) error {
	if state == nil {
		return errors.New(errors.ErrCodeFileWriteFailed, "run state is nil")
	}

	if err := os.MkdirAll(s.stateDir, 0o750); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create state directory", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to marshal run state", err)
	}

	path := filepath.Join(s.stateDir, fmt.Sprintf("%s.json", state.RunID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write run state", err)
	}
	return nil
}

// SaveArtifacts writes each artifact's content under the output
// directory, creating intermediate directories as needed.
func (s *FileStore) SaveArtifacts(_ context.Context, artifacts []artifact.Artifact) error {
	for _, a := range artifacts {
		path := filepath.Join(s.outDir, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return errors.Wrap(errors.ErrCodeFileWriteFailed,
				fmt.Sprintf("failed to create directory for %s", a.Path), err)
		}
		if err := os.WriteFile(path, []byte(a.Content), 0o600); err != nil {
			return errors.Wrap(errors.ErrCodeFileWriteFailed,
				fmt.Sprintf("failed to write artifact %s", a.Path), err)
		}
	}
	return nil
}

// LoadRunState reads a previously saved run snapshot.
func (s *FileStore) LoadRunState(runID string) (*orchestrator.RunState, error) {
	path := filepath.Join(s.stateDir, fmt.Sprintf("%s.json", runID))

	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the configured state dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, fmt.Sprintf("run state not found: %s", runID))
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read run state", err)
	}

	var state orchestrator.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileUnmarshal, "failed to unmarshal run state", err)
	}
	return &state, nil
}

// ListRuns returns the run IDs with saved state.
func (s *FileStore) ListRuns() ([]string, error) {
	entries, err := os.ReadDir(s.stateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read state directory", err)
	}

	var runIDs []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			runIDs = append(runIDs, entry.Name()[:len(entry.Name())-5])
		}
	}
	return runIDs, nil
}

// Delete removes a run's saved state.
func (s *FileStore) Delete(runID string) error {
	path := filepath.Join(s.stateDir, fmt.Sprintf("%s.json", runID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to delete run state", err)
	}
	return nil
}
