package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// artifactTracker owns every intermediate file a job creates. The job's temp
// directory is derived from the job ID, so workers never coordinate over
// temp-file paths.
type artifactTracker struct {
	dir string
}

func newArtifactTracker(stagingDir, jobID string) (*artifactTracker, error) {
	dir := filepath.Join(stagingDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create job staging directory: %w", err)
	}
	return &artifactTracker{dir: dir}, nil
}

// Path returns the tracked location for a named intermediate file.
func (t *artifactTracker) Path(name string) string {
	return filepath.Join(t.dir, name)
}

// Cleanup removes the job's staging directory. Deletion failures are logged
// and never fail the job.
func (t *artifactTracker) Cleanup(logger *slog.Logger) {
	if err := os.RemoveAll(t.dir); err != nil {
		logger.Warn("failed to remove temp artifacts", "dir", t.dir, "error", err)
	}
}
