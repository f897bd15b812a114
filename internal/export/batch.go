package export

import (
	"fmt"

	"github.com/Nastas95/SteamClip/internal/clips"
)

// Request describes one batch submission.
type Request struct {
	Captures  []clips.CaptureFolder
	OutputDir string
	// ProfileKey selects the encoding profile; it must be available on this
	// machine or Submit rejects the batch.
	ProfileKey string
	// Concurrency is the initial worker limit, clamped to 1..MaxWorkers.
	Concurrency int
	// ResolveLabel supplies the human-readable name for a capture. The
	// engine knows nothing about game-name databases. Nil falls back to the
	// capture's game ID.
	ResolveLabel func(clips.CaptureFolder) string
}

// Summary aggregates a finished batch. Succeeded+Failed+Cancelled always
// equals Total.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Cancelled int
	// WasCancelled distinguishes a cancelled batch from one that merely had
	// failures.
	WasCancelled bool
}

// Success reports whether every job succeeded.
func (s Summary) Success() bool {
	return !s.WasCancelled && s.Failed == 0 && s.Succeeded == s.Total
}

// Processed counts jobs that ran to a succeeded/failed outcome.
func (s Summary) Processed() int {
	return s.Succeeded + s.Failed
}

// Text renders the user-facing batch summary line.
func (s Summary) Text() string {
	if s.WasCancelled {
		return fmt.Sprintf("Export cancelled. %d/%d clips processed.", s.Processed(), s.Total)
	}
	if s.Failed > 0 {
		return fmt.Sprintf("Completed with %d error(s). %d/%d exported.", s.Failed, s.Succeeded, s.Total)
	}
	return fmt.Sprintf("Export completed. %d/%d exported.", s.Succeeded, s.Total)
}
