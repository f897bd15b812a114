package history

import (
	"context"

	"github.com/Nastas95/SteamClip/internal/export"
)

// Recorder adapts a Store to the scheduler's persistence hook.
type Recorder struct {
	store *Store
}

// NewRecorder wraps a store for use as an export recorder.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// RecordExport stores one terminal job.
func (r *Recorder) RecordExport(ctx context.Context, record export.Record) error {
	return r.store.Add(ctx, Entry{
		JobID:      record.JobID,
		ClipPath:   record.ClipPath,
		GameID:     record.GameID,
		Label:      record.Label,
		Profile:    record.Profile,
		OutputPath: record.Output,
		State:      string(record.State),
		Error:      record.Error,
		StartedAt:  record.StartedAt,
		FinishedAt: record.FinishedAt,
	})
}
