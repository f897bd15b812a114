package history

import "time"

// Entry is one persisted export job.
type Entry struct {
	ID         int64
	JobID      string
	ClipPath   string
	GameID     string
	Label      string
	Profile    string
	OutputPath string
	State      string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	CreatedAt  time.Time
}

// Duration reports how long the job ran, or zero when either timestamp is
// missing (cancelled jobs that never started).
func (e Entry) Duration() time.Duration {
	if e.StartedAt.IsZero() || e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}
