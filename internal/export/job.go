package export

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nastas95/SteamClip/internal/clips"
)

// State is the lifecycle of one export job. Transitions are monotonic:
// Pending → Running → one terminal state, never backwards.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

var stateRank = map[State]int{
	StatePending:   0,
	StateRunning:   1,
	StateSucceeded: 2,
	StateFailed:    2,
	StateCancelled: 2,
}

// Job owns one capture folder's journey through the pipeline.
type Job struct {
	ID      uuid.UUID
	Capture clips.CaptureFolder
	Label   string

	mu         sync.Mutex
	state      State
	err        error
	outputPath string
	startedAt  time.Time
	finishedAt time.Time
}

func newJob(capture clips.CaptureFolder, label string) *Job {
	return &Job{
		ID:      uuid.New(),
		Capture: capture,
		Label:   label,
		state:   StatePending,
	}
}

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Err returns the failure recorded for the job, if any.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// OutputPath returns the destination file once the job has resolved it.
func (j *Job) OutputPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outputPath
}

// StartedAt and FinishedAt expose job timing for history records.
func (j *Job) StartedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.startedAt
}

func (j *Job) FinishedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.finishedAt
}

// transition advances the job state. Attempts to move backwards or out of a
// terminal state are ignored; states only ever advance.
func (j *Job) transition(to State) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return false
	}
	if stateRank[to] <= stateRank[j.state] {
		return false
	}
	j.state = to
	switch to {
	case StateRunning:
		j.startedAt = time.Now()
	case StateSucceeded, StateFailed, StateCancelled:
		j.finishedAt = time.Now()
	}
	return true
}

func (j *Job) setOutputPath(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outputPath = path
}

func (j *Job) setErr(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = err
}
