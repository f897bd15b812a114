package export

// Events carries the callbacks a caller receives while a batch runs. Any
// field may be nil. Callbacks are invoked from the scheduler goroutine, never
// concurrently with themselves.
type Events struct {
	// JobStarted fires when a worker picks up a job.
	JobStarted func(label, profileName string)
	// Progress fires after every job reaches a terminal state.
	Progress func(completed, total, active int, status string)
	// BatchFinished fires exactly once, after every job is terminal.
	BatchFinished func(success bool, summary string)
}

func (e Events) jobStarted(label, profileName string) {
	if e.JobStarted != nil {
		e.JobStarted(label, profileName)
	}
}

func (e Events) progress(completed, total, active int, status string) {
	if e.Progress != nil {
		e.Progress(completed, total, active, status)
	}
}

func (e Events) batchFinished(success bool, summary string) {
	if e.BatchFinished != nil {
		e.BatchFinished(success, summary)
	}
}
