package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Nastas95/SteamClip/internal/clips"
	"github.com/Nastas95/SteamClip/internal/config"
	"github.com/Nastas95/SteamClip/internal/ffmpeg"
	"github.com/Nastas95/SteamClip/internal/profiles"
)

// MaxWorkers is the hard ceiling on simultaneous export workers.
const MaxWorkers = config.MaxConcurrency

const (
	videoTrackIndex = 0
	audioTrackIndex = 1
)

// Record captures one finished job for persistence.
type Record struct {
	JobID      string
	ClipPath   string
	GameID     string
	Label      string
	Profile    string
	Output     string
	State      State
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder persists finished jobs. Implementations must tolerate being
// called once per job from a single goroutine.
type Recorder interface {
	RecordExport(ctx context.Context, record Record) error
}

// Scheduler runs export batches inside a bounded worker pool.
type Scheduler struct {
	logger     *slog.Logger
	exec       ffmpeg.Executor
	probe      *ffmpeg.Probe
	recorder   Recorder
	stagingDir string
	binary     string
	container  string
}

// Option configures optional Scheduler behavior.
type Option func(*Scheduler)

// WithExecutor injects a custom ffmpeg executor (primarily for tests).
func WithExecutor(exec ffmpeg.Executor) Option {
	return func(s *Scheduler) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithRecorder persists every finished job to the given recorder.
func WithRecorder(recorder Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = recorder
	}
}

// NewScheduler constructs a scheduler from application config.
func NewScheduler(cfg *config.Config, logger *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:     logger,
		exec:       ffmpeg.CommandExecutor{},
		stagingDir: cfg.Paths.StagingDir,
		binary:     cfg.FFmpegBinary(),
		container:  cfg.Export.Container,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.probe = ffmpeg.NewProbe(s.binary, ffmpeg.WithExecutor(s.exec))
	return s
}

// Handle controls one running batch.
type Handle struct {
	jobs  []*Job
	namer *Namer

	limit     atomic.Int32
	cancelled atomic.Bool
	wake      chan struct{}
	done      chan struct{}
	summary   Summary
}

// Jobs exposes the batch's jobs in submission order.
func (h *Handle) Jobs() []*Job {
	return h.jobs
}

// SetConcurrency adjusts the live worker limit. Raising it lets additional
// pending jobs dispatch on the next scheduling pass; lowering it never
// interrupts a running job.
func (h *Handle) SetConcurrency(limit int) {
	h.limit.Store(int32(clampConcurrency(limit)))
	h.notify()
}

// Cancel requests cooperative cancellation. Jobs not yet dispatched never
// start; running jobs stop before their next pipeline stage.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.notify()
}

// Wait blocks until every job is terminal and returns the batch summary.
func (h *Handle) Wait() Summary {
	<-h.done
	return h.summary
}

func (h *Handle) notify() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

func (h *Handle) stopRequested(ctx context.Context) bool {
	return h.cancelled.Load() || ctx.Err() != nil
}

// Submit validates a request and starts the batch. Configuration problems
// (unusable output directory, unavailable profile) are rejected here, before
// any job is scheduled.
func (s *Scheduler) Submit(ctx context.Context, req Request, events Events) (*Handle, error) {
	if len(req.Captures) == 0 {
		return nil, wrap(ErrConfiguration, "submit", "no captures submitted", nil)
	}

	info, err := os.Stat(req.OutputDir)
	if err != nil || !info.IsDir() {
		return nil, wrap(ErrConfiguration, "submit", fmt.Sprintf("output directory %q is not usable", req.OutputDir), err)
	}

	profile, ok := profiles.Get(req.ProfileKey)
	if !ok {
		return nil, wrap(ErrConfiguration, "submit", fmt.Sprintf("unknown encoding profile %q", req.ProfileKey), nil)
	}
	// The copy profile is selectable regardless of host capability.
	if profile.Key != profiles.KeyCopy {
		available, err := profiles.Detect(ctx, s.probe)
		if err != nil {
			return nil, wrap(ErrConfiguration, "submit", "probe encoders", err)
		}
		if !profiles.Contains(available, profile.Key) {
			return nil, wrap(ErrConfiguration, "submit", fmt.Sprintf("encoding profile %q is not available on this machine", profile.Key), nil)
		}
	}

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return nil, wrap(ErrConfiguration, "submit", "create staging directory", err)
	}

	jobs := make([]*Job, 0, len(req.Captures))
	for _, capture := range req.Captures {
		jobs = append(jobs, newJob(capture, resolveLabel(req, capture)))
	}

	handle := &Handle{
		jobs:  jobs,
		namer: NewNamer(),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	handle.limit.Store(int32(clampConcurrency(req.Concurrency)))

	go s.run(ctx, handle, req, profile, events)
	return handle, nil
}

// run is the scheduling loop: dispatch pending jobs while below the limit,
// then block on a worker result or a wake-up (concurrency change or
// cancellation). No polling, no fixed sleeps.
func (s *Scheduler) run(ctx context.Context, h *Handle, req Request, profile profiles.Profile, events Events) {
	results := make(chan *Job)
	summary := Summary{Total: len(h.jobs)}
	next, active, completed := 0, 0, 0

	for {
		if !h.stopRequested(ctx) {
			limit := int(h.limit.Load())
			for active < limit && next < len(h.jobs) {
				job := h.jobs[next]
				next++
				active++
				job.transition(StateRunning)
				events.jobStarted(job.Label, profile.DisplayName)
				go func(job *Job) {
					s.runJob(ctx, h, job, req, profile)
					results <- job
				}(job)
			}
		}

		if active == 0 {
			break
		}

		select {
		case job := <-results:
			active--
			completed++
			switch job.State() {
			case StateSucceeded:
				summary.Succeeded++
			case StateCancelled:
				summary.Cancelled++
			default:
				summary.Failed++
			}
			s.record(ctx, job, profile)
			events.progress(completed, summary.Total, active,
				fmt.Sprintf("%d/%d clips processed", completed, summary.Total))
		case <-h.wake:
		}
	}

	// Jobs never dispatched after a cancellation request.
	for ; next < len(h.jobs); next++ {
		job := h.jobs[next]
		job.transition(StateCancelled)
		summary.Cancelled++
		s.record(ctx, job, profile)
	}

	summary.WasCancelled = h.stopRequested(ctx)
	h.summary = summary
	events.batchFinished(summary.Success(), summary.Text())
	close(h.done)
}

// runJob executes one job's full pipeline. Every failure is absorbed at this
// boundary; the scheduler only ever sees a terminal state.
func (s *Scheduler) runJob(ctx context.Context, h *Handle, job *Job, req Request, profile profiles.Profile) {
	logger := s.logger.With("clip", filepath.Base(job.Capture.Path), "job", job.ID.String())

	defer func() {
		if r := recover(); r != nil {
			job.setErr(fmt.Errorf("export panicked: %v", r))
			job.transition(StateFailed)
			logger.Error("export panicked", "panic", r)
		}
	}()

	tracker, err := newArtifactTracker(s.stagingDir, job.ID.String())
	if err != nil {
		job.setErr(err)
		job.transition(StateFailed)
		logger.Error("export failed", "error", err)
		return
	}
	defer tracker.Cleanup(logger)

	err = s.pipeline(ctx, h, job, tracker, req, profile)
	switch {
	case errors.Is(err, errCancelled):
		job.transition(StateCancelled)
		logger.Info("export cancelled before completion")
	case err != nil:
		job.setErr(err)
		job.transition(StateFailed)
		logger.Error("export failed", "error", err)
	default:
		job.transition(StateSucceeded)
		logger.Info("export finished", "output", job.OutputPath())
	}
}

func (s *Scheduler) pipeline(ctx context.Context, h *Handle, job *Job, tracker *artifactTracker, req Request, profile profiles.Profile) error {
	if h.stopRequested(ctx) {
		return errCancelled
	}
	sets, err := clips.FindSegmentSets(job.Capture.Path)
	if err != nil {
		return wrap(ErrValidation, "locate", "", err)
	}
	if len(sets) == 0 {
		return wrap(ErrNotFound, "locate", "no media description found", nil)
	}

	if h.stopRequested(ctx) {
		return errCancelled
	}
	var videoParts, audioParts []string
	for i, set := range sets {
		video, _ := set.Track(videoTrackIndex)
		video.Index = videoTrackIndex
		audio, _ := set.Track(audioTrackIndex)
		audio.Index = audioTrackIndex

		videoPart := tracker.Path(fmt.Sprintf("video-%03d.mp4", i))
		if err := reconstructTrack(video, videoPart); err != nil {
			return err
		}
		audioPart := tracker.Path(fmt.Sprintf("audio-%03d.mp4", i))
		if err := reconstructTrack(audio, audioPart); err != nil {
			return err
		}
		videoParts = append(videoParts, videoPart)
		audioParts = append(audioParts, audioPart)
	}

	if h.stopRequested(ctx) {
		return errCancelled
	}
	mux := muxer{binary: s.binary, exec: s.exec}
	videoFull := tracker.Path("video.mp4")
	audioFull := tracker.Path("audio.mp4")
	for _, stage := range []struct {
		list  string
		parts []string
		out   string
	}{
		{tracker.Path("video-list.txt"), videoParts, videoFull},
		{tracker.Path("audio-list.txt"), audioParts, audioFull},
	} {
		if err := writeConcatList(stage.list, stage.parts); err != nil {
			return err
		}
		if err := mux.concatCopy(ctx, stage.list, stage.out); err != nil {
			return err
		}
	}

	if h.stopRequested(ctx) {
		return errCancelled
	}
	out := h.namer.Reserve(req.OutputDir, job.Label, job.Capture.Timestamp, s.container)
	if err := mux.mux(ctx, videoFull, audioFull, profile, out); err != nil {
		return err
	}
	job.setOutputPath(out)
	return nil
}

// record persists a terminal job. Persistence failures are logged only; they
// never alter the job's outcome.
func (s *Scheduler) record(ctx context.Context, job *Job, profile profiles.Profile) {
	if s.recorder == nil {
		return
	}
	record := Record{
		JobID:      job.ID.String(),
		ClipPath:   job.Capture.Path,
		GameID:     job.Capture.GameID,
		Label:      job.Label,
		Profile:    profile.Key,
		Output:     job.OutputPath(),
		State:      job.State(),
		StartedAt:  job.StartedAt(),
		FinishedAt: job.FinishedAt(),
	}
	if err := job.Err(); err != nil {
		record.Error = err.Error()
	}
	// History writes still happen for cancelled batches.
	ctx = context.WithoutCancel(ctx)
	if err := s.recorder.RecordExport(ctx, record); err != nil {
		s.logger.Warn("failed to record export", "job", record.JobID, "error", err)
	}
}

func resolveLabel(req Request, capture clips.CaptureFolder) string {
	if req.ResolveLabel != nil {
		if label := req.ResolveLabel(capture); label != "" {
			return label
		}
	}
	if capture.GameID != "" {
		return "GameID " + capture.GameID
	}
	return filepath.Base(capture.Path)
}

func clampConcurrency(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxWorkers {
		return MaxWorkers
	}
	return limit
}
