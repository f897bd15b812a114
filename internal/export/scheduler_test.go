package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Nastas95/SteamClip/internal/clips"
	"github.com/Nastas95/SteamClip/internal/config"
	"github.com/Nastas95/SteamClip/internal/ffmpeg"
)

const fakeEncoders = `Encoders:
 ------
 V....D libx264              libx264 (codec h264)
 V....D h264_nvenc           NVIDIA NVENC (codec h264)
 A....D aac                  AAC
`

// fakeFFmpeg simulates the external tool: the probe answers with a canned
// encoder list, concat/mux calls create their output file. Mux calls can be
// gated to control scheduling order in tests.
type fakeFFmpeg struct {
	mu    sync.Mutex
	calls [][]string

	active    atomic.Int32
	maxActive atomic.Int32

	// When muxGate is non-nil, final-mux invocations announce themselves on
	// muxStarted and block until a token arrives on muxGate.
	muxGate    chan struct{}
	muxStarted chan struct{}

	failOutputsUnder string
}

func (f *fakeFFmpeg) Run(ctx context.Context, _ string, args []string) (ffmpeg.Result, error) {
	if hasArg(args, "-encoders") {
		return ffmpeg.Result{Stdout: fakeEncoders}, nil
	}

	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		max := f.maxActive.Load()
		if cur <= max || f.maxActive.CompareAndSwap(max, cur) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()

	isConcat := hasArg(args, "concat")
	if !isConcat && f.muxGate != nil {
		if f.muxStarted != nil {
			f.muxStarted <- struct{}{}
		}
		select {
		case <-f.muxGate:
		case <-ctx.Done():
			return ffmpeg.Result{}, ctx.Err()
		}
	}

	out := args[len(args)-1]
	if f.failOutputsUnder != "" && filepath.Dir(out) == f.failOutputsUnder {
		return ffmpeg.Result{Stderr: "boom"}, fmt.Errorf("ffmpeg exited with status 1: boom")
	}
	if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
		return ffmpeg.Result{}, err
	}
	return ffmpeg.Result{}, nil
}

func (f *fakeFFmpeg) muxCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.calls {
		if !hasArg(call, "concat") && !hasArg(call, "-encoders") {
			count++
		}
	}
	return count
}

func hasArg(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}

type eventLog struct {
	mu        sync.Mutex
	started   []string
	progress  []int // active worker counts
	completed int
	finished  bool
	success   bool
	summary   string
}

func (e *eventLog) events() Events {
	return Events{
		JobStarted: func(label, _ string) {
			e.mu.Lock()
			e.started = append(e.started, label)
			e.mu.Unlock()
		},
		Progress: func(completed, _, active int, _ string) {
			e.mu.Lock()
			e.progress = append(e.progress, active)
			e.completed = completed
			e.mu.Unlock()
		},
		BatchFinished: func(success bool, summary string) {
			e.mu.Lock()
			e.finished = true
			e.success = success
			e.summary = summary
			e.mu.Unlock()
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UserdataDir = filepath.Join(base, "userdata")
	cfg.Paths.ExportDir = filepath.Join(base, "out")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := os.MkdirAll(cfg.Paths.ExportDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

func makeCapture(t *testing.T, root, name string) clips.CaptureFolder {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, file := range []string{
		"session.mpd",
		"init-stream0.m4s", "chunk-stream0-0.m4s", "chunk-stream0-1.m4s",
		"init-stream1.m4s", "chunk-stream1-0.m4s",
	} {
		writeFile(t, filepath.Join(dir, file), []byte(file))
	}
	return clips.ParseFolder(dir)
}

func makeEmptyCapture(t *testing.T, root, name string) clips.CaptureFolder {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return clips.ParseFolder(dir)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBatchExportsAllClips(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))
	log := &eventLog{}

	handle, err := sched.Submit(context.Background(), Request{
		Captures: []clips.CaptureFolder{
			makeCapture(t, caps, "clip_570_20240101_120000"),
			makeCapture(t, caps, "clip_570_20240102_120000"),
			makeCapture(t, caps, "clip_730_20240103_120000"),
		},
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 2,
	}, log.events())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	summary := handle.Wait()
	if !summary.Success() {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Text() != "Export completed. 3/3 exported." {
		t.Fatalf("summary text = %q", summary.Text())
	}
	if !log.finished || !log.success {
		t.Fatalf("batch finished event missing: %+v", log)
	}
	if len(log.started) != 3 {
		t.Fatalf("started events = %d", len(log.started))
	}
	for _, job := range handle.Jobs() {
		if job.State() != StateSucceeded {
			t.Fatalf("job %s state = %q", job.Capture.Path, job.State())
		}
		if _, err := os.Stat(job.OutputPath()); err != nil {
			t.Fatalf("output missing: %v", err)
		}
	}

	// Temp artifacts are gone once jobs are terminal.
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not cleaned: %d entries", len(entries))
	}
}

func TestJobWithoutManifestFailsIsolated(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))
	log := &eventLog{}

	captures := []clips.CaptureFolder{
		makeCapture(t, caps, "clip_570_20240101_120000"),
		makeEmptyCapture(t, caps, "clip_570_20240102_120000"),
		makeCapture(t, caps, "clip_570_20240103_120000"),
	}

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    captures,
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 1,
	}, log.events())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	summary := handle.Wait()
	if summary.Succeeded != 2 || summary.Failed != 1 || summary.Cancelled != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Text() != "Completed with 1 error(s). 2/3 exported." {
		t.Fatalf("summary text = %q", summary.Text())
	}

	failed := handle.Jobs()[1]
	if failed.State() != StateFailed {
		t.Fatalf("job 2 state = %q", failed.State())
	}
	if !errors.Is(failed.Err(), ErrNotFound) {
		t.Fatalf("job 2 err = %v", failed.Err())
	}
}

func TestExternalToolFailureIsPerJob(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{failOutputsUnder: cfg.Paths.ExportDir}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    []clips.CaptureFolder{makeCapture(t, caps, "clip_570_20240101_120000")},
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 1,
	}, Events{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	summary := handle.Wait()
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	jobErr := handle.Jobs()[0].Err()
	if !errors.Is(jobErr, ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", jobErr)
	}
}

func TestSubmitRejectsUnavailableProfile(t *testing.T) {
	cfg := testConfig(t)
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(&fakeFFmpeg{}))

	_, err := sched.Submit(context.Background(), Request{
		Captures:    []clips.CaptureFolder{{Path: "/captures/clip_1_20240101_120000"}},
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "vaapi", // not in fakeEncoders
		Concurrency: 1,
	}, Events{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestSubmitAcceptsProbedHardwareProfile(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    []clips.CaptureFolder{makeCapture(t, caps, "clip_570_20240101_120000")},
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "nvenc",
		Concurrency: 1,
	}, Events{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if summary := handle.Wait(); !summary.Success() {
		t.Fatalf("summary = %+v", summary)
	}

	foundEncoder := false
	for _, call := range fake.calls {
		if hasArg(call, "h264_nvenc") {
			foundEncoder = true
		}
	}
	if !foundEncoder {
		t.Fatal("final mux never used the profile's encoder args")
	}
}

func TestSubmitRejectsMissingOutputDir(t *testing.T) {
	cfg := testConfig(t)
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(&fakeFFmpeg{}))

	_, err := sched.Submit(context.Background(), Request{
		Captures:    []clips.CaptureFolder{{Path: "/captures/x"}},
		OutputDir:   filepath.Join(cfg.Paths.ExportDir, "does-not-exist"),
		ProfileKey:  "copy",
		Concurrency: 1,
	}, Events{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestSubmitRejectsEmptyBatch(t *testing.T) {
	cfg := testConfig(t)
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(&fakeFFmpeg{}))

	_, err := sched.Submit(context.Background(), Request{
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 1,
	}, Events{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestConcurrencyLimitNeverExceeded(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))
	log := &eventLog{}

	var captures []clips.CaptureFolder
	for i := 0; i < 8; i++ {
		captures = append(captures, makeCapture(t, caps, fmt.Sprintf("clip_570_2024010%d_120000", i+1)))
	}

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    captures,
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 3,
	}, log.events())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	summary := handle.Wait()

	if summary.Succeeded != 8 {
		t.Fatalf("summary = %+v", summary)
	}
	if max := fake.maxActive.Load(); max > 3 {
		t.Fatalf("observed %d concurrent tool invocations, limit 3", max)
	}
	for _, active := range log.progress {
		if active > 3 {
			t.Fatalf("progress reported %d active workers, limit 3", active)
		}
	}
}

// Cancellation after two jobs complete and two are mid-mux: the in-flight
// jobs finish normally, the never-dispatched job reports Cancelled without
// starting, and the summary counts 4/5 processed.
func TestCancellationScenario(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{
		muxGate:    make(chan struct{}),
		muxStarted: make(chan struct{}, 8),
	}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))
	log := &eventLog{}

	var captures []clips.CaptureFolder
	for i := 0; i < 5; i++ {
		captures = append(captures, makeCapture(t, caps, fmt.Sprintf("clip_570_2024010%d_120000", i+1)))
	}

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    captures,
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 2,
	}, log.events())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	waitMuxStarted(t, fake, 2) // first wave blocked in final mux
	fake.muxGate <- struct{}{}
	fake.muxGate <- struct{}{}

	waitMuxStarted(t, fake, 2) // second wave dispatched and blocked
	handle.Cancel()
	fake.muxGate <- struct{}{}
	fake.muxGate <- struct{}{}

	summary := handle.Wait()
	if !summary.WasCancelled {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Succeeded != 4 || summary.Cancelled != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Text() != "Export cancelled. 4/5 clips processed." {
		t.Fatalf("summary text = %q", summary.Text())
	}
	if got := handle.Jobs()[4].State(); got != StateCancelled {
		t.Fatalf("undispatched job state = %q", got)
	}
	if fake.muxCalls() != 4 {
		t.Fatalf("mux invoked %d times, want 4", fake.muxCalls())
	}
}

func TestRaiseConcurrencyMidBatch(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{
		muxGate:    make(chan struct{}),
		muxStarted: make(chan struct{}, 8),
	}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))

	var captures []clips.CaptureFolder
	for i := 0; i < 4; i++ {
		captures = append(captures, makeCapture(t, caps, fmt.Sprintf("clip_570_2024010%d_120000", i+1)))
	}

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    captures,
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 1,
	}, Events{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	waitMuxStarted(t, fake, 1) // one worker blocked, rest pending
	handle.SetConcurrency(3)
	waitMuxStarted(t, fake, 2) // two more dispatched without any completion

	for i := 0; i < 4; i++ {
		fake.muxGate <- struct{}{}
	}

	summary := handle.Wait()
	if summary.Succeeded != 4 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestLowerConcurrencyNeverInterruptsRunning(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	fake := &fakeFFmpeg{
		muxGate:    make(chan struct{}),
		muxStarted: make(chan struct{}, 8),
	}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(fake))

	var captures []clips.CaptureFolder
	for i := 0; i < 3; i++ {
		captures = append(captures, makeCapture(t, caps, fmt.Sprintf("clip_570_2024010%d_120000", i+1)))
	}

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    captures,
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 2,
	}, Events{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	waitMuxStarted(t, fake, 2)
	handle.SetConcurrency(1)
	fake.muxGate <- struct{}{}
	fake.muxGate <- struct{}{}
	waitMuxStarted(t, fake, 1) // third job still dispatched afterwards
	fake.muxGate <- struct{}{}

	summary := handle.Wait()
	if summary.Succeeded != 3 {
		t.Fatalf("summary = %+v", summary)
	}
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []Record
}

func (r *fakeRecorder) RecordExport(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func TestRecorderSeesEveryTerminalJob(t *testing.T) {
	cfg := testConfig(t)
	caps := t.TempDir()
	recorder := &fakeRecorder{}
	sched := NewScheduler(cfg, discardLogger(), WithExecutor(&fakeFFmpeg{}), WithRecorder(recorder))

	captures := []clips.CaptureFolder{
		makeCapture(t, caps, "clip_570_20240101_120000"),
		makeEmptyCapture(t, caps, "clip_570_20240102_120000"),
	}

	handle, err := sched.Submit(context.Background(), Request{
		Captures:    captures,
		OutputDir:   cfg.Paths.ExportDir,
		ProfileKey:  "copy",
		Concurrency: 2,
	}, Events{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	handle.Wait()

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.records) != 2 {
		t.Fatalf("recorded %d jobs, want 2", len(recorder.records))
	}
	states := map[State]int{}
	for _, record := range recorder.records {
		states[record.State]++
	}
	if states[StateSucceeded] != 1 || states[StateFailed] != 1 {
		t.Fatalf("recorded states = %+v", states)
	}
}

func waitMuxStarted(t *testing.T, fake *fakeFFmpeg, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-fake.muxStarted:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for mux to start")
		}
	}
}
