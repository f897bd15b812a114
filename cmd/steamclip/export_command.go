package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Nastas95/SteamClip/internal/clips"
	"github.com/Nastas95/SteamClip/internal/config"
	"github.com/Nastas95/SteamClip/internal/export"
	"github.com/Nastas95/SteamClip/internal/history"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var steamIDFlag string
	var gameFlag string
	var allFlag bool
	var outputFlag string
	var profileFlag string
	var jobsFlag int

	cmd := &cobra.Command{
		Use:   "export [clip numbers]",
		Short: "Export clips to standalone video files",
		Long: `Export converts recorded clips into playable video files.

Clips are addressed by the numbers shown in 'steamclip list' (date order).
Pass --all to export everything, optionally narrowed with --game.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			steamID, err := selectSteamID(cfg.Paths.UserdataDir, steamIDFlag)
			if err != nil {
				return err
			}
			captures, err := clips.DiscoverCaptures(cfg.Paths.UserdataDir, steamID)
			if err != nil {
				return err
			}
			if gameFlag != "" {
				captures = clips.FilterByGame(captures, gameFlag)
			}

			selected, err := selectCaptures(captures, args, allFlag)
			if err != nil {
				return err
			}

			outputDir := cfg.Paths.ExportDir
			if outputFlag != "" {
				outputDir, err = config.ExpandPath(outputFlag)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			profileKey := profileFlag
			if profileKey == "" {
				profileKey = cfg.Export.Profile
			}
			concurrency := jobsFlag
			if concurrency <= 0 {
				concurrency = cfg.Export.Concurrency
			}

			// One export batch at a time per machine; a second invocation
			// would race on output names and staging space.
			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "export.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire export lock: %w", err)
			}
			if !locked {
				return errors.New("another export is already running")
			}
			defer func() { _ = lock.Unlock() }()

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}

			scheduler := export.NewScheduler(cfg, logger,
				export.WithRecorder(history.NewRecorder(store)))

			events, finishProgress := exportEvents(cmd, len(selected))
			handle, err := scheduler.Submit(cmd.Context(), export.Request{
				Captures:    selected,
				OutputDir:   outputDir,
				ProfileKey:  profileKey,
				Concurrency: concurrency,
				ResolveLabel: func(capture clips.CaptureFolder) string {
					return resolver.Label(capture.GameID)
				},
			}, events)
			if err != nil {
				return err
			}

			// First interrupt cancels cooperatively; running jobs finish
			// their current clip before stopping. The watcher exits with the
			// batch so the goroutine never outlives the command.
			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signals)
			watcherDone := make(chan struct{})
			defer close(watcherDone)
			go watchInterrupts(signals, watcherDone, handle.Cancel, cmd.ErrOrStderr())

			summary := handle.Wait()
			finishProgress()

			printBatchResult(cmd, handle, summary)
			if summary.Failed > 0 {
				return fmt.Errorf("%d export(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&steamIDFlag, "steamid", "", "Steam account ID to export from")
	cmd.Flags().StringVar(&gameFlag, "game", "", "Only export clips for this game ID")
	cmd.Flags().BoolVar(&allFlag, "all", false, "Export every matching clip")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Encoding profile (default from config)")
	cmd.Flags().IntVarP(&jobsFlag, "jobs", "j", 0, "Parallel exports, 1-16 (default from config)")
	return cmd
}

// selectCaptures maps the list command's 1-based clip numbers onto the
// discovered captures.
func selectCaptures(captures []clips.CaptureFolder, args []string, all bool) ([]clips.CaptureFolder, error) {
	if all {
		if len(args) > 0 {
			return nil, errors.New("--all cannot be combined with clip numbers")
		}
		if len(captures) == 0 {
			return nil, errors.New("no clips found")
		}
		return captures, nil
	}
	if len(args) == 0 {
		return nil, errors.New("pass clip numbers from 'steamclip list' or --all")
	}

	seen := make(map[int]bool, len(args))
	selected := make([]clips.CaptureFolder, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(captures) {
			return nil, fmt.Errorf("invalid clip number %q (1-%d)", arg, len(captures))
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		selected = append(selected, captures[n-1])
	}
	return selected, nil
}

// watchInterrupts requests cancellation on every signal received and returns
// once done closes.
func watchInterrupts(signals <-chan os.Signal, done <-chan struct{}, cancel func(), out io.Writer) {
	for {
		select {
		case <-signals:
			fmt.Fprintln(out, "\nCancelling; letting running exports finish...")
			cancel()
		case <-done:
			return
		}
	}
}

// exportEvents builds the progress reporting hooks. Interactive terminals get
// a progress bar; everything else gets plain status lines.
func exportEvents(cmd *cobra.Command, total int) (export.Events, func()) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if file, ok := out.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionSetDescription("exporting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		events := export.Events{
			JobStarted: func(label, _ string) {
				bar.Describe("exporting " + label)
			},
			Progress: func(completed, _, _ int, _ string) {
				_ = bar.Set(completed)
			},
		}
		return events, func() { _ = bar.Finish() }
	}

	events := export.Events{
		JobStarted: func(label, profileName string) {
			fmt.Fprintf(out, "Exporting %s (%s)\n", label, profileName)
		},
		Progress: func(_, _, _ int, status string) {
			fmt.Fprintln(out, status)
		},
	}
	return events, func() {}
}

func printBatchResult(cmd *cobra.Command, handle *export.Handle, summary export.Summary) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(handle.Jobs()))
	for _, job := range handle.Jobs() {
		detail := job.OutputPath()
		if err := job.Err(); err != nil {
			detail = err.Error()
		}
		rows = append(rows, []string{job.Label, string(job.State()), detail})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Clip", "Result", "Output / Error"},
		rows,
	))
	fmt.Fprintln(out, summary.Text())
}
