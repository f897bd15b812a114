package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nastas95/SteamClip/internal/deps"
	"github.com/Nastas95/SteamClip/internal/gamenames"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and the game-name database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := []deps.Status{
				deps.CheckFFmpeg(cfg.FFmpegBinary()),
				deps.CheckDirectory("Steam userdata", cfg.Paths.UserdataDir),
				deps.CheckDirectory("Export directory", cfg.Paths.ExportDir),
				gameNamesStatus(cfg.GameNames.AppListPath, cfg.GameNames.CustomNamesPath),
			}

			rows := make([][]string, 0, len(statuses))
			healthy := true
			for _, status := range statuses {
				if !status.Available && !status.Optional {
					healthy = false
				}
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(status.Available),
					status.Detail,
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Target", "OK", "Detail"},
				rows,
			))
			if !healthy {
				return errors.New("one or more required checks failed")
			}
			fmt.Fprintln(out, "All checks passed.")
			return nil
		},
	}
}

// gameNamesStatus reports whether the cached app list loads. The database is
// optional; exports fall back to "GameID <id>" labels without it.
func gameNamesStatus(appListPath, customPath string) deps.Status {
	status := deps.Status{
		Name:     "Game names",
		Command:  appListPath,
		Optional: true,
	}
	resolver, err := gamenames.Load(appListPath, customPath)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	if resolver.Count() == 0 {
		status.Detail = "no names loaded; exports will use GameID labels"
		return status
	}
	status.Available = true
	status.Detail = fmt.Sprintf("%d names loaded", resolver.Count())
	return status
}
