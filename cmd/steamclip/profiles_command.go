package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nastas95/SteamClip/internal/ffmpeg"
	"github.com/Nastas95/SteamClip/internal/profiles"
)

func newProfilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "Show encoding profiles and their availability on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			probe := ffmpeg.NewProbe(cfg.FFmpegBinary())
			available, err := profiles.Detect(cmd.Context(), probe)
			if err != nil {
				return fmt.Errorf("probe encoders: %w", err)
			}

			rows := make([][]string, 0, len(profiles.All()))
			for _, profile := range profiles.All() {
				encoder := profile.Encoder
				if encoder == "" {
					encoder = "(stream copy)"
				}
				rows = append(rows, []string{
					profile.Key,
					profile.DisplayName,
					encoder,
					yesNo(profiles.Contains(available, profile.Key)),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Profile", "Name", "Encoder", "Available"},
				rows,
			))
			fmt.Fprintf(out, "Default profile: %s\n", cfg.Export.Profile)
			return nil
		},
	}
}
