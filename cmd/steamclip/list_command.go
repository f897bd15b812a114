package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Nastas95/SteamClip/internal/clips"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var steamIDFlag string
	var gameFlag string
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded clips available for export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
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
			if len(captures) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No clips found.")
				return nil
			}

			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}

			labels := make([]string, len(captures))
			for i, capture := range captures {
				labels[i] = resolver.Label(capture.GameID)
			}

			order, err := captureOrder(labels, sortFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Game", "Type", "Recorded", "Size", "Path"},
				buildListRows(captures, labels, order),
				0, 4,
			))
			fmt.Fprintf(out, "%d clip(s) for account %s\n", len(captures), steamID)
			return nil
		},
	}

	cmd.Flags().StringVar(&steamIDFlag, "steamid", "", "Steam account ID to list")
	cmd.Flags().StringVar(&gameFlag, "game", "", "Only list clips for this game ID")
	cmd.Flags().StringVar(&sortFlag, "sort", "date", "Sort order: date or game")
	return cmd
}

// captureOrder returns the display order as indices into the date-ordered
// capture slice. Sorting only rearranges rows; the clip numbers shown stay
// tied to the date-order position, which is what the export command resolves.
func captureOrder(labels []string, sortMode string) ([]int, error) {
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	switch sortMode {
	case "date", "":
		// DiscoverCaptures already returns newest first.
	case "game":
		collator := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(order, func(a, b int) bool {
			return collator.CompareString(labels[order[a]], labels[order[b]]) < 0
		})
	default:
		return nil, fmt.Errorf("unknown sort order %q (expected date or game)", sortMode)
	}
	return order, nil
}

func buildListRows(captures []clips.CaptureFolder, labels []string, order []int) [][]string {
	rows := make([][]string, 0, len(order))
	for _, idx := range order {
		capture := captures[idx]
		recorded := "unknown"
		if capture.HasTimestamp() {
			recorded = capture.Timestamp.Format("2006-01-02 15:04:05")
		}
		rows = append(rows, []string{
			strconv.Itoa(idx + 1),
			labels[idx],
			recordingTypeLabel(capture.Type),
			recorded,
			humanize.Bytes(uint64(dirSize(capture.Path))),
			capture.Path,
		})
	}
	return rows
}
