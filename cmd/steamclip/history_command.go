package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Nastas95/SteamClip/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past exports",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func withHistoryStore(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent exports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), limitFlag)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No exports recorded yet.")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					when := ""
					if !entry.CreatedAt.IsZero() {
						when = humanize.Time(entry.CreatedAt)
					}
					duration := ""
					if d := entry.Duration(); d > 0 {
						duration = d.Round(time.Millisecond).String()
					}
					detail := entry.OutputPath
					if entry.Error != "" {
						detail = entry.Error
					}
					rows = append(rows, []string{
						entry.Label,
						entry.Profile,
						entry.State,
						duration,
						when,
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Clip", "Profile", "Result", "Duration", "When", "Output / Error"},
					rows,
					3,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show export counts by result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				total := 0
				for _, state := range []string{"succeeded", "failed", "cancelled"} {
					fmt.Fprintf(out, "%-10s %d\n", state, stats[state])
					total += stats[state]
				}
				fmt.Fprintf(out, "%-10s %d\n", "total", total)
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all export history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(ctx, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
				return nil
			})
		},
	}
}
