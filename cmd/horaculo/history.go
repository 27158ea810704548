package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var (
		limit int
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if reset {
				if err := a.maintenance.Reset(cmd.Context()); err != nil {
					return fmt.Errorf("clear history: %w", err)
				}
				_, err := fmt.Fprintln(out, "History cleared.")
				return err
			}

			recs, err := a.history.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if len(recs) == 0 {
				_, err := fmt.Fprintln(out, "No searches yet.")
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("STARTED", "MODE", "QUERY", "STATUS", "TOOK")
			for _, r := range recs {
				took := "-"
				if d := r.Duration(); d > 0 {
					took = d.Round(time.Millisecond).String()
				}
				t.Row(r.StartedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Query, r.Status, took)
			}
			_, err = fmt.Fprintln(out, t.Render())
			return err
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of searches to show")
	cmd.Flags().BoolVar(&reset, "clear", false, "delete search history and cached results")
	return cmd
}
