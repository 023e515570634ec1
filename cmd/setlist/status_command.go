package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"setlist/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show stream counts per lifecycle status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				counts, err := st.StatusCounts(cmd.Context())
				if err != nil {
					return err
				}

				if jsonOutput {
					payload := make(map[string]int, len(counts))
					for status, count := range counts {
						payload[string(status)] = count
					}
					return writeJSON(cmd.OutOrStdout(), payload)
				}

				total := 0
				rows := make([][]string, 0, len(store.AllStatuses()))
				for _, status := range store.AllStatuses() {
					rows = append(rows, []string{string(status), strconv.Itoa(counts[status])})
					total += counts[status]
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})

				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit counts as JSON")
	return cmd
}
