package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"setlist/internal/store"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check cache database integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				health, err := st.CheckHealth(cmd.Context())
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:  %s\n", health.DBPath)
				fmt.Fprintf(out, "Exists:    %s\n", yesNo(health.DatabaseExists))
				fmt.Fprintf(out, "Readable:  %s\n", yesNo(health.DatabaseReadable))
				fmt.Fprintf(out, "Integrity: %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "Streams:   %d\n", health.TotalStreams)
				if len(health.MissingTables) > 0 {
					fmt.Fprintf(out, "Missing:   %s\n", strings.Join(health.MissingTables, ", "))
				}
				if health.Error != "" {
					fmt.Fprintf(out, "Error:     %s\n", health.Error)
				}
				return err
			})
		},
	}
}
