package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"setlist/internal/sources"
	"setlist/internal/store"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var skipFetch bool

	cmd := &cobra.Command{
		Use:   "add <video_id>...",
		Short: "Register streams in the cache as discovered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				out := cmd.OutOrStdout()

				var client *sources.Client
				if !skipFetch {
					var err error
					if client, err = ctx.newFetchClient(); err != nil {
						return err
					}
				}

				for _, videoID := range args {
					stream := &store.Stream{VideoID: videoID}

					if client != nil {
						meta, err := client.Metadata(cmd.Context(), videoID)
						if err != nil {
							fmt.Fprintf(out, "Metadata fetch failed for %s: %v\n", videoID, err)
						} else {
							stream.Title = meta.Title
							stream.ChannelID = meta.ChannelID
							stream.RawDescription = meta.Description
							if meta.UploadDate != "" {
								stream.Date = meta.UploadDate
								stream.DateSource = store.DatePrecise
							}
						}
					}

					saved, err := st.UpsertStream(cmd.Context(), stream)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Stream %s registered (%s)\n", saved.VideoID, saved.Status)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipFetch, "no-fetch", false, "Register without fetching metadata")
	return cmd
}
