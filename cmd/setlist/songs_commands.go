package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"setlist/internal/songtext"
	"setlist/internal/store"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	songsCmd := &cobra.Command{
		Use:   "songs",
		Short: "Edit parsed songs",
	}

	songsCmd.AddCommand(newSongsSetEndCommand(ctx))
	songsCmd.AddCommand(newSongsSetDurationCommand(ctx))
	songsCmd.AddCommand(newSongsDeleteCommand(ctx))

	return songsCmd
}

func newSongsSetEndCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-end <song_id> <timestamp>",
		Short: "Set a song's end timestamp (marked as a manual edit)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := parseID(args[0])
			if !ok {
				return fmt.Errorf("invalid song id %q", args[0])
			}
			seconds, ok := songtext.ParseTimestamp(args[1])
			if !ok {
				return fmt.Errorf("invalid timestamp %q", args[1])
			}
			end := songtext.FormatSeconds(seconds)

			return ctx.withStore(func(st *store.Store) error {
				song, err := st.SetSongEnd(cmd.Context(), id, end, true)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Song %d (%s) now ends at %s\n", song.ID, song.SongName, song.EndTimestamp)
				return nil
			})
		},
	}
}

func newSongsSetDurationCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-duration <song_id> <seconds>",
		Short: "Record a song's canonical duration in seconds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := parseID(args[0])
			if !ok {
				return fmt.Errorf("invalid song id %q", args[0])
			}
			seconds, err := strconv.Atoi(args[1])
			if err != nil || seconds <= 0 {
				return fmt.Errorf("invalid duration %q", args[1])
			}

			return ctx.withStore(func(st *store.Store) error {
				song, err := st.SetSongDuration(cmd.Context(), id, seconds)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Song %d (%s) duration set to %ds\n", song.ID, song.SongName, seconds)
				return nil
			})
		},
	}
}

func newSongsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <song_id>",
		Short: "Delete a song and close the ordering gap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := parseID(args[0])
			if !ok {
				return fmt.Errorf("invalid song id %q", args[0])
			}
			return ctx.withStore(func(st *store.Store) error {
				if err := st.DeleteSong(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed song %d\n", id)
				return nil
			})
		},
	}
}
