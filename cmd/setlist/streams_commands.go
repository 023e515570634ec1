package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"setlist/internal/store"
)

func newStreamsCommand(ctx *commandContext) *cobra.Command {
	streamsCmd := &cobra.Command{
		Use:   "streams",
		Short: "Inspect and manage cached streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreamsList(ctx, cmd, nil, false)
		},
	}

	streamsCmd.AddCommand(newStreamsListCommand(ctx))
	streamsCmd.AddCommand(newStreamsSetStatusCommand(ctx))
	streamsCmd.AddCommand(newStreamsDeleteCommand(ctx))

	return streamsCmd
}

func newStreamsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached streams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreamsList(ctx, cmd, statusFilters, jsonOutput)
		},
	}

	cmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by lifecycle status (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit streams as JSON")
	return cmd
}

func runStreamsList(ctx *commandContext, cmd *cobra.Command, statusFilters []string, jsonOutput bool) error {
	statuses := make([]store.Status, 0, len(statusFilters))
	for _, filter := range statusFilters {
		status, ok := store.ParseStatus(filter)
		if !ok {
			return fmt.Errorf("unknown status %q", filter)
		}
		statuses = append(statuses, status)
	}

	return ctx.withStore(func(st *store.Store) error {
		streams, err := st.ListStreams(cmd.Context(), statuses...)
		if err != nil {
			return err
		}
		if len(streams) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No streams in the cache")
			return nil
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), streamsPayload(streams))
		}

		rows := make([][]string, 0, len(streams))
		for _, stream := range streams {
			rows = append(rows, []string{
				stream.VideoID,
				truncate(dash(stream.Title), 48),
				dash(stream.Date),
				string(stream.Status),
				dash(string(stream.Source)),
				formatTime(stream.UpdatedAt),
			})
		}
		table := renderTable(
			[]string{"Video", "Title", "Date", "Status", "Source", "Updated"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
		)
		fmt.Fprintln(cmd.OutOrStdout(), table)
		return nil
	})
}

type streamPayload struct {
	VideoID    string `json:"video_id"`
	ChannelID  string `json:"channel_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Date       string `json:"date,omitempty"`
	DateSource string `json:"date_source,omitempty"`
	Status     string `json:"status"`
	Source     string `json:"source,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

func streamsPayload(streams []*store.Stream) []streamPayload {
	payload := make([]streamPayload, 0, len(streams))
	for _, stream := range streams {
		payload = append(payload, streamPayload{
			VideoID:    stream.VideoID,
			ChannelID:  stream.ChannelID,
			Title:      stream.Title,
			Date:       stream.Date,
			DateSource: string(stream.DateSource),
			Status:     string(stream.Status),
			Source:     string(stream.Source),
			UpdatedAt:  formatTime(stream.UpdatedAt),
		})
	}
	return payload
}

func newStreamsSetStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <video_id> <status>",
		Short: "Move a stream to a new lifecycle status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, ok := store.ParseStatus(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}
			return ctx.withStore(func(st *store.Store) error {
				stream, err := st.SetStatus(cmd.Context(), args[0], status)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stream %s is now %s\n", stream.VideoID, stream.Status)
				return nil
			})
		},
	}
}

func newStreamsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <video_id>",
		Short: "Remove a stream and its songs from the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				removed, err := st.DeleteStream(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Stream %s not found\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed stream %s\n", args[0])
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <video_id>",
		Short: "Show one stream with its parsed songs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				stream, err := st.GetStream(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				songs, err := st.SongsForStream(cmd.Context(), stream.VideoID)
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"stream": streamsPayload([]*store.Stream{stream})[0],
						"songs":  songsPayload(songs),
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Video:   %s\n", stream.VideoID)
				fmt.Fprintf(out, "Title:   %s\n", dash(stream.Title))
				fmt.Fprintf(out, "Channel: %s\n", dash(stream.ChannelID))
				fmt.Fprintf(out, "Date:    %s", dash(stream.Date))
				if stream.DateSource != "" {
					fmt.Fprintf(out, " (%s)", stream.DateSource)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Status:  %s\n", stream.Status)
				fmt.Fprintf(out, "Source:  %s\n", dash(string(stream.Source)))
				if stream.CommentAuthor != "" {
					fmt.Fprintf(out, "Comment: %s (%s)\n", stream.CommentAuthor, dash(stream.CommentID))
				}

				if len(songs) == 0 {
					fmt.Fprintln(out, "No parsed songs")
					return nil
				}

				rows := make([][]string, 0, len(songs))
				for _, song := range songs {
					duration := "-"
					if song.Duration != nil {
						duration = strconv.Itoa(*song.Duration) + "s"
					}
					rows = append(rows, []string{
						strconv.FormatInt(song.ID, 10),
						strconv.Itoa(song.OrderIndex),
						song.StartTimestamp,
						dash(song.EndTimestamp),
						yesNo(song.ManualEnd),
						truncate(song.SongName, 40),
						truncate(dash(song.Artist), 24),
						duration,
					})
				}
				table := renderTable(
					[]string{"ID", "#", "Start", "End", "Manual", "Song", "Artist", "Duration"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the stream as JSON")
	return cmd
}

type songPayload struct {
	ID         int64  `json:"id"`
	OrderIndex int    `json:"order_index"`
	Start      string `json:"start"`
	End        string `json:"end,omitempty"`
	ManualEnd  bool   `json:"manual_end"`
	SongName   string `json:"song_name"`
	Artist     string `json:"artist,omitempty"`
	Note       string `json:"note,omitempty"`
	Duration   *int   `json:"duration,omitempty"`
}

func songsPayload(songs []*store.ParsedSong) []songPayload {
	payload := make([]songPayload, 0, len(songs))
	for _, song := range songs {
		payload = append(payload, songPayload{
			ID:         song.ID,
			OrderIndex: song.OrderIndex,
			Start:      song.StartTimestamp,
			End:        song.EndTimestamp,
			ManualEnd:  song.ManualEnd,
			SongName:   song.SongName,
			Artist:     song.Artist,
			Note:       song.Note,
			Duration:   song.Duration,
		})
	}
	return payload
}
