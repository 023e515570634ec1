package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"setlist/internal/extract"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var candidateID int64

	cmd := &cobra.Command{
		Use:   "extract [video_id]",
		Short: "Extract song lists from comments and descriptions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case all && len(args) > 0:
				return errors.New("--all takes no video id")
			case all && candidateID > 0:
				return errors.New("--all and --candidate are mutually exclusive")
			case !all && len(args) == 0:
				return errors.New("a video id is required unless --all is given")
			}

			extractor, _, err := ctx.newExtractor()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if all {
				results, err := extractor.ExtractAllDiscovered(cmd.Context())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintln(out, "No discovered streams to extract")
					return nil
				}
				for _, result := range results {
					printResult(out, result)
				}
				return nil
			}

			videoID := args[0]
			var result *extract.Result
			if candidateID > 0 {
				result, err = extractor.ExtractFromCandidate(cmd.Context(), videoID, candidateID)
			} else {
				result, err = extractor.Extract(cmd.Context(), videoID)
			}
			if err != nil {
				return err
			}
			printResult(out, *result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Extract every discovered stream")
	cmd.Flags().Int64Var(&candidateID, "candidate", 0, "Extract from a stored candidate comment id")
	return cmd
}

func printResult(out io.Writer, result extract.Result) {
	source := string(result.Source)
	if source == "" {
		source = "none"
	}
	fmt.Fprintf(out, "%s: %d songs (source=%s, status=%s)\n",
		result.VideoID, len(result.Songs), source, result.Status)
}
