package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"setlist/internal/store"
)

func newCandidatesCommand(ctx *commandContext) *cobra.Command {
	candidatesCmd := &cobra.Command{
		Use:   "candidates",
		Short: "Review keyword-matched candidate comments",
	}

	candidatesCmd.AddCommand(newCandidatesListCommand(ctx))
	candidatesCmd.AddCommand(newCandidatesApproveCommand(ctx))
	candidatesCmd.AddCommand(newCandidatesRejectCommand(ctx))

	return candidatesCmd
}

func newCandidatesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <video_id>",
		Short: "List stored candidates for a stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				candidates, err := st.CandidatesForStream(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No candidates stored")
					return nil
				}

				rows := make([][]string, 0, len(candidates))
				for _, candidate := range candidates {
					rows = append(rows, []string{
						strconv.FormatInt(candidate.ID, 10),
						truncate(dash(candidate.Author), 20),
						strings.Join(candidate.MatchedKeywords, ", "),
						string(candidate.Status),
						truncate(strings.ReplaceAll(candidate.Text, "\n", " "), 60),
					})
				}
				table := renderTable(
					[]string{"ID", "Author", "Keywords", "Status", "Text"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}
}

func newCandidatesApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <candidate_id>",
		Short: "Extract the song list from a candidate and approve it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := parseID(args[0])
			if !ok {
				return fmt.Errorf("invalid candidate id %q", args[0])
			}

			extractor, st, err := ctx.newExtractor()
			if err != nil {
				return err
			}
			candidate, err := st.GetCandidate(cmd.Context(), id)
			if err != nil {
				return err
			}
			result, err := extractor.ExtractFromCandidate(cmd.Context(), candidate.VideoID, id)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), *result)
			return nil
		},
	}
}

func newCandidatesRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <candidate_id>",
		Short: "Mark a candidate as rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := parseID(args[0])
			if !ok {
				return fmt.Errorf("invalid candidate id %q", args[0])
			}
			return ctx.withStore(func(st *store.Store) error {
				candidate, err := st.SetCandidateStatus(cmd.Context(), id, store.CandidateRejected)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Candidate %d rejected for %s\n", candidate.ID, candidate.VideoID)
				return nil
			})
		},
	}
}
