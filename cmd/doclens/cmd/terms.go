package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens/internal/match"
)

// addTermFlags registers the term flags shared by locate, scan and print.
func addTermFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("hit", nil, "hit term to locate (repeatable)")
	cmd.Flags().StringSlice("context", nil, "context term to locate (repeatable)")
	cmd.Flags().Bool("strict", false, "strict mode: style context matches as plain text")
}

// termSetFromFlags builds the TermSet from the command's term flags.
func termSetFromFlags(cmd *cobra.Command) (match.TermSet, error) {
	hits, _ := cmd.Flags().GetStringSlice("hit")
	context, _ := cmd.Flags().GetStringSlice("context")
	strict, _ := cmd.Flags().GetBool("strict")

	ts := match.NewTermSet(hits, context)
	ts.Strict = strict
	if ts.IsEmpty() {
		return ts, errors.New("at least one --hit or --context term is required")
	}
	return ts, nil
}
