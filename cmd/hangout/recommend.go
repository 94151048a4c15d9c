package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func recommendCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print event and friend recommendations for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			events, err := c.svc.RecommendEvents(ctx, userID)
			if err != nil {
				return err
			}
			friends, err := c.svc.RecommendFriends(ctx, userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Events (%s)\n", events.Status)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, it := range events.Items {
				fmt.Fprintf(tw, "  %.0f\t%s\t%s\t%s\n", it.Score, it.Candidate.Title,
					it.Candidate.Date.Format("2006-01-02 15:04"), strings.Join(it.SharedTags, ", "))
			}
			_ = tw.Flush()

			fmt.Fprintf(out, "Friends (%s)\n", friends.Status)
			tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, it := range friends.Items {
				fmt.Fprintf(tw, "  %.1f\t%s\t%s\n", it.Score, it.Candidate.FullName, strings.Join(it.SharedTags, ", "))
			}
			_ = tw.Flush()
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
