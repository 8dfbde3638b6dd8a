package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/portstack/surgeops/internal/api"
	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit int
		since time.Duration
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List surge banner transitions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.HistoryRequest{Limit: limit}
			if since > 0 {
				req.Since = time.Now().Add(-since).UTC().Format(time.RFC3339)
			}
			msg, err := api.ToStruct(req)
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
				resp, err := client.ListTransitions(ctx, msg)
				if err != nil {
					return err
				}
				var list api.TransitionList
				if err := api.FromStruct(resp, &list); err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(list)
				}
				if len(list.Items) == 0 {
					printWarning("no surge transitions recorded")
					return nil
				}
				printHeader(fmt.Sprintf("%-20s %-18s %-18s %s", "AT", "FROM", "TO", "REASON"))
				for _, t := range list.Items {
					fmt.Printf("%-20s %-18s %-18s %s\n", t.At.Local().Format("2006-01-02 15:04:05"), t.From, cyan(string(t.To)), t.Reason)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum transitions to list")
	cmd.Flags().DurationVar(&since, "since", 0, "only list transitions newer than this duration")
	return cmd
}
