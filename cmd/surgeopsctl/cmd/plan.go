package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/portstack/surgeops/internal/api"
	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Open, accept or reject the surge action plan",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "open",
			Short: "Open an action plan for the detected surge",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
					resp, err := client.OpenActionPlan(ctx, &emptypb.Empty{})
					if err != nil {
						return err
					}
					return showState(resp, "action plan opened")
				})
			},
		},
		newResolveCmd("accept", true),
		newResolveCmd("reject", false),
	)
	return cmd
}

func newResolveCmd(use string, accept bool) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   use,
		Short: "Mark the open action plan as " + use + "ed",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := structpb.NewStruct(map[string]any{"accept": accept, "notes": notes})
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
				resp, err := client.ResolveActionPlan(ctx, req)
				if err != nil {
					return err
				}
				return showState(resp, "action plan "+use+"ed")
			})
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "operator notes stored with the decision")
	return cmd
}

func showState(resp *structpb.Struct, message string) error {
	state, err := api.StateFromStruct(resp)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(state)
	}
	printSuccess("%s", message)
	printState(state)
	return nil
}
