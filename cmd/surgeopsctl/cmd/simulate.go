package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/portstack/surgeops/internal/api"
	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
)

func newSimulateCmd() *cobra.Command {
	var (
		magnitude float64
		region    string
		severity  string
	)
	cmd := &cobra.Command{
		Use:       "simulate surge|reroute|weather",
		Short:     "Inject a what-if scenario and refresh immediately",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"surge", "reroute", "weather"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.SimulateRequest{Kind: args[0], Magnitude: magnitude, Region: region, Severity: severity}
			if _, err := req.ToSimulation(); err != nil {
				return err
			}
			msg, err := api.ToStruct(req)
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
				resp, err := client.Simulate(ctx, msg)
				if err != nil {
					return err
				}
				snap, err := api.SnapshotFromStruct(resp)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(snap)
				}
				printSuccess("%s simulation applied", args[0])
				fmt.Println()
				printSnapshot(snap)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&magnitude, "magnitude", 0, "injection strength in (0, 1]; 0 uses the server default")
	cmd.Flags().StringVar(&region, "region", "", "reroute region (default Red Sea)")
	cmd.Flags().StringVar(&severity, "severity", "", "reroute severity LOW|MEDIUM|HIGH|CRITICAL")
	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore generator defaults and clear any simulated surge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
				resp, err := client.Reset(ctx, &emptypb.Empty{})
				if err != nil {
					return err
				}
				snap, err := api.SnapshotFromStruct(resp)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(snap)
				}
				printSuccess("generator reset, avg yard utilization %.1f%%", snap.KPIs.AvgYardUtilization)
				return nil
			})
		},
	}
}

func newMoveCmd() *cobra.Command {
	var teu int
	cmd := &cobra.Command{
		Use:   "move FROM TO",
		Short: "Move containers between yard blocks and refresh immediately",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.MoveRequest{From: args[0], To: args[1], TEU: teu}
			if _, _, _, err := req.Move(); err != nil {
				return err
			}
			msg, err := api.ToStruct(req)
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
				resp, err := client.MoveContainers(ctx, msg)
				if err != nil {
					return err
				}
				snap, err := api.SnapshotFromStruct(resp)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(snap)
				}
				for _, m := range snap.Moves {
					if m.TEU < m.Requested {
						printWarning("moved %d of %d TEU from %s to %s, target is full", m.TEU, m.Requested, m.From, m.To)
						continue
					}
					printSuccess("moved %d TEU from %s to %s", m.TEU, m.From, m.To)
				}
				fmt.Println()
				printSnapshot(snap)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&teu, "teu", 0, "containers to move, at least 1")
	return cmd
}
