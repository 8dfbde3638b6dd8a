package cmd

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/portstack/surgeops/internal/api"
	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
	"github.com/portstack/surgeops/internal/models"
	"github.com/portstack/surgeops/internal/mq"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream snapshots as the server refreshes them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("connect to %s: %w", serverAddr, err)
			}
			defer conn.Close()

			stream, err := surgeopsv1.NewSurgeOpsClient(conn).WatchSnapshots(ctx, &emptypb.Empty{})
			if err != nil {
				return err
			}
			for {
				msg, err := stream.Recv()
				if errors.Is(err, io.EOF) || ctx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				snap, err := api.SnapshotFromStruct(msg)
				if err != nil {
					return err
				}
				if jsonOutput {
					if err := printJSON(snap); err != nil {
						return err
					}
					continue
				}
				printSnapshotLine(snap)
			}
		},
	}
}

func newEventsCmd() *cobra.Command {
	var (
		brokers []string
		topic   string
		group   string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail surge transitions from Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(brokers) == 0 {
				return errors.New("at least one --broker is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reader := mq.NewReader(brokers, topic, group)
			defer reader.Close()

			for {
				msg, err := reader.ReadMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				t, err := mq.ParseMessageJSON[models.SurgeTransition](msg)
				if err != nil {
					printWarning("skipping undecodable message at offset %d: %v", msg.Offset, err)
					continue
				}
				if jsonOutput {
					if err := printJSON(t); err != nil {
						return err
					}
					continue
				}
				fmt.Printf("%s %s -> %s  %s\n", t.At.Local().Format("15:04:05"), t.From, cyan(string(t.To)), t.Reason)
			}
		},
	}
	cmd.Flags().StringSliceVar(&brokers, "broker", nil, "Kafka broker address (repeatable)")
	cmd.Flags().StringVar(&topic, "topic", "surgeops.surges", "transition topic")
	cmd.Flags().StringVar(&group, "group", "surgeopsctl", "consumer group id")
	return cmd
}

func printSnapshotLine(snap models.Snapshot) {
	surge := ""
	if snap.SurgeActive {
		surge = red(" SURGE")
	}
	critical := fmt.Sprintf("%d critical", snap.CriticalAlerts())
	if snap.CriticalAlerts() > 0 {
		critical = red(critical)
	}
	fmt.Printf("%s  util %5.1f%%  waiting %2d  %s  %s%s\n",
		snap.GeneratedAt.Local().Format("15:04:05"),
		snap.KPIs.AvgYardUtilization,
		snap.KPIs.WaitingVessels,
		critical,
		snap.Weather.Condition,
		surge,
	)
}
