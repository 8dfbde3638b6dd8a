package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/portstack/surgeops/internal/api"
	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
	"github.com/portstack/surgeops/internal/models"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Show the latest port snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
				resp, err := client.GetSnapshot(ctx, &emptypb.Empty{})
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
				printSnapshot(snap)
				return nil
			})
		},
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the surge banner state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error {
				resp, err := client.GetSurgeState(ctx, &emptypb.Empty{})
				if err != nil {
					return err
				}
				state, err := api.StateFromStruct(resp)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(state)
				}
				printState(state)
				return nil
			})
		},
	}
}

func printSnapshot(snap models.Snapshot) {
	printHeader(fmt.Sprintf("Port snapshot %s", snap.GeneratedAt.Format("2006-01-02 15:04:05")))
	surge := green("no")
	if snap.SurgeActive {
		surge = red("yes")
	}
	fmt.Printf("  avg yard utilization  %.1f%%\n", snap.KPIs.AvgYardUtilization)
	fmt.Printf("  waiting vessels       %d\n", snap.KPIs.WaitingVessels)
	fmt.Printf("  active alerts         %d\n", snap.KPIs.ActiveAlerts)
	fmt.Printf("  TEU processed (24h)   %d\n", snap.KPIs.TEUProcessed24h)
	fmt.Printf("  simulated surge       %s\n", surge)
	fmt.Printf("  weather               %s, %.0f°C, wind %.1f m/s (%s impact)\n",
		snap.Weather.Condition, snap.Weather.Temperature, snap.Weather.WindSpeed, snap.Weather.OperationalImpact)

	fmt.Println()
	printHeader("Yard blocks")
	for _, b := range snap.YardBlocks {
		drawBar(fmt.Sprintf("%s (%s)", b.Code, b.Category), b.Utilization, b.Status, 30)
	}

	if len(snap.Alerts) > 0 {
		fmt.Println()
		printHeader("Alerts")
		for _, a := range snap.Alerts {
			fmt.Printf("  %s %s\n", severityLabel(a.Severity), a.Message)
			if a.Suggestion != nil {
				fmt.Printf("      %s %s -> %s, %d TEU\n", cyan(a.Suggestion.Action), a.Suggestion.From, a.Suggestion.To, a.Suggestion.TEU)
			}
		}
	}
}

func printState(state models.SurgeState) {
	phase := green(string(state.Phase))
	switch state.Phase {
	case models.PhaseSurgeDetected:
		phase = yellow(string(state.Phase))
	case models.PhaseActionPlanOpen:
		phase = red(string(state.Phase))
	}
	printHeader("Surge banner")
	fmt.Printf("  phase            %s (since %s)\n", phase, state.Since.Format("15:04:05"))
	fmt.Printf("  surge detected   %v\n", state.SurgeDetected)
	fmt.Printf("  waiting vessels  %d\n", state.WaitingVessels)
	fmt.Printf("  critical alerts  %d\n", state.CriticalAlerts)
	if state.Reason != "" {
		fmt.Printf("  reason           %s\n", state.Reason)
	}
	if state.Plan == nil {
		return
	}
	fmt.Println()
	printHeader(fmt.Sprintf("Action plan %s", state.Plan.ID))
	for _, rec := range state.Plan.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	for _, tr := range state.Plan.Transfers {
		fmt.Printf("  %s %s -> %s, %d TEU\n", cyan("transfer"), tr.From, tr.To, tr.TEU)
	}
	if len(state.Plan.HotBlocks) > 0 {
		fmt.Printf("  hot blocks: %s\n", strings.Join(state.Plan.HotBlocks, ", "))
	}
}

func drawBar(label string, value float64, status models.BlockStatus, width int) {
	filled := int(value / 100 * float64(width))
	filled = max(0, min(width, filled))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	c := color.New(color.FgGreen)
	switch status {
	case models.BlockCritical:
		c = color.New(color.FgRed)
	case models.BlockWarning:
		c = color.New(color.FgYellow)
	}

	fmt.Printf("  %-16s [", label)
	c.Printf("%s", bar)
	fmt.Printf("] %.1f%%\n", value)
}

func severityLabel(sev models.AlertSeverity) string {
	label := fmt.Sprintf("[%s]", sev)
	switch sev {
	case models.AlertCritical:
		return red(label)
	case models.AlertHigh:
		return yellow(label)
	default:
		return cyan(label)
	}
}
