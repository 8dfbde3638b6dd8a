package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
)

var (
	serverAddr string
	timeout    time.Duration
	jsonOutput bool
	noColor    bool

	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "surgeopsctl",
	Short: "surgeopsctl - operator CLI for the SurgeOps port dashboard",
	Long: `surgeopsctl talks to a running surgeops server over gRPC.

Use it to inspect the live port snapshot and surge banner, run what-if
simulations, and accept or reject action plans.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("%v", err)
	}
	return err
}

func init() {
	defaultServer := os.Getenv("SURGEOPS_SERVER")
	if defaultServer == "" {
		defaultServer = "localhost:50051"
	}

	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", defaultServer, "surgeops gRPC address")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(
		newSnapshotCmd(),
		newStateCmd(),
		newSimulateCmd(),
		newResetCmd(),
		newMoveCmd(),
		newPlanCmd(),
		newHistoryCmd(),
		newWatchCmd(),
		newEventsCmd(),
	)
}

// withClient dials the server and runs fn with a bounded context.
func withClient(parent context.Context, fn func(ctx context.Context, client surgeopsv1.SurgeOpsClient) error) error {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", serverAddr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return fn(ctx, surgeopsv1.NewSurgeOpsClient(conn))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSuccess(format string, a ...any) {
	fmt.Printf("%s %s\n", green("[OK]"), fmt.Sprintf(format, a...))
}

func printError(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", red("[ERROR]"), fmt.Sprintf(format, a...))
}

func printWarning(format string, a ...any) {
	fmt.Printf("%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, a...))
}

func printHeader(text string) {
	fmt.Println(bold(text))
}
