package cmd

import (
	"strings"
	"testing"
)

func TestSimulateValidatesBeforeDialing(t *testing.T) {
	cases := map[string][]string{
		"magnitude": {"simulate", "surge", "--magnitude", "3", "--severity", ""},
		"severity":  {"simulate", "reroute", "--magnitude", "0", "--severity", "urgent"},
		"kind":      {"simulate", "flood", "--magnitude", "0", "--severity", ""},
	}
	for want, args := range cases {
		rootCmd.SetArgs(append(args, "--server", "127.0.0.1:1"))
		err := rootCmd.Execute()
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%v: expected %s error, got %v", args, want, err)
		}
	}
}

func TestMoveValidatesBeforeDialing(t *testing.T) {
	rootCmd.SetArgs([]string{"move", "B1", "B5", "--teu", "0", "--server", "127.0.0.1:1"})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "teu") {
		t.Fatalf("expected teu error, got %v", err)
	}
}

func TestEventsRequiresBroker(t *testing.T) {
	rootCmd.SetArgs([]string{"events"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
