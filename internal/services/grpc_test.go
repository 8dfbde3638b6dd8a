package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/portstack/surgeops/internal/api"
	"github.com/portstack/surgeops/internal/config"
	"github.com/portstack/surgeops/internal/dashboard"
	"github.com/portstack/surgeops/internal/generator"
	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
)

func TestSurgeOpsOverGRPC(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen, err := generator.New(generator.WithSeed(3))
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	cfg := dashboard.DefaultConfig()
	cfg.RefreshInterval = 20 * time.Millisecond
	dash, err := dashboard.New(gen, dashboard.WithConfig(cfg), dashboard.WithLogger(logger))
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = dash.Run(ctx) }()

	server, err := api.NewServer(config.ServerConfig{Address: "127.0.0.1:0"}, NewSurgeService(logger, dash))
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	go func() { _ = server.Start() }()
	defer server.Shutdown(context.Background())

	conn, err := grpc.NewClient(server.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := surgeopsv1.NewSurgeOpsClient(conn)

	callCtx, callCancel := context.WithTimeout(ctx, 5*time.Second)
	defer callCancel()

	health, err := healthpb.NewHealthClient(conn).Check(callCtx, &healthpb.HealthCheckRequest{Service: surgeopsv1.ServiceName})
	if err != nil || health.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected serving health, got %v (%v)", health.GetStatus(), err)
	}

	stream, err := client.WatchSnapshots(callCtx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	req, _ := structpb.NewStruct(map[string]any{"kind": "surge", "magnitude": 0.6})
	resp, err := client.Simulate(callCtx, req)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	snap, err := api.SnapshotFromStruct(resp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.SurgeActive {
		t.Fatalf("expected surge snapshot")
	}

	for {
		msg, err := stream.Recv()
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		streamed, err := api.SnapshotFromStruct(msg)
		if err != nil {
			t.Fatalf("decode streamed: %v", err)
		}
		if streamed.SurgeActive {
			break
		}
	}

	bad, _ := structpb.NewStruct(map[string]any{"kind": "surge", "magnitude": 2})
	if _, err := client.Simulate(callCtx, bad); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	stateMsg, err := client.GetSurgeState(callCtx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if _, err := api.StateFromStruct(stateMsg); err != nil {
		t.Fatalf("decode state: %v", err)
	}
}
