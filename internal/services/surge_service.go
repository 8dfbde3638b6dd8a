package services

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/portstack/surgeops/internal/api"
	"github.com/portstack/surgeops/internal/dashboard"
	"github.com/portstack/surgeops/internal/generator"
	surgeopsv1 "github.com/portstack/surgeops/internal/grpc/surgeopsv1"
)

// SurgeService implements the gRPC SurgeOps service over the dashboard
// controller.
type SurgeService struct {
	surgeopsv1.UnimplementedSurgeOpsServer

	logger *slog.Logger
	dash   api.Dashboard
}

// NewSurgeService constructs the SurgeOps service facade.
func NewSurgeService(logger *slog.Logger, dash api.Dashboard) *SurgeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SurgeService{logger: logger, dash: dash}
}

// GetSnapshot returns the latest snapshot.
func (s *SurgeService) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.dash == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	snap, ok := s.dash.Snapshot()
	if !ok {
		return nil, status.Error(codes.Unavailable, dashboard.ErrNoSnapshot.Error())
	}
	return s.encode(snap)
}

// GetSurgeState returns the banner state.
func (s *SurgeService) GetSurgeState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.dash == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	return s.encode(s.dash.State())
}

// Simulate applies a what-if injection and returns the refreshed snapshot.
func (s *SurgeService) Simulate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	if s.dash == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	sim, err := api.SimulationFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Debug("Simulate called", slog.String("kind", string(sim.Kind)), slog.Float64("magnitude", sim.Magnitude))
	snap, err := s.dash.Simulate(ctx, sim)
	if err != nil {
		return nil, s.statusFor("simulate", err)
	}
	return s.encode(snap)
}

// Reset restores generator defaults.
func (s *SurgeService) Reset(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.dash == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	snap, err := s.dash.Reset(ctx)
	if err != nil {
		return nil, s.statusFor("reset", err)
	}
	return s.encode(snap)
}

// MoveContainers transfers TEU between yard blocks and returns the refreshed
// snapshot.
func (s *SurgeService) MoveContainers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	if s.dash == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	from, to, teu, err := api.MoveFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Debug("MoveContainers called", slog.String("from", from), slog.String("to", to), slog.Int("teu", teu))
	snap, err := s.dash.MoveContainers(ctx, from, to, teu)
	if err != nil {
		return nil, s.statusFor("move containers", err)
	}
	return s.encode(snap)
}

// OpenActionPlan opens a plan for the detected surge.
func (s *SurgeService) OpenActionPlan(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.dash == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	state, err := s.dash.OpenActionPlan(ctx)
	if err != nil {
		return nil, s.statusFor("open action plan", err)
	}
	return s.encode(state)
}

// ResolveActionPlan accepts or rejects the open plan.
func (s *SurgeService) ResolveActionPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	if s.dash == nil {
		return nil, status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	accept, notes, err := api.DecisionFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	state, err := s.dash.ResolveActionPlan(ctx, accept, notes)
	if err != nil {
		return nil, s.statusFor("resolve action plan", err)
	}
	return s.encode(state)
}

// ListTransitions returns banner history, newest first.
func (s *SurgeService) ListTransitions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.dash == nil || s.dash.History() == nil {
		return nil, status.Error(codes.FailedPrecondition, "history repository not configured")
	}
	since, limit, err := api.WindowFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	items, err := s.dash.History().ListTransitions(ctx, since, limit)
	if err != nil {
		s.logger.Error("list transitions failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to list transitions")
	}
	return s.encode(api.TransitionList{Items: items})
}

// WatchSnapshots streams every refreshed snapshot until the client goes away
// or the dashboard stops.
func (s *SurgeService) WatchSnapshots(_ *emptypb.Empty, stream surgeopsv1.SurgeOps_WatchSnapshotsServer) error {
	if s.dash == nil {
		return status.Error(codes.FailedPrecondition, "dashboard not configured")
	}
	updates := s.dash.Subscribe()
	defer s.dash.Unsubscribe(updates)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return status.Error(codes.Unavailable, dashboard.ErrStopped.Error())
			}
			msg, err := s.encode(snap)
			if err != nil {
				return err
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

func (s *SurgeService) encode(v any) (*structpb.Struct, error) {
	msg, err := api.ToStruct(v)
	if err != nil {
		s.logger.Error("encode response failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return msg, nil
}

func (s *SurgeService) statusFor(op string, err error) error {
	switch {
	case errors.Is(err, dashboard.ErrInvalidSimulation), errors.Is(err, generator.ErrInvalidMagnitude),
		errors.Is(err, generator.ErrInvalidMove):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, dashboard.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, dashboard.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error(op+" failed", slog.Any("error", err))
	return status.Error(codes.Internal, op+" failed")
}
