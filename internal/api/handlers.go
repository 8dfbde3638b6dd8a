package api

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/portstack/surgeops/internal/models"
	"github.com/portstack/surgeops/internal/repo"
	"github.com/portstack/surgeops/internal/utils"
)

// SimulateRequest is the wire form of a simulation.
type SimulateRequest struct {
	Kind      string  `json:"kind"`
	Magnitude float64 `json:"magnitude,omitempty"`
	Region    string  `json:"region,omitempty"`
	Severity  string  `json:"severity,omitempty"`
}

// ResolveRequest is the wire form of a plan decision.
type ResolveRequest struct {
	Accept *bool  `json:"accept"`
	Notes  string `json:"notes,omitempty"`
}

// MoveRequest is the wire form of a container move between yard blocks.
type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	TEU  int    `json:"teu"`
}

// HistoryRequest selects transitions from the history store.
type HistoryRequest struct {
	Since string `json:"since,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// ToSimulation validates the request and maps it into a domain Simulation.
func (r SimulateRequest) ToSimulation() (models.Simulation, error) {
	kind := models.SimulationKind(strings.ToLower(strings.TrimSpace(r.Kind)))
	switch kind {
	case models.SimulateSurge, models.SimulateReroute, models.SimulateWeather:
	case "":
		return models.Simulation{}, fmt.Errorf("kind is required")
	default:
		return models.Simulation{}, fmt.Errorf("unknown simulation kind %q", r.Kind)
	}
	if math.IsNaN(r.Magnitude) || r.Magnitude < 0 || r.Magnitude > 1 {
		return models.Simulation{}, fmt.Errorf("magnitude must be within [0, 1], got %v", r.Magnitude)
	}

	sim := models.Simulation{Kind: kind, Magnitude: r.Magnitude, Region: strings.TrimSpace(r.Region)}
	if r.Severity != "" {
		sev, ok := models.ParseAlertSeverity(r.Severity)
		if !ok {
			return models.Simulation{}, fmt.Errorf("unknown severity %q", r.Severity)
		}
		sim.Severity = sev
	}
	return sim, nil
}

// Decision validates the request and returns accept and notes.
func (r ResolveRequest) Decision() (bool, string, error) {
	if r.Accept == nil {
		return false, "", fmt.Errorf("accept is required")
	}
	return *r.Accept, strings.TrimSpace(r.Notes), nil
}

// Move validates the request and returns the normalised block codes and TEU.
func (r MoveRequest) Move() (string, string, int, error) {
	from := strings.ToUpper(strings.TrimSpace(r.From))
	to := strings.ToUpper(strings.TrimSpace(r.To))
	switch {
	case from == "" || to == "":
		return "", "", 0, fmt.Errorf("from and to are required")
	case r.TEU < 1:
		return "", "", 0, fmt.Errorf("teu must be at least 1, got %d", r.TEU)
	}
	return from, to, r.TEU, nil
}

// Window validates the request and returns the since bound and limit.
func (r HistoryRequest) Window() (time.Time, int, error) {
	if r.Limit < 0 {
		return time.Time{}, 0, fmt.Errorf("limit must not be negative")
	}
	var since time.Time
	if r.Since != "" {
		parsed, err := utils.ParseRFC3339(r.Since)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("since: %w", err)
		}
		since = parsed
	}
	return since, repo.NormaliseLimit(r.Limit), nil
}

// ToStruct converts any JSON-encodable value into a structpb.Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	return structpb.NewStruct(fields)
}

// FromStruct decodes a structpb.Struct into dst using its JSON tags.
func FromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return fmt.Errorf("request is nil")
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// SimulationFromStruct maps a gRPC simulate request into a domain Simulation.
func SimulationFromStruct(s *structpb.Struct) (models.Simulation, error) {
	var req SimulateRequest
	if err := FromStruct(s, &req); err != nil {
		return models.Simulation{}, err
	}
	return req.ToSimulation()
}

// DecisionFromStruct maps a gRPC resolve request.
func DecisionFromStruct(s *structpb.Struct) (bool, string, error) {
	var req ResolveRequest
	if err := FromStruct(s, &req); err != nil {
		return false, "", err
	}
	return req.Decision()
}

// MoveFromStruct maps a gRPC move request.
func MoveFromStruct(s *structpb.Struct) (string, string, int, error) {
	var req MoveRequest
	if err := FromStruct(s, &req); err != nil {
		return "", "", 0, err
	}
	return req.Move()
}

// WindowFromStruct maps a gRPC history request. A nil request lists the
// default window.
func WindowFromStruct(s *structpb.Struct) (time.Time, int, error) {
	var req HistoryRequest
	if s != nil {
		if err := FromStruct(s, &req); err != nil {
			return time.Time{}, 0, err
		}
	}
	return req.Window()
}

// SnapshotFromStruct decodes a streamed or returned snapshot.
func SnapshotFromStruct(s *structpb.Struct) (models.Snapshot, error) {
	var snap models.Snapshot
	err := FromStruct(s, &snap)
	return snap, err
}

// StateFromStruct decodes a returned surge state.
func StateFromStruct(s *structpb.Struct) (models.SurgeState, error) {
	var state models.SurgeState
	err := FromStruct(s, &state)
	return state, err
}

// TransitionList wraps transitions so they travel as a single object.
type TransitionList struct {
	Items []models.SurgeTransition `json:"items"`
}
