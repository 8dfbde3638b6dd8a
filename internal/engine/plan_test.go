package engine

import (
	"testing"
	"time"

	"github.com/portstack/surgeops/internal/models"
)

func TestPlanBuilderBuild(t *testing.T) {
	rules, err := ParseRules([]byte(`rules:
  - id: crit
    match:
      min_critical_blocks: 1
    recommendations: ["Transfer containers"]
`), nil)
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	at := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	builder := NewPlanBuilder(nil, rules, WithPlanClock(func() time.Time { return at }))

	plan := builder.Build("episode-1", surgeSnapshot())
	if plan.ID == "" || plan.EpisodeID != "episode-1" {
		t.Fatalf("unexpected identifiers %+v", plan)
	}
	if !plan.CreatedAt.Equal(at) {
		t.Fatalf("expected fixed clock, got %v", plan.CreatedAt)
	}
	if plan.Status != models.PlanReady {
		t.Fatalf("expected ready plan, got %s", plan.Status)
	}
	if len(plan.Recommendations) != 1 || plan.Recommendations[0] != "Transfer containers" {
		t.Fatalf("unexpected recommendations %v", plan.Recommendations)
	}
	if len(plan.Transfers) != 2 || plan.Transfers[0].From != "B1" {
		t.Fatalf("unexpected transfers %+v", plan.Transfers)
	}
	if len(plan.HotBlocks) != 2 || plan.HotBlocks[0] != "B3" {
		t.Fatalf("unexpected hot blocks %v", plan.HotBlocks)
	}
}

func TestPlanBuilderFallback(t *testing.T) {
	builder := NewPlanBuilder(nil, nil)
	plan := builder.Build("episode-2", models.Snapshot{})
	if len(plan.Recommendations) != 1 || plan.Recommendations[0] != fallbackRecommendation {
		t.Fatalf("expected fallback recommendation, got %v", plan.Recommendations)
	}
	if plan.Transfers == nil {
		t.Fatalf("transfers should be an empty list, not nil")
	}
}
