package repo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/portstack/surgeops/internal/models"
)

func TestNormaliseLimit(t *testing.T) {
	cases := map[int]int{0: 100, -3: 100, 20: 20, 500: 500, 900: 500}
	for in, want := range cases {
		if got := NormaliseLimit(in); got != want {
			t.Fatalf("NormaliseLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMemoryStoreTransitions(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()
	base := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := store.RecordTransition(ctx, models.SurgeTransition{
			ID: fmt.Sprintf("t-%d", i),
			At: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := store.ListTransitions(ctx, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "t-4" || all[2].ID != "t-2" {
		t.Fatalf("expected newest three, got %+v", all)
	}

	since, _ := store.ListTransitions(ctx, base.Add(3*time.Minute), 10)
	if len(since) != 2 {
		t.Fatalf("expected two transitions since minute 3, got %d", len(since))
	}

	limited, _ := store.ListTransitions(ctx, time.Time{}, 1)
	if len(limited) != 1 || limited[0].ID != "t-4" {
		t.Fatalf("expected only newest, got %+v", limited)
	}
}

func TestMemoryStoreDecisions(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	_ = store.RecordDecision(ctx, models.PlanDecision{PlanID: "p1", Accepted: true})
	_ = store.RecordDecision(ctx, models.PlanDecision{PlanID: "p2", Accepted: false, Notes: "no crane crew"})

	decisions, err := store.ListDecisions(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(decisions) != 2 || decisions[0].PlanID != "p2" || decisions[0].Notes != "no crane crew" {
		t.Fatalf("unexpected decisions %+v", decisions)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("migration names: %v", err)
	}
	if len(names) == 0 || names[0] != "001_surge_history.sql" {
		t.Fatalf("unexpected migrations %v", names)
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("SURGEOPS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SURGEOPS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := OpenPostgres(ctx, dsn, 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer pool.Close()
	if err := RunMigrations(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := NewPostgresStore(pool)
	episode := uuid.NewString()
	at := time.Now().UTC().Truncate(time.Millisecond)
	tr := models.SurgeTransition{
		ID:        uuid.NewString(),
		EpisodeID: episode,
		From:      models.PhaseQuiet,
		To:        models.PhaseSurgeDetected,
		Reason:    "critical yard blocks above 2",
		At:        at,
		HotBlocks: []string{"B1", "B3"},
	}
	if err := store.RecordTransition(ctx, tr); err != nil {
		t.Fatalf("record transition: %v", err)
	}
	got, err := store.ListTransitions(ctx, at, 10)
	if err != nil {
		t.Fatalf("list transitions: %v", err)
	}
	found := false
	for _, g := range got {
		if g.ID == tr.ID {
			found = true
			if len(g.HotBlocks) != 2 || g.To != models.PhaseSurgeDetected {
				t.Fatalf("unexpected transition %+v", g)
			}
		}
	}
	if !found {
		t.Fatalf("transition %s not listed", tr.ID)
	}

	if err := store.RecordDecision(ctx, models.PlanDecision{PlanID: uuid.NewString(), EpisodeID: episode, Accepted: true, DecidedAt: at}); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if _, err := store.ListDecisions(ctx, 5); err != nil {
		t.Fatalf("list decisions: %v", err)
	}
}
