package patterns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portstack/surgeops/internal/models"
)

type fakePatternStore struct {
	stored int
}

func (f *fakePatternStore) StorePatterns(ctx context.Context, patterns []models.SurgePattern) error {
	f.stored += len(patterns)
	return nil
}

func TestMinerMinesPatterns(t *testing.T) {
	store := &fakePatternStore{}
	miner := NewMiner(nil, store)

	now := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	transitions := []models.SurgeTransition{
		{To: models.PhaseSurgeDetected, Reason: "critical yard blocks above 2", At: now, HotBlocks: []string{"B1", "B3", "B4"}},
		{To: models.PhaseActionPlanOpen, Reason: "critical yard blocks above 2", At: now.Add(time.Second)},
		{To: models.PhaseSurgeDetected, Reason: "critical yard blocks above 2", At: now.Add(time.Hour), HotBlocks: []string{"B3", "B1"}},
		{To: models.PhaseSurgeDetected, Reason: "waiting vessels above 8", At: now.Add(2 * time.Hour), HotBlocks: []string{"B2"}},
		{To: models.PhaseQuiet, Reason: "congestion back within limits", At: now.Add(3 * time.Hour)},
	}

	patterns, err := miner.Mine(context.Background(), transitions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	top := patterns[0]
	if top.Reason != "critical yard blocks above 2" || top.Occurrences != 2 {
		t.Fatalf("unexpected top pattern %+v", top)
	}
	if top.ID != "pattern-critical-yard-blocks-above-2" {
		t.Fatalf("unexpected id %q", top.ID)
	}
	if top.Prevalence < 0.66 || top.Prevalence > 0.67 {
		t.Fatalf("unexpected prevalence %v", top.Prevalence)
	}
	if len(top.HotBlocks) != 3 || top.HotBlocks[0] != "B1" || top.HotBlocks[1] != "B3" {
		t.Fatalf("unexpected hot blocks %v", top.HotBlocks)
	}
	if !top.LastSeen.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected last seen %v", top.LastSeen)
	}
	if store.stored != 2 {
		t.Fatalf("expected patterns to be stored")
	}
}

func TestMinerNoEpisodes(t *testing.T) {
	miner := NewMiner(nil, StoreFunc(func(context.Context, []models.SurgePattern) error {
		t.Fatalf("store must not be called without patterns")
		return nil
	}))
	patterns, err := miner.Mine(context.Background(), []models.SurgeTransition{{To: models.PhaseQuiet}})
	if err != nil || patterns != nil {
		t.Fatalf("expected no patterns, got %v err %v", patterns, err)
	}
}

func TestMinerStoreFailureIsLogged(t *testing.T) {
	miner := NewMiner(nil, StoreFunc(func(context.Context, []models.SurgePattern) error {
		return errors.New("cache down")
	}))
	patterns, err := miner.Mine(context.Background(), []models.SurgeTransition{{To: models.PhaseSurgeDetected}})
	if err != nil {
		t.Fatalf("store failure must not fail mining: %v", err)
	}
	if len(patterns) != 1 || patterns[0].Reason != "unspecified" {
		t.Fatalf("unexpected patterns %+v", patterns)
	}
}
