package patterns

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/portstack/surgeops/internal/models"
)

// Store abstracts persistence for mined patterns.
type Store interface {
	StorePatterns(ctx context.Context, patterns []models.SurgePattern) error
}

// Miner mines frequency-based surge patterns from banner history.
type Miner struct {
	store  Store
	logger *slog.Logger
}

// NewMiner constructs a Miner; store may be nil for dry runs.
func NewMiner(logger *slog.Logger, store Store) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{store: store, logger: logger}
}

// Mine groups surge episodes by the reason they were raised and returns
// patterns ordered by prevalence. Only transitions into surge-detected open
// an episode; other transitions are ignored.
func (m *Miner) Mine(ctx context.Context, transitions []models.SurgeTransition) ([]models.SurgePattern, error) {
	stats := make(map[string]*reasonAggregate)
	episodes := 0
	for _, t := range transitions {
		if t.To != models.PhaseSurgeDetected {
			continue
		}
		episodes++
		agg := ensureAggregate(stats, t.Reason)
		agg.count++
		if t.At.After(agg.lastSeen) {
			agg.lastSeen = t.At
		}
		for _, block := range t.HotBlocks {
			agg.blockCounts[block]++
		}
	}
	if episodes == 0 {
		return nil, nil
	}

	patterns := make([]models.SurgePattern, 0, len(stats))
	for reason, agg := range stats {
		patterns = append(patterns, models.SurgePattern{
			ID:          "pattern-" + slug(reason),
			Reason:      reason,
			Occurrences: agg.count,
			Prevalence:  float64(agg.count) / float64(episodes),
			HotBlocks:   agg.topBlocks(3),
			LastSeen:    agg.lastSeen,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Prevalence != patterns[j].Prevalence {
			return patterns[i].Prevalence > patterns[j].Prevalence
		}
		return patterns[i].LastSeen.After(patterns[j].LastSeen)
	})

	if m.store != nil && len(patterns) > 0 {
		if err := m.store.StorePatterns(ctx, patterns); err != nil {
			m.logger.Warn("pattern store failed", slog.Any("error", err))
		}
	}

	return patterns, nil
}

type reasonAggregate struct {
	count       int
	lastSeen    time.Time
	blockCounts map[string]int
}

func ensureAggregate(m map[string]*reasonAggregate, reason string) *reasonAggregate {
	if reason == "" {
		reason = "unspecified"
	}
	agg, ok := m[reason]
	if !ok {
		agg = &reasonAggregate{blockCounts: make(map[string]int)}
		m[reason] = agg
	}
	return agg
}

func (agg *reasonAggregate) topBlocks(limit int) []string {
	blocks := make([]string, 0, len(agg.blockCounts))
	for b := range agg.blockCounts {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool {
		if agg.blockCounts[blocks[i]] != agg.blockCounts[blocks[j]] {
			return agg.blockCounts[blocks[i]] > agg.blockCounts[blocks[j]]
		}
		return blocks[i] < blocks[j]
	})
	if len(blocks) > limit {
		blocks = blocks[:limit]
	}
	return blocks
}

func slug(reason string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(reason) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
