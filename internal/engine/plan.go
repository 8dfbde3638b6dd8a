package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/portstack/surgeops/internal/extractors"
	"github.com/portstack/surgeops/internal/models"
)

// fallbackRecommendation is used when no rule matches, so an open plan is
// never empty.
const fallbackRecommendation = "Review yard allocation and berth schedule with the duty planner"

// PlanBuilder assembles an action plan from a snapshot.
type PlanBuilder struct {
	logger         *slog.Logger
	rules          *RuleEngine
	spikes         *extractors.UtilizationExtractor
	blocks         *extractors.BlockExtractor
	spikeThreshold float64
	now            func() time.Time
}

// PlanOption customises a PlanBuilder.
type PlanOption func(*PlanBuilder)

// WithPlanClock overrides the plan timestamp source.
func WithPlanClock(now func() time.Time) PlanOption {
	return func(b *PlanBuilder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithSpikeThreshold sets the z-score used for utilization spikes.
func WithSpikeThreshold(threshold float64) PlanOption {
	return func(b *PlanBuilder) {
		b.spikeThreshold = threshold
	}
}

// NewPlanBuilder constructs a PlanBuilder. A nil rule engine yields plans
// with only the fallback recommendation.
func NewPlanBuilder(logger *slog.Logger, rules *RuleEngine, opts ...PlanOption) *PlanBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &PlanBuilder{
		logger:         logger,
		rules:          rules,
		spikes:         extractors.NewUtilizationExtractor(),
		blocks:         extractors.NewBlockExtractor(),
		spikeThreshold: extractors.DefaultSpikeThreshold,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns a ready plan for the surge episode.
func (b *PlanBuilder) Build(episodeID string, snap models.Snapshot) models.ActionPlan {
	spikes := len(b.spikes.Detect(snap.ChartData, b.spikeThreshold))
	hot := b.blocks.Detect(snap.YardBlocks)

	recs := b.rules.Recommend(RuleInput{Snapshot: snap, Spikes: spikes})
	if len(recs) == 0 {
		recs = []string{fallbackRecommendation}
	}

	transfers := make([]models.Suggestion, 0)
	for _, alert := range snap.Alerts {
		if alert.Suggestion != nil {
			transfers = append(transfers, *alert.Suggestion)
		}
	}

	plan := models.ActionPlan{
		ID:              uuid.NewString(),
		EpisodeID:       episodeID,
		CreatedAt:       b.now(),
		Recommendations: recs,
		Transfers:       transfers,
		HotBlocks:       extractors.Codes(hot),
		Spikes:          spikes,
		Status:          models.PlanReady,
	}
	b.logger.Info("action plan built",
		slog.String("plan_id", plan.ID),
		slog.String("episode_id", episodeID),
		slog.Int("recommendations", len(recs)),
		slog.Int("transfers", len(transfers)),
	)
	return plan
}
