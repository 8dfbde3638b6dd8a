// Package dashboard owns the live port snapshot, the surge banner state
// machine and the scheduler that refreshes both.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/portstack/surgeops/internal/cache"
	"github.com/portstack/surgeops/internal/engine"
	"github.com/portstack/surgeops/internal/extractors"
	"github.com/portstack/surgeops/internal/metrics"
	"github.com/portstack/surgeops/internal/models"
	"github.com/portstack/surgeops/internal/repo"
	"github.com/portstack/surgeops/internal/utils"
)

var (
	// ErrInvalidTransition is returned when a banner command does not apply
	// to the current phase.
	ErrInvalidTransition = errors.New("invalid surge banner transition")
	// ErrStopped is returned once the scheduler has exited.
	ErrStopped = errors.New("dashboard controller stopped")
	// ErrInvalidSimulation is returned for unknown simulation kinds.
	ErrInvalidSimulation = errors.New("invalid simulation")
	// ErrNoSnapshot is returned before the first refresh completes.
	ErrNoSnapshot = errors.New("no snapshot available yet")
)

// Default simulation magnitudes when a request leaves magnitude unset.
const (
	DefaultSurgeMagnitude   = 0.3
	DefaultRerouteMagnitude = 0.5
	DefaultWeatherMagnitude = 0.7
)

// Generator is the snapshot source the controller drives.
type Generator interface {
	Snapshot() models.Snapshot
	TriggerSurge(magnitude float64) error
	ClearSurge()
	InjectReroute(region string, severity models.AlertSeverity)
	InjectWeather(magnitude float64) error
	InjectMove(from, to string, teu int) error
	Reset()
}

// WeatherSource provides live weather readings.
type WeatherSource interface {
	Current(ctx context.Context, location string) (models.Weather, error)
}

// Publisher receives every snapshot and banner transition.
type Publisher interface {
	PublishSnapshot(ctx context.Context, snap models.Snapshot) error
	PublishTransition(ctx context.Context, t models.SurgeTransition) error
}

// Config tunes the controller.
type Config struct {
	RefreshInterval  time.Duration
	SurgeDecay       time.Duration
	AutoOpenPlan     bool
	SubscriberBuffer int
	SpikeThreshold   float64
	Location         string
	SnapshotTTL      time.Duration
	// LeaseTTL bounds how long a silent leader keeps the refresh lease.
	LeaseTTL   time.Duration
	InstanceID string
}

// DefaultConfig returns the standard controller settings.
func DefaultConfig() Config {
	return Config{
		RefreshInterval:  5 * time.Second,
		SurgeDecay:       15 * time.Second,
		AutoOpenPlan:     true,
		SubscriberBuffer: 8,
		SpikeThreshold:   extractors.DefaultSpikeThreshold,
	}
}

// Option customises a Controller.
type Option func(*Controller)

// WithConfig replaces the controller settings.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDetector replaces the surge detector.
func WithDetector(d *engine.Detector) Option {
	return func(c *Controller) {
		if d != nil {
			c.detector = d
		}
	}
}

// WithPlanBuilder replaces the action plan builder.
func WithPlanBuilder(b *engine.PlanBuilder) Option {
	return func(c *Controller) {
		if b != nil {
			c.plans = b
		}
	}
}

// WithHistory records transitions and decisions in repo.
func WithHistory(h repo.HistoryRepo) Option {
	return func(c *Controller) {
		if h != nil {
			c.history = h
		}
	}
}

// WithCache shares snapshots and the refresh lease through provider.
func WithCache(p cache.Provider) Option {
	return func(c *Controller) {
		if p != nil {
			c.cache = p
		}
	}
}

// WithWeather overlays live weather on generated snapshots.
func WithWeather(w WeatherSource) Option {
	return func(c *Controller) { c.weather = w }
}

// WithPublisher adds a snapshot and transition sink.
func WithPublisher(p Publisher) Option {
	return func(c *Controller) {
		if p != nil {
			c.publishers = append(c.publishers, p)
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Controller holds the current snapshot and surge state. All mutations are
// serialized: through the scheduler loop while Run is active, or under
// execMu otherwise.
type Controller struct {
	cfg        Config
	gen        Generator
	detector   *engine.Detector
	plans      *engine.PlanBuilder
	spikes     *extractors.UtilizationExtractor
	blocks     *extractors.BlockExtractor
	history    repo.HistoryRepo
	cache      cache.Provider
	weather    WeatherSource
	publishers []Publisher
	logger     *slog.Logger
	latencies  *utils.LatencyTracker
	now        func() time.Time

	mu          sync.RWMutex
	snapshot    models.Snapshot
	hasSnapshot bool
	surge       models.SurgeState

	subsMu sync.Mutex
	subs   map[<-chan models.Snapshot]chan models.Snapshot

	execMu   sync.Mutex
	runState atomic.Int32
	cmds     chan command
	started  chan struct{}
	done     chan struct{}

	decayMu    sync.Mutex
	decay      *time.Timer
	decayEpoch uint64
}

// New constructs a Controller around gen.
func New(gen Generator, opts ...Option) (*Controller, error) {
	if gen == nil {
		return nil, errors.New("dashboard: generator is required")
	}
	c := &Controller{
		cfg:       DefaultConfig(),
		gen:       gen,
		detector:  engine.NewDetector(engine.DefaultThresholds()),
		spikes:    extractors.NewUtilizationExtractor(),
		blocks:    extractors.NewBlockExtractor(),
		history:   repo.NewMemoryStore(repo.MaxListLimit),
		cache:     cache.NoopProvider{},
		logger:    slog.Default(),
		latencies: utils.NewLatencyTracker(1024),
		now:       time.Now,
		subs:      make(map[<-chan models.Snapshot]chan models.Snapshot),
		cmds:      make(chan command),
		started:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("dashboard: refresh interval must be positive, got %v", c.cfg.RefreshInterval)
	}
	if c.cfg.SubscriberBuffer <= 0 {
		c.cfg.SubscriberBuffer = 1
	}
	if c.cfg.SnapshotTTL <= 0 {
		c.cfg.SnapshotTTL = 3 * c.cfg.RefreshInterval
	}
	if c.cfg.LeaseTTL <= c.cfg.RefreshInterval {
		c.cfg.LeaseTTL = 3 * c.cfg.RefreshInterval
	}
	if c.cfg.InstanceID == "" {
		c.cfg.InstanceID = uuid.NewString()
	}
	if c.plans == nil {
		c.plans = engine.NewPlanBuilder(c.logger, nil,
			engine.WithPlanClock(c.now),
			engine.WithSpikeThreshold(c.cfg.SpikeThreshold))
	}
	c.surge = models.SurgeState{Phase: models.PhaseQuiet, Since: c.now()}
	return c, nil
}

// Snapshot returns the latest snapshot.
func (c *Controller) Snapshot() (models.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, c.hasSnapshot
}

// State returns a copy of the surge state.
func (c *Controller) State() models.SurgeState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyState(c.surge)
}

// History exposes the transition store.
func (c *Controller) History() repo.HistoryRepo {
	return c.history
}

// Refresh produces a new snapshot and advances the surge state.
func (c *Controller) Refresh(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.exec(ctx, command{fn: func(ctx context.Context) error {
		var err error
		snap, err = c.refresh(ctx, refreshOptions{})
		return err
	}})
	return snap, err
}

// Simulate applies a manual injection and refreshes immediately. The returned
// snapshot reflects the injection.
func (c *Controller) Simulate(ctx context.Context, sim models.Simulation) (models.Snapshot, error) {
	sim, err := normaliseSimulation(sim)
	if err != nil {
		return models.Snapshot{}, err
	}

	var snap models.Snapshot
	cmd := command{fn: func(ctx context.Context) error {
		opts := refreshOptions{force: true}
		switch sim.Kind {
		case models.SimulateSurge:
			if err := c.gen.TriggerSurge(sim.Magnitude); err != nil {
				return err
			}
		case models.SimulateReroute:
			c.gen.InjectReroute(sim.Region, sim.Severity)
		case models.SimulateWeather:
			if err := c.gen.InjectWeather(sim.Magnitude); err != nil {
				return err
			}
			opts.keepWeather = true
		}
		metrics.ObserveSimulation(string(sim.Kind))
		c.logger.Info("simulation applied",
			slog.String("kind", string(sim.Kind)),
			slog.Float64("magnitude", sim.Magnitude),
			slog.String("region", sim.Region),
		)
		var err error
		snap, err = c.refresh(ctx, opts)
		return err
	}}
	if sim.Kind == models.SimulateSurge {
		cmd.decay = decayRestart
	}
	err = c.exec(ctx, cmd)
	return snap, err
}

// Reset restores generator defaults, stops any pending surge decay and
// refreshes immediately. The banner state is left to the next evaluation.
func (c *Controller) Reset(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.exec(ctx, command{decay: decayStop, fn: func(ctx context.Context) error {
		c.gen.Reset()
		metrics.ObserveSimulation("reset")
		c.logger.Info("generator reset")
		var err error
		snap, err = c.refresh(ctx, refreshOptions{force: true})
		return err
	}})
	return snap, err
}

// MoveContainers transfers TEU between two yard blocks and refreshes
// immediately. The returned snapshot lists the move as applied.
func (c *Controller) MoveContainers(ctx context.Context, from, to string, teu int) (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.exec(ctx, command{fn: func(ctx context.Context) error {
		if err := c.gen.InjectMove(from, to, teu); err != nil {
			return err
		}
		metrics.ObserveSimulation("move")
		var err error
		snap, err = c.refresh(ctx, refreshOptions{force: true})
		if err != nil {
			return err
		}
		for _, m := range snap.Moves {
			c.logger.Info("containers moved",
				slog.String("from", m.From),
				slog.String("to", m.To),
				slog.Int("requested", m.Requested),
				slog.Int("teu", m.TEU),
			)
		}
		return nil
	}})
	return snap, err
}

// OpenActionPlan moves surge-detected to action-plan-open with a fresh plan.
func (c *Controller) OpenActionPlan(ctx context.Context) (models.SurgeState, error) {
	var state models.SurgeState
	err := c.exec(ctx, command{fn: func(ctx context.Context) error {
		c.mu.Lock()
		if c.surge.Phase != models.PhaseSurgeDetected {
			phase := c.surge.Phase
			c.mu.Unlock()
			return fmt.Errorf("open action plan from %s: %w", phase, ErrInvalidTransition)
		}
		snap := c.snapshot
		plan := c.plans.Build(c.surge.EpisodeID, snap)
		t := c.transitionLocked(models.PhaseActionPlanOpen, "action plan opened", snap)
		c.surge.Plan = &plan
		state = copyState(c.surge)
		c.mu.Unlock()

		c.emitTransitions(ctx, []models.SurgeTransition{t})
		c.shareState(ctx, state, true)
		return nil
	}})
	return state, err
}

// ResolveActionPlan accepts or rejects the open plan and returns the banner
// to quiet.
func (c *Controller) ResolveActionPlan(ctx context.Context, accept bool, notes string) (models.SurgeState, error) {
	var state models.SurgeState
	err := c.exec(ctx, command{fn: func(ctx context.Context) error {
		c.mu.Lock()
		if c.surge.Phase != models.PhaseActionPlanOpen || c.surge.Plan == nil {
			phase := c.surge.Phase
			c.mu.Unlock()
			return fmt.Errorf("resolve action plan from %s: %w", phase, ErrInvalidTransition)
		}
		plan := *c.surge.Plan
		decision := models.PlanDecision{
			PlanID:    plan.ID,
			EpisodeID: plan.EpisodeID,
			Accepted:  accept,
			Notes:     notes,
			DecidedAt: c.now(),
		}
		reason := "action plan rejected"
		if accept {
			reason = "action plan accepted"
		}
		t := c.transitionLocked(models.PhaseQuiet, reason, c.snapshot)
		c.surge.Plan = nil
		c.surge.EpisodeID = ""
		state = copyState(c.surge)
		c.mu.Unlock()

		if err := c.history.RecordDecision(ctx, decision); err != nil {
			c.logger.Warn("record plan decision failed", slog.String("plan_id", plan.ID), slog.Any("error", err))
		}
		c.logger.Info("action plan resolved",
			slog.String("plan_id", plan.ID),
			slog.Bool("accepted", accept),
		)
		c.emitTransitions(ctx, []models.SurgeTransition{t})
		c.shareState(ctx, state, true)
		return nil
	}})
	return state, err
}

// Subscribe returns a channel receiving every published snapshot. Slow
// subscribers lose their oldest pending snapshot.
func (c *Controller) Subscribe() <-chan models.Snapshot {
	ch := make(chan models.Snapshot, c.cfg.SubscriberBuffer)
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if c.runState.Load() == stateStopped {
		close(ch)
		return ch
	}
	c.subs[ch] = ch
	return ch
}

// Unsubscribe detaches and closes a subscription.
func (c *Controller) Unsubscribe(ch <-chan models.Snapshot) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if w, ok := c.subs[ch]; ok {
		delete(c.subs, ch)
		close(w)
	}
}

type refreshOptions struct {
	// force generates locally even when another replica holds the lease.
	force bool
	// keepWeather skips the live weather overlay.
	keepWeather bool
}

func (c *Controller) refresh(ctx context.Context, opts refreshOptions) (models.Snapshot, error) {
	start := time.Now()
	if !opts.force && !c.holdLease(ctx) {
		if snap, ok := c.loadShared(ctx); ok {
			c.follow(ctx, snap)
			metrics.ObserveRefresh(time.Since(start), metrics.OutcomeFollower)
			return snap, nil
		}
	}

	snap := c.generate(ctx, opts)
	var spikes int
	snap.ChartData, spikes = c.spikes.Annotate(snap.ChartData, c.cfg.SpikeThreshold)

	c.mu.Lock()
	c.snapshot = snap
	c.hasSnapshot = true
	transitions := c.advanceLocked(snap)
	state := copyState(c.surge)
	c.mu.Unlock()

	c.emitTransitions(ctx, transitions)
	c.shareSnapshot(ctx, snap, state, opts.force)
	c.publishSnapshot(ctx, snap, state.SurgeDetected)

	duration := time.Since(start)
	c.latencies.Observe(duration)
	metrics.ObserveRefresh(duration, metrics.OutcomeSuccess)
	if count := c.latencies.Count(); count >= 20 && count%20 == 0 {
		c.logger.Info("refresh latency", slog.Duration("p95", c.latencies.Percentile(95)), slog.Int("samples", count))
	}
	c.logger.Debug("snapshot refreshed",
		slog.Float64("avg_utilization", snap.KPIs.AvgYardUtilization),
		slog.Int("waiting_vessels", snap.KPIs.WaitingVessels),
		slog.Int("critical_alerts", snap.CriticalAlerts()),
		slog.Int("spikes", spikes),
	)
	return snap, nil
}

// generate builds a local snapshot with the live weather overlay.
func (c *Controller) generate(ctx context.Context, opts refreshOptions) models.Snapshot {
	snap := c.gen.Snapshot()
	if c.weather == nil || opts.keepWeather {
		return snap
	}
	w, err := c.weather.Current(ctx, c.cfg.Location)
	if err != nil {
		c.logger.Warn("live weather unavailable, keeping synthetic reading", slog.Any("error", err))
		return snap
	}
	overlayWeather(&snap, w)
	return snap
}

// overlayWeather replaces the reading and re-derives the weather alert from
// the live impact.
func overlayWeather(snap *models.Snapshot, w models.Weather) {
	snap.Weather = w
	alerts := snap.Alerts[:0:0]
	for _, a := range snap.Alerts {
		if a.ID != models.WeatherAlertID {
			alerts = append(alerts, a)
		}
	}
	if w.OperationalImpact == models.ImpactHigh {
		alerts = append(alerts, models.NewWeatherAlert(w.ObservedAt))
	}
	snap.Alerts = alerts
	snap.KPIs.ActiveAlerts = snap.UnacknowledgedAlerts()
}

// follow adopts the leader's snapshot and banner state. History, events and
// transitions stay with the lease holder.
func (c *Controller) follow(ctx context.Context, snap models.Snapshot) {
	state, hasState := c.loadState(ctx)
	c.mu.Lock()
	c.snapshot = snap
	c.hasSnapshot = true
	if hasState {
		c.surge = state
	}
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) holdLease(ctx context.Context) bool {
	id := []byte(c.cfg.InstanceID)
	ok, err := c.cache.SetNX(ctx, cache.KeyRefreshLease, id, c.cfg.LeaseTTL)
	if err != nil {
		c.logger.Warn("refresh lease unavailable, generating locally", slog.Any("error", err))
		return true
	}
	if ok {
		return true
	}
	owner, err := c.cache.Get(ctx, cache.KeyRefreshLease)
	if err != nil || string(owner) != c.cfg.InstanceID {
		return false
	}
	if err := c.cache.Set(ctx, cache.KeyRefreshLease, id, c.cfg.LeaseTTL); err != nil {
		c.logger.Warn("refresh lease renewal failed", slog.Any("error", err))
	}
	return true
}

func (c *Controller) loadShared(ctx context.Context) (models.Snapshot, bool) {
	var snap models.Snapshot
	return snap, c.loadJSON(ctx, cache.KeyLatestSnapshot, &snap)
}

func (c *Controller) loadState(ctx context.Context) (models.SurgeState, bool) {
	var state models.SurgeState
	return state, c.loadJSON(ctx, cache.KeyLatestState, &state)
}

func (c *Controller) loadJSON(ctx context.Context, key string, dst any) bool {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("shared read failed", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("shared value undecodable", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (c *Controller) shareSnapshot(ctx context.Context, snap models.Snapshot, state models.SurgeState, takeLease bool) {
	c.storeJSON(ctx, cache.KeyLatestSnapshot, snap, c.cfg.SnapshotTTL)
	c.shareState(ctx, state, takeLease)
}

// shareState publishes the banner state for followers. takeLease makes this
// replica the leader, as operator commands do.
func (c *Controller) shareState(ctx context.Context, state models.SurgeState, takeLease bool) {
	c.storeJSON(ctx, cache.KeyLatestState, state, c.cfg.SnapshotTTL)
	if takeLease {
		if err := c.cache.Set(ctx, cache.KeyRefreshLease, []byte(c.cfg.InstanceID), c.cfg.LeaseTTL); err != nil {
			c.logger.Warn("refresh lease takeover failed", slog.Any("error", err))
		}
	}
}

func (c *Controller) storeJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("shared value encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.cache.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn("shared write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// advanceLocked evaluates the detector and steps the banner machine. A new
// episode only starts from quiet; clearing the predicate never closes an
// open plan.
func (c *Controller) advanceLocked(snap models.Snapshot) []models.SurgeTransition {
	ev := c.detector.Evaluate(c.surge.SurgeDetected, snap)
	c.surge.SurgeDetected = ev.Detected
	c.surge.WaitingVessels = ev.WaitingVessels
	c.surge.CriticalAlerts = ev.CriticalAlerts

	var out []models.SurgeTransition
	switch {
	case ev.Rose && c.surge.Phase == models.PhaseQuiet:
		c.surge.EpisodeID = uuid.NewString()
		c.surge.Reason = ev.Reason
		out = append(out, c.transitionLocked(models.PhaseSurgeDetected, ev.Reason, snap))
		if c.cfg.AutoOpenPlan {
			plan := c.plans.Build(c.surge.EpisodeID, snap)
			c.surge.Plan = &plan
			out = append(out, c.transitionLocked(models.PhaseActionPlanOpen, "action plan opened", snap))
		}
	case ev.Cleared && c.surge.Phase == models.PhaseSurgeDetected:
		out = append(out, c.transitionLocked(models.PhaseQuiet, ev.Reason, snap))
		c.surge.Reason = ev.Reason
		c.surge.EpisodeID = ""
	}
	return out
}

// transitionLocked moves the banner to phase and returns the record.
func (c *Controller) transitionLocked(to models.SurgePhase, reason string, snap models.Snapshot) models.SurgeTransition {
	now := c.now()
	t := models.SurgeTransition{
		ID:             uuid.NewString(),
		EpisodeID:      c.surge.EpisodeID,
		From:           c.surge.Phase,
		To:             to,
		Reason:         reason,
		At:             now,
		WaitingVessels: snap.KPIs.WaitingVessels,
		CriticalAlerts: snap.CriticalAlerts(),
		AvgUtilization: snap.KPIs.AvgYardUtilization,
		HotBlocks:      extractors.Codes(c.blocks.Detect(snap.YardBlocks)),
	}
	c.surge.Phase = to
	c.surge.Since = now
	return t
}

func (c *Controller) emitTransitions(ctx context.Context, transitions []models.SurgeTransition) {
	for _, t := range transitions {
		c.logger.Info("surge banner transition",
			slog.String("episode_id", t.EpisodeID),
			slog.String("from", string(t.From)),
			slog.String("to", string(t.To)),
			slog.String("reason", t.Reason),
		)
		metrics.ObserveTransition(t.To)
		if err := c.history.RecordTransition(ctx, t); err != nil {
			c.logger.Warn("record transition failed", slog.String("id", t.ID), slog.Any("error", err))
		}
		for _, p := range c.publishers {
			if err := p.PublishTransition(ctx, t); err != nil {
				c.logger.Warn("publish transition failed", slog.Any("error", err))
			}
		}
	}
}

func (c *Controller) publishSnapshot(ctx context.Context, snap models.Snapshot, detected bool) {
	metrics.ObserveSnapshot(snap, detected)
	for _, p := range c.publishers {
		if err := p.PublishSnapshot(ctx, snap); err != nil {
			c.logger.Warn("publish snapshot failed", slog.Any("error", err))
		}
	}
	c.notify(snap)
}

// notify hands snap to every subscriber, dropping the oldest pending
// snapshot for slow ones.
func (c *Controller) notify(snap models.Snapshot) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (c *Controller) closeSubscribers() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for key, ch := range c.subs {
		delete(c.subs, key)
		close(ch)
	}
}

func normaliseSimulation(sim models.Simulation) (models.Simulation, error) {
	switch sim.Kind {
	case models.SimulateSurge:
		if sim.Magnitude == 0 {
			sim.Magnitude = DefaultSurgeMagnitude
		}
	case models.SimulateReroute:
		if sim.Magnitude == 0 {
			sim.Magnitude = DefaultRerouteMagnitude
		}
		if sim.Magnitude < 0 || sim.Magnitude > 1 {
			return sim, fmt.Errorf("reroute magnitude %v out of range: %w", sim.Magnitude, ErrInvalidSimulation)
		}
		if sim.Severity == "" {
			sim.Severity = severityForMagnitude(sim.Magnitude)
		}
	case models.SimulateWeather:
		if sim.Magnitude == 0 {
			sim.Magnitude = DefaultWeatherMagnitude
		}
	default:
		return sim, fmt.Errorf("simulation kind %q: %w", sim.Kind, ErrInvalidSimulation)
	}
	return sim, nil
}

func severityForMagnitude(m float64) models.AlertSeverity {
	switch {
	case m > 0.75:
		return models.AlertCritical
	case m > 0.5:
		return models.AlertHigh
	case m > 0.25:
		return models.AlertMedium
	default:
		return models.AlertLow
	}
}

func copyState(s models.SurgeState) models.SurgeState {
	if s.Plan != nil {
		plan := *s.Plan
		plan.Recommendations = append([]string{}, plan.Recommendations...)
		plan.Transfers = append([]models.Suggestion{}, plan.Transfers...)
		plan.HotBlocks = append([]string(nil), plan.HotBlocks...)
		s.Plan = &plan
	}
	return s
}
