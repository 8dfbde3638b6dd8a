// Package generator synthesizes port snapshots for the dashboard.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/portstack/surgeops/internal/models"
	"github.com/portstack/surgeops/internal/utils"
)

const (
	// DefaultBaseline is the resting yard utilization percentage.
	DefaultBaseline = 65.0
	// MaxBaseline caps how far surges can push the baseline.
	MaxBaseline = 95.0
	// SurgeScale converts a surge magnitude into baseline percentage points.
	SurgeScale = 30.0
	// DefaultLocation labels synthetic weather readings.
	DefaultLocation = "Singapore Port"
	// DefaultRegion is used for reroute injections without a region.
	DefaultRegion = "Red Sea"

	chartPoints      = 24
	chartAmplitude   = 10.0
	chartNoise       = 5.0
	blockBandLow     = 5.0
	blockBandHigh    = 25.0
	vesselsPerBerth  = 2
	eventCount       = 5
	eventSpacing     = 15 * time.Minute
	weatherAlertProb = 0.3
	transferFloor    = models.WarningUtilization
)

var (
	// ErrInvalidMagnitude is returned for surge or weather magnitudes outside (0,1].
	ErrInvalidMagnitude = errors.New("magnitude must be in (0, 1]")
	// ErrInvalidMove is returned for container moves the yard cannot apply.
	ErrInvalidMove = errors.New("invalid container move")
)

// Option customises a Generator.
type Option func(*Generator)

// WithRand injects the random source. The generator takes ownership of it.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithCatalog replaces the built-in port layout.
func WithCatalog(c Catalog) Option {
	return func(g *Generator) {
		g.catalog = c
	}
}

// WithBaseline sets the resting utilization Reset returns to.
func WithBaseline(baseline float64) Option {
	return func(g *Generator) {
		if baseline > 0 {
			g.defaultBaseline = math.Min(MaxBaseline, baseline)
		}
	}
}

// WithLocation sets the weather location label.
func WithLocation(location string) Option {
	return func(g *Generator) {
		if location != "" {
			g.location = location
		}
	}
}

type rerouteInjection struct {
	region   string
	severity models.AlertSeverity
}

// Generator produces a fresh Snapshot on every call. It is safe for
// concurrent use.
type Generator struct {
	mu              sync.Mutex
	rng             *rand.Rand
	now             func() time.Time
	catalog         Catalog
	location        string
	defaultBaseline float64

	baseline       float64
	surgeActive    bool
	pendingReroute *rerouteInjection
	pendingWeather float64
	pendingMoves   []models.ContainerMove
}

// New constructs a generator. It fails when the catalog cannot produce a
// well-formed snapshot.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		now:             time.Now,
		catalog:         DefaultCatalog(),
		location:        DefaultLocation,
		defaultBaseline: DefaultBaseline,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if err := g.catalog.Validate(); err != nil {
		return nil, err
	}
	g.baseline = g.defaultBaseline
	return g, nil
}

// Baseline returns the current utilization baseline.
func (g *Generator) Baseline() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.baseline
}

// SurgeActive reports the advisory surge flag.
func (g *Generator) SurgeActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.surgeActive
}

// TriggerSurge raises the baseline by magnitude×30 points, capped at 95, and
// sets the surge flag. Clearing the flag is left to the caller.
func (g *Generator) TriggerSurge(magnitude float64) error {
	if !validMagnitude(magnitude) {
		return fmt.Errorf("trigger surge %v: %w", magnitude, ErrInvalidMagnitude)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseline = math.Min(MaxBaseline, g.baseline+magnitude*SurgeScale)
	g.surgeActive = true
	return nil
}

// ClearSurge drops the advisory surge flag. The baseline is untouched.
func (g *Generator) ClearSurge() {
	g.mu.Lock()
	g.surgeActive = false
	g.mu.Unlock()
}

// InjectReroute queues a reroute advisory for the next snapshot.
func (g *Generator) InjectReroute(region string, severity models.AlertSeverity) {
	if region == "" {
		region = DefaultRegion
	}
	if severity == "" {
		severity = models.AlertMedium
	}
	g.mu.Lock()
	g.pendingReroute = &rerouteInjection{region: region, severity: severity}
	g.mu.Unlock()
}

// InjectWeather queues a severe weather reading for the next snapshot.
func (g *Generator) InjectWeather(magnitude float64) error {
	if !validMagnitude(magnitude) {
		return fmt.Errorf("inject weather %v: %w", magnitude, ErrInvalidMagnitude)
	}
	g.mu.Lock()
	g.pendingWeather = magnitude
	g.mu.Unlock()
	return nil
}

// InjectMove queues a transfer of teu containers between two blocks for the
// next snapshot. The move is capped by what the source holds and what the
// target can absorb.
func (g *Generator) InjectMove(from, to string, teu int) error {
	switch {
	case teu <= 0:
		return fmt.Errorf("move %d TEU: must be positive: %w", teu, ErrInvalidMove)
	case from == to:
		return fmt.Errorf("move %s to itself: %w", from, ErrInvalidMove)
	case !g.catalog.HasBlock(from):
		return fmt.Errorf("source block %q not found: %w", from, ErrInvalidMove)
	case !g.catalog.HasBlock(to):
		return fmt.Errorf("target block %q not found: %w", to, ErrInvalidMove)
	}
	g.mu.Lock()
	g.pendingMoves = append(g.pendingMoves, models.ContainerMove{From: from, To: to, Requested: teu})
	g.mu.Unlock()
	return nil
}

// Reset restores the default baseline and drops pending injections.
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseline = g.defaultBaseline
	g.surgeActive = false
	g.pendingReroute = nil
	g.pendingWeather = 0
	g.pendingMoves = nil
}

// Snapshot synthesizes a complete port state. Pending injections are
// consumed.
func (g *Generator) Snapshot() models.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	blocks := g.yardBlocks()
	moves := applyMoves(blocks, g.pendingMoves)
	vessels := g.vessels(now)
	alerts := g.alerts(now, blocks)

	snap := models.Snapshot{
		GeneratedAt: now,
		ChartData:   g.chart(now),
		YardBlocks:  blocks,
		Berths:      g.berths(now, vessels),
		Weather:     g.weather(now),
		Alerts:      alerts,
		Events:      g.events(now),
		SurgeActive: g.surgeActive,
		Moves:       moves,
	}
	snap.KPIs = models.KPIs{
		AvgYardUtilization: averageUtilization(blocks),
		WaitingVessels:     countWaiting(vessels),
		ActiveAlerts:       snap.UnacknowledgedAlerts(),
		TEUProcessed24h:    g.intn(8500, 12000),
	}

	g.pendingReroute = nil
	g.pendingWeather = 0
	g.pendingMoves = nil
	return snap
}

func (g *Generator) chart(now time.Time) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, chartPoints)
	for i := chartPoints - 1; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Hour)
		value := g.baseline + math.Sin(float64(i)*0.3)*chartAmplitude + g.uniform(-chartNoise, chartNoise)
		points = append(points, models.ChartPoint{
			Time:        at,
			Label:       at.Format("15:04"),
			Utilization: utils.Round1(utils.Clamp(value, 0, 100)),
			Threshold:   models.CriticalUtilization,
		})
	}
	return points
}

func (g *Generator) yardBlocks() []models.YardBlock {
	blocks := make([]models.YardBlock, 0, len(g.catalog.Blocks))
	for _, spec := range g.catalog.Blocks {
		draw := utils.Clamp(g.uniform(g.baseline-blockBandLow, g.baseline+blockBandHigh), 0, 100)
		current := int(math.Round(float64(spec.Capacity) * draw / 100))
		utilization := utils.Round1(utils.Clamp(float64(current)/float64(spec.Capacity)*100, 0, 100))
		blocks = append(blocks, models.YardBlock{
			ID:          spec.Code,
			Code:        spec.Code,
			Category:    spec.Category,
			Capacity:    spec.Capacity,
			Current:     current,
			Utilization: utilization,
			Status:      models.StatusForUtilization(utilization),
		})
	}
	return blocks
}

// applyMoves shifts containers between blocks in place and returns the moves
// with the TEU actually transferred.
func applyMoves(blocks []models.YardBlock, pending []models.ContainerMove) []models.ContainerMove {
	if len(pending) == 0 {
		return nil
	}
	index := make(map[string]int, len(blocks))
	for i, b := range blocks {
		index[b.Code] = i
	}
	applied := make([]models.ContainerMove, 0, len(pending))
	for _, m := range pending {
		from, to := &blocks[index[m.From]], &blocks[index[m.To]]
		m.TEU = min(m.Requested, from.Current, to.Capacity-to.Current)
		if m.TEU < 0 {
			m.TEU = 0
		}
		from.Current -= m.TEU
		to.Current += m.TEU
		restate(from)
		restate(to)
		applied = append(applied, m)
	}
	return applied
}

func restate(b *models.YardBlock) {
	b.Utilization = utils.Round1(utils.Clamp(float64(b.Current)/float64(b.Capacity)*100, 0, 100))
	b.Status = models.StatusForUtilization(b.Utilization)
}

func (g *Generator) vessels(now time.Time) []models.Vessel {
	vessels := make([]models.Vessel, 0, len(g.catalog.Vessels))
	for i, name := range g.catalog.Vessels {
		vessels = append(vessels, models.Vessel{
			ID:          fmt.Sprintf("vessel-%d", i+1),
			Name:        name,
			IMO:         fmt.Sprintf("IMO%d", 7000000+i),
			ExpectedTEU: g.intn(800, 2400),
			ETA:         now.Add(time.Duration(g.intn(2, 72)) * time.Hour),
			Status:      models.VesselStatuses[g.rng.Intn(len(models.VesselStatuses))],
		})
	}
	return vessels
}

func (g *Generator) berths(now time.Time, vessels []models.Vessel) []models.Berth {
	berths := make([]models.Berth, 0, len(g.catalog.Berths))
	for i, code := range g.catalog.Berths {
		assigned := vessels[i*vesselsPerBerth : (i+1)*vesselsPerBerth]
		berth := models.Berth{ID: code, Code: code, Status: models.BerthAvailable}
		for v, vessel := range assigned {
			a := models.BerthAssignment{
				ID:           fmt.Sprintf("assignment-%d-%d", i, v),
				BerthCode:    code,
				Vessel:       vessel,
				PlannedStart: now.Add(time.Duration(v) * 24 * time.Hour),
				PlannedEnd:   now.Add(time.Duration(v+1) * 24 * time.Hour),
			}
			if v == 0 {
				started := now
				a.ActualStart = &started
			}
			if a.InProgress() {
				berth.Status = models.BerthOccupied
			}
			berth.Assignments = append(berth.Assignments, a)
		}
		berths = append(berths, berth)
	}
	return berths
}

// weather draws condition and impact independently of the numeric readings.
// A pending injection forces a storm.
func (g *Generator) weather(now time.Time) models.Weather {
	w := models.Weather{
		Location:    g.location,
		Temperature: utils.Round1(g.uniform(26, 32)),
		WindSpeed:   utils.Round1(g.uniform(5, 25)),
		Humidity:    utils.Round1(g.uniform(65, 85)),
		Source:      models.WeatherSynthetic,
		ObservedAt:  now,
	}
	switch {
	case g.rng.Float64() > 0.8:
		w.Condition = "Stormy"
	case g.rng.Float64() > 0.6:
		w.Condition = "Cloudy"
	default:
		w.Condition = "Clear"
	}
	switch {
	case g.rng.Float64() > 0.8:
		w.OperationalImpact = models.ImpactHigh
	case g.rng.Float64() > 0.5:
		w.OperationalImpact = models.ImpactMedium
	default:
		w.OperationalImpact = models.ImpactLow
	}
	if g.pendingWeather > 0 {
		w.Condition = "Stormy"
		w.OperationalImpact = models.ImpactHigh
		w.WindSpeed = utils.Round1(math.Max(w.WindSpeed, 20+g.pendingWeather*10))
	}
	w.Icon = IconFor(w.Condition)
	return w
}

// IconFor maps a weather condition onto a display glyph.
func IconFor(condition string) string {
	switch condition {
	case "Stormy", "Thunderstorm":
		return "⛈️"
	case "Rain", "Showers", "Drizzle":
		return "🌧️"
	case "Snow":
		return "🌨️"
	case "Fog":
		return "🌫️"
	case "Cloudy", "Overcast":
		return "☁️"
	case "Clear":
		return "☀️"
	default:
		return "🌤️"
	}
}

func (g *Generator) alerts(now time.Time, blocks []models.YardBlock) []models.Alert {
	var alerts []models.Alert
	for _, b := range blocks {
		if b.Utilization < models.CriticalUtilization {
			continue
		}
		alert := models.Alert{
			ID:        "alert-" + b.Code,
			Severity:  models.AlertCritical,
			Message:   fmt.Sprintf("Yard block %s at %g%% capacity", b.Code, b.Utilization),
			Timestamp: now,
		}
		if target, ok := leastUtilizedExcept(blocks, b.Code); ok {
			alert.Suggestion = &models.Suggestion{
				Action: "Move containers",
				From:   b.Code,
				To:     target.Code,
				TEU:    TransferTEU(b),
			}
		}
		alerts = append(alerts, alert)
	}
	// The draw is always taken so a weather injection does not shift the
	// random sequence of later fields.
	weatherAlert := g.rng.Float64() < weatherAlertProb
	if weatherAlert || g.pendingWeather > 0 {
		alerts = append(alerts, models.NewWeatherAlert(now))
	}
	return alerts
}

// TransferTEU is the number of TEU to move out of a block to bring it back to
// the warning threshold.
func TransferTEU(b models.YardBlock) int {
	teu := int(math.Round((b.Utilization - transferFloor) * float64(b.Capacity) / 100))
	if teu < 0 {
		return 0
	}
	return teu
}

func leastUtilizedExcept(blocks []models.YardBlock, code string) (models.YardBlock, bool) {
	var (
		best  models.YardBlock
		found bool
	)
	for _, b := range blocks {
		if b.Code == code {
			continue
		}
		if !found || b.Utilization < best.Utilization {
			best = b
			found = true
		}
	}
	return best, found
}

func (g *Generator) events(now time.Time) []models.Event {
	events := make([]models.Event, 0, eventCount)
	for i := 0; i < eventCount; i++ {
		tpl := g.catalog.Events[g.rng.Intn(len(g.catalog.Events))]
		events = append(events, models.Event{
			ID:        fmt.Sprintf("event-%d", i),
			Type:      tpl.Type,
			Message:   tpl.Message,
			Timestamp: now.Add(-time.Duration(i) * eventSpacing),
			Severity:  tpl.Severity,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if r := g.pendingReroute; r != nil {
		events[0].Type = models.EventReroute
		events[0].Message = fmt.Sprintf("%s advisory - vessels rerouted, expect schedule changes", r.region)
		events[0].Severity = eventSeverityFor(r.severity)
	}
	return events
}

func eventSeverityFor(s models.AlertSeverity) models.EventSeverity {
	switch s {
	case models.AlertCritical:
		return models.EventError
	case models.AlertHigh, models.AlertMedium:
		return models.EventWarning
	default:
		return models.EventInfo
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// intn returns an integer in [lo, hi].
func (g *Generator) intn(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func validMagnitude(m float64) bool {
	return m > 0 && m <= 1 && !math.IsNaN(m)
}

func averageUtilization(blocks []models.YardBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range blocks {
		sum += b.Utilization
	}
	return utils.Round1(sum / float64(len(blocks)))
}

func countWaiting(vessels []models.Vessel) int {
	n := 0
	for _, v := range vessels {
		if v.Status == models.VesselWaiting || v.Status == models.VesselBerthing {
			n++
		}
	}
	return n
}
