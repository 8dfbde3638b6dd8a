package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/portstack/surgeops/internal/models"
)

const (
	// OutcomeSuccess labels refreshes that produced a snapshot.
	OutcomeSuccess = "success"
	// OutcomeFollower labels refreshes served from another replica's snapshot.
	OutcomeFollower = "follower"
	// OutcomeError labels refreshes that failed.
	OutcomeError = "error"
)

const namespace = "surgeops"

var (
	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Total number of dashboard refreshes, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	refreshDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_seconds",
			Help:      "Dashboard refresh latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	surgeDetected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "surge_detected",
			Help:      "1 while the surge predicate holds, 0 otherwise.",
		},
	)

	yardUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "yard_utilization_percent",
			Help:      "Utilization of each yard block in the latest snapshot.",
		},
		[]string{"block"},
	)

	criticalAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "critical_alerts",
			Help:      "CRITICAL alerts in the latest snapshot.",
		},
	)

	waitingVessels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "waiting_vessels",
			Help:      "Vessels waiting or berthing in the latest snapshot.",
		},
	)

	simulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Manual simulations applied, partitioned by kind.",
		},
		[]string{"kind"},
	)

	surgeTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surge_transitions_total",
			Help:      "Surge banner transitions, partitioned by target phase.",
		},
		[]string{"to"},
	)
)

// Register attaches SurgeOps collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		refreshesTotal,
		refreshDurationSeconds,
		surgeDetected,
		yardUtilization,
		criticalAlerts,
		waitingVessels,
		simulationsTotal,
		surgeTransitionsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRefresh records a refresh duration and outcome label.
func ObserveRefresh(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError && label != OutcomeFollower {
		label = OutcomeSuccess
	}
	refreshesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	refreshDurationSeconds.Observe(duration.Seconds())
}

// ObserveSnapshot publishes the gauges derived from a snapshot.
func ObserveSnapshot(snap models.Snapshot, detected bool) {
	for _, b := range snap.YardBlocks {
		yardUtilization.WithLabelValues(b.Code).Set(b.Utilization)
	}
	criticalAlerts.Set(float64(snap.CriticalAlerts()))
	waitingVessels.Set(float64(snap.KPIs.WaitingVessels))
	if detected {
		surgeDetected.Set(1)
	} else {
		surgeDetected.Set(0)
	}
}

// ObserveSimulation counts a manual simulation.
func ObserveSimulation(kind string) {
	simulationsTotal.WithLabelValues(kind).Inc()
}

// ObserveTransition counts a banner transition.
func ObserveTransition(to models.SurgePhase) {
	surgeTransitionsTotal.WithLabelValues(string(to)).Inc()
}
