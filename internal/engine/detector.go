package engine

import (
	"fmt"
	"strings"

	"github.com/portstack/surgeops/internal/models"
)

// Default hysteresis bounds. A surge is raised above the raise bounds and
// only cleared once both counts fall to the clear bounds; in between the
// previous state is kept.
const (
	DefaultRaiseWaiting  = 8
	DefaultRaiseCritical = 2
	DefaultClearWaiting  = 5
	DefaultClearCritical = 1
)

// Thresholds bounds the surge hysteresis band.
type Thresholds struct {
	RaiseWaiting  int
	RaiseCritical int
	ClearWaiting  int
	ClearCritical int
}

// DefaultThresholds returns the standard bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RaiseWaiting:  DefaultRaiseWaiting,
		RaiseCritical: DefaultRaiseCritical,
		ClearWaiting:  DefaultClearWaiting,
		ClearCritical: DefaultClearCritical,
	}
}

// Evaluation is the outcome of one detector pass.
type Evaluation struct {
	WaitingVessels int
	CriticalAlerts int
	Detected       bool
	Rose           bool
	Cleared        bool
	Reason         string
}

// Detector decides whether the port is in surge.
type Detector struct {
	thresholds Thresholds
}

// NewDetector constructs a Detector. Zero thresholds fall back to defaults.
func NewDetector(t Thresholds) *Detector {
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	return &Detector{thresholds: t}
}

// Thresholds returns the configured bounds.
func (d *Detector) Thresholds() Thresholds {
	return d.thresholds
}

// Evaluate applies the hysteresis predicate to a snapshot given the previous
// surge state.
func (d *Detector) Evaluate(prev bool, snap models.Snapshot) Evaluation {
	return d.EvaluateCounts(prev, snap.KPIs.WaitingVessels, snap.CriticalAlerts())
}

// EvaluateCounts is Evaluate over raw counts.
func (d *Detector) EvaluateCounts(prev bool, waiting, critical int) Evaluation {
	t := d.thresholds
	ev := Evaluation{WaitingVessels: waiting, CriticalAlerts: critical, Detected: prev}

	var reasons []string
	if waiting > t.RaiseWaiting {
		reasons = append(reasons, fmt.Sprintf("waiting vessels above %d", t.RaiseWaiting))
	}
	if critical > t.RaiseCritical {
		reasons = append(reasons, fmt.Sprintf("critical yard blocks above %d", t.RaiseCritical))
	}

	switch {
	case len(reasons) > 0:
		ev.Detected = true
		ev.Reason = strings.Join(reasons, "; ")
	case waiting <= t.ClearWaiting && critical <= t.ClearCritical:
		ev.Detected = false
	}
	ev.Rose = !prev && ev.Detected
	ev.Cleared = prev && !ev.Detected
	if ev.Cleared {
		ev.Reason = "congestion back within limits"
	}
	return ev
}
