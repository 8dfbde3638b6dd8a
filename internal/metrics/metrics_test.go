package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/portstack/surgeops/internal/models"
)

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register should tolerate duplicates: %v", err)
	}
}

func TestObserveRefreshNormalisesOutcome(t *testing.T) {
	before := testutil.ToFloat64(refreshesTotal.WithLabelValues(OutcomeSuccess))
	ObserveRefresh(-time.Second, "bogus")
	after := testutil.ToFloat64(refreshesTotal.WithLabelValues(OutcomeSuccess))
	if after-before != 1 {
		t.Fatalf("expected unknown outcome counted as success")
	}
}

func TestObserveSnapshot(t *testing.T) {
	snap := models.Snapshot{
		KPIs:       models.KPIs{WaitingVessels: 4},
		YardBlocks: []models.YardBlock{{Code: "B1", Utilization: 96.5}},
		Alerts:     []models.Alert{{Severity: models.AlertCritical}},
	}
	ObserveSnapshot(snap, true)
	if got := testutil.ToFloat64(yardUtilization.WithLabelValues("B1")); got != 96.5 {
		t.Fatalf("unexpected block gauge %v", got)
	}
	if testutil.ToFloat64(criticalAlerts) != 1 || testutil.ToFloat64(waitingVessels) != 4 || testutil.ToFloat64(surgeDetected) != 1 {
		t.Fatalf("unexpected snapshot gauges")
	}
}
