package engine

import "testing"

func TestDetectorHysteresis(t *testing.T) {
	d := NewDetector(Thresholds{})

	steps := []struct {
		waiting  int
		critical int
		want     bool
		rose     bool
		cleared  bool
	}{
		{waiting: 3, critical: 0, want: false},
		{waiting: 9, critical: 0, want: true, rose: true},
		{waiting: 6, critical: 0, want: true},
		{waiting: 7, critical: 2, want: true},
		{waiting: 5, critical: 0, want: false, cleared: true},
		{waiting: 6, critical: 2, want: false},
		{waiting: 2, critical: 3, want: true, rose: true},
		{waiting: 2, critical: 2, want: true},
		{waiting: 5, critical: 1, want: false, cleared: true},
	}

	prev := false
	for i, step := range steps {
		ev := d.EvaluateCounts(prev, step.waiting, step.critical)
		if ev.Detected != step.want || ev.Rose != step.rose || ev.Cleared != step.cleared {
			t.Fatalf("step %d: got %+v, want detected=%v rose=%v cleared=%v", i, ev, step.want, step.rose, step.cleared)
		}
		prev = ev.Detected
	}
}

func TestDetectorReason(t *testing.T) {
	d := NewDetector(DefaultThresholds())
	ev := d.EvaluateCounts(false, 9, 3)
	if ev.Reason != "waiting vessels above 8; critical yard blocks above 2" {
		t.Fatalf("unexpected reason %q", ev.Reason)
	}
	ev = d.EvaluateCounts(false, 0, 3)
	if ev.Reason != "critical yard blocks above 2" {
		t.Fatalf("unexpected reason %q", ev.Reason)
	}
}

func TestDetectorUsesSnapshotCounts(t *testing.T) {
	d := NewDetector(Thresholds{RaiseWaiting: 8, RaiseCritical: 1, ClearWaiting: 5, ClearCritical: 0})
	ev := d.Evaluate(false, surgeSnapshot())
	if !ev.Detected || ev.CriticalAlerts != 2 || ev.WaitingVessels != 5 {
		t.Fatalf("unexpected evaluation %+v", ev)
	}
	if d.Thresholds().RaiseCritical != 1 {
		t.Fatalf("custom thresholds not kept")
	}
}
