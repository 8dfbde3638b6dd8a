package engine

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/portstack/surgeops/internal/models"
)

func surgeSnapshot() models.Snapshot {
	return models.Snapshot{
		KPIs: models.KPIs{AvgYardUtilization: 88, WaitingVessels: 5},
		YardBlocks: []models.YardBlock{
			{Code: "B1", Category: models.CategoryStandard, Capacity: 1200, Utilization: 96, Status: models.BlockCritical},
			{Code: "B3", Category: models.CategoryReefer, Capacity: 800, Utilization: 97, Status: models.BlockCritical},
			{Code: "B5", Category: models.CategoryStandard, Capacity: 1400, Utilization: 70, Status: models.BlockNormal},
		},
		Weather: models.Weather{OperationalImpact: models.ImpactHigh},
		Alerts: []models.Alert{
			{ID: "alert-B1", Severity: models.AlertCritical, Suggestion: &models.Suggestion{Action: "Move containers", From: "B1", To: "B5", TEU: 192}},
			{ID: "alert-B3", Severity: models.AlertCritical, Suggestion: &models.Suggestion{Action: "Move containers", From: "B3", To: "B5", TEU: 136}},
		},
	}
}

func TestRuleEngineRecommend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte(`rules:
  - id: reefer
    match:
      category: "reefer"
      min_critical_blocks: 2
    recommendations: ["Check reefer plugs", "Transfer containers"]
  - id: crit
    match:
      min_critical_blocks: 1
    recommendations: ["Transfer containers"]
  - id: hazard
    match:
      category: "Hazard"
    recommendations: ["Call DG officer"]
  - id: queue
    match:
      min_waiting_vessels: 6
    recommendations: ["Resequence berths"]
  - id: wind
    match:
      weather_impact: "high"
    recommendations: ["Crane limits"]
  - id: spike
    match:
      utilization_spike: true
    recommendations: ["Investigate spike"]
`), 0644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	engine, err := NewRuleEngine(path, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	if err != nil {
		t.Fatalf("new rule engine: %v", err)
	}
	if engine.Len() != 6 {
		t.Fatalf("expected 6 rules, got %d", engine.Len())
	}

	recs := engine.Recommend(RuleInput{Snapshot: surgeSnapshot()})
	want := []string{"Check reefer plugs", "Transfer containers", "Crane limits"}
	if len(recs) != len(want) {
		t.Fatalf("expected %v, got %v", want, recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, recs)
		}
	}

	withSpike := engine.Recommend(RuleInput{Snapshot: surgeSnapshot(), Spikes: 1})
	if withSpike[len(withSpike)-1] != "Investigate spike" {
		t.Fatalf("expected spike rule to fire, got %v", withSpike)
	}
}

func TestRuleEngineNoFile(t *testing.T) {
	engine, err := NewRuleEngine("non-existent", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if engine != nil {
		t.Fatalf("expected nil engine when file missing")
	}
	if recs := engine.Recommend(RuleInput{}); recs != nil {
		t.Fatalf("nil engine must not recommend, got %v", recs)
	}
}

func TestDefaultRulePackParses(t *testing.T) {
	engine, err := NewRuleEngine(filepath.Join("..", "..", "configs", "rules", "default.yaml"), nil)
	if err != nil {
		t.Fatalf("load default rules: %v", err)
	}
	if engine.Len() == 0 {
		t.Fatalf("expected default rules to load")
	}
	if recs := engine.Recommend(RuleInput{Snapshot: surgeSnapshot()}); len(recs) == 0 {
		t.Fatalf("expected default rules to match a congested snapshot")
	}
}

func TestParseRulesInvalid(t *testing.T) {
	if _, err := ParseRules([]byte("rules: [unterminated"), nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
