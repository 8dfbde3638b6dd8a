package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/portstack/surgeops/internal/models"
)

// RuleEngine turns a congested snapshot into operator recommendations.
type RuleEngine struct {
	rules  []Rule
	logger *slog.Logger
}

// Rule represents a single recommendation rule.
type Rule struct {
	ID              string    `yaml:"id"`
	Match           RuleMatch `yaml:"match"`
	Recommendations []string  `yaml:"recommendations"`
}

// RuleMatch defines optional attributes for rule matching. Every set field
// must hold for the rule to fire.
type RuleMatch struct {
	MinAvgUtilization float64 `yaml:"min_avg_utilization"`
	MinCriticalBlocks int     `yaml:"min_critical_blocks"`
	MinWaitingVessels int     `yaml:"min_waiting_vessels"`
	Category          string  `yaml:"category"`
	WeatherImpact     string  `yaml:"weather_impact"`
	UtilizationSpike  bool    `yaml:"utilization_spike"`
}

// RuleConfigFile is the YAML root structure.
type RuleConfigFile struct {
	Rules []Rule `yaml:"rules"`
}

// RuleInput is what rules are evaluated against.
type RuleInput struct {
	Snapshot models.Snapshot
	Spikes   int
}

// NewRuleEngine loads rules from the provided path. If path is empty or the
// file does not exist, returns nil engine.
func NewRuleEngine(path string, logger *slog.Logger) (*RuleEngine, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return ParseRules(data, logger)
}

// ParseRules builds a RuleEngine from YAML.
func ParseRules(data []byte, logger *slog.Logger) (*RuleEngine, error) {
	var cfg RuleConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleEngine{rules: cfg.Rules, logger: logger}, nil
}

// Len returns the number of loaded rules.
func (e *RuleEngine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

// Recommend produces deduplicated recommendations from every matching rule,
// in rule order.
func (e *RuleEngine) Recommend(in RuleInput) []string {
	if e == nil {
		return nil
	}

	matched := make([]string, 0)
	for _, rule := range e.rules {
		if !rule.Match.matches(in) {
			continue
		}
		e.logger.Debug("rule matched", slog.String("rule", rule.ID))
		matched = appendUnique(matched, rule.Recommendations...)
	}
	return matched
}

func (m RuleMatch) matches(in RuleInput) bool {
	snap := in.Snapshot
	if m.MinAvgUtilization > 0 && snap.KPIs.AvgYardUtilization < m.MinAvgUtilization {
		return false
	}
	if m.MinCriticalBlocks > 0 && len(snap.CriticalBlocks()) < m.MinCriticalBlocks {
		return false
	}
	if m.MinWaitingVessels > 0 && snap.KPIs.WaitingVessels < m.MinWaitingVessels {
		return false
	}
	if m.Category != "" && !criticalCategory(m.Category, snap) {
		return false
	}
	if m.WeatherImpact != "" && !strings.EqualFold(m.WeatherImpact, string(snap.Weather.OperationalImpact)) {
		return false
	}
	if m.UtilizationSpike && in.Spikes == 0 {
		return false
	}
	return true
}

func criticalCategory(category string, snap models.Snapshot) bool {
	for _, b := range snap.CriticalBlocks() {
		if strings.EqualFold(category, string(b.Category)) {
			return true
		}
	}
	return false
}

func appendUnique(existing []string, additions ...string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[rec] = struct{}{}
	}
	for _, item := range additions {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		existing = append(existing, item)
		seen[item] = struct{}{}
	}
	return existing
}
