package models

import "time"

// SurgePhase is the state of the surge banner.
type SurgePhase string

const (
	PhaseQuiet          SurgePhase = "quiet"
	PhaseSurgeDetected  SurgePhase = "surge-detected"
	PhaseActionPlanOpen SurgePhase = "action-plan-open"
)

// SurgeState is the derived surge signal plus the banner phase.
type SurgeState struct {
	Phase          SurgePhase  `json:"phase"`
	SurgeDetected  bool        `json:"surgeDetected"`
	WaitingVessels int         `json:"waitingVessels"`
	CriticalAlerts int         `json:"criticalAlerts"`
	Reason         string      `json:"reason,omitempty"`
	EpisodeID      string      `json:"episodeId,omitempty"`
	Since          time.Time   `json:"since"`
	Plan           *ActionPlan `json:"plan,omitempty"`
}

// PlanStatus tracks an action plan through operator review.
type PlanStatus string

const (
	PlanReady    PlanStatus = "ready"
	PlanAccepted PlanStatus = "accepted"
	PlanRejected PlanStatus = "rejected"
)

// ActionPlan is the rule-derived mitigation proposal for a surge episode.
type ActionPlan struct {
	ID              string       `json:"id"`
	EpisodeID       string       `json:"episodeId"`
	CreatedAt       time.Time    `json:"createdAt"`
	Recommendations []string     `json:"recommendations"`
	Transfers       []Suggestion `json:"transfers"`
	HotBlocks       []string     `json:"hotBlocks,omitempty"`
	Spikes          int          `json:"spikes"`
	Status          PlanStatus   `json:"status"`
}

// SurgeTransition records one move of the banner state machine.
type SurgeTransition struct {
	ID             string     `json:"id"`
	EpisodeID      string     `json:"episodeId"`
	From           SurgePhase `json:"from"`
	To             SurgePhase `json:"to"`
	Reason         string     `json:"reason"`
	At             time.Time  `json:"at"`
	WaitingVessels int        `json:"waitingVessels"`
	CriticalAlerts int        `json:"criticalAlerts"`
	AvgUtilization float64    `json:"avgUtilization"`
	HotBlocks      []string   `json:"hotBlocks,omitempty"`
}

// PlanDecision captures the operator verdict on an action plan.
type PlanDecision struct {
	PlanID    string    `json:"planId"`
	EpisodeID string    `json:"episodeId"`
	Accepted  bool      `json:"accepted"`
	Notes     string    `json:"notes,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

// SurgePattern is a recurring surge signature mined from history.
type SurgePattern struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	Occurrences int       `json:"occurrences"`
	Prevalence  float64   `json:"prevalence"`
	HotBlocks   []string  `json:"hotBlocks"`
	LastSeen    time.Time `json:"lastSeen"`
}
