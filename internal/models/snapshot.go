package models

import (
	"strings"
	"time"
)

// Snapshot is one complete synthesized state of the port. Consumers replace
// any previously held snapshot with it; there are no partial updates.
type Snapshot struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	KPIs        KPIs         `json:"kpis"`
	ChartData   []ChartPoint `json:"chartData"`
	YardBlocks  []YardBlock  `json:"yardBlocks"`
	Berths      []Berth      `json:"berths"`
	Weather     Weather      `json:"weather"`
	Alerts      []Alert      `json:"alerts"`
	Events      []Event      `json:"events"`
	SurgeActive bool         `json:"surgeActive"`
	// Moves lists the container moves applied to this snapshot's blocks.
	Moves []ContainerMove `json:"moves,omitempty"`
}

// KPIs summarises the snapshot for the headline cards.
type KPIs struct {
	AvgYardUtilization float64 `json:"avgYardUtilization"`
	WaitingVessels     int     `json:"waitingVessels"`
	ActiveAlerts       int     `json:"activeAlerts"`
	TEUProcessed24h    int     `json:"teuProcessed24h"`
}

// ChartPoint is one hourly sample of overall yard utilization.
type ChartPoint struct {
	Time        time.Time `json:"time"`
	Label       string    `json:"label"`
	Utilization float64   `json:"utilization"`
	Threshold   float64   `json:"threshold"`
	Spike       bool      `json:"spike,omitempty"`
}

// BlockCategory classifies what a yard block stores.
type BlockCategory string

const (
	CategoryStandard BlockCategory = "Standard"
	CategoryReefer   BlockCategory = "Reefer"
	CategoryHazard   BlockCategory = "Hazard"
)

// BlockStatus is derived from utilization thresholds.
type BlockStatus string

const (
	BlockNormal   BlockStatus = "normal"
	BlockWarning  BlockStatus = "warning"
	BlockCritical BlockStatus = "critical"
)

const (
	// WarningUtilization is the lower bound of the warning band.
	WarningUtilization = 80.0
	// CriticalUtilization is the lower bound of the critical band and the
	// threshold drawn on the utilization chart.
	CriticalUtilization = 95.0
)

// StatusForUtilization maps a utilization percentage onto a block status.
func StatusForUtilization(utilization float64) BlockStatus {
	switch {
	case utilization >= CriticalUtilization:
		return BlockCritical
	case utilization >= WarningUtilization:
		return BlockWarning
	default:
		return BlockNormal
	}
}

// YardBlock is a storage segment of the container yard.
type YardBlock struct {
	ID          string        `json:"id"`
	Code        string        `json:"code"`
	Category    BlockCategory `json:"category"`
	Capacity    int           `json:"capacity"`
	Current     int           `json:"current"`
	Utilization float64       `json:"utilization"`
	Status      BlockStatus   `json:"status"`
}

// VesselStatus tracks where a vessel is in its port call.
type VesselStatus string

const (
	VesselWaiting  VesselStatus = "Waiting"
	VesselBerthing VesselStatus = "Berthing"
	VesselLoading  VesselStatus = "Loading"
	VesselDeparted VesselStatus = "Departed"
)

// VesselStatuses lists every vessel status in declaration order.
var VesselStatuses = []VesselStatus{VesselWaiting, VesselBerthing, VesselLoading, VesselDeparted}

// Vessel is a ship expected at or working in the port.
type Vessel struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	IMO         string       `json:"imo,omitempty"`
	ExpectedTEU int          `json:"expectedTeu"`
	ETA         time.Time    `json:"eta"`
	Status      VesselStatus `json:"status"`
}

// BerthStatus reports berth availability.
type BerthStatus string

const (
	BerthAvailable   BerthStatus = "Available"
	BerthOccupied    BerthStatus = "Occupied"
	BerthMaintenance BerthStatus = "Maintenance"
)

// Berth is a docking location with its scheduled assignments.
type Berth struct {
	ID          string            `json:"id"`
	Code        string            `json:"code"`
	Status      BerthStatus       `json:"status"`
	Assignments []BerthAssignment `json:"assignments"`
}

// BerthAssignment schedules one vessel on a berth.
type BerthAssignment struct {
	ID           string     `json:"id"`
	BerthCode    string     `json:"berthCode"`
	Vessel       Vessel     `json:"vessel"`
	PlannedStart time.Time  `json:"plannedStart"`
	PlannedEnd   time.Time  `json:"plannedEnd"`
	ActualStart  *time.Time `json:"actualStart,omitempty"`
	ActualEnd    *time.Time `json:"actualEnd,omitempty"`
}

// InProgress reports whether the assignment has started and not finished.
func (a BerthAssignment) InProgress() bool {
	return a.ActualStart != nil && a.ActualEnd == nil
}

// Impact grades how much weather disrupts crane and berth operations.
type Impact string

const (
	ImpactLow    Impact = "Low"
	ImpactMedium Impact = "Medium"
	ImpactHigh   Impact = "High"
)

// WeatherSource identifies where a weather reading came from.
type WeatherSource string

const (
	WeatherSynthetic WeatherSource = "synthetic"
	WeatherOpenMeteo WeatherSource = "open-meteo"
)

// Weather is a single reading for the port location.
type Weather struct {
	Location          string        `json:"location"`
	Temperature       float64       `json:"temperature"`
	WindSpeed         float64       `json:"windSpeed"`
	Humidity          float64       `json:"humidity"`
	Condition         string        `json:"condition"`
	Icon              string        `json:"icon"`
	OperationalImpact Impact        `json:"operationalImpact"`
	Source            WeatherSource `json:"source"`
	ObservedAt        time.Time     `json:"observedAt"`
}

// AlertSeverity grades alerts.
type AlertSeverity string

const (
	AlertLow      AlertSeverity = "LOW"
	AlertMedium   AlertSeverity = "MEDIUM"
	AlertHigh     AlertSeverity = "HIGH"
	AlertCritical AlertSeverity = "CRITICAL"
)

// ParseAlertSeverity accepts any casing of a known severity.
func ParseAlertSeverity(value string) (AlertSeverity, bool) {
	switch AlertSeverity(strings.ToUpper(strings.TrimSpace(value))) {
	case AlertLow:
		return AlertLow, true
	case AlertMedium:
		return AlertMedium, true
	case AlertHigh:
		return AlertHigh, true
	case AlertCritical:
		return AlertCritical, true
	}
	return "", false
}

// Alert is an operator-facing warning.
type Alert struct {
	ID           string        `json:"id"`
	Severity     AlertSeverity `json:"severity"`
	Message      string        `json:"message"`
	Timestamp    time.Time     `json:"timestamp"`
	Acknowledged bool          `json:"acknowledged"`
	Suggestion   *Suggestion   `json:"suggestion,omitempty"`
}

// WeatherAlertID identifies the single high-wind alert.
const WeatherAlertID = "alert-weather"

// NewWeatherAlert builds the high-wind alert raised half an hour before at.
func NewWeatherAlert(at time.Time) Alert {
	return Alert{
		ID:        WeatherAlertID,
		Severity:  AlertHigh,
		Message:   "High wind conditions affecting crane operations",
		Timestamp: at.Add(-30 * time.Minute),
	}
}

// Suggestion proposes a container transfer between yard blocks.
type Suggestion struct {
	Action string `json:"action"`
	From   string `json:"from"`
	To     string `json:"to"`
	TEU    int    `json:"teu"`
}

// EventType classifies feed events.
type EventType string

const (
	EventVessel  EventType = "vessel"
	EventWeather EventType = "weather"
	EventSurge   EventType = "surge"
	EventReroute EventType = "reroute"
	EventSystem  EventType = "system"
)

// EventSeverity grades feed events.
type EventSeverity string

const (
	EventInfo    EventSeverity = "info"
	EventWarning EventSeverity = "warning"
	EventError   EventSeverity = "error"
)

// Event is an entry in the recent-activity feed.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Severity  EventSeverity `json:"severity"`
}

// CriticalAlerts counts CRITICAL alerts in the snapshot.
func (s Snapshot) CriticalAlerts() int {
	n := 0
	for _, a := range s.Alerts {
		if a.Severity == AlertCritical {
			n++
		}
	}
	return n
}

// UnacknowledgedAlerts counts alerts not yet acknowledged.
func (s Snapshot) UnacknowledgedAlerts() int {
	n := 0
	for _, a := range s.Alerts {
		if !a.Acknowledged {
			n++
		}
	}
	return n
}

// CriticalBlocks returns the blocks in the critical band.
func (s Snapshot) CriticalBlocks() []YardBlock {
	var out []YardBlock
	for _, b := range s.YardBlocks {
		if b.Status == BlockCritical {
			out = append(out, b)
		}
	}
	return out
}
