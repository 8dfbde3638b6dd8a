package models

// SimulationKind selects what an operator injects into the generator.
type SimulationKind string

const (
	SimulateSurge   SimulationKind = "surge"
	SimulateReroute SimulationKind = "reroute"
	SimulateWeather SimulationKind = "weather"
)

// Simulation is a manual what-if request from the test panel.
type Simulation struct {
	Kind      SimulationKind `json:"kind"`
	Magnitude float64        `json:"magnitude"`
	Region    string         `json:"region,omitempty"`
	Severity  AlertSeverity  `json:"severity,omitempty"`
}

// ContainerMove transfers TEU between two yard blocks. Requested is what the
// operator asked for; TEU is what the yard could absorb.
type ContainerMove struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Requested int    `json:"requested"`
	TEU       int    `json:"teu"`
}
