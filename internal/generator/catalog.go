package generator

import (
	"github.com/portstack/surgeops/internal/models"
	"github.com/portstack/surgeops/internal/utils"
)

// BlockSpec describes a yard block the generator fills on every snapshot.
type BlockSpec struct {
	Code     string               `yaml:"code"`
	Category models.BlockCategory `yaml:"category"`
	Capacity int                  `yaml:"capacity"`
}

// EventTemplate is one entry of the activity feed vocabulary.
type EventTemplate struct {
	Type     models.EventType
	Message  string
	Severity models.EventSeverity
}

// Catalog is the static reference data snapshots are built from.
type Catalog struct {
	Blocks  []BlockSpec
	Vessels []string
	Berths  []string
	Events  []EventTemplate
}

// HasBlock reports whether code names a catalog block.
func (c Catalog) HasBlock(code string) bool {
	for _, b := range c.Blocks {
		if b.Code == code {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the built-in port layout.
func DefaultCatalog() Catalog {
	return Catalog{
		Blocks: []BlockSpec{
			{Code: "B1", Category: models.CategoryStandard, Capacity: 1200},
			{Code: "B2", Category: models.CategoryStandard, Capacity: 1000},
			{Code: "B3", Category: models.CategoryReefer, Capacity: 800},
			{Code: "B4", Category: models.CategoryHazard, Capacity: 600},
			{Code: "B5", Category: models.CategoryStandard, Capacity: 1400},
		},
		Vessels: []string{
			"MV Ocean Grace",
			"MSC Determination",
			"COSCO Fortune",
			"Evergreen Harmony",
			"APL Singapore",
			"CMA CGM Explorer",
		},
		Berths: []string{"BERTH-1", "BERTH-2", "BERTH-3"},
		Events: []EventTemplate{
			{Type: models.EventVessel, Message: "MV Ocean Grace updated ETA", Severity: models.EventInfo},
			{Type: models.EventSurge, Message: "Surge prediction model updated", Severity: models.EventWarning},
			{Type: models.EventWeather, Message: "Weather conditions improving", Severity: models.EventInfo},
			{Type: models.EventReroute, Message: "Red Sea advisory - expect rerouted vessels", Severity: models.EventWarning},
			{Type: models.EventSystem, Message: "Yard utilization snapshot completed", Severity: models.EventInfo},
		},
	}
}

// Validate checks the catalog can produce a well-formed snapshot. Every
// berth takes two vessels, so the vessel list must cover them all.
func (c Catalog) Validate() error {
	const op = "generator.Catalog.Validate"
	if len(c.Blocks) == 0 {
		return utils.NewAppErrorf(op, "catalog has no yard blocks")
	}
	seen := make(map[string]struct{}, len(c.Blocks))
	for _, b := range c.Blocks {
		if b.Code == "" {
			return utils.NewAppErrorf(op, "yard block with empty code")
		}
		if b.Capacity <= 0 {
			return utils.NewAppErrorf(op, "yard block %s has non-positive capacity %d", b.Code, b.Capacity)
		}
		if _, dup := seen[b.Code]; dup {
			return utils.NewAppErrorf(op, "duplicate yard block %s", b.Code)
		}
		seen[b.Code] = struct{}{}
	}
	if len(c.Vessels) < len(c.Berths)*vesselsPerBerth {
		return utils.NewAppErrorf(op, "need at least %d vessels for %d berths, have %d",
			len(c.Berths)*vesselsPerBerth, len(c.Berths), len(c.Vessels))
	}
	if len(c.Events) == 0 {
		return utils.NewAppErrorf(op, "catalog has no event templates")
	}
	return nil
}
