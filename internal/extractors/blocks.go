package extractors

import (
	"math"
	"sort"

	"github.com/portstack/surgeops/internal/models"
)

// HotBlock is a yard block running well above its peers or in the critical band.
type HotBlock struct {
	Code        string
	Category    models.BlockCategory
	Utilization float64
	Score       float64
}

// BlockExtractor spots yard blocks that stand out from the median block.
type BlockExtractor struct {
	threshold float64
}

// NewBlockExtractor constructs a BlockExtractor with default threshold (2.0).
func NewBlockExtractor() *BlockExtractor {
	return &BlockExtractor{threshold: 2.0}
}

// Detect returns hot blocks ordered by utilization, highest first. A block is
// hot when its deviation from the median exceeds the threshold in mean
// absolute deviations, or when it is critical.
func (e *BlockExtractor) Detect(blocks []models.YardBlock) []HotBlock {
	if len(blocks) == 0 {
		return nil
	}

	values := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		values = append(values, b.Utilization)
	}

	median := percentile(values, 0.5)
	mad := meanAbsoluteDeviation(values, median)
	if mad == 0 {
		mad = 1
	}

	hot := make([]HotBlock, 0)
	for _, b := range blocks {
		score := (b.Utilization - median) / mad
		if score >= e.threshold || b.Status == models.BlockCritical {
			hot = append(hot, HotBlock{
				Code:        b.Code,
				Category:    b.Category,
				Utilization: b.Utilization,
				Score:       score,
			})
		}
	}
	sort.SliceStable(hot, func(i, j int) bool {
		return hot[i].Utilization > hot[j].Utilization
	})
	return hot
}

// Codes returns the block codes of hot blocks in order.
func Codes(hot []HotBlock) []string {
	out := make([]string, 0, len(hot))
	for _, h := range hot {
		out = append(out, h.Code)
	}
	return out
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Round(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func meanAbsoluteDeviation(values []float64, center float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v - center)
	}
	return sum / float64(len(values))
}
