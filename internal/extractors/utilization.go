package extractors

import (
	"math"
	"time"

	"github.com/portstack/surgeops/internal/models"
)

// DefaultSpikeThreshold is the z-score at which a chart point counts as a spike.
const DefaultSpikeThreshold = 2.5

// UtilizationSpike captures an anomalous point of the utilization series.
type UtilizationSpike struct {
	Timestamp time.Time
	Value     float64
	Score     float64
	Threshold float64
}

// UtilizationExtractor detects spikes in the 24h utilization series using a
// z-score over the whole window.
type UtilizationExtractor struct{}

// NewUtilizationExtractor creates a utilization spike detector.
func NewUtilizationExtractor() *UtilizationExtractor {
	return &UtilizationExtractor{}
}

// Detect finds chart points whose z-score reaches the threshold.
func (e *UtilizationExtractor) Detect(series []models.ChartPoint, threshold float64) []UtilizationSpike {
	if len(series) == 0 {
		return nil
	}

	if threshold <= 0 {
		threshold = DefaultSpikeThreshold
	}

	values := make([]float64, len(series))
	for i, point := range series {
		values[i] = point.Utilization
	}
	avg := mean(values)
	std := stdDev(values, avg)
	if std == 0 {
		std = 0.01
	}

	spikes := make([]UtilizationSpike, 0)
	for _, point := range series {
		score := (point.Utilization - avg) / std
		if score >= threshold {
			spikes = append(spikes, UtilizationSpike{
				Timestamp: point.Time,
				Value:     point.Utilization,
				Score:     score,
				Threshold: threshold,
			})
		}
	}

	return spikes
}

// Annotate marks spike points on a copy of the series and returns it with the
// spike count.
func (e *UtilizationExtractor) Annotate(series []models.ChartPoint, threshold float64) ([]models.ChartPoint, int) {
	spikes := e.Detect(series, threshold)
	out := make([]models.ChartPoint, len(series))
	copy(out, series)
	if len(spikes) == 0 {
		return out, 0
	}
	at := make(map[time.Time]struct{}, len(spikes))
	for _, s := range spikes {
		at[s.Timestamp] = struct{}{}
	}
	for i := range out {
		if _, ok := at[out[i].Time]; ok {
			out[i].Spike = true
		}
	}
	return out, len(spikes)
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func stdDev(values []float64, mean float64) float64 {
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)))
}
