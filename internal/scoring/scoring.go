// Package scoring computes the per-player average rating and its display
// band from the populated scored categories.
package scoring

import (
	"github.com/opencourt/scoutbook/internal/models"
	"github.com/opencourt/scoutbook/internal/schema"
)

// Band groups averages for display.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Band thresholds on the default 3-point scale. For other scales they
// are multiplied by scale/3.
const (
	lowThreshold  = 1.7
	highThreshold = 2.3
)

// AverageScore returns the arithmetic mean of the scored categories
// present in the player's ratings. Informational categories (size) never
// count. A player with no scored ratings averages 0.
func AverageScore(sch *schema.Schema, p models.Player) float64 {
	total := 0
	count := 0
	for _, key := range sch.ScoredKeys() {
		if v, ok := p.Ratings[key]; ok {
			total += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// Classify maps a score onto its band. The cutoffs scale with the rating
// domain so a 5-point schema bands the same relative scores as 3-point.
func Classify(sch *schema.Schema, score float64) Band {
	factor := float64(sch.Scale()) / 3.0
	switch {
	case score < lowThreshold*factor:
		return BandLow
	case score > highThreshold*factor:
		return BandHigh
	default:
		return BandMedium
	}
}
