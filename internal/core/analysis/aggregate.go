package analysis

import (
	"math"

	"github.com/osanchez-dev/revisia/internal/models"
)

// categoryWeights is the fixed weighting used for the overall score. The
// weights sum to 1 across the full category set; categories missing from the
// input simply drop out of the normalization.
var categoryWeights = map[models.ScoreCategory]float64{
	models.ScoreGrammar:     0.25,
	models.ScoreSpelling:    0.15,
	models.ScoreStyle:       0.20,
	models.ScoreCoherence:   0.20,
	models.ScoreCitation:    0.15,
	models.ScoreOriginality: 0.05,
}

// AggregateWeighted reduces a score map to one 0-100 integer. Only categories
// present in both the weight table and the input contribute. Rounding is
// math.Round (half away from zero), matching the historical scoring behavior.
// An empty or weightless input yields 0.
func AggregateWeighted(scores map[models.ScoreCategory]float64) int {
	var totalScore, totalWeight float64
	for category, score := range scores {
		weight, ok := categoryWeights[category]
		if !ok {
			continue
		}
		totalScore += score * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return int(math.Round(totalScore / totalWeight))
}

// AggregateScores is the closed-record entry point used by the pipeline.
func AggregateScores(s models.Scores) int {
	return AggregateWeighted(s.Map())
}
