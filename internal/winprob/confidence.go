package winprob

import (
	"math"

	"github.com/yourusername/ballpark-live/internal/liveparams"
	"github.com/yourusername/ballpark-live/internal/models"
)

// Classify labels an estimate by the agreement between the state-based and
// mixed probabilities and the declared source tier. Each configured value
// is the maximum disagreement allowed for that tier; only model-sourced
// frames may claim high confidence. For a fixed source, a smaller
// disagreement never yields a lower tier.
func Classify(pState, pMixed float64, source models.EstimateSource, conf liveparams.ConfidenceParams) models.Confidence {
	d := math.Abs(pState - pMixed)

	if source == models.SourceModel && d <= conf.High {
		return models.ConfidenceHigh
	}
	if d <= conf.Medium {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
