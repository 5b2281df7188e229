// Package winprob implements the live win-probability pipeline: phase
// classification, pregame/state mixing, EWMA smoothing, probability
// recalibration and confidence labeling.
package winprob

import "github.com/yourusername/ballpark-live/internal/models"

// PhaseOf maps an inning number to a coarse game phase. Innings 1-3 are
// early, 4-6 mid, 7 and beyond late. Zero or negative innings fall through
// to early by the same comparisons.
func PhaseOf(inning int) models.Phase {
	switch {
	case inning >= 7:
		return models.PhaseLate
	case inning >= 4:
		return models.PhaseMid
	default:
		return models.PhaseEarly
	}
}
