package winprob

import "github.com/yourusername/ballpark-live/internal/liveparams"

// EWMA blends the previous displayed probability with the new estimate.
// Score-event frames use the faster alpha so a run scoring snaps the
// display toward the new state instead of drifting. No clamping happens
// here; the clip band is applied by the pipeline.
func EWMA(prev, next float64, scoreEvent bool, smooth liveparams.SmoothParams) float64 {
	alpha := smooth.AlphaBase
	if scoreEvent {
		alpha = smooth.AlphaScoreEvent
	}
	return alpha*next + (1-alpha)*prev
}
