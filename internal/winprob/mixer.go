package winprob

import (
	"github.com/yourusername/ballpark-live/internal/liveparams"
)

// lateInningCutoff is the inning by which the blend weight reaches WMax.
// Progress within an inning is advanced fractionally by outs.
const lateInningCutoff = 9

// WeightCurve maps normalized game progress t in [0,1] to a normalized
// weight in [0,1]. Curves must be non-decreasing.
type WeightCurve func(t float64) float64

// weightCurves holds the registered curve shapes keyed by config id.
// Only linear ships today; additional shapes register here.
var weightCurves = map[string]WeightCurve{
	"linear": func(t float64) float64 { return t },
}

// curveFor resolves a curve id, falling back to linear for unknown ids
func curveFor(id string) WeightCurve {
	if c, ok := weightCurves[id]; ok {
		return c
	}
	return weightCurves["linear"]
}

// MixResult carries the blend weight alongside the mixed probability
type MixResult struct {
	W float64
	P float64
}

// Mix blends the pregame estimate with the live state-based estimate.
// The weight w is the trust placed in the live estimate: WMin at first
// pitch, rising along the configured curve to WMax by the late-inning
// cutoff, non-decreasing in inning and always inside [WMin, WMax].
// Callers apply the clip band to P before the value is shown.
func Mix(pPregame, pState float64, inning, outs int, mix liveparams.MixParams) MixResult {
	if inning < 1 {
		inning = 1
	}
	if outs < 0 {
		outs = 0
	} else if outs > 2 {
		outs = 2
	}

	// Normalized progress: inning 1 outs 0 is 0, the cutoff inning is 1
	progress := (float64(inning-1) + float64(outs)/3.0) / float64(lateInningCutoff-1)
	if progress > 1 {
		progress = 1
	}

	t := curveFor(mix.Curve)(progress)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	w := mix.WMin + (mix.WMax-mix.WMin)*t

	return MixResult{
		W: w,
		P: (1-w)*pPregame + w*pState,
	}
}

// Clip bounds p to the configured safety band
func Clip(p float64, clip liveparams.ClipParams) float64 {
	if p < clip.Lo {
		return clip.Lo
	}
	if p > clip.Hi {
		return clip.Hi
	}
	return p
}
