package winprob

import (
	"math"
	"testing"

	"github.com/yourusername/ballpark-live/internal/liveparams"
)

func TestEWMAIsConvexCombination(t *testing.T) {
	smooth := liveparams.SmoothParams{AlphaBase: 0.3, AlphaScoreEvent: 0.55}

	pairs := [][2]float64{{0.1, 0.9}, {0.9, 0.1}, {0.5, 0.5}, {0.0, 1.0}, {0.42, 0.43}}
	for _, pair := range pairs {
		for _, event := range []bool{false, true} {
			got := EWMA(pair[0], pair[1], event, smooth)
			lo := math.Min(pair[0], pair[1])
			hi := math.Max(pair[0], pair[1])
			if got < lo-1e-12 || got > hi+1e-12 {
				t.Fatalf("EWMA(%v,%v,%v)=%v outside [%v,%v]", pair[0], pair[1], event, got, lo, hi)
			}
		}
	}
}

func TestScoreEventIsMoreResponsive(t *testing.T) {
	smooth := liveparams.SmoothParams{AlphaBase: 0.3, AlphaScoreEvent: 0.55}

	prev, next := 0.3, 0.8
	eventDist := math.Abs(EWMA(prev, next, true, smooth) - next)
	baseDist := math.Abs(EWMA(prev, next, false, smooth) - next)
	if eventDist > baseDist {
		t.Fatalf("score-event smoothing less responsive: %v > %v", eventDist, baseDist)
	}
}

func TestEWMAAlphaOne(t *testing.T) {
	smooth := liveparams.SmoothParams{AlphaBase: 1.0, AlphaScoreEvent: 1.0}

	if got := EWMA(0.2, 0.7, false, smooth); got != 0.7 {
		t.Fatalf("alpha=1 should pass next through, got %v", got)
	}
}
