package winprob

import (
	"testing"

	"github.com/yourusername/ballpark-live/internal/liveparams"
	"github.com/yourusername/ballpark-live/internal/models"
)

func TestClassifyTiers(t *testing.T) {
	conf := liveparams.ConfidenceParams{High: 0.15, Medium: 0.08}

	cases := []struct {
		pState, pMixed float64
		source         models.EstimateSource
		want           models.Confidence
	}{
		{0.50, 0.52, models.SourceModel, models.ConfidenceHigh},
		{0.50, 0.64, models.SourceModel, models.ConfidenceHigh}, // d=0.14 within high budget
		{0.50, 0.70, models.SourceModel, models.ConfidenceLow},  // d=0.20 beyond every budget
		{0.50, 0.52, models.SourceFallback, models.ConfidenceMedium},
		{0.50, 0.57, models.SourceFallback, models.ConfidenceMedium}, // d=0.07 within medium budget
		{0.50, 0.62, models.SourceFallback, models.ConfidenceLow},    // d=0.12 beyond medium budget
	}

	for _, c := range cases {
		got := Classify(c.pState, c.pMixed, c.source, conf)
		if got != c.want {
			t.Fatalf("Classify(%v,%v,%s) = %s, want %s", c.pState, c.pMixed, c.source, got, c.want)
		}
	}
}

func TestClassifyMonotonicInDisagreement(t *testing.T) {
	conf := liveparams.ConfidenceParams{High: 0.15, Medium: 0.08}
	rank := map[models.Confidence]int{
		models.ConfidenceLow:    0,
		models.ConfidenceMedium: 1,
		models.ConfidenceHigh:   2,
	}

	for _, source := range []models.EstimateSource{models.SourceModel, models.SourceFallback} {
		prevRank := 3
		for d := 0.0; d <= 0.5; d += 0.005 {
			got := rank[Classify(0.5, 0.5+d, source, conf)]
			if got > prevRank {
				t.Fatalf("confidence increased with disagreement at d=%v source=%s", d, source)
			}
			prevRank = got
		}
	}
}

func TestFallbackNeverHigh(t *testing.T) {
	conf := liveparams.ConfidenceParams{High: 0.15, Medium: 0.08}

	if got := Classify(0.5, 0.5, models.SourceFallback, conf); got == models.ConfidenceHigh {
		t.Fatalf("fallback source must not report high confidence")
	}
}
