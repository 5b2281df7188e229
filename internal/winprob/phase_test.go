package winprob

import (
	"testing"

	"github.com/yourusername/ballpark-live/internal/models"
)

func TestPhaseOf(t *testing.T) {
	cases := []struct {
		inning int
		want   models.Phase
	}{
		{-1, models.PhaseEarly},
		{0, models.PhaseEarly},
		{1, models.PhaseEarly},
		{3, models.PhaseEarly},
		{4, models.PhaseMid},
		{6, models.PhaseMid},
		{7, models.PhaseLate},
		{9, models.PhaseLate},
		{12, models.PhaseLate},
	}

	for _, c := range cases {
		if got := PhaseOf(c.inning); got != c.want {
			t.Fatalf("PhaseOf(%d) = %s, want %s", c.inning, got, c.want)
		}
	}
}
