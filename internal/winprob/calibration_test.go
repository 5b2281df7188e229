package winprob

import (
	"math"
	"testing"

	"github.com/yourusername/ballpark-live/internal/liveparams"
	"github.com/yourusername/ballpark-live/internal/models"
)

var allPhases = []models.Phase{models.PhaseEarly, models.PhaseMid, models.PhaseLate}

var probeValues = []float64{0.0, 1e-9, 0.001, 0.1, 0.25, 0.5, 0.75, 0.9, 0.999, 1.0}

func TestCalibrationIdentityMode(t *testing.T) {
	calib := liveparams.CalibrationParams{Mode: liveparams.CalibrationNone}

	for _, phase := range allPhases {
		for _, p := range []float64{0.001, 0.1, 0.5, 0.9, 0.999} {
			if got := ApplyCalibration(p, phase, calib); got != p {
				t.Fatalf("none mode changed p: %v -> %v", p, got)
			}
		}
	}
}

func TestCalibrationRangePreserving(t *testing.T) {
	configs := []liveparams.CalibrationParams{
		{Mode: liveparams.CalibrationNone},
		{Mode: liveparams.CalibrationPlatt, Params: map[string]liveparams.CalibParamSet{"all": {A: 1.3, B: -0.2}}},
		{Mode: liveparams.CalibrationPlatt}, // no params, identity defaults
		{Mode: liveparams.CalibrationTemperature, Params: map[string]liveparams.CalibParamSet{"all": {T: 2.5, B: 0.1}}},
		{Mode: liveparams.CalibrationTemperature, Params: map[string]liveparams.CalibParamSet{"all": {T: 0, B: 0}}}, // degenerate T
	}

	for _, calib := range configs {
		for _, phase := range allPhases {
			for _, p := range probeValues {
				got := ApplyCalibration(p, phase, calib)
				if math.IsNaN(got) || math.IsInf(got, 0) {
					t.Fatalf("mode %s produced non-finite output for p=%v", calib.Mode, p)
				}
				if got <= 0 || got >= 1 {
					t.Fatalf("mode %s output %v not in (0,1) for p=%v", calib.Mode, got, p)
				}
			}
		}
	}
}

func TestTemperatureUnitIsIdentity(t *testing.T) {
	calib := liveparams.CalibrationParams{
		Mode:   liveparams.CalibrationTemperature,
		Params: map[string]liveparams.CalibParamSet{"all": {T: 1, B: 0}},
	}

	for _, phase := range allPhases {
		for _, p := range []float64{0.01, 0.2, 0.5, 0.8, 0.99} {
			got := ApplyCalibration(p, phase, calib)
			if math.Abs(got-p) > 1e-9 {
				t.Fatalf("temperature T=1 b=0 not identity: %v -> %v", p, got)
			}
		}
	}
}

func TestPlattByPhaseLookup(t *testing.T) {
	calib := liveparams.CalibrationParams{
		Mode:    liveparams.CalibrationPlatt,
		ByPhase: true,
		Params: map[string]liveparams.CalibParamSet{
			"late": {A: 1, B: 1},
			"all":  {A: 1, B: 0},
		},
	}

	p := 0.5
	late := ApplyCalibration(p, models.PhaseLate, calib)
	early := ApplyCalibration(p, models.PhaseEarly, calib)

	// late uses b=1 so the output shifts up; early falls back to "all" (identity)
	if late <= p {
		t.Fatalf("expected late-phase shift above %v, got %v", p, late)
	}
	if math.Abs(early-p) > 1e-9 {
		t.Fatalf("expected early phase to fall back to all entry, got %v", early)
	}
}

func TestCalibrationMissingParamsFallsBackToIdentity(t *testing.T) {
	calib := liveparams.CalibrationParams{Mode: liveparams.CalibrationPlatt, ByPhase: true}

	p := 0.37
	got := ApplyCalibration(p, models.PhaseMid, calib)
	if math.Abs(got-p) > 1e-9 {
		t.Fatalf("missing params should be identity-equivalent: %v -> %v", p, got)
	}
}
