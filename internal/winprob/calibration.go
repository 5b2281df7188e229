package winprob

import (
	"math"

	"github.com/yourusername/ballpark-live/internal/liveparams"
	"github.com/yourusername/ballpark-live/internal/models"
)

const (
	// probEpsilon keeps probabilities away from 0 and 1 before any
	// log-odds transform
	probEpsilon = 1e-6
	// minTemperature bounds the temperature divisor away from zero
	minTemperature = 1e-3
)

// logit returns log(p/(1-p)) for p already clamped inside (0,1)
func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// logistic is the inverse of logit; its range is (0,1) exclusive
func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// clampProb pulls p into [eps, 1-eps]
func clampProb(p float64) float64 {
	if p < probEpsilon {
		return probEpsilon
	}
	if p > 1-probEpsilon {
		return 1 - probEpsilon
	}
	return p
}

// calibParamsFor resolves the parameter set for a phase. When ByPhase is
// off (or the phase entry is missing) the shared "all" entry is used;
// a missing entry yields nil and the caller falls back to identity.
func calibParamsFor(calib liveparams.CalibrationParams, phase models.Phase) *liveparams.CalibParamSet {
	if calib.Params == nil {
		return nil
	}
	if calib.ByPhase {
		if ps, ok := calib.Params[string(phase)]; ok {
			return &ps
		}
	}
	if ps, ok := calib.Params["all"]; ok {
		return &ps
	}
	return nil
}

// ApplyCalibration applies the configured post-hoc recalibration to p.
// The output is always inside (0,1) and missing parameter sets fall back
// to identity-equivalent defaults; this function never fails.
func ApplyCalibration(p float64, phase models.Phase, calib liveparams.CalibrationParams) float64 {
	p = clampProb(p)

	switch calib.Mode {
	case liveparams.CalibrationPlatt:
		a, b := 1.0, 0.0
		if ps := calibParamsFor(calib, phase); ps != nil {
			a, b = ps.A, ps.B
		}
		return logistic(a*logit(p) + b)

	case liveparams.CalibrationTemperature:
		temp, b := 1.0, 0.0
		if ps := calibParamsFor(calib, phase); ps != nil {
			temp, b = ps.T, ps.B
		}
		if temp < minTemperature {
			temp = minTemperature
		}
		return logistic(logit(p)/temp + b)

	default:
		return p
	}
}
