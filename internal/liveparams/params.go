// Package liveparams manages the live win-probability tuning parameters.
package liveparams

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CalibrationMode selects the post-hoc recalibration applied to mixed probabilities
type CalibrationMode string

const (
	CalibrationNone        CalibrationMode = "none"
	CalibrationPlatt       CalibrationMode = "platt"
	CalibrationTemperature CalibrationMode = "temperature"
)

// MixParams controls the pregame/state blend weight curve
type MixParams struct {
	WMin  float64 `json:"w_min" validate:"gte=0,lte=1"`
	WMax  float64 `json:"w_max" validate:"gte=0,lte=1,gtefield=WMin"`
	Curve string  `json:"curve"` // curve shape id, "linear" is the only built-in
}

// SmoothParams controls EWMA smoothing of successive frames
type SmoothParams struct {
	AlphaBase       float64 `json:"alpha_base" validate:"gt=0,lte=1"`
	AlphaScoreEvent float64 `json:"alpha_score_event" validate:"gt=0,lte=1"`
}

// ClipParams bounds the displayed probability away from certainty
type ClipParams struct {
	Lo float64 `json:"lo" validate:"gte=0"`
	Hi float64 `json:"hi" validate:"lte=1,gtfield=Lo"`
}

// CalibParamSet holds the parameters for one calibration entry.
// Platt uses A/B, temperature uses T/B.
type CalibParamSet struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	T float64 `json:"t"`
}

// CalibrationParams selects and parameterizes the recalibration transform
type CalibrationParams struct {
	Mode    CalibrationMode          `json:"mode" validate:"oneof=none platt temperature"`
	ByPhase bool                     `json:"by_phase"`
	Params  map[string]CalibParamSet `json:"params"` // keyed by phase name, or "all" when not ByPhase
}

// ConfidenceParams sets the maximum state/mixed disagreement per tier
type ConfidenceParams struct {
	High   float64 `json:"high" validate:"gt=0"`
	Medium float64 `json:"medium" validate:"gt=0"`
}

// Params is the process-wide live tuning parameter set. It is loaded as a
// whole from the live params JSON file and never partially mutated.
type Params struct {
	Mix         MixParams         `json:"mix"`
	Smooth      SmoothParams      `json:"smooth"`
	Clip        ClipParams        `json:"clip"`
	Calibration CalibrationParams `json:"calibration"`
	Confidence  ConfidenceParams  `json:"confidence"`
}

// Defaults returns the hard-coded safe parameter set used when the live
// params file is missing or corrupt.
func Defaults() *Params {
	return &Params{
		Mix: MixParams{
			WMin:  0.2,
			WMax:  0.95,
			Curve: "linear",
		},
		Smooth: SmoothParams{
			AlphaBase:       0.3,
			AlphaScoreEvent: 0.55,
		},
		Clip: ClipParams{
			Lo: 0.02,
			Hi: 0.98,
		},
		Calibration: CalibrationParams{
			Mode:   CalibrationNone,
			Params: map[string]CalibParamSet{},
		},
		Confidence: ConfidenceParams{
			High:   0.15,
			Medium: 0.08,
		},
	}
}

// Validate checks the parameter invariants. A set that fails validation is
// rejected in favor of Defaults.
func (p *Params) Validate() error {
	v := validator.New()
	if err := v.Struct(p); err != nil {
		return fmt.Errorf("live params validation failed: %w", err)
	}
	return nil
}
