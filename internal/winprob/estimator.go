package winprob

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/ballpark-live/internal/liveparams"
	"github.com/yourusername/ballpark-live/internal/models"
)

// Frame is one live game snapshot submitted for estimation. PPregame and
// PState are supplied externally; the pipeline never computes them.
type Frame struct {
	GameID     string                `json:"game_id"`
	Inning     int                   `json:"inning"`
	Outs       int                   `json:"outs"`
	PPregame   float64               `json:"p_pregame"`
	PState     float64               `json:"p_state"`
	PPrev      *float64              `json:"p_prev,omitempty"` // previous displayed probability, nil on the first frame
	ScoreEvent bool                  `json:"score_event"`
	Source     models.EstimateSource `json:"source"`
}

// Estimator runs the full mixing/smoothing/calibration/confidence pipeline
// against the cached live parameters. Computation is stateless per frame
// and safe for concurrent use.
type Estimator struct {
	params *liveparams.Store
	logger *logrus.Logger
}

// NewEstimator creates an estimator backed by a live parameter store
func NewEstimator(params *liveparams.Store, logger *logrus.Logger) *Estimator {
	return &Estimator{
		params: params,
		logger: logger,
	}
}

// Estimate computes the win-probability frame. It never fails: parameter
// load problems resolve to safe defaults inside the store and numerical
// edge cases are clamped before any transform.
func (e *Estimator) Estimate(frame Frame) *models.Estimate {
	p := e.params.Get()

	source := frame.Source
	if source == "" {
		source = models.SourceModel
	}

	phase := PhaseOf(frame.Inning)

	mixed := Mix(frame.PPregame, frame.PState, frame.Inning, frame.Outs, p.Mix)
	clipped := Clip(mixed.P, p.Clip)

	smoothed := clipped
	if frame.PPrev != nil {
		smoothed = EWMA(*frame.PPrev, clipped, frame.ScoreEvent, p.Smooth)
	}

	calibrated := ApplyCalibration(smoothed, phase, p.Calibration)
	final := Clip(calibrated, p.Clip)

	est := &models.Estimate{
		GameID:     frame.GameID,
		Inning:     frame.Inning,
		Outs:       frame.Outs,
		Phase:      phase,
		PPregame:   frame.PPregame,
		PState:     frame.PState,
		PMixed:     mixed.P,
		PFinal:     final,
		MixWeight:  mixed.W,
		Confidence: Classify(frame.PState, mixed.P, source, p.Confidence),
		Source:     source,
		ScoreEvent: frame.ScoreEvent,
		ComputedAt: time.Now().UTC(),
	}

	e.logger.WithFields(logrus.Fields{
		"game_id":    est.GameID,
		"inning":     est.Inning,
		"phase":      est.Phase,
		"w":          est.MixWeight,
		"p_final":    est.PFinal,
		"confidence": est.Confidence,
	}).Debug("Estimate computed")

	return est
}
