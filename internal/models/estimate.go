package models

import "time"

// Phase represents the coarse phase of a game derived from the inning
type Phase string

const (
	PhaseEarly Phase = "early"
	PhaseMid   Phase = "mid"
	PhaseLate  Phase = "late"
)

// Confidence labels how much trust the pipeline places in an estimate
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// EstimateSource identifies where the state-based probability came from
type EstimateSource string

const (
	// SourceModel means the live inference model produced the state estimate
	SourceModel EstimateSource = "model"
	// SourceFallback means a heuristic stood in for the model
	SourceFallback EstimateSource = "fallback"
)

// Estimate is the win-probability frame computed per live request. It is
// never persisted by this core; timeline storage is an external concern.
type Estimate struct {
	GameID     string         `json:"game_id"`
	Inning     int            `json:"inning"`
	Outs       int            `json:"outs"`
	Phase      Phase          `json:"phase"`
	PPregame   float64        `json:"p_pregame"`
	PState     float64        `json:"p_state"`
	PMixed     float64        `json:"p_mixed"`
	PFinal     float64        `json:"p_final"`
	MixWeight  float64        `json:"mix_weight"`
	Confidence Confidence     `json:"confidence"`
	Source     EstimateSource `json:"source"`
	ScoreEvent bool           `json:"score_event"`
	ComputedAt time.Time      `json:"computed_at"`
}
