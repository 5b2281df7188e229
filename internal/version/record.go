// Package version provides timestamped snapshot storage for model and
// config artifacts with a movable active pointer, newest-first listing
// and keep-N cleanup.
package version

import (
	"errors"
	"time"
)

// Kind distinguishes the two artifact families under version control
type Kind string

const (
	KindModel  Kind = "model"
	KindConfig Kind = "config"
)

// Custom errors
var (
	ErrVersionNotFound = errors.New("version not found")
	ErrNoPriorVersion  = errors.New("no prior version to roll back to")
	ErrArtifactMissing = errors.New("source artifact missing")
)

// Performance holds optional quality metrics captured at commit time
type Performance struct {
	Accuracy    float64 `json:"accuracy,omitempty"`
	LogLoss     float64 `json:"logloss,omitempty"`
	Calibration float64 `json:"calibration,omitempty"`
}

// Record is the metadata written alongside every committed version.
// Records are immutable after creation; only cleanup removes them.
type Record struct {
	Version      string       `json:"version"`
	Kind         Kind         `json:"kind"`
	Timestamp    time.Time    `json:"timestamp"`
	ArtifactPath string       `json:"artifact_path"`
	Description  string       `json:"description,omitempty"`
	Performance  *Performance `json:"performance,omitempty"`
}

// List is the result of enumerating versions on disk
type List struct {
	Models  []Record `json:"models"`
	Configs []Record `json:"configs"`
	Current Current  `json:"current"`
}

// Current resolves the active pointer per kind; empty when unset
type Current struct {
	Model  string `json:"model"`
	Config string `json:"config"`
}
