package liveparams

import (
	"encoding/json"
	"os"
	"sync"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPath is the fixed relative location of the live params file
	DefaultPath = "config/live_params.json"
	// EnvPathVar overrides the live params file location
	EnvPathVar = "BALLPARK_LIVE_PARAMS_PATH"

	cacheKey = "live_params"
)

// Store loads and caches the live parameter set. One long-lived Store
// instance is owned by the serving process; tests create isolated
// instances instead of mutating shared state.
type Store struct {
	path   string
	cache  *cache.Cache
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewStore creates a parameter store reading from path. An empty path
// falls back to the env override, then DefaultPath.
func NewStore(path string, logger *logrus.Logger) *Store {
	if path == "" {
		path = os.Getenv(EnvPathVar)
	}
	if path == "" {
		path = DefaultPath
	}
	return &Store{
		path:   path,
		cache:  cache.New(cache.NoExpiration, cache.NoExpiration),
		logger: logger,
	}
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Get returns the current parameter set, loading from disk on the first
// call after construction or invalidation. Load failures never propagate:
// the safe defaults are cached and returned instead.
func (s *Store) Get() *Params {
	if v, found := s.cache.Get(cacheKey); found {
		return v.(*Params)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the lock; another request may have loaded already
	if v, found := s.cache.Get(cacheKey); found {
		return v.(*Params)
	}

	params := s.load()
	s.cache.Set(cacheKey, params, cache.NoExpiration)
	return params
}

// Invalidate forces the next Get to re-read from disk. Called after a
// config version switch so the process picks up new parameters without a
// restart. Concurrent readers may briefly see the old set.
func (s *Store) Invalidate() {
	s.cache.Delete(cacheKey)
	s.logger.WithField("path", s.path).Info("Live params cache invalidated")
}

// load reads and parses the params file, returning Defaults on any failure
func (s *Store) load() *Params {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"path":  s.path,
			"error": err.Error(),
		}).Warn("Live params file unreadable, using defaults")
		return Defaults()
	}

	params := Defaults()
	if err := json.Unmarshal(data, params); err != nil {
		s.logger.WithFields(logrus.Fields{
			"path":  s.path,
			"error": err.Error(),
		}).Warn("Live params file corrupt, using defaults")
		return Defaults()
	}

	if err := params.Validate(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"path":  s.path,
			"error": err.Error(),
		}).Warn("Live params failed validation, using defaults")
		return Defaults()
	}

	s.logger.WithFields(logrus.Fields{
		"path":             s.path,
		"calibration_mode": params.Calibration.Mode,
		"w_min":            params.Mix.WMin,
		"w_max":            params.Mix.WMax,
	}).Info("Live params loaded")

	return params
}
