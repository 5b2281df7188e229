package version

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	applogger "github.com/yourusername/ballpark-live/internal/logger"
)

const (
	metadataFile    = "metadata.json"
	versionIDLayout = "20060102_1504"
)

// Manager owns the on-disk version store. The design assumes a single
// operator or monitor process drives commit/switch/cleanup; concurrent
// invocation from multiple processes needs an external lock.
type Manager struct {
	root           string // contains models/ and configs/ subtrees
	liveConfigPath string // live params file overwritten on config switch
	modelPtr       Pointer
	configPtr      Pointer
	now            func() time.Time
	ops            *applogger.OpsLogger
}

// NewManager creates a version manager rooted at root. liveConfigPath is
// the serving process's live params file, refreshed on config switches.
func NewManager(root, liveConfigPath string, logger *logrus.Logger) *Manager {
	return &Manager{
		root:           root,
		liveConfigPath: liveConfigPath,
		modelPtr:       NewFilePointer(pointerPath(filepath.Join(root, "models"))),
		configPtr:      NewFilePointer(pointerPath(filepath.Join(root, "configs"))),
		now:            time.Now,
		ops:            applogger.NewOpsLogger(logger),
	}
}

// kindRoot returns the directory holding all versions of a kind
func (m *Manager) kindRoot(kind Kind) string {
	if kind == KindModel {
		return filepath.Join(m.root, "models")
	}
	return filepath.Join(m.root, "configs")
}

func (m *Manager) pointer(kind Kind) Pointer {
	if kind == KindModel {
		return m.modelPtr
	}
	return m.configPtr
}

// Commit copies the artifact at sourcePath into a new exclusively-owned
// version directory and writes its metadata. The version id derives from
// the current minute; same-minute commits get a numeric suffix instead of
// colliding. Existing versions are never overwritten.
func (m *Manager) Commit(kind Kind, sourcePath, description string, perf *Performance) (string, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrArtifactMissing, sourcePath)
	}

	kindRoot := m.kindRoot(kind)
	if err := os.MkdirAll(kindRoot, 0o755); err != nil {
		return "", fmt.Errorf("failed to create version root: %w", err)
	}

	now := m.now().UTC()
	id, dir, err := m.claimVersionDir(kindRoot, now)
	if err != nil {
		return "", err
	}

	artifact := filepath.Join(dir, filepath.Base(sourcePath))
	if err := copyFile(sourcePath, artifact); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}

	record := Record{
		Version:      id,
		Kind:         kind,
		Timestamp:    now,
		ArtifactPath: artifact,
		Description:  description,
		Performance:  perf,
	}
	if err := writeMetadata(dir, &record); err != nil {
		os.RemoveAll(dir)
		return "", err
	}

	m.ops.LogVersionCommit(string(kind), id, artifact, description)

	return id, nil
}

// claimVersionDir generates a collision-free version id and creates its
// directory. MkdirAll would mask collisions, so plain Mkdir detects them.
func (m *Manager) claimVersionDir(kindRoot string, now time.Time) (string, string, error) {
	base := "v" + now.Format(versionIDLayout)
	for attempt := 1; attempt <= 100; attempt++ {
		id := base
		if attempt > 1 {
			id = fmt.Sprintf("%s_%d", base, attempt)
		}
		dir := filepath.Join(kindRoot, id)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", fmt.Errorf("failed to create version directory: %w", err)
		}
	}
	return "", "", fmt.Errorf("exhausted version id suffixes for %s", base)
}

// Switch validates the target version exists and atomically repoints the
// active pointer. Config switches additionally copy the version's payload
// into the live config file (copy semantics, not a link). A missing
// target fails loudly; the pointer is left untouched on any error.
func (m *Manager) Switch(kind Kind, versionID string) error {
	record, err := m.readRecord(kind, versionID)
	if err != nil {
		return err
	}

	if kind == KindConfig && m.liveConfigPath != "" {
		if err := os.MkdirAll(filepath.Dir(m.liveConfigPath), 0o755); err != nil {
			return fmt.Errorf("failed to prepare live config dir: %w", err)
		}
		if err := copyFile(record.ArtifactPath, m.liveConfigPath); err != nil {
			return fmt.Errorf("failed to install config payload: %w", err)
		}
	}

	// Best-effort: an unreadable pointer only degrades the log line
	fromVersion, _ := m.pointer(kind).Read()

	if err := m.pointer(kind).Set(versionID); err != nil {
		return err
	}

	m.ops.LogVersionSwitch(string(kind), fromVersion, versionID)

	return nil
}

// ListVersions enumerates all on-disk versions of both kinds, newest
// first, and resolves the current active pointers.
func (m *Manager) ListVersions() (*List, error) {
	modelRecords, err := m.records(KindModel)
	if err != nil {
		return nil, err
	}
	configRecords, err := m.records(KindConfig)
	if err != nil {
		return nil, err
	}

	currentModel, err := m.modelPtr.Read()
	if err != nil {
		return nil, err
	}
	currentConfig, err := m.configPtr.Read()
	if err != nil {
		return nil, err
	}

	return &List{
		Models:  modelRecords,
		Configs: configRecords,
		Current: Current{Model: currentModel, Config: currentConfig},
	}, nil
}

// PriorVersion returns the version immediately older than the current
// active one for the kind. ErrNoPriorVersion when the active version is
// the oldest, unset, or the only one.
func (m *Manager) PriorVersion(kind Kind) (string, error) {
	current, err := m.pointer(kind).Read()
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", ErrNoPriorVersion
	}

	records, err := m.records(kind)
	if err != nil {
		return "", err
	}

	for i, r := range records {
		if r.Version == current {
			if i+1 < len(records) {
				return records[i+1].Version, nil
			}
			return "", ErrNoPriorVersion
		}
	}
	return "", fmt.Errorf("%w: active version %s", ErrVersionNotFound, current)
}

// Cleanup deletes all but the newest keepCount versions of each kind.
// The two kinds clean up independently: a failure in one does not block
// the other, and both errors are reported.
func (m *Manager) Cleanup(keepCount int) error {
	if keepCount < 1 {
		keepCount = 1
	}

	var errs []string
	for _, kind := range []Kind{KindModel, KindConfig} {
		if err := m.cleanupKind(kind, keepCount); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", kind, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (m *Manager) cleanupKind(kind Kind, keepCount int) error {
	records, err := m.records(kind)
	if err != nil {
		return err
	}
	if len(records) <= keepCount {
		return nil
	}

	removed := 0
	for _, r := range records[keepCount:] {
		dir := filepath.Join(m.kindRoot(kind), r.Version)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", r.Version, err)
		}
		removed++
	}
	m.ops.LogCleanup(string(kind), removed, keepCount)
	return nil
}

// records reads every version record of a kind, sorted newest first by
// commit timestamp. Same-timestamp records compare by collision suffix:
// lexical id order would put _10 before _2.
func (m *Manager) records(kind Kind) ([]Record, error) {
	kindRoot := m.kindRoot(kind)
	entries, err := os.ReadDir(kindRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read version root: %w", err)
	}

	var records []Record
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "v") {
			continue
		}
		record, err := m.readRecord(kind, entry.Name())
		if err != nil {
			m.ops.WithFields(logrus.Fields{
				"kind":    kind,
				"version": entry.Name(),
				"error":   err.Error(),
			}).Warn("Skipping unreadable version directory")
			continue
		}
		records = append(records, *record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return versionOrdinal(records[i].Version) > versionOrdinal(records[j].Version)
	})
	return records, nil
}

// versionOrdinal extracts the numeric collision suffix of a version id,
// 1 when the id carries none
func versionOrdinal(id string) int {
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return 1
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 1
	}
	return n
}

// readRecord loads one version's metadata, verifying the directory exists
func (m *Manager) readRecord(kind Kind, versionID string) (*Record, error) {
	dir := filepath.Join(m.kindRoot(kind), versionID)
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s/%s", ErrVersionNotFound, kind, versionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read version metadata: %w", err)
	}

	record := &Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to parse version metadata: %w", err)
	}
	return record, nil
}

func writeMetadata(dir string, record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write version metadata: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
