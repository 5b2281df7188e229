package version

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	root := t.TempDir()
	m := NewManager(filepath.Join(root, "versions"), filepath.Join(root, "live", "live_params.json"), logger)
	return m, root
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommitThenSwitchBecomesCurrent(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	id, err := m.Commit(KindModel, artifact, "initial model", &Performance{Accuracy: 0.71, LogLoss: 0.61})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, m.Switch(KindModel, id))

	list, err := m.ListVersions()
	require.NoError(t, err)
	assert.Equal(t, id, list.Current.Model)
	require.Len(t, list.Models, 1)
	assert.Equal(t, "initial model", list.Models[0].Description)
	assert.Equal(t, 0.61, list.Models[0].Performance.LogLoss)
}

func TestCommitSameMinuteGetsSuffix(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	fixed := time.Date(2025, 7, 12, 15, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	first, err := m.Commit(KindModel, artifact, "", nil)
	require.NoError(t, err)
	second, err := m.Commit(KindModel, artifact, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "v20250712_1530", first)
	assert.Equal(t, "v20250712_1530_2", second)
}

func TestCommitMissingArtifactFails(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Commit(KindModel, "/nonexistent/model.bin", "", nil)
	require.ErrorIs(t, err, ErrArtifactMissing)
}

func TestSwitchMissingVersionFailsLoudly(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	id, err := m.Commit(KindModel, artifact, "", nil)
	require.NoError(t, err)
	require.NoError(t, m.Switch(KindModel, id))

	err = m.Switch(KindModel, "v19990101_0000")
	require.ErrorIs(t, err, ErrVersionNotFound)

	// The active pointer must be untouched by the failed switch
	list, err := m.ListVersions()
	require.NoError(t, err)
	assert.Equal(t, id, list.Current.Model)
}

func TestConfigSwitchInstallsPayload(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "live_params.json", `{"mix":{"w_min":0.25,"w_max":0.9,"curve":"linear"}}`)

	id, err := m.Commit(KindConfig, artifact, "tuned mix", nil)
	require.NoError(t, err)
	require.NoError(t, m.Switch(KindConfig, id))

	installed, err := os.ReadFile(filepath.Join(root, "live", "live_params.json"))
	require.NoError(t, err)
	assert.Contains(t, string(installed), `"w_min":0.25`)
}

func TestListSortsNewestFirst(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	base := time.Date(2025, 7, 12, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		m.now = func() time.Time { return tick }
		_, err := m.Commit(KindModel, artifact, "", nil)
		require.NoError(t, err)
	}

	list, err := m.ListVersions()
	require.NoError(t, err)
	require.Len(t, list.Models, 3)
	assert.Equal(t, "v20250712_1002", list.Models[0].Version)
	assert.Equal(t, "v20250712_1000", list.Models[2].Version)
}

func TestPriorVersion(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	base := time.Date(2025, 7, 12, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 2; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		m.now = func() time.Time { return tick }
		id, err := m.Commit(KindModel, artifact, "", nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, m.Switch(KindModel, ids[1]))

	prior, err := m.PriorVersion(KindModel)
	require.NoError(t, err)
	assert.Equal(t, ids[0], prior)

	// Rolling back to the oldest leaves nothing prior
	require.NoError(t, m.Switch(KindModel, ids[0]))
	_, err = m.PriorVersion(KindModel)
	require.ErrorIs(t, err, ErrNoPriorVersion)
}

func TestPriorVersionUnsetPointer(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.PriorVersion(KindModel)
	require.ErrorIs(t, err, ErrNoPriorVersion)
}

func TestCleanupKeepsNewest(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	base := time.Date(2025, 7, 12, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tick := base.Add(time.Duration(i) * time.Minute)
		m.now = func() time.Time { return tick }
		_, err := m.Commit(KindModel, artifact, "", nil)
		require.NoError(t, err)
	}

	require.NoError(t, m.Cleanup(2))

	list, err := m.ListVersions()
	require.NoError(t, err)
	require.Len(t, list.Models, 2)
	assert.Equal(t, "v20250712_1004", list.Models[0].Version)
	assert.Equal(t, "v20250712_1003", list.Models[1].Version)
}

func TestSameMinuteSuffixesListNewestFirst(t *testing.T) {
	m, root := newTestManager(t)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	fixed := time.Date(2025, 7, 12, 15, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	var ids []string
	for i := 0; i < 11; i++ {
		id, err := m.Commit(KindModel, artifact, "", nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, "v20250712_1530_11", ids[10])

	// Lexically "_11" sorts before "_2"; listing must still be by commit order
	list, err := m.ListVersions()
	require.NoError(t, err)
	require.Len(t, list.Models, 11)
	assert.Equal(t, ids[10], list.Models[0].Version)
	assert.Equal(t, ids[0], list.Models[10].Version)

	require.NoError(t, m.Switch(KindModel, ids[10]))
	prior, err := m.PriorVersion(KindModel)
	require.NoError(t, err)
	assert.Equal(t, ids[9], prior)
}

func TestCommitEmitsVersioningLog(t *testing.T) {
	logger := logrus.New()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	root := t.TempDir()
	m := NewManager(filepath.Join(root, "versions"), "", logger)
	artifact := writeArtifact(t, root, "model.bin", "weights")

	id, err := m.Commit(KindModel, artifact, "nightly retrain", nil)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "versioning", entry["component"])
	assert.Equal(t, id, entry["version_id"])
	assert.Equal(t, "nightly retrain", entry["description"])
}
