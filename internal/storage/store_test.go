package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lagrange/internal/dynamo"
)

func sampleTrajectory(t *testing.T) *dynamo.Trajectory {
	t.Helper()
	tr, err := dynamo.NewTrajectory(
		[]float64{0, 0.1, 0.2},
		[]dynamo.State{{0.5235987755982988, 0}, {0.5, -0.1234567890123}, {0.45, -0.2}},
		dynamo.Stats{Evaluations: 42, Accepted: 7, Rejected: 1},
	)
	require.NoError(t, err)
	return tr
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	tr := sampleTrajectory(t)
	runID, err := st.Save(RunMetadata{
		System:     "pendulum",
		Integrator: "rk45",
		Duration:   0.2,
		FPS:        10,
		Initial:    []float64{0.5235987755982988, 0},
		Metrics:    map[string]float64{"energy": 1.5},
	}, tr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runID, "pendulum-"))

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "pendulum", meta.System)
	assert.Equal(t, 3, meta.Samples)
	assert.Equal(t, tr.Stats(), meta.Stats)
	assert.Equal(t, 1.5, meta.Metrics["energy"])

	back, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	assert.Equal(t, tr.Times(), back.Times())
	for i := 0; i < tr.Len(); i++ {
		assert.Equal(t, tr.State(i), back.State(i))
	}
	assert.Equal(t, tr.Stats(), back.Stats())
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(RunMetadata{System: "pendulum"}, sampleTrajectory(t))
	require.NoError(t, err)
	second, err := st.Save(RunMetadata{System: "kapitza"}, sampleTrajectory(t))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{System: "pendulum"}, sampleTrajectory(t))
	require.NoError(t, err)

	runDir := filepath.Join(tmpDir, runID)
	assert.FileExists(t, filepath.Join(runDir, metadataFile))
	assert.FileExists(t, filepath.Join(runDir, statesFile))

	data, err := os.ReadFile(filepath.Join(runDir, statesFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "time,x0,x1", lines[0])
	assert.Len(t, lines, 4)
}

func TestStoreRejectsEmpty(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Save(RunMetadata{System: "pendulum"}, nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidSamples)
}

func TestWriteDegrees(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDegrees(&buf, sampleTrajectory(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,theta_deg,theta_dot_deg", lines[0])

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, 3)
	assert.Equal(t, "0", fields[0])
	assert.True(t, strings.HasPrefix(fields[1], "29.99999999999999") || strings.HasPrefix(fields[1], "30"), fields[1])
	assert.Equal(t, "0", fields[2])
}

func TestWriteDegreesNeedsAngle(t *testing.T) {
	tr, err := dynamo.NewTrajectory([]float64{0}, []dynamo.State{{1}}, dynamo.Stats{})
	require.NoError(t, err)
	err = WriteDegrees(&bytes.Buffer{}, tr)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := sampleTrajectory(t)
	require.NoError(t, ExportJSON(&buf, RunMetadata{System: "pendulum"}, tr))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "pendulum", got.Run.System)
	assert.Equal(t, 3, got.Steps)
	assert.Equal(t, tr.Times(), got.Times)
	assert.Equal(t, []float64(tr.State(1)), got.States[1])
}
