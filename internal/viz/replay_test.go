package viz

import (
	"math"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/kinematics"
)

func swingTrajectory(t *testing.T, n int) *dynamo.Trajectory {
	t.Helper()
	times := make([]float64, n)
	states := make([]dynamo.State, n)
	for i := range times {
		times[i] = 0.1 * float64(i)
		states[i] = dynamo.State{math.Pi / 4 * math.Cos(float64(i)), 0}
	}
	tr, err := dynamo.NewTrajectory(times, states, dynamo.Stats{})
	require.NoError(t, err)
	return tr
}

func newTestReplay(t *testing.T, n int) Replay {
	t.Helper()
	tr := swingTrajectory(t, n)
	frames := ReplayFrames(tr, kinematics.PendulumMapper{Length: 1},
		kinematics.Point{X: -1.2, Y: -1.2}, kinematics.Point{X: 1.2, Y: 0.2}, 20, 8, GetTheme("minimal"))
	require.Len(t, frames, n)
	r, err := NewReplay("pendulum", tr.Times(), frames, 30, GetTheme("minimal"))
	require.NoError(t, err)
	return r
}

func send(t *testing.T, r Replay, msg tea.Msg) (Replay, tea.Cmd) {
	t.Helper()
	m, cmd := r.Update(msg)
	next, ok := m.(Replay)
	require.True(t, ok)
	return next, cmd
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestReplay_PlaysThroughAndQuits(t *testing.T) {
	r := newTestReplay(t, 3)
	assert.NotNil(t, r.Init())

	var cmd tea.Cmd
	for want := 1; want < 3; want++ {
		r, cmd = send(t, r, tickMsg(time.Now()))
		assert.Equal(t, want, r.Head())
		assert.NotNil(t, cmd)
	}
	assert.False(t, r.Ended())

	r, cmd = send(t, r, tickMsg(time.Now()))
	assert.True(t, r.Ended())
	assert.Equal(t, 2, r.Head())
	assert.True(t, isQuit(cmd))
}

func TestReplay_PauseAndStep(t *testing.T) {
	r := newTestReplay(t, 4)

	r, _ = send(t, r, key(" "))
	assert.True(t, r.Paused())
	r, cmd := send(t, r, tickMsg(time.Now()))
	assert.Equal(t, 0, r.Head(), "paused replay holds its frame")
	assert.NotNil(t, cmd)

	r, _ = send(t, r, key("]"))
	r, _ = send(t, r, key("]"))
	assert.Equal(t, 2, r.Head())
	r, _ = send(t, r, key("["))
	r, _ = send(t, r, key("["))
	r, _ = send(t, r, key("["))
	assert.Equal(t, 0, r.Head())

	for i := 0; i < 10; i++ {
		r, _ = send(t, r, key("]"))
	}
	assert.Equal(t, 3, r.Head())
	assert.Contains(t, r.View(), "paused")

	r, _ = send(t, r, key("r"))
	assert.Equal(t, 0, r.Head())

	_, cmd = send(t, r, key("q"))
	assert.True(t, isQuit(cmd))
}

func TestReplay_View(t *testing.T) {
	r := newTestReplay(t, 5)
	r, _ = send(t, r, tickMsg(time.Now()))
	out := r.View()
	assert.Contains(t, out, "frame 2/5")
	assert.Contains(t, out, "q quit")
}

func TestNewReplay_Rejects(t *testing.T) {
	_, err := NewReplay("x", []float64{0, 1}, []string{"a"}, 30, GetTheme("minimal"))
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)

	_, err = NewReplay("x", nil, nil, 30, GetTheme("minimal"))
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)

	_, err = NewReplay("x", []float64{0}, []string{"a"}, 0, GetTheme("minimal"))
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}
