package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/kinematics"
)

type tickMsg time.Time

var (
	statusStyle = lipgloss.NewStyle().MarginTop(1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ReplayFrames draws every sample of tr into its own canvas, tracing the
// last mass up to that sample.
func ReplayFrames(tr *dynamo.Trajectory, m kinematics.Mapper, min, max kinematics.Point, width, height int, th Theme) []string {
	frames := make([]string, tr.Len())
	var path []kinematics.Point
	for i := 0; i < tr.Len(); i++ {
		cfg := m.Map(tr.State(i), tr.Time(i))
		if masses := cfg.Masses(); len(masses) > 0 {
			path = append(path, masses[len(masses)-1])
		}
		c := Preview(cfg, min, max, width, height)
		Trace(c, path)
		frames[i] = th.Paint(c)
	}
	return frames
}

// Replay plays pre-drawn frames at a fixed rate and quits after the last
// one. Space pauses, [ and ] step while paused, r restarts and q quits.
type Replay struct {
	title    string
	times    []float64
	frames   []string
	interval time.Duration
	theme    Theme

	head   int
	paused bool
	ended  bool
}

func NewReplay(title string, times []float64, frames []string, fps float64, th Theme) (Replay, error) {
	if len(frames) == 0 || len(frames) != len(times) {
		return Replay{}, fmt.Errorf("%w: %d frames for %d times", dynamo.ErrDimensionMismatch, len(frames), len(times))
	}
	if fps <= 0 {
		return Replay{}, fmt.Errorf("%w: fps %g", dynamo.ErrParameterBounds, fps)
	}
	return Replay{
		title:    title,
		times:    times,
		frames:   frames,
		interval: time.Duration(float64(time.Second) / fps),
		theme:    th,
	}, nil
}

// Head is the index of the frame on screen.
func (r Replay) Head() int {
	return r.head
}

func (r Replay) Paused() bool {
	return r.paused
}

// Ended reports whether playback ran past the last frame.
func (r Replay) Ended() bool {
	return r.ended
}

func (r Replay) tick() tea.Cmd {
	return tea.Tick(r.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (r Replay) Init() tea.Cmd {
	return r.tick()
}

func (r Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return r, tea.Quit
		case " ":
			r.paused = !r.paused
		case "[":
			r.step(-1)
		case "]":
			r.step(1)
		case "r":
			r.head = 0
		}
		return r, nil

	case tickMsg:
		if r.paused {
			return r, r.tick()
		}
		if r.head == len(r.frames)-1 {
			r.ended = true
			return r, tea.Quit
		}
		r.head++
		return r, r.tick()
	}
	return r, nil
}

func (r *Replay) step(d int) {
	r.head = min(max(r.head+d, 0), len(r.frames)-1)
}

func (r Replay) View() string {
	heading := r.theme.Heading(fmt.Sprintf("%s  t = %.3f s", r.title, r.times[r.head]))
	status := fmt.Sprintf("frame %d/%d", r.head+1, len(r.frames))
	if r.paused {
		status += "  paused"
	}
	status += "  " + ProgressBar(float64(r.head+1)/float64(len(r.frames)), 20)
	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		r.frames[r.head],
		statusStyle.Render(status),
		helpStyle.Render("space pause  [ ] step  r restart  q quit"),
	)
}
