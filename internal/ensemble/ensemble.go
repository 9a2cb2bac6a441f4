package ensemble

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/integrators"
	"github.com/san-kum/lagrange/internal/kinematics"
	"github.com/san-kum/lagrange/internal/render"
)

var (
	ErrNotSimulated = errors.New("ensemble: members not simulated")
	ErrEmpty        = errors.New("ensemble: no members")
)

// Member is one independent copy of the system.
type Member struct {
	Index      int
	Initial    dynamo.State
	Trajectory *dynamo.Trajectory
	Color      color.Color
}

// VisualState is the drawable record of member Index at one frame. It is
// rebuilt for every frame; nothing is mutated in place.
type VisualState struct {
	Index  int
	Color  color.Color
	Config kinematics.Configuration
}

// Ensemble simulates many members of one system and walks them in lock-step
// for rendering. The frame index is owned by the driver in Render.
type Ensemble struct {
	sys     dynamo.System
	mapper  kinematics.Mapper
	members []Member
	samples int
}

// New creates an ensemble with one member per initial state, colored by
// palette (nil means render.Greens).
func New(sys dynamo.System, mapper kinematics.Mapper, initials []dynamo.State, palette render.Palette) (*Ensemble, error) {
	if len(initials) == 0 {
		return nil, ErrEmpty
	}
	if palette == nil {
		palette = render.Greens
	}
	members := make([]Member, len(initials))
	for i, x0 := range initials {
		members[i] = Member{
			Index:   i,
			Initial: x0.Clone(),
			Color:   palette(i, len(initials)),
		}
	}
	return &Ensemble{sys: sys, mapper: mapper, members: members}, nil
}

// Perturb returns n copies of base where component index of member i is
// offset by delta·i/n.
func Perturb(base dynamo.State, index int, delta float64, n int) []dynamo.State {
	out := make([]dynamo.State, n)
	for i := range out {
		x := base.Clone()
		x[index] += delta * float64(i) / float64(n)
		out[i] = x
	}
	return out
}

func (e *Ensemble) Len() int {
	return len(e.members)
}

// Samples is the shared sample count of every member, 0 before Simulate.
func (e *Ensemble) Samples() int {
	return e.samples
}

// Member returns member i.
func (e *Ensemble) Member(i int) Member {
	return e.members[i]
}

// Simulate integrates every member over the same span and sample grid using
// up to workers goroutines (0 means GOMAXPROCS). Members share no mutable
// state. The first failure cancels the rest and leaves the ensemble
// unsimulated.
func (e *Ensemble) Simulate(ctx context.Context, span dynamo.Span, n int, opts integrators.Options, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*dynamo.Trajectory, len(e.members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range e.members {
		x0 := e.members[i].Initial
		g.Go(func() error {
			tr, err := integrators.Integrate(gctx, e.sys, span, x0, n, opts)
			if err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
			results[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range e.members {
		e.members[i].Trajectory = results[i]
	}
	e.samples = n
	return nil
}

// Frame maps every member at sample k. The result is ordered by member index.
func (e *Ensemble) Frame(k int) ([]VisualState, error) {
	if e.samples == 0 {
		return nil, ErrNotSimulated
	}
	if k < 0 || k >= e.samples {
		return nil, fmt.Errorf("ensemble: frame %d out of range [0, %d)", k, e.samples)
	}
	out := make([]VisualState, len(e.members))
	dynamo.ParallelFor(len(e.members), 64, func(start, end int) {
		for i := start; i < end; i++ {
			m := e.members[i]
			out[i] = VisualState{
				Index:  m.Index,
				Color:  m.Color,
				Config: e.mapper.Map(m.Trajectory.State(k), m.Trajectory.Time(k)),
			}
		}
	})
	return out, nil
}

// Scene fits a scene around every member's full motion.
func (e *Ensemble) Scene(width int, pad float64) (render.Scene, error) {
	if e.samples == 0 {
		return render.Scene{}, ErrNotSimulated
	}
	scene := render.FitScene(e.members[0].Trajectory, e.mapper, width, pad)
	for _, m := range e.members[1:] {
		scene = scene.Union(render.FitScene(m.Trajectory, e.mapper, width, pad))
	}
	return scene, nil
}

// Render emits frames 0..Samples()-1 to enc in order and closes it. Each
// frame draws all members, later indices on top. Any failure aborts enc.
func (e *Ensemble) Render(ctx context.Context, scene render.Scene, enc render.Encoder, onFrame func(int)) error {
	if e.samples == 0 {
		return render.Discard(enc, ErrNotSimulated)
	}
	return render.Encode(ctx, "ensemble", e.samples, func(frame int) (image.Image, error) {
		states, err := e.Frame(frame)
		if err != nil {
			return nil, err
		}
		layers := make([]render.Layer, len(states))
		for i, vs := range states {
			layers[i] = render.Layer{Config: vs.Config, Color: vs.Color}
		}
		return scene.Draw(layers, "")
	}, enc, onFrame)
}
