package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/kinematics"
)

// NewEncoder picks an encoder from the output path: .gif writes a GIF,
// .mp4/.mov/.mkv/.webm go through ffmpeg, and a path without an extension
// is treated as a directory of PNG frames.
func NewEncoder(ctx context.Context, path string, fps float64) (Encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gif":
		return NewGIFEncoder(path, fps)
	case ".mp4", ".mov", ".mkv", ".webm":
		return NewFFmpegEncoder(ctx, path, fps)
	case "":
		return NewPNGSequence(path)
	default:
		return nil, &dynamo.RenderError{Op: "encode", Frame: -1, Wrapped: fmt.Errorf("unsupported animation format %q", ext)}
	}
}

type AnimateOptions struct {
	Color color.Color
	// Trail is how many past samples of the last mass to trace. Zero disables it.
	Trail int
	// Label prints the sample time on each frame.
	Label bool
	// Speed, when set and not 1, is shown under the time label as the
	// playback speed.
	Speed float64
	// OnFrame is called after each frame is encoded.
	OnFrame func(index int)
}

func (o AnimateOptions) label(t float64) string {
	if !o.Label {
		return ""
	}
	label := fmt.Sprintf("t = %.3f s", t)
	if o.Speed > 0 && o.Speed != 1 {
		label += fmt.Sprintf("\nplayback speed %gx", o.Speed)
	}
	return label
}

// tracer keeps the last n positions of the outermost mass.
type tracer struct {
	n   int
	pts []kinematics.Point
}

func (tc *tracer) push(cfg kinematics.Configuration) []kinematics.Point {
	if tc.n <= 0 {
		return nil
	}
	if masses := cfg.Masses(); len(masses) > 0 {
		tc.pts = append(tc.pts, masses[len(masses)-1])
		if len(tc.pts) > tc.n {
			tc.pts = tc.pts[len(tc.pts)-tc.n:]
		}
	}
	return tc.pts
}

// Animate renders every sample of tr in order and closes enc. Frame i is a
// pure function of sample i (and the trail before it), so re-running with
// the same inputs produces the same frames. On failure enc is aborted.
func Animate(ctx context.Context, tr *dynamo.Trajectory, m kinematics.Mapper, scene Scene, enc Encoder, opts AnimateOptions) error {
	trail := &tracer{n: opts.Trail}
	return Encode(ctx, "animate", tr.Len(), func(i int) (image.Image, error) {
		t := tr.Time(i)
		cfg := m.Map(tr.State(i), t)
		return scene.Draw([]Layer{{Config: cfg, Color: opts.Color, Trail: trail.push(cfg)}}, opts.label(t))
	}, enc, opts.OnFrame)
}

// AnimatePanel renders every sample of tr as the chosen dashboard panel.
// PanelMechanism is the same as Animate.
func AnimatePanel(ctx context.Context, tr *dynamo.Trajectory, m kinematics.Mapper, d *Dashboard, panel Panel, enc Encoder, opts AnimateOptions) error {
	if panel == PanelMechanism {
		return Animate(ctx, tr, m, d.Scene, enc, opts)
	}
	if d.Len() != tr.Len() {
		return Discard(enc, &dynamo.RenderError{Op: "animate", Frame: -1, Wrapped: fmt.Errorf("%w: dashboard has %d samples, trajectory %d", dynamo.ErrDimensionMismatch, d.Len(), tr.Len())})
	}
	trail := &tracer{n: opts.Trail}
	return Encode(ctx, "animate "+panel.String(), tr.Len(), func(i int) (image.Image, error) {
		t := tr.Time(i)
		cfg := m.Map(tr.State(i), t)
		layer := Layer{Config: cfg, Color: opts.Color, Trail: trail.push(cfg)}
		return d.Draw(panel, i, layer, opts.label(t))
	}, enc, opts.OnFrame)
}

// Still writes a single frame. The format follows the file extension
// (png, jpg, svg, pdf, ...).
func Still(path string, scene Scene, layers []Layer, label string) error {
	p, err := scene.Plot(layers, label)
	if err != nil {
		return &dynamo.RenderError{Op: "still", Frame: -1, Wrapped: err}
	}
	return savePlot(path, p.WriterTo, scene.size)
}

type writerToFunc func(w, h vg.Length, format string) (io.WriterTo, error)

func savePlot(path string, wt writerToFunc, size func() (vg.Length, vg.Length)) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	w, h := size()
	to, err := wt(w, h, format)
	if err != nil {
		return &dynamo.RenderError{Op: "save", Frame: -1, Wrapped: err}
	}
	err = writeAtomic(path, func(out io.Writer) error {
		_, err := to.WriteTo(out)
		return err
	})
	if err != nil {
		return &dynamo.RenderError{Op: "save", Frame: -1, Wrapped: err}
	}
	return nil
}
