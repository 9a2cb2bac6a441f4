package render

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// GIFEncoder collects frames in memory and writes an animated GIF on Close.
// Frame delays alternate between whole centiseconds so the average rate
// matches fps exactly (3, 3, 4, ... at 30 fps).
type GIFEncoder struct {
	path string
	fps  float64
	seq  sequence
	anim gif.GIF
	done bool
}

func NewGIFEncoder(path string, fps float64) (*GIFEncoder, error) {
	if fps <= 0 {
		return nil, &dynamo.RenderError{Op: "gif", Frame: -1, Wrapped: fmt.Errorf("fps must be positive, got %g", fps)}
	}
	return &GIFEncoder{path: path, fps: fps, anim: gif.GIF{LoopCount: 0}}, nil
}

func (e *GIFEncoder) Add(index int, img image.Image) error {
	if e.done {
		return &dynamo.RenderError{Op: "gif", Frame: index, Wrapped: errFinished}
	}
	if err := e.seq.admit("gif", index); err != nil {
		return err
	}
	b := img.Bounds()
	pal := image.NewPaletted(b, palette.Plan9)
	draw.Draw(pal, b, img, b.Min, draw.Src)

	e.anim.Image = append(e.anim.Image, pal)
	e.anim.Delay = append(e.anim.Delay, centiseconds(index+1, e.fps)-centiseconds(index, e.fps))
	return nil
}

// Delays returns the per-frame delays collected so far, in centiseconds.
func (e *GIFEncoder) Delays() []int {
	out := make([]int, len(e.anim.Delay))
	copy(out, e.anim.Delay)
	return out
}

func (e *GIFEncoder) Close() error {
	if e.done {
		return nil
	}
	e.done = true
	defer e.drop()
	if len(e.anim.Image) == 0 {
		return &dynamo.RenderError{Op: "gif", Frame: -1, Wrapped: errors.New("no frames")}
	}
	err := writeAtomic(e.path, func(w io.Writer) error {
		return gif.EncodeAll(w, &e.anim)
	})
	if err != nil {
		return &dynamo.RenderError{Op: "gif", Frame: -1, Wrapped: err}
	}
	return nil
}

// Abort drops the buffered frames. Nothing has been written to disk yet.
func (e *GIFEncoder) Abort() error {
	e.done = true
	e.drop()
	return nil
}

func (e *GIFEncoder) drop() {
	e.anim.Image, e.anim.Delay = nil, nil
}
