package render

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Encoder consumes frames in order. Add must be called with indices 0, 1,
// 2, ... and Close publishes the output. Abort discards everything written
// so far; nothing appears at the output path unless Close succeeds. Both
// are no-ops once either has run.
type Encoder interface {
	Add(index int, img image.Image) error
	Close() error
	Abort() error
}

var errFinished = errors.New("encoder already closed or aborted")

// FrameFunc draws frame i.
type FrameFunc func(i int) (image.Image, error)

// Encode draws frames 0..n-1 into enc in order and closes it. Any failure,
// cancellation included, aborts enc so no partial output is left behind.
func Encode(ctx context.Context, op string, n int, frame FrameFunc, enc Encoder, onFrame func(int)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Discard(enc, &dynamo.RenderError{Op: op, Frame: i, Wrapped: err})
		}
		img, err := frame(i)
		if err != nil {
			return Discard(enc, &dynamo.RenderError{Op: op, Frame: i, Wrapped: err})
		}
		if err := enc.Add(i, img); err != nil {
			return Discard(enc, err)
		}
		if onFrame != nil {
			onFrame(i)
		}
	}
	return enc.Close()
}

// Discard aborts enc and returns cause, joined with any cleanup failure.
func Discard(enc Encoder, cause error) error {
	if err := enc.Abort(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// sequence enforces the 0, 1, 2, ... frame order.
type sequence struct {
	next int
}

func (s *sequence) admit(op string, index int) error {
	if index != s.next {
		return &dynamo.RenderError{
			Op:      op,
			Frame:   index,
			Wrapped: fmt.Errorf("%w: expected frame %d", dynamo.ErrFrameOrder, s.next),
		}
	}
	s.next++
	return nil
}

// SampleCount is the number of output samples needed to play duration
// seconds at fps frames per second, slowed down by speed (speed < 1 is
// slow motion). The encoded frame rate stays fps.
func SampleCount(duration, fps, speed float64) int {
	if speed <= 0 {
		speed = 1
	}
	return 1 + int(math.Round(duration*fps/speed))
}

// centiseconds returns the GIF timestamp of frame i in 1/100 s.
func centiseconds(i int, fps float64) int {
	return int(math.Round(float64(i) * 100 / fps))
}

// writeAtomic writes to a temp file next to path and renames it into place
// only if fn succeeds.
func writeAtomic(path string, fn func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	bw := bufio.NewWriter(tmp)
	if err := fn(bw); err != nil {
		cleanup()
		return err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
