package render

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// PNGSequence writes each frame as dir/frame_000000.png, frame_000001.png,
// ... Frames are staged in a hidden sibling directory and only moved into
// dir by Close.
type PNGSequence struct {
	dir   string
	stage string
	seq   sequence
	done  bool
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, &dynamo.RenderError{Op: "png", Frame: -1, Wrapped: err}
	}
	return &PNGSequence{dir: dir}, nil
}

func frameName(i int) string {
	return fmt.Sprintf("frame_%06d.png", i)
}

func (s *PNGSequence) Add(index int, img image.Image) error {
	if s.done {
		return &dynamo.RenderError{Op: "png", Frame: index, Wrapped: errFinished}
	}
	if err := s.seq.admit("png", index); err != nil {
		return err
	}
	if s.stage == "" {
		stage, err := os.MkdirTemp(filepath.Dir(s.dir), "."+filepath.Base(s.dir)+".tmp-*")
		if err != nil {
			return &dynamo.RenderError{Op: "png", Frame: index, Wrapped: err}
		}
		s.stage = stage
	}
	if err := writePNG(filepath.Join(s.stage, frameName(index)), img); err != nil {
		return &dynamo.RenderError{Op: "png", Frame: index, Wrapped: err}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := png.Encode(bw, img); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close publishes the staged frames. A missing dir is created by renaming
// the staging directory; an existing one receives the frames one by one.
func (s *PNGSequence) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.stage == "" {
		return &dynamo.RenderError{Op: "png", Frame: -1, Wrapped: errors.New("no frames")}
	}
	defer os.RemoveAll(s.stage)

	if _, err := os.Stat(s.dir); errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(s.stage, s.dir); err != nil {
			return &dynamo.RenderError{Op: "png", Frame: -1, Wrapped: err}
		}
		return nil
	}
	for i := 0; i < s.seq.next; i++ {
		name := frameName(i)
		if err := os.Rename(filepath.Join(s.stage, name), filepath.Join(s.dir, name)); err != nil {
			return &dynamo.RenderError{Op: "png", Frame: i, Wrapped: err}
		}
	}
	return nil
}

// Abort removes the staged frames.
func (s *PNGSequence) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.stage == "" {
		return nil
	}
	if err := os.RemoveAll(s.stage); err != nil {
		return &dynamo.RenderError{Op: "png", Frame: -1, Wrapped: err}
	}
	return nil
}

// Count is the number of frames accepted.
func (s *PNGSequence) Count() int {
	return s.seq.next
}
