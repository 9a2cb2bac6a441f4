package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg child process that
// writes H.264 video. The process starts on the first frame, once the frame
// size is known.
type FFmpegEncoder struct {
	ctx    context.Context
	bin    string
	path   string
	tmp    string
	fps    float64
	seq    sequence
	bounds image.Rectangle

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	rgba   *image.RGBA
	done   bool
}

// NewFFmpegEncoder fails with dynamo.ErrBackendUnavailable when ffmpeg is
// not on PATH.
func NewFFmpegEncoder(ctx context.Context, path string, fps float64) (*FFmpegEncoder, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, &dynamo.RenderError{Op: "ffmpeg", Frame: -1, Wrapped: fmt.Errorf("%w: %v", dynamo.ErrBackendUnavailable, err)}
	}
	if fps <= 0 {
		return nil, &dynamo.RenderError{Op: "ffmpeg", Frame: -1, Wrapped: fmt.Errorf("fps must be positive, got %g", fps)}
	}
	return &FFmpegEncoder{ctx: ctx, bin: bin, path: path, fps: fps}, nil
}

func (e *FFmpegEncoder) start(b image.Rectangle) error {
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	e.tmp = filepath.Join(dir, "."+filepath.Base(e.path)+".tmp"+filepath.Ext(e.path))
	e.bounds = b
	e.rgba = image.NewRGBA(b)

	e.cmd = exec.CommandContext(e.ctx, e.bin,
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
		"-r", strconv.FormatFloat(e.fps, 'f', -1, 64),
		"-i", "-",
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		e.tmp,
	)
	e.cmd.Stderr = &e.stderr
	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return err
	}
	e.stdin = stdin
	return e.cmd.Start()
}

func (e *FFmpegEncoder) Add(index int, img image.Image) error {
	if e.done {
		return &dynamo.RenderError{Op: "ffmpeg", Frame: index, Wrapped: errFinished}
	}
	if err := e.seq.admit("ffmpeg", index); err != nil {
		return err
	}
	b := img.Bounds()
	if e.cmd == nil {
		if err := e.start(b); err != nil {
			return &dynamo.RenderError{Op: "ffmpeg", Frame: index, Wrapped: err}
		}
	}
	if b.Dx() != e.bounds.Dx() || b.Dy() != e.bounds.Dy() {
		return &dynamo.RenderError{Op: "ffmpeg", Frame: index, Wrapped: fmt.Errorf("frame size %v, want %v", b.Size(), e.bounds.Size())}
	}
	draw.Draw(e.rgba, e.rgba.Bounds(), img, b.Min, draw.Src)
	if _, err := e.stdin.Write(e.rgba.Pix); err != nil {
		return &dynamo.RenderError{Op: "ffmpeg", Frame: index, Wrapped: err}
	}
	return nil
}

func (e *FFmpegEncoder) Close() error {
	if e.done {
		return nil
	}
	e.done = true
	if e.cmd == nil {
		return &dynamo.RenderError{Op: "ffmpeg", Frame: -1, Wrapped: fmt.Errorf("no frames")}
	}
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		os.Remove(e.tmp)
		return &dynamo.RenderError{Op: "ffmpeg", Frame: -1, Wrapped: fmt.Errorf("%w: %s", err, bytes.TrimSpace(e.stderr.Bytes()))}
	}
	if err := os.Rename(e.tmp, e.path); err != nil {
		return &dynamo.RenderError{Op: "ffmpeg", Frame: -1, Wrapped: err}
	}
	return nil
}

// Abort stops ffmpeg and removes its partial output.
func (e *FFmpegEncoder) Abort() error {
	if e.done {
		return nil
	}
	e.done = true
	if e.cmd == nil {
		return nil
	}
	if e.stdin != nil {
		e.stdin.Close()
	}
	if e.cmd.Process != nil {
		e.cmd.Process.Kill()
		e.cmd.Wait()
	}
	if err := os.Remove(e.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &dynamo.RenderError{Op: "ffmpeg", Frame: -1, Wrapped: err}
	}
	return nil
}
