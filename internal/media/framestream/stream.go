package framestream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"paneltrim/internal/services"
)

const bgrBytesPerPixel = 3

// Frame is one decoded video frame. Data holds BGR24 pixels and is only
// valid until the next call to Next; callers must not retain it.
type Frame struct {
	Timestamp float64
	Width     int
	Height    int
	Data      []byte
}

// Source pulls decoded frames from a running ffmpeg process. Next is for a
// single consumer, but Close may be called from another goroutine to unblock
// a pending read.
type Source struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	width      int
	height     int
	sampleRate float64

	index int64
	buf   []byte

	closed     atomic.Bool
	finishOnce sync.Once
	finishErr  error
}

// Open starts a decoder for the given source emitting frames at sampleRate
// frames per media second. Dimensions must match the source's native video
// stream (rawvideo frames carry no header).
func Open(ctx context.Context, binary, path string, width, height int, sampleRate float64) (*Source, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framestream: invalid dimensions %dx%d", width, height)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("framestream: invalid sample rate %v", sampleRate)
	}
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", path,
		"-an", "-sn",
		"-vf", fmt.Sprintf("fps=%g", sampleRate),
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-",
	)

	source := &Source{
		cmd:        cmd,
		width:      width,
		height:     height,
		sampleRate: sampleRate,
		buf:        make([]byte, width*height*bgrBytesPerPixel),
	}
	cmd.Stderr = &source.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("framestream: stdout pipe: %w", err)
	}
	source.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "framestream", "start decoder", binary, err)
	}
	return source, nil
}

// Next pulls the next frame. It returns io.EOF on clean end of stream, the
// context error when the context is cancelled, and a decode error otherwise.
// The returned frame's Data is overwritten by the following call.
func (s *Source) Next(ctx context.Context) (Frame, error) {
	if s.closed.Load() {
		return Frame{}, io.EOF
	}

	_, err := io.ReadFull(s.stdout, s.buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Frame{}, ctxErr
		}
		if errors.Is(err, io.EOF) {
			if waitErr := s.finish(); waitErr != nil {
				return Frame{}, waitErr
			}
			return Frame{}, io.EOF
		}
		// Mid-frame truncation or a broken pipe is a genuine decode failure.
		_ = s.finish()
		return Frame{}, services.Wrap(services.ErrExternalTool, "framestream", "read frame", s.stderrTail(), err)
	}

	frame := Frame{
		Timestamp: float64(s.index) / s.sampleRate,
		Width:     s.width,
		Height:    s.height,
		Data:      s.buf,
	}
	s.index++
	return frame, nil
}

// Close terminates the decoder if it is still running. Safe to call more
// than once, concurrently with a blocked Next, and after Next returned
// io.EOF; killing the process unblocks a pending read.
func (s *Source) Close() error {
	if s.cmd.Process != nil {
		// Kill on an already-reaped process reports ErrProcessDone.
		_ = s.cmd.Process.Kill()
	}
	return s.finish()
}

// finish reaps the process exactly once and records the source as closed.
// Concurrent callers all observe the first call's result. A decoder that
// exited non-zero surfaces as an external tool error with its stderr tail.
func (s *Source) finish() error {
	s.finishOnce.Do(func() {
		s.closed.Store(true)
		_ = s.stdout.Close()
		if err := s.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && !exitErr.Exited() {
				// Killed by Close or context cancellation; not a decode failure.
				return
			}
			s.finishErr = services.Wrap(services.ErrExternalTool, "framestream", "decoder exit", s.stderrTail(), err)
		}
	})
	return s.finishErr
}

func (s *Source) stderrTail() string {
	const tailLimit = 400
	text := strings.TrimSpace(s.stderr.String())
	if len(text) > tailLimit {
		text = text[len(text)-tailLimit:]
	}
	return text
}
