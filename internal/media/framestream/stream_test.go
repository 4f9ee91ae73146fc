package framestream_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"paneltrim/internal/media/framestream"
	"paneltrim/internal/services"
)

// stubDecoder writes a script that ignores its arguments and emits the given
// payload on stdout, exiting with the given code.
func stubDecoder(t *testing.T, payload []byte, exitCode int) string {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "payload.bin")
	if err := os.WriteFile(dataPath, payload, 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	script := "#!/bin/sh\ncat " + dataPath + "\nexit " + string(rune('0'+exitCode)) + "\n"
	scriptPath := filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return scriptPath
}

func TestNextPullsFramesWithTimestamps(t *testing.T) {
	const width, height = 4, 2
	frameSize := width * height * 3
	payload := make([]byte, frameSize*3)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	binary := stubDecoder(t, payload, 0)

	source, err := framestream.Open(context.Background(), binary, "input.mp4", width, height, 10)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer source.Close()

	for i := 0; i < 3; i++ {
		frame, err := source.Next(context.Background())
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		want := float64(i) / 10
		if frame.Timestamp != want {
			t.Fatalf("frame %d: expected timestamp %v, got %v", i, want, frame.Timestamp)
		}
		if len(frame.Data) != frameSize {
			t.Fatalf("frame %d: expected %d bytes, got %d", i, frameSize, len(frame.Data))
		}
		if frame.Data[0] != payload[i*frameSize] {
			t.Fatalf("frame %d: unexpected leading byte", i)
		}
	}

	if _, err := source.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestNextReportsTruncatedStream(t *testing.T) {
	const width, height = 4, 2
	// One and a half frames.
	payload := make([]byte, width*height*3*3/2)
	binary := stubDecoder(t, payload, 0)

	source, err := framestream.Open(context.Background(), binary, "input.mp4", width, height, 10)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer source.Close()

	if _, err := source.Next(context.Background()); err != nil {
		t.Fatalf("first frame should decode: %v", err)
	}
	_, err = source.Next(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for truncated frame, got %v", err)
	}
}

func TestNextReportsDecoderFailure(t *testing.T) {
	binary := stubDecoder(t, nil, 1)

	source, err := framestream.Open(context.Background(), binary, "input.mp4", 4, 2, 10)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer source.Close()

	_, err = source.Next(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNextObservesCancellation(t *testing.T) {
	// A decoder that blocks forever.
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\nsleep 60\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	source, err := framestream.Open(ctx, scriptPath, "input.mp4", 4, 2, 10)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer source.Close()

	done := make(chan error, 1)
	go func() {
		_, err := source.Next(ctx)
		done <- err
	}()
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenValidatesArguments(t *testing.T) {
	if _, err := framestream.Open(context.Background(), "ffmpeg", "x", 0, 2, 10); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := framestream.Open(context.Background(), "ffmpeg", "x", 4, 2, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestCloseUnblocksPendingNext(t *testing.T) {
	// A decoder that blocks forever.
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\nsleep 60\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	source, err := framestream.Open(context.Background(), scriptPath, "input.mp4", 4, 2, 10)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	nextDone := make(chan error, 1)
	go func() {
		_, err := source.Next(context.Background())
		nextDone <- err
	}()

	// Close racing the blocked read, from two goroutines at once.
	var wg sync.WaitGroup
	closeErrs := make([]error, 2)
	for i := range closeErrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			closeErrs[i] = source.Close()
		}(i)
	}
	wg.Wait()

	select {
	case err := <-nextDone:
		if err == nil {
			t.Fatal("Next returned a frame from a closed source")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Next still blocked after Close")
	}
	for i, err := range closeErrs {
		if err != nil {
			t.Errorf("Close %d: %v", i, err)
		}
	}

	// Later calls stay idempotent.
	if err := source.Close(); err != nil {
		t.Fatalf("repeated Close: %v", err)
	}
	if _, err := source.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Next after Close = %v, want io.EOF", err)
	}
}
