package transcoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paneltrim/internal/logging"
	"paneltrim/internal/services"
	"paneltrim/internal/testsupport"
	"paneltrim/internal/timeline"
)

// stubFFmpeg writes a script that logs its arguments and touches its final
// argument, which for both segment extraction and concat is the output path.
func stubFFmpeg(t *testing.T, exitCode int) (binary, argLog string) {
	t.Helper()
	dir := t.TempDir()
	argLog = filepath.Join(dir, "args.log")
	script := "#!/bin/sh\n" +
		"echo \"$@\" >> " + argLog + "\n" +
		"for last; do :; done\n" +
		"touch \"$last\"\n" +
		"exit " + string(rune('0'+exitCode)) + "\n"
	binary = filepath.Join(dir, "fake-ffmpeg")
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return binary, argLog
}

func TestRenderExtractsAndConcats(t *testing.T) {
	binary, argLog := stubFFmpeg(t, 0)
	cfg := testsupport.NewConfig(t)
	cfg.Tools.FFmpeg = binary

	workRoot := t.TempDir()
	output := filepath.Join(t.TempDir(), "out.mkv")
	keeps := []timeline.KeepRange{
		{Start: 0, End: 2.95},
		{Start: 4.05, End: 10},
	}
	plan, err := NewPlan(workRoot, "/videos/a.mkv", output, keeps)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	runner := NewRunner(cfg, logging.NewNop())
	if err := runner.Render(context.Background(), plan); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if _, err := os.Stat(plan.SessionDir); !os.IsNotExist(err) {
		t.Fatalf("session dir not cleaned up: %v", err)
	}

	data, err := os.ReadFile(argLog)
	if err != nil {
		t.Fatalf("read arg log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("ffmpeg invoked %d times, want 3:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[2], "-f concat") {
		t.Errorf("final invocation is not the concat: %s", lines[2])
	}
}

func TestRenderSurfacesToolFailure(t *testing.T) {
	binary, _ := stubFFmpeg(t, 3)
	cfg := testsupport.NewConfig(t)
	cfg.Tools.FFmpeg = binary

	plan, err := NewPlan(t.TempDir(), "/videos/a.mkv", filepath.Join(t.TempDir(), "out.mkv"),
		[]timeline.KeepRange{{Start: 0, End: 5}})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	runner := NewRunner(cfg, logging.NewNop())
	err = runner.Render(context.Background(), plan)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error", err)
	}
	if _, statErr := os.Stat(plan.SessionDir); !os.IsNotExist(statErr) {
		t.Fatalf("session dir not cleaned up after failure: %v", statErr)
	}
}
