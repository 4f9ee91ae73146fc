package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"paneltrim/internal/config"
	"paneltrim/internal/logging"
	"paneltrim/internal/services"
)

// Runner executes render plans against the configured ffmpeg binary.
type Runner struct {
	binary string
	logger *slog.Logger
}

// NewRunner constructs a runner from configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	binary := strings.TrimSpace(cfg.Tools.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "transcoder"),
	}
}

// Render executes a plan: extract every segment, write the concat list, join
// the segments into the output. The scratch session directory is removed on
// every exit path; the output file survives only a fully successful run.
func (r *Runner) Render(ctx context.Context, plan *Plan) error {
	if err := os.MkdirAll(plan.SessionDir, 0o755); err != nil {
		return fmt.Errorf("transcoder: create session dir: %w", err)
	}
	defer os.RemoveAll(plan.SessionDir)

	logger := r.logger.With(logging.String(logging.FieldSource, plan.Source))
	logger.Info("render started", logging.Args(
		logging.Int("segments", len(plan.Segments)),
		logging.String("output", plan.Output))...)

	for _, segment := range plan.Segments {
		if err := r.run(ctx, "extract segment", plan.SegmentArgs(segment)); err != nil {
			return err
		}
	}

	if err := os.WriteFile(plan.ConcatList, []byte(plan.ConcatListContent()), 0o644); err != nil {
		return fmt.Errorf("transcoder: write concat list: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(plan.Output), 0o755); err != nil {
		return fmt.Errorf("transcoder: create output dir: %w", err)
	}
	if err := r.run(ctx, "concat segments", plan.ConcatArgs()); err != nil {
		return err
	}

	logger.Info("render completed", logging.String("output", plan.Output))
	return nil
}

func (r *Runner) run(ctx context.Context, operation string, args []string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrExternalTool, "transcoder", operation, tail(stderr.String()), err)
	}
	return nil
}

func tail(text string) string {
	const limit = 400
	text = strings.TrimSpace(text)
	if len(text) > limit {
		text = text[len(text)-limit:]
	}
	return text
}
