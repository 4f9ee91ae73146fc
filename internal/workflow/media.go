package workflow

import (
	"context"
	"math"

	"paneltrim/internal/media/ffprobe"
	"paneltrim/internal/media/framestream"
	"paneltrim/internal/services"
)

func (m *Manager) decodeFPS() float64 {
	fps := m.cfg.Scan.DecodeFPS
	if fps <= 0 {
		fps = 10
	}
	return fps
}

// defaultProbe inspects a video with ffprobe and validates that it carries a
// decodable video stream with known dimensions and duration.
func (m *Manager) defaultProbe(ctx context.Context, path string) (MediaInfo, error) {
	result, err := ffprobe.Inspect(ctx, m.cfg.Tools.FFprobe, path)
	if err != nil {
		return MediaInfo{}, err
	}
	width, height := result.VideoDimensions()
	duration := result.DurationSeconds()
	if width <= 0 || height <= 0 {
		return MediaInfo{}, services.Wrap(services.ErrValidation, "workflow", "probe", "no video stream with known dimensions", nil)
	}
	// DurationSeconds reports NaN for a malformed duration field; NaN
	// compares false against everything, so it needs its own check.
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return MediaInfo{}, services.Wrap(services.ErrValidation, "workflow", "probe", "unknown duration", nil)
	}
	return MediaInfo{Duration: duration, Width: width, Height: height}, nil
}

// defaultOpen starts the ffmpeg sampling decoder.
func (m *Manager) defaultOpen(ctx context.Context, path string, width, height int, sampleRate float64) (FrameSource, error) {
	return framestream.Open(ctx, m.cfg.Tools.FFmpeg, path, width, height, sampleRate)
}
