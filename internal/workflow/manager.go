package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"paneltrim/internal/config"
	"paneltrim/internal/logging"
	"paneltrim/internal/media/framestream"
	"paneltrim/internal/queue"
)

// progressSampleInterval is the number of accepted samples between persisted
// progress updates. Cancellation is also observed at these boundaries.
const progressSampleInterval = 25

// MediaInfo describes the probed properties a scan needs from a video.
type MediaInfo struct {
	Duration float64
	Width    int
	Height   int
}

// FrameScanner classifies a decoded BGR24 frame as panel or not.
type FrameScanner interface {
	ScanBGR(data []byte, width, height int) bool
}

// FrameSource yields decoded frames in presentation order until io.EOF.
type FrameSource interface {
	Next(ctx context.Context) (framestream.Frame, error)
	Close() error
}

// Prober inspects a video file before decoding starts.
type Prober func(ctx context.Context, path string) (MediaInfo, error)

// SourceOpener starts a frame source for one video.
type SourceOpener func(ctx context.Context, path string, width, height int, sampleRate float64) (FrameSource, error)

// Manager coordinates sequential scanning of the queue.
type Manager struct {
	cfg     *config.Config
	store   *queue.Store
	scanner FrameScanner
	logger  *slog.Logger

	probe Prober
	open  SourceOpener

	mu          sync.Mutex
	skipCurrent context.CancelFunc
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithProber replaces the ffprobe-backed prober (used in tests).
func WithProber(probe Prober) ManagerOption {
	return func(m *Manager) {
		m.probe = probe
	}
}

// WithSourceOpener replaces the ffmpeg-backed frame source (used in tests).
func WithSourceOpener(open SourceOpener) ManagerOption {
	return func(m *Manager) {
		m.open = open
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, scanner FrameScanner, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		cfg:     cfg,
		store:   store,
		scanner: scanner,
		logger:  logging.NewComponentLogger(logger, "workflow"),
	}
	m.probe = m.defaultProbe
	m.open = m.defaultOpen
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Skip requests cancellation of the scan currently in flight, if any. The
// interrupted item returns to pending with no partial results recorded.
func (m *Manager) Skip() {
	m.mu.Lock()
	cancel := m.skipCurrent
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (m *Manager) setSkip(cancel context.CancelFunc) {
	m.mu.Lock()
	m.skipCurrent = cancel
	m.mu.Unlock()
}

func (m *Manager) acquireTimeout() time.Duration {
	seconds := m.cfg.Scan.AcquireTimeoutSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
