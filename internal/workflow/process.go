package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"paneltrim/internal/logging"
	"paneltrim/internal/queue"
	"paneltrim/internal/services"
	"paneltrim/internal/timeline"
)

var (
	errScanAborted    = errors.New("scan aborted")
	errAcquireTimeout = errors.New("frame acquisition timed out")
)

// ProcessQueue scans pending items oldest-first until the queue is drained or
// the context is cancelled. A failed item is recorded and the batch moves on;
// an item aborted via Skip returns to pending and is not retried during this
// pass.
func (m *Manager) ProcessQueue(ctx context.Context) error {
	skipped := make(map[int64]struct{})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pending, err := m.store.ItemsByStatus(ctx, queue.StatusPending)
		if err != nil {
			return err
		}
		var item *queue.Item
		for _, candidate := range pending {
			if _, ok := skipped[candidate.ID]; !ok {
				item = candidate
				break
			}
		}
		if item == nil {
			return nil
		}
		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, errScanAborted) {
				if cerr := ctx.Err(); cerr != nil {
					return cerr
				}
				skipped[item.ID] = struct{}{}
				continue
			}
			m.logger.Error("item scan failed", logging.Args(
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String(logging.FieldSource, item.SourcePath),
				logging.Error(err))...)
		}
	}
}

// ProcessItem scans a single item regardless of queue order. Used by rescan
// flows; ProcessQueue uses the same path.
func (m *Manager) ProcessItem(ctx context.Context, id int64) error {
	item, err := m.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "process item", fmt.Sprintf("item %d", id), nil)
	}
	return m.processItem(ctx, item)
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	itemCtx, cancel := context.WithCancel(ctx)
	m.setSkip(cancel)
	defer func() {
		m.setSkip(nil)
		cancel()
	}()

	logger := m.logger.With(
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldSource, item.SourcePath))
	logger.Info("scan started")

	item.Status = queue.StatusProcessing
	item.ProgressPercent = 0
	item.ProgressMessage = "probing"
	item.ErrorMessage = ""
	if err := m.store.Update(ctx, item); err != nil {
		return err
	}

	probeCtx, probeCancel := context.WithTimeout(itemCtx, m.acquireTimeout())
	info, err := m.probe(probeCtx, item.SourcePath)
	probeCancel()
	if err != nil {
		if itemCtx.Err() != nil {
			return m.abortItem(ctx, item, logger)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// The video never became readable within the bounded wait. This
			// is recorded as an empty detection set, not a failure.
			logger.Warn("probe timed out, recording empty detection set", logging.Error(err))
			return m.completeItem(ctx, item, 0, nil, logger)
		}
		return m.failItem(ctx, item, err)
	}

	item.Duration = info.Duration
	item.ProgressMessage = "scanning"
	if err := m.store.Update(ctx, item); err != nil {
		return err
	}

	source, err := m.open(itemCtx, item.SourcePath, info.Width, info.Height, m.decodeFPS())
	if err != nil {
		if itemCtx.Err() != nil {
			return m.abortItem(ctx, item, logger)
		}
		return m.failItem(ctx, item, err)
	}
	defer source.Close()

	timestamps, err := m.scanFrames(itemCtx, item, source, info)
	if err != nil {
		switch {
		case errors.Is(err, errAcquireTimeout):
			logger.Warn("no frame arrived within the acquisition window, recording empty detection set")
			return m.completeItem(ctx, item, info.Duration, nil, logger)
		case itemCtx.Err() != nil:
			return m.abortItem(ctx, item, logger)
		default:
			return m.failItem(ctx, item, err)
		}
	}
	return m.completeItem(ctx, item, info.Duration, timestamps, logger)
}

// scanFrames pulls frames until end of stream, accepting samples no closer
// together in media time than the configured spacing. Only accepted samples
// are scanned. The first frame is subject to the acquisition timeout; after
// it arrives the decoder is known to be producing.
func (m *Manager) scanFrames(ctx context.Context, item *queue.Item, source FrameSource, info MediaInfo) ([]float64, error) {
	var (
		timestamps   []float64
		accepted     int
		lastAccepted float64
		spacing      = m.cfg.Scan.SampleSpacing
	)
	for {
		frameCtx := ctx
		var firstCancel context.CancelFunc
		var stopWatchdog func() bool
		if accepted == 0 {
			frameCtx, firstCancel = context.WithTimeout(ctx, m.acquireTimeout())
			// ReadFull on the decoder pipe does not observe the deadline on
			// its own; killing the decoder unblocks it.
			stopWatchdog = context.AfterFunc(frameCtx, func() { _ = source.Close() })
		}
		frame, err := source.Next(frameCtx)
		watchdogStopped := true
		if stopWatchdog != nil {
			watchdogStopped = stopWatchdog()
		}
		if firstCancel != nil {
			firstCancel()
		}
		if err == nil && !watchdogStopped {
			// The deadline fired while the frame was in flight and the
			// watchdog already closed the source; the frame cannot be
			// trusted and the next read would report a spurious EOF.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, errAcquireTimeout
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return timestamps, nil
			}
			if accepted == 0 && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return nil, errAcquireTimeout
			}
			return nil, err
		}

		// Small tolerance so a gap of exactly the configured spacing is
		// accepted despite float rounding.
		if accepted > 0 && frame.Timestamp-lastAccepted < spacing-1e-9 {
			continue
		}
		lastAccepted = frame.Timestamp
		accepted++

		if m.scanner.ScanBGR(frame.Data, frame.Width, frame.Height) {
			timestamps = append(timestamps, frame.Timestamp)
		}

		if accepted%progressSampleInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m.persistProgress(ctx, item, frame.Timestamp, info.Duration)
		}
	}
}

func (m *Manager) persistProgress(ctx context.Context, item *queue.Item, timestamp, duration float64) {
	percent := 0.0
	if duration > 0 {
		percent = timestamp / duration * 100
		if percent > 100 {
			percent = 100
		}
	}
	item.ProgressPercent = percent
	item.ProgressMessage = "scanning"
	if err := m.store.UpdateProgress(ctx, item); err != nil {
		m.logger.Warn("progress update failed", logging.Args(
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))...)
	}
}

// completeItem aggregates the accepted panel timestamps, derives the keep
// ranges, and marks the item completed. A nil timestamp slice yields an empty
// detection set and whole-duration keep coverage.
func (m *Manager) completeItem(ctx context.Context, item *queue.Item, duration float64, timestamps []float64, logger *slog.Logger) error {
	detections := timeline.Aggregate(timestamps)
	keeps := timeline.Complement(detections, duration)

	item.Duration = duration
	if err := item.SetResults(detections, keeps); err != nil {
		return err
	}
	item.Status = queue.StatusCompleted
	item.ProgressPercent = 100
	item.ProgressMessage = "completed"
	if err := m.store.Update(context.WithoutCancel(ctx), item); err != nil {
		return err
	}
	logger.Info("scan completed", logging.Args(
		logging.Int("detections", len(detections)),
		logging.Int("keep_ranges", len(keeps)))...)
	return nil
}

// failItem records the error and marks the item failed. The returned error
// lets the batch loop log it once and continue with the next item.
func (m *Manager) failItem(ctx context.Context, item *queue.Item, cause error) error {
	item.Status = queue.StatusFailed
	item.ErrorMessage = cause.Error()
	item.ProgressMessage = "failed"
	if err := m.store.Update(context.WithoutCancel(ctx), item); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// abortItem returns an interrupted item to pending with no partial results.
func (m *Manager) abortItem(ctx context.Context, item *queue.Item, logger *slog.Logger) error {
	item.Status = queue.StatusPending
	item.ProgressPercent = 0
	item.ProgressMessage = ""
	item.ErrorMessage = ""
	if err := m.store.Update(context.WithoutCancel(ctx), item); err != nil {
		return errors.Join(errScanAborted, err)
	}
	logger.Info("scan aborted, item returned to pending")
	return errScanAborted
}
