// Package manifest builds the portable scan-result manifest consumed by an
// external transcoder.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"paneltrim/internal/queue"
	"paneltrim/internal/timeline"
)

// Record is the manifest entry for one scanned video.
type Record struct {
	File       string                    `json:"file"`
	Duration   float64                   `json:"duration"`
	KeepRanges []timeline.KeepRange      `json:"keepRanges"`
	Detections []timeline.DetectionRange `json:"detections"`
}

// Build assembles records for every completed item, oldest first. Items in
// any other state are excluded; a completed item with no detections still
// produces a record so the transcoder sees the full batch.
func Build(ctx context.Context, store *queue.Store) ([]Record, error) {
	items, err := store.ItemsByStatus(ctx, queue.StatusCompleted)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := fromItem(item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func fromItem(item *queue.Item) (Record, error) {
	detections, err := item.Detections()
	if err != nil {
		return Record{}, fmt.Errorf("manifest: item %d: %w", item.ID, err)
	}
	keeps, err := item.KeepRanges()
	if err != nil {
		return Record{}, fmt.Errorf("manifest: item %d: %w", item.ID, err)
	}
	if detections == nil {
		detections = []timeline.DetectionRange{}
	}
	if keeps == nil {
		keeps = []timeline.KeepRange{}
	}
	return Record{
		File:       item.SourcePath,
		Duration:   item.Duration,
		KeepRanges: keeps,
		Detections: detections,
	}, nil
}

// Write serializes records as an indented JSON array. An empty batch writes
// an empty array, not null.
func Write(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// WriteFile writes the manifest atomically via a sibling temp file.
func WriteFile(path string, records []Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("manifest: create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := Write(tmp, records); err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("manifest: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("manifest: rename into place: %w", err)
	}
	return nil
}
