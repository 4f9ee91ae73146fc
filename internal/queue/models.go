package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"paneltrim/internal/timeline"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ValidStatus reports whether value names a known lifecycle state.
func ValidStatus(value Status) bool {
	_, ok := statusSet[value]
	return ok
}

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID              int64
	SourcePath      string
	Duration        float64
	Status          Status
	ProgressPercent float64
	ProgressMessage string
	DetectionsJSON  string
	KeepRangesJSON  string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SetResults attaches the scan output to the item.
func (i *Item) SetResults(detections []timeline.DetectionRange, keeps []timeline.KeepRange) error {
	detectionsJSON, err := json.Marshal(detections)
	if err != nil {
		return fmt.Errorf("marshal detections: %w", err)
	}
	keepsJSON, err := json.Marshal(keeps)
	if err != nil {
		return fmt.Errorf("marshal keep ranges: %w", err)
	}
	i.DetectionsJSON = string(detectionsJSON)
	i.KeepRangesJSON = string(keepsJSON)
	return nil
}

// Detections decodes the stored detection ranges. An item without results
// yields nil.
func (i *Item) Detections() ([]timeline.DetectionRange, error) {
	if i.DetectionsJSON == "" {
		return nil, nil
	}
	var detections []timeline.DetectionRange
	if err := json.Unmarshal([]byte(i.DetectionsJSON), &detections); err != nil {
		return nil, fmt.Errorf("parse detections: %w", err)
	}
	return detections, nil
}

// KeepRanges decodes the stored keep ranges. An item without results yields
// nil.
func (i *Item) KeepRanges() ([]timeline.KeepRange, error) {
	if i.KeepRangesJSON == "" {
		return nil, nil
	}
	var keeps []timeline.KeepRange
	if err := json.Unmarshal([]byte(i.KeepRangesJSON), &keeps); err != nil {
		return nil, fmt.Errorf("parse keep ranges: %w", err)
	}
	return keeps, nil
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}
