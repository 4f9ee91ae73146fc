package timeline

import "sort"

// MergeTolerance is the maximum gap (seconds) between successive detection
// timestamps that still counts as the same sighting. Detection flicker below
// this threshold does not split a range.
const MergeTolerance = 0.5

// Aggregate clusters raw detection timestamps into sorted, non-overlapping
// detection ranges. Input order does not matter. An empty input yields nil.
func Aggregate(timestamps []float64) []DetectionRange {
	if len(timestamps) == 0 {
		return nil
	}

	sorted := make([]float64, len(timestamps))
	copy(sorted, timestamps)
	sort.Float64s(sorted)

	ranges := make([]DetectionRange, 0, 1)
	current := DetectionRange{Start: sorted[0], End: sorted[0], Confidence: 1.0}
	for _, ts := range sorted[1:] {
		if ts-current.End <= MergeTolerance {
			current.End = ts
			continue
		}
		ranges = append(ranges, current)
		current = DetectionRange{Start: ts, End: ts, Confidence: 1.0}
	}
	return append(ranges, current)
}
