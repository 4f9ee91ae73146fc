package timeline

import "sort"

const (
	// CutMargin widens each detection range on both sides before
	// complementing, so the cut never clips the first or last panel frame.
	CutMargin = 0.05

	// MinKeepLength drops keep ranges at or below this length; near-zero
	// output segments confuse the concat step and carry no usable footage.
	MinKeepLength = 0.1
)

// Complement converts detection ranges into the ordered keep ranges covering
// [0, duration] minus the margin-expanded detections. Detections may arrive
// in any order. A zero or negative duration yields nil; zero detections yield
// a single keep range spanning the whole duration.
func Complement(detections []DetectionRange, duration float64) []KeepRange {
	if duration <= 0 {
		return nil
	}

	sorted := make([]DetectionRange, len(detections))
	copy(sorted, detections)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var keeps []KeepRange
	cursor := 0.0
	for _, d := range sorted {
		safeEnd := d.Start - CutMargin
		if safeEnd < 0 {
			safeEnd = 0
		}
		if safeEnd-cursor > MinKeepLength {
			keeps = append(keeps, KeepRange{Start: cursor, End: safeEnd})
		}
		next := d.End + CutMargin
		if next > duration {
			next = duration
		}
		if next > cursor {
			cursor = next
		}
	}
	if duration-cursor > MinKeepLength {
		keeps = append(keeps, KeepRange{Start: cursor, End: duration})
	}
	return keeps
}
