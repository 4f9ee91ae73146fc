package timeline

// DetectionRange is a contiguous interval of media time (seconds) where the
// panel was observed. Confidence is stored for forward compatibility; the
// scanner currently always reports 1.0.
type DetectionRange struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Duration returns the length of the range in seconds.
func (r DetectionRange) Duration() float64 {
	return r.End - r.Start
}

// KeepRange is a contiguous interval of media time to retain in the final
// render.
type KeepRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the length of the range in seconds.
func (r KeepRange) Duration() float64 {
	return r.End - r.Start
}
