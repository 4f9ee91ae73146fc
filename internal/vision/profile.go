package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Fixed panel palette. The overlay being detected always renders with these
// colors; only its position needs calibrating.
var (
	panelBackgroundRGB = [3]float64{24, 26, 32}
	panelHighlightRGB  = [3]float64{0, 174, 239}
	panelTextRGB       = [3]float64{245, 245, 245}
)

// Widening tolerances applied around each palette color. Hue is in OpenCV
// units (half-degrees, valid range [0,180)).
const (
	hueTolerance   = 8.0
	satTolerance   = 45.0
	valueTolerance = 50.0
)

// HSV is a color in OpenCV's HSV scale: H in [0,180), S and V in [0,255].
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// ColorBounds is an inclusive HSV box a pixel must fall inside to count as
// one of the panel's palette colors.
type ColorBounds struct {
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`
}

// NormalizedBox locates the panel within a frame, with all coordinates
// normalized to [0,1] of the frame dimensions.
type NormalizedBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Profile is the calibrated color and spatial template used to recognize the
// panel. It is immutable once built.
type Profile struct {
	Background  ColorBounds   `json:"background"`
	Highlight   ColorBounds   `json:"highlight"`
	Text        ColorBounds   `json:"text"`
	Box         NormalizedBox `json:"box"`
	AspectRatio float64       `json:"aspect_ratio"`
}

// Validate reports whether the profile satisfies its invariants: a positive
// area box whose coordinates fall within the unit square.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New("profile is nil")
	}
	b := p.Box
	if b.W <= 0 || b.H <= 0 {
		return fmt.Errorf("profile box must have positive area, got w=%v h=%v", b.W, b.H)
	}
	if b.X < 0 || b.Y < 0 || b.X+b.W > 1+1e-9 || b.Y+b.H > 1+1e-9 {
		return fmt.Errorf("profile box exceeds unit square: %+v", b)
	}
	return nil
}

// Save writes the profile as JSON.
func (p *Profile) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// LoadProfile reads a previously saved profile and validates it.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// paletteBounds converts an RGB palette constant to HSV and widens it by the
// fixed per-channel tolerances, clamped to the valid HSV range.
func paletteBounds(rgb [3]float64) ColorBounds {
	center := rgbToHSV(rgb[0], rgb[1], rgb[2])
	return ColorBounds{
		Lower: HSV{
			H: clamp(center.H-hueTolerance, 0, 180),
			S: clamp(center.S-satTolerance, 0, 255),
			V: clamp(center.V-valueTolerance, 0, 255),
		},
		Upper: HSV{
			H: clamp(center.H+hueTolerance, 0, 180),
			S: clamp(center.S+satTolerance, 0, 255),
			V: clamp(center.V+valueTolerance, 0, 255),
		},
	}
}

// rgbToHSV converts 8-bit RGB to OpenCV-scale HSV.
func rgbToHSV(r, g, b float64) HSV {
	rf, gf, bf := r/255, g/255, b/255
	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min

	var hue float64
	switch {
	case delta == 0:
		hue = 0
	case max == rf:
		hue = 60 * math.Mod((gf-bf)/delta, 6)
	case max == gf:
		hue = 60 * ((bf-rf)/delta + 2)
	default:
		hue = 60 * ((rf-gf)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}

	sat := 0.0
	if max > 0 {
		sat = delta / max
	}

	return HSV{H: hue / 2, S: sat * 255, V: max * 255}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
