package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Ratio thresholds for a positive scan. The region must be dominated by
// panel-background pixels and contain at least a trace of text-colored
// pixels; requiring both filters bare-background false positives and
// stray-pixel noise.
const (
	darkRatioMin  = 0.30
	whiteRatioMin = 0.005
)

// roiPadFraction widens the calibrated region by this share of the frame
// dimensions on each axis, tolerating small positional drift introduced by
// encoding.
const roiPadFraction = 0.05

// Scanner classifies decoded frames against a calibrated profile.
type Scanner struct {
	profile *Profile
}

// NewScanner binds a scanner to a validated profile.
func NewScanner(profile *Profile) (*Scanner, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{profile: profile}, nil
}

// Scan reports whether the panel is visible in the frame. Any internal
// failure degrades to false; Scan never panics into the caller and never
// retains frame memory past the call.
func (s *Scanner) Scan(frame gocv.Mat) (visible bool) {
	defer func() {
		if recover() != nil {
			visible = false
		}
	}()

	if frame.Empty() {
		return false
	}

	rect := s.regionOfInterest(frame.Cols(), frame.Rows())
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return false
	}

	roi := frame.Region(rect)
	defer roi.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)

	total := rect.Dx() * rect.Dy()
	darkRatio := float64(maskCount(hsv, s.profile.Background)) / float64(total)
	whiteRatio := float64(maskCount(hsv, s.profile.Text)) / float64(total)

	return darkRatio > darkRatioMin && whiteRatio > whiteRatioMin
}

// ScanBGR scans a raw BGR24 pixel buffer. The buffer is wrapped, scanned,
// and released before returning; it is never retained. Malformed input
// degrades to false.
func (s *Scanner) ScanBGR(data []byte, width, height int) bool {
	if width <= 0 || height <= 0 || len(data) != width*height*3 {
		return false
	}
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return false
	}
	defer mat.Close()
	return s.Scan(mat)
}

// regionOfInterest scales the normalized box to pixel coordinates, pads it,
// and clamps it to the frame bounds. The result may be empty.
func (s *Scanner) regionOfInterest(width, height int) image.Rectangle {
	box := s.profile.Box
	padX := roiPadFraction * float64(width)
	padY := roiPadFraction * float64(height)

	x0 := int(box.X*float64(width) - padX)
	y0 := int(box.Y*float64(height) - padY)
	x1 := int((box.X+box.W)*float64(width) + padX)
	y1 := int((box.Y+box.H)*float64(height) + padY)

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > width {
		x1 = width
	}
	if y1 > height {
		y1 = height
	}
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return image.Rect(x0, y0, x1, y1)
}

func maskCount(hsv gocv.Mat, bounds ColorBounds) int {
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(
		hsv,
		gocv.NewScalar(bounds.Lower.H, bounds.Lower.S, bounds.Lower.V, 0),
		gocv.NewScalar(bounds.Upper.H, bounds.Upper.S, bounds.Upper.V, 0),
		&mask,
	)
	return gocv.CountNonZero(mask)
}
