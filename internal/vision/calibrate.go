package vision

import (
	"errors"

	"gocv.io/x/gocv"

	"paneltrim/internal/services"
)

// minRegionAreaFraction is the smallest share of the reference image the
// brightest connected region may occupy and still count as the panel.
const minRegionAreaFraction = 0.001

// foregroundThreshold binarizes the grayscale reference: pixels at or above
// this brightness are foreground.
const foregroundThreshold = 200

var (
	// ErrNoPanelRegion reports that no qualifying bright region exists in
	// the reference image.
	ErrNoPanelRegion = errors.New("no qualifying panel region in reference image")

	// ErrUnreadableImage reports that the reference bitmap could not be
	// decoded.
	ErrUnreadableImage = errors.New("reference image unreadable")
)

// CalibrateFile loads a reference bitmap from disk and builds a profile.
func CalibrateFile(path string) (*Profile, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return nil, services.Wrap(ErrUnreadableImage, "vision", "calibrate", path, nil)
	}
	return Calibrate(img)
}

// Calibrate builds a detection profile from a decoded BGR reference image.
// Color bounds come from the fixed panel palette; the spatial template comes
// from the largest bright connected region in the image. No partial profile
// is ever returned.
func Calibrate(img gocv.Mat) (*Profile, error) {
	if img.Empty() || img.Cols() <= 0 || img.Rows() <= 0 {
		return nil, services.Wrap(ErrUnreadableImage, "vision", "calibrate", "empty image", nil)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(gray, &binary, foregroundThreshold, 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestIdx := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}

	width := float64(img.Cols())
	height := float64(img.Rows())
	if bestIdx < 0 || bestArea < minRegionAreaFraction*width*height {
		return nil, services.Wrap(ErrNoPanelRegion, "vision", "calibrate", "", nil)
	}

	rect := gocv.BoundingRect(contours.At(bestIdx))
	box := NormalizedBox{
		X: float64(rect.Min.X) / width,
		Y: float64(rect.Min.Y) / height,
		W: float64(rect.Dx()) / width,
		H: float64(rect.Dy()) / height,
	}

	profile := &Profile{
		Background:  paletteBounds(panelBackgroundRGB),
		Highlight:   paletteBounds(panelHighlightRGB),
		Text:        paletteBounds(panelTextRGB),
		Box:         box,
		AspectRatio: float64(rect.Dx()) / float64(rect.Dy()),
	}
	if err := profile.Validate(); err != nil {
		return nil, services.Wrap(ErrNoPanelRegion, "vision", "calibrate", err.Error(), nil)
	}
	return profile, nil
}
