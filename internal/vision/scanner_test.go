package vision_test

import (
	"math/rand"
	"testing"

	"gocv.io/x/gocv"

	"paneltrim/internal/vision"
)

// Panel palette in BGR byte order, matching the fixed domain constants.
var (
	panelBackgroundBGR = [3]byte{32, 26, 24}
	panelTextBGR       = [3]byte{245, 245, 245}
)

func centeredProfile(t *testing.T) *vision.Profile {
	t.Helper()
	// Calibrate from a synthetic reference so color bounds come from the
	// real palette constants.
	ref := makeBGRMat(t, 200, 200, func(x, y int) [3]byte {
		if x >= 50 && x < 150 && y >= 50 && y < 150 {
			return [3]byte{230, 230, 230}
		}
		return [3]byte{0, 0, 0}
	})
	defer ref.Close()

	profile, err := vision.Calibrate(ref)
	if err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	return profile
}

// panelFrame paints the profile's region with panel background plus a strip
// of text-colored pixels.
func panelFrame(t *testing.T, width, height int) gocv.Mat {
	t.Helper()
	return makeBGRMat(t, width, height, func(x, y int) [3]byte {
		inBox := x >= width/4 && x < width*3/4 && y >= height/4 && y < height*3/4
		if !inBox {
			return [3]byte{128, 128, 128}
		}
		if y >= height/2-2 && y < height/2+2 {
			return panelTextBGR
		}
		return panelBackgroundBGR
	})
}

func TestScanDetectsPanel(t *testing.T) {
	scanner, err := vision.NewScanner(centeredProfile(t))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	frame := panelFrame(t, 200, 200)
	defer frame.Close()

	if !scanner.Scan(frame) {
		t.Fatal("expected panel to be detected")
	}
}

func TestScanDetectsPanelAtDifferentResolution(t *testing.T) {
	scanner, err := vision.NewScanner(centeredProfile(t))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	// The template is normalized; a frame at another resolution with the
	// panel in the same relative position still matches.
	frame := panelFrame(t, 320, 180)
	defer frame.Close()

	if !scanner.Scan(frame) {
		t.Fatal("expected panel to be detected at 320x180")
	}
}

func TestScanRejectsUnrelatedContent(t *testing.T) {
	scanner, err := vision.NewScanner(centeredProfile(t))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	rng := rand.New(rand.NewSource(99))
	frame := makeBGRMat(t, 200, 200, func(x, y int) [3]byte {
		return [3]byte{byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256))}
	})
	defer frame.Close()

	if scanner.Scan(frame) {
		t.Fatal("expected random content to be rejected")
	}
}

func TestScanRejectsBareBackground(t *testing.T) {
	scanner, err := vision.NewScanner(centeredProfile(t))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	// Background fill with no text at all fails the whiteRatio gate.
	frame := makeBGRMat(t, 200, 200, func(x, y int) [3]byte {
		return panelBackgroundBGR
	})
	defer frame.Close()

	if scanner.Scan(frame) {
		t.Fatal("expected background-only frame to be rejected")
	}
}

func TestScanEmptyFrameIsFalse(t *testing.T) {
	scanner, err := vision.NewScanner(centeredProfile(t))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	if scanner.Scan(frame) {
		t.Fatal("expected empty frame to scan false")
	}
}

func TestScanZeroAreaRegionIsFalse(t *testing.T) {
	scanner, err := vision.NewScanner(centeredProfile(t))
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	// On a 1x1 frame the centered box plus padding truncates to a
	// zero-width rectangle after clamping; the scan must bail out before
	// taking a region.
	pixel := []byte{panelBackgroundBGR[0], panelBackgroundBGR[1], panelBackgroundBGR[2]}
	if scanner.ScanBGR(pixel, 1, 1) {
		t.Fatal("expected zero-area region to scan false")
	}
}

func TestNewScannerRejectsInvalidProfile(t *testing.T) {
	bad := validProfile()
	bad.Box.W = 0
	if _, err := vision.NewScanner(bad); err == nil {
		t.Fatal("expected error for invalid profile")
	}
}
