// Package vision implements panel detection: calibrating a detection profile
// from a reference image and classifying individual video frames against it.
//
// The panel has a known fixed palette, so color bounds come from domain
// constants, not from the reference image; calibration only locates where the
// panel sits. Frame scanning checks the calibrated region for a dominant
// panel-background fill plus a minimum amount of text-colored foreground.
//
// All pixel work goes through gocv; every Mat allocated here is closed on
// every exit path.
package vision
