package vision_test

import (
	"path/filepath"
	"testing"

	"paneltrim/internal/vision"
)

func validProfile() *vision.Profile {
	return &vision.Profile{
		Background:  vision.ColorBounds{Lower: vision.HSV{H: 100, S: 20, V: 0}, Upper: vision.HSV{H: 120, S: 110, V: 80}},
		Highlight:   vision.ColorBounds{Lower: vision.HSV{H: 90, S: 200, V: 190}, Upper: vision.HSV{H: 110, S: 255, V: 255}},
		Text:        vision.ColorBounds{Lower: vision.HSV{H: 0, S: 0, V: 195}, Upper: vision.HSV{H: 10, S: 45, V: 255}},
		Box:         vision.NormalizedBox{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
		AspectRatio: 1.0,
	}
}

func TestProfileValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*vision.Profile)
		wantErr bool
	}{
		{"valid", func(p *vision.Profile) {}, false},
		{"zero width", func(p *vision.Profile) { p.Box.W = 0 }, true},
		{"negative height", func(p *vision.Profile) { p.Box.H = -0.1 }, true},
		{"exceeds unit square", func(p *vision.Profile) { p.Box.X = 0.8 }, true},
		{"negative origin", func(p *vision.Profile) { p.Box.Y = -0.01 }, true},
		{"full frame", func(p *vision.Profile) { p.Box = vision.NormalizedBox{X: 0, Y: 0, W: 1, H: 1} }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProfile()
			tc.mutate(p)
			err := p.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestProfileSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	original := validProfile()
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := vision.LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if *loaded != *original {
		t.Fatalf("round trip mismatch:\n  saved  %+v\n  loaded %+v", original, loaded)
	}
}

func TestLoadProfileRejectsInvalidBox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	bad := validProfile()
	bad.Box.W = 0
	// Save does not validate; Load must.
	if err := bad.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := vision.LoadProfile(path); err == nil {
		t.Fatal("expected LoadProfile to reject zero-width box")
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := vision.LoadProfile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing profile")
	}
}
