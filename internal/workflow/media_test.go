package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"paneltrim/internal/logging"
	"paneltrim/internal/services"
	"paneltrim/internal/testsupport"
)

func stubProber(t *testing.T, payload string) string {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(dataPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	scriptPath := filepath.Join(dir, "fake-ffprobe")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\ncat "+dataPath+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return scriptPath
}

func TestDefaultProbeValidInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Tools.FFprobe = stubProber(t, `{
		"streams": [{"codec_type": "video", "width": 1280, "height": 720}],
		"format": {"duration": "600.5"}
	}`)
	store := testsupport.MustOpenStore(t, cfg)
	mgr := NewManager(cfg, store, panelByteScanner(), logging.NewNop())

	info, err := mgr.defaultProbe(context.Background(), "/videos/a.mkv")
	if err != nil {
		t.Fatalf("defaultProbe: %v", err)
	}
	if info.Duration != 600.5 || info.Width != 1280 || info.Height != 720 {
		t.Fatalf("info = %+v", info)
	}
}

func TestDefaultProbeRejectsBadMetadata(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			// ffprobe reports "N/A" for containers without a parseable
			// duration; that must not slip through as NaN.
			name: "unparseable duration",
			payload: `{
				"streams": [{"codec_type": "video", "width": 1280, "height": 720}],
				"format": {"duration": "N/A"}
			}`,
		},
		{
			name: "missing duration",
			payload: `{
				"streams": [{"codec_type": "video", "width": 1280, "height": 720}],
				"format": {}
			}`,
		},
		{
			name: "no video stream",
			payload: `{
				"streams": [{"codec_type": "audio"}],
				"format": {"duration": "600.5"}
			}`,
		},
		{
			name: "zero dimensions",
			payload: `{
				"streams": [{"codec_type": "video", "width": 0, "height": 0}],
				"format": {"duration": "600.5"}
			}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			cfg.Tools.FFprobe = stubProber(t, tc.payload)
			store := testsupport.MustOpenStore(t, cfg)
			mgr := NewManager(cfg, store, panelByteScanner(), logging.NewNop())

			_, err := mgr.defaultProbe(context.Background(), "/videos/a.mkv")
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}
