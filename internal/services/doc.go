// Package services defines shared error classification for components that
// talk to external tools (ffmpeg, ffprobe, OpenCV image decode).
//
// Components wrap failures with a sentinel marker via Wrap so callers can
// classify errors with errors.Is without parsing message text. The workflow
// manager uses the classification to decide whether a queue item failed for
// good or merely produced no usable input.
package services
