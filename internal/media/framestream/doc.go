// Package framestream exposes a video as a lazy, pull-based sequence of
// decoded frames with presentation timestamps.
//
// A Source wraps an ffmpeg rawvideo pipe emitting BGR24 frames at a fixed
// sample rate. The consumer pulls at its own cadence; nothing is buffered
// beyond the single in-flight frame, so peak memory stays bounded regardless
// of source size. Cancelling the context kills the decoder and ends the
// sequence instead of yielding further frames.
package framestream
