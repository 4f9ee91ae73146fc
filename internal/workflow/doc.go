// Package workflow drives queued videos through the panel scan pipeline.
//
// The Manager claims pending queue items one at a time, probes each video,
// pulls decoded frames from the sampling decoder, classifies them against the
// calibrated panel profile, and persists the aggregated detection ranges and
// complementary keep ranges. Items are strictly sequential; a failure on one
// item never stops the rest of the batch.
package workflow
