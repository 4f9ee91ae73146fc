// Command paneltrim detects a calibrated on-screen panel overlay in queued
// videos and produces keep-range manifests and trimmed renders.
package main
