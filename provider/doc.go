// Package provider defines the pluggable model backend abstraction. Each
// pipeline stage (activity detection, recognition, post-processing, speaker
// diarization) is served by a named provider created from config through a
// typed registry, so sidecar-backed and local implementations are
// interchangeable at wiring time.
package provider
