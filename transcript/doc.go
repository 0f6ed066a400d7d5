// Package transcript defines the canonical transcription result model and
// the pure operations on it: segment merging, result assembly, processed-text
// re-allocation, and rendering/plain-text export.
//
// Everything in this package is deterministic and free of I/O. The asr
// orchestrator produces a *Result through Merge and Assemble; consumers turn
// it into human-readable output through Render and ToPlainText.
package transcript
