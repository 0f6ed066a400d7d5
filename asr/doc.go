// Package asr orchestrates the transcription pipeline: input preparation,
// voice activity detection, per-span recognition fan-out, text
// post-processing, speaker attribution, and segment merging into the
// canonical transcript result.
package asr
