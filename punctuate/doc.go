// Package punctuate defines whole-transcript text post-processing: filler
// removal, repetition collapse, and inverse text normalization. Failures
// here degrade gracefully; the pipeline falls back to the raw transcript.
package punctuate
