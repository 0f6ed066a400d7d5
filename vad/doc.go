// Package vad defines voice activity detection: splitting normalized audio
// into speech spans that downstream recognition consumes. Backends register
// through the provider registry; the fsmn sidecar is the production
// detector and energy is a dependency-free local fallback.
package vad
