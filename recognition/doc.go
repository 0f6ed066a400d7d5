// Package recognition defines speech-to-text over a single audio span.
// The orchestrator fans spans out to a Provider; the funasr subpackage is
// the production sidecar backend.
package recognition
