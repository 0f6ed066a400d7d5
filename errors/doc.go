// Package errors provides unified error handling for the asrd service.
// It implements a structured error type with machine-readable codes, HTTP
// status mapping, and retryable detection. Pipeline stages classify their
// failures with these codes so the HTTP layer can map them mechanically.
package errors
