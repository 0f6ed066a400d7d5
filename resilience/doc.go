// Package resilience provides retry with exponential backoff for calls to
// model sidecars and remote audio fetches.
package resilience
