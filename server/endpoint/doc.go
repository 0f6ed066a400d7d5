// Package endpoint provides standard HTTP handlers for health, model
// inventory, service info, and runtime metrics.
package endpoint
