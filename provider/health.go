package provider

import "context"

// Status represents the readiness of a model backend.
type Status int

const (
	// StatusReady indicates the backend is loaded and serving.
	StatusReady Status = iota
	// StatusLoading indicates the backend is still loading its model.
	StatusLoading
	// StatusError indicates the backend failed to load or is unreachable.
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// HealthStatus contains detailed readiness information for a backend.
type HealthStatus struct {
	// Status is the overall readiness state.
	Status Status
	// Message is a human-readable description of the state.
	Message string
	// Details contains additional metadata (device, model name, latency).
	Details map[string]any
}

// HealthChecker is optionally implemented by providers that can report
// detailed readiness beyond the simple IsAvailable() bool check.
type HealthChecker interface {
	Health(ctx context.Context) HealthStatus
}
