package types

import "time"

// HealthStatus represents the overall admin server health
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	StartTime time.Time         `json:"start_time"`
	Uptime    string            `json:"uptime"`
	Details   []ComponentStatus `json:"details,omitempty"`
}

// ComponentStatus represents individual component status
type ComponentStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}
