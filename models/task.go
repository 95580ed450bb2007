package models

import "time"

// Task is a maintenance action performed on a Host.
type Task struct {
	ID          int64     `json:"id" db:"id"`
	HostID      int64     `json:"host_id" db:"host_id"`
	Description string    `json:"description" db:"description"`
	PerformedAt time.Time `json:"performed_at" db:"performed_at"`

	// Hostname of the owning host, filled by listing queries only
	Hostname string `json:"hostname,omitempty" db:"hostname"`
}

// TaskFields holds the mutable attributes of a Task.
type TaskFields struct {
	HostID      int64
	Description string
}
