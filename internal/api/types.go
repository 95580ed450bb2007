package api

import (
	"infratrack.io/infratrack/models"
)

// HostsResponse represents a list of hosts.
type HostsResponse struct {
	Count int           `json:"count"`
	Hosts []models.Host `json:"hosts"`
}

// TasksResponse represents a list of tasks.
type TasksResponse struct {
	Count int           `json:"count"`
	Tasks []models.Task `json:"tasks"`
}

// ChangesResponse represents a list of changes.
type ChangesResponse struct {
	Count   int             `json:"count"`
	Changes []models.Change `json:"changes"`
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}
