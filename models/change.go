package models

import "time"

// Change is a logged modification associated with a Host.
type Change struct {
	ID        int64     `json:"id" db:"id"`
	HostID    int64     `json:"host_id" db:"host_id"`
	Summary   string    `json:"summary" db:"summary"`
	ChangedAt time.Time `json:"changed_at" db:"changed_at"`

	// Hostname of the owning host, filled by listing queries only
	Hostname string `json:"hostname,omitempty" db:"hostname"`
}

// ChangeFields holds the mutable attributes of a Change.
type ChangeFields struct {
	HostID  int64
	Summary string
}
