package models

import "time"

// Host represents a managed machine tracked by InfraTrack.
//
// A Host exclusively owns its Tasks and Changes: deleting the host removes
// every Task and Change that references it.
//
// Example:
//
//	{
//	  "id": 1,
//	  "hostname": "web-01",
//	  "ip_address": "10.0.0.1",
//	  "os": "Ubuntu 24.04",
//	  "tags": "web, prod",
//	  "created_at": "2026-10-17T09:00:00Z"
//	}
type Host struct {
	// ID is assigned by the database on creation and never changes
	ID int64 `json:"id" db:"id"`

	// Hostname is a single DNS label (required)
	Hostname string `json:"hostname" db:"hostname"`

	// IPAddress is an IPv4 or IPv6 literal (required)
	IPAddress string `json:"ip_address" db:"ip_address"`

	// OS is a free-form operating system label (optional)
	OS string `json:"os,omitempty" db:"os"`

	// Tags is a comma-separated tag list (optional)
	Tags string `json:"tags,omitempty" db:"tags"`

	// CreatedAt is set once, in UTC, when the host is created
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TagList returns the host's tags split on commas, trimmed, without empty entries.
func (h Host) TagList() []string {
	return SplitTags(h.Tags)
}

// HostFields holds the mutable attributes of a Host.
// It is the normalized output of host validation and the input of
// create and update operations.
type HostFields struct {
	Hostname  string
	IPAddress string
	OS        string
	Tags      string
}

// HostChoice is one entry of a host selection dropdown.
type HostChoice struct {
	ID       int64  `json:"id" db:"id"`
	Hostname string `json:"hostname" db:"hostname"`
}
