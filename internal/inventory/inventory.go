// Package inventory builds an Ansible dynamic inventory from Terraform
// outputs.
//
// The provisioned instance is described by two Terraform outputs:
// instance_public_ip (required) and instance_public_dns (optional). When an
// address is present the inventory holds a single host, listed in both the
// "all" and "web" groups. Any failure to obtain or read the outputs yields an
// inventory with zero hosts rather than an error, so Ansible always receives
// a well-formed document.
package inventory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"infratrack.io/infratrack/internal/metrics"
)

// Terraform output names read by Build.
const (
	OutputPublicIP  = "instance_public_ip"
	OutputPublicDNS = "instance_public_dns"
)

// Build outcomes, also used as metric labels.
const (
	OutcomeHosts    = "hosts"
	OutcomeEmpty    = "empty"
	OutcomeDegraded = "degraded"
)

// Settings are the connection parameters attached to a generated host.
type Settings struct {
	// HostName is the inventory name of the instance
	HostName string

	// SSHUser becomes ansible_user
	SSHUser string

	// SSHKey becomes ansible_ssh_private_key_file; a leading ~ is expanded
	SSHKey string
}

// HostVars are the per-host variables Ansible reads from _meta.hostvars.
type HostVars struct {
	AnsibleHost       string `json:"ansible_host"`
	AnsibleUser       string `json:"ansible_user"`
	SSHPrivateKeyFile string `json:"ansible_ssh_private_key_file"`
	PublicDNS         string `json:"public_dns,omitempty"`
}

// Inventory is the document printed for --list.
type Inventory struct {
	Meta Meta     `json:"_meta"`
	All  AllGroup `json:"all"`
	Web  Group    `json:"web"`
}

// Meta carries host variables so Ansible can skip per-host --host calls.
type Meta struct {
	HostVars map[string]HostVars `json:"hostvars"`
}

// AllGroup is the implicit group containing every host.
type AllGroup struct {
	Hosts []string       `json:"hosts"`
	Vars  map[string]any `json:"vars"`
}

// Group is a named host group.
type Group struct {
	Hosts []string `json:"hosts"`
}

// Empty returns an inventory with zero hosts.
func Empty() *Inventory {
	return &Inventory{
		Meta: Meta{HostVars: map[string]HostVars{}},
		All:  AllGroup{Hosts: []string{}, Vars: map[string]any{}},
		Web:  Group{Hosts: []string{}},
	}
}

// Build queries src and assembles the inventory. It never fails: problems
// are logged and produce an empty inventory.
func Build(ctx context.Context, src Source, s Settings, logger *slog.Logger) *Inventory {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	outputs, err := src.Outputs(ctx)
	if err != nil {
		logger.Warn("terraform outputs unavailable, emitting empty inventory", "error", err)
		metrics.ObserveInventoryBuild(OutcomeDegraded)
		return Empty()
	}

	ip := outputs.String(OutputPublicIP)
	if ip == "" {
		logger.Info("no public ip in terraform outputs, emitting empty inventory")
		metrics.ObserveInventoryBuild(OutcomeEmpty)
		return Empty()
	}

	vars := HostVars{
		AnsibleHost:       ip,
		AnsibleUser:       s.SSHUser,
		SSHPrivateKeyFile: ExpandHome(s.SSHKey),
		PublicDNS:         outputs.String(OutputPublicDNS),
	}

	inv := Empty()
	inv.Meta.HostVars[s.HostName] = vars
	inv.All.Hosts = append(inv.All.Hosts, s.HostName)
	inv.Web.Hosts = append(inv.Web.Hosts, s.HostName)

	logger.Debug("inventory built", "host", s.HostName, "ansible_host", ip)
	metrics.ObserveInventoryBuild(OutcomeHosts)
	return inv
}

// HostVarsFor returns the variables for name, or an empty object for an
// unknown host.
func (inv *Inventory) HostVarsFor(name string) any {
	if vars, ok := inv.Meta.HostVars[name]; ok {
		return vars
	}
	return struct{}{}
}

// Write encodes v as a single line of JSON.
func Write(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
