// Package infratrack is a small infrastructure inventory tracker.
//
// # Overview
//
// InfraTrack records the machines an operator manages (Hosts), the
// maintenance performed on them (Tasks) and a log of modifications (Changes).
// Records are managed through a server-rendered web UI with anti-forgery
// protected forms. A companion command turns Terraform outputs into an
// Ansible dynamic inventory.
//
//	┌─────────────────┐        ┌─────────────────────┐
//	│   Browser UI    │        │  ansible-playbook   │
//	│ (forms + flash) │        │   -i inventory      │
//	└────────┬────────┘        └──────────┬──────────┘
//	         │                            │
//	┌────────▼────────┐        ┌──────────▼──────────┐
//	│   Web Server    │        │ infratrack-inventory│
//	│  (Echo + CSRF)  │        │  (terraform output) │
//	└────────┬────────┘        └─────────────────────┘
//	         │
//	┌────────▼────────┐
//	│  Storage Layer  │
//	│ (SQLite / PG)   │
//	└─────────────────┘
//
// # Usage
//
// Start the web server:
//
//	infratrack server --config config.yaml
//
// Print the Ansible inventory:
//
//	infratrack-inventory --list
//	infratrack-inventory --host infratrack
//
// Write a starter configuration:
//
//	infratrack config init
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml)
//   - Environment variables (INFRATRACK_ prefix)
//   - SECRET_KEY, DATABASE_URL, ANSIBLE_SSH_USER, ANSIBLE_SSH_KEY, TERRAFORM_BIN
//   - .env file
//
// Example configuration:
//
//	environment: production
//	server:
//	  host: 0.0.0.0
//	  port: 5000
//	database:
//	  url: postgres://infratrack:secret@db/infratrack?sslmode=disable
//	security:
//	  secret_key: change-me
//	inventory:
//	  terraform_dir: infra/terraform
//
// # Endpoints
//
// Web UI (GET displays, POST mutates, every POST carries csrf_token):
//   - /                                  - Landing page with hosts and totals
//   - /hosts, /hosts/add, /hosts/edit/:id, /hosts/delete/:id
//   - /tasks, /tasks/add, /tasks/edit/:id, /tasks/delete/:id
//   - /changes, /changes/add, /changes/edit/:id, /changes/delete/:id
//
// Read-only JSON API:
//   - GET /api/v1/hosts                  - List hosts
//   - GET /api/v1/hosts/:id              - Get host by ID
//   - GET /api/v1/tasks                  - List tasks
//   - GET /api/v1/changes                - List changes
//   - GET /api/v1/stats                  - Record totals
//
// Operations:
//   - GET /health                        - Database health check
//   - GET /metrics                       - Prometheus metrics
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binaries:
//
//	go build -o infratrack ./cmd/infratrack
//	go build -o infratrack-inventory ./cmd/infratrack-inventory
package infratrack
