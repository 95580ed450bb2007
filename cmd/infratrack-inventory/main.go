// Command infratrack-inventory is an Ansible dynamic inventory script backed
// by Terraform outputs:
//
//	ansible-playbook -i infratrack-inventory site.yml
package main

import (
	"fmt"
	"os"

	"infratrack.io/infratrack/internal/commands"
)

func main() {
	if err := commands.NewInventoryCommand("infratrack-inventory").Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
