package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"infratrack.io/infratrack/internal/config"
	"infratrack.io/infratrack/internal/inventory"
	"infratrack.io/infratrack/internal/logging"
)

// NewInventoryCommand returns the Ansible dynamic inventory command. Ansible
// invokes it with --list or --host <name>; anything else it may pass is
// ignored. The command always prints valid JSON on stdout and logs only to
// stderr.
func NewInventoryCommand(use string) *cobra.Command {
	var host, configFile string

	cmd := &cobra.Command{
		Use:   use,
		Short: "Print the Ansible inventory built from Terraform outputs",
		Long: `Query "terraform output -json" and print an Ansible dynamic inventory.

With --host <name> only that host's variables are printed ({} when unknown).
Without arguments the full inventory is printed, as with --list. Terraform
failures produce an empty inventory rather than an error.`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInventory(cmd, configFile, host)
		},
	}

	cmd.Flags().Bool("list", false, "print the full inventory (default mode)")
	cmd.Flags().StringVar(&host, "host", "", "print the variables of one host")
	cmd.Flags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml)")

	return cmd
}

func runInventory(cmd *cobra.Command, configFile, host string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	inv := loadInventory(cmd, configFile, stderr)

	if host != "" {
		return inventory.Write(stdout, inv.HostVarsFor(host))
	}
	return inventory.Write(stdout, inv)
}

func loadInventory(cmd *cobra.Command, configFile string, stderr io.Writer) *inventory.Inventory {
	c, err := config.Load(configFile)
	if err != nil {
		logging.NewWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, stderr).
			Warn("configuration unavailable, emitting empty inventory", "error", err)
		return inventory.Empty()
	}

	// stdout carries the inventory document, so logs always go to stderr.
	logCfg := c.Logging
	logCfg.Format = "text"
	logger := logging.NewWithWriter(logCfg, stderr).With(slog.String("component", "inventory"))

	src := inventory.TerraformSource{
		Bin:     c.Inventory.TerraformBin,
		Dir:     c.Inventory.TerraformDir,
		Timeout: c.Inventory.Timeout,
	}
	settings := inventory.Settings{
		HostName: c.Inventory.HostName,
		SSHUser:  c.Inventory.SSHUser,
		SSHKey:   c.Inventory.SSHKey,
	}

	return inventory.Build(cmd.Context(), src, settings, logger)
}
