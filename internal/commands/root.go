package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"infratrack.io/infratrack/internal/config"
	"infratrack.io/infratrack/internal/version"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	cfg       *config.Config
	cfgErr    error
)

var rootCmd = &cobra.Command{
	Use:   "infratrack",
	Short: "Track hosts, maintenance tasks and changes",
	Long: `InfraTrack records the machines you manage, the maintenance tasks
performed on them and a log of changes, through a small web UI.

It also ships an Ansible dynamic inventory built from Terraform outputs.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version.Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	versionCmd.Flags().BoolP("verbose", "v", false, "show build details")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(NewInventoryCommand("inventory"))
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

// initConfig loads configuration once flags are parsed. A load failure is
// kept in cfgErr for the commands that need configuration to report.
func initConfig() {
	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		return
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
}

// requireConfig returns the loaded configuration or the load error.
func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("error loading config: %w", cfgErr)
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, info.String())

		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			fmt.Fprintf(out, "\nDetails:\n")
			fmt.Fprintf(out, "  Version:    %s\n", info.Version)
			fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  Built:      %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Platform:   %s\n", info.Platform)
		}
	},
}
