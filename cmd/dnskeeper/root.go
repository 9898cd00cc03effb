package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/dnskeeper/internal/api"
	"github.com/user/dnskeeper/internal/config"
)

var (
	configFile   string
	apiAddr      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "dnskeeper",
	Short: "Keep network adapters on their declared DNS servers",
	Long: `dnskeeper watches network adapters whose names match a task's pattern
and re-applies the task's DNS servers whenever they drift.

Run "dnskeeper run" as an administrator to start the daemon, then manage
tasks with the other commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch outputFormat {
		case "table", "json", "yaml":
			return nil
		}
		return fmt.Errorf("unsupported output format %q (table, json, yaml)", outputFormat)
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is config.yaml next to the executable)")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "", "daemon API address (default is api.listen from the config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newMonitorCmd())
	rootCmd.AddCommand(newInterfacesCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newConfigCmd())
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.GetConfigPath()
}

// newClient connects to the daemon named by --api, falling back to the
// listen address in the config file.
func newClient() *api.Client {
	if apiAddr != "" {
		return api.NewClient(apiAddr)
	}
	mgr := config.NewManager(configPath())
	if err := mgr.Load(); err != nil {
		return api.NewClient(config.DefaultConfig().API.Listen)
	}
	return api.NewClient(mgr.Get().API.Listen)
}
