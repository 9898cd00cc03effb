package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/dnskeeper/internal/config"
)

// configSetters maps the keys "config set" accepts to a parser that
// returns the change to apply.
var configSetters = map[string]func(string) (func(*config.Config), error){
	"log_level":  stringSetter(func(c *config.Config) *string { return &c.LogLevel }),
	"store_path": stringSetter(func(c *config.Config) *string { return &c.StorePath }),
	"api.listen": stringSetter(func(c *config.Config) *string { return &c.API.Listen }),
	"probe.name": stringSetter(func(c *config.Config) *string { return &c.Probe.Name }),
	"monitor.flush_cache": boolSetter(func(c *config.Config) *bool { return &c.Monitor.FlushCache }),
	"tray.enabled":        boolSetter(func(c *config.Config) *bool { return &c.Tray.Enabled }),
}

func stringSetter(field func(*config.Config) *string) func(string) (func(*config.Config), error) {
	return func(v string) (func(*config.Config), error) {
		return func(c *config.Config) { *field(c) = v }, nil
	}
}

func boolSetter(field func(*config.Config) *bool) func(string) (func(*config.Config), error) {
	return func(v string) (func(*config.Config), error) {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		return func(c *config.Config) { *field(c) = b }, nil
	}
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := config.NewManager(configPath())
			if err := mgr.Load(); err != nil {
				return err
			}
			format := outputFormat
			if format == "table" {
				format = "yaml"
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", mgr.Path())
			_, err := printStructured(cmd.OutOrStdout(), format, mgr.Get())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting; the daemon picks it up on restart",
		Long:      "Change one setting. Keys: " + strings.Join(configKeys(), ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			parse, ok := configSetters[args[0]]
			if !ok {
				return fmt.Errorf("unknown key %q (one of: %s)", args[0], strings.Join(configKeys(), ", "))
			}
			change, err := parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", args[0], err)
			}

			mgr := config.NewManager(configPath())
			if err := mgr.Load(); err != nil {
				return err
			}
			if err := mgr.Update(change); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}
