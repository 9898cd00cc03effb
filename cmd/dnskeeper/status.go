package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the result of the last reconciliation cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			st, err := c.Monitor(cmd.Context())
			if err != nil {
				return err
			}
			statuses, err := c.Statuses(cmd.Context())
			if err != nil {
				return err
			}
			if done, err := printStructured(cmd.OutOrStdout(), outputFormat, statuses); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Monitoring: %s\n", runningLabel(st.Running))
			renderStatuses(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
}

func newLogsCmd() *cobra.Command {
	var clearLog bool
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent DNS enforcement attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if clearLog {
				if err := c.ClearLogs(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Log cleared")
				return nil
			}
			logs, err := c.Logs(cmd.Context())
			if err != nil {
				return err
			}
			if done, err := printStructured(cmd.OutOrStdout(), outputFormat, logs); done {
				return err
			}
			renderLogs(cmd.OutOrStdout(), logs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearLog, "clear", false, "clear the log instead of printing it")
	return cmd
}

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start, stop or query DNS monitoring",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start monitoring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := newClient().StartMonitor(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Monitoring started")
				return nil
			},
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop monitoring",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := newClient().StopMonitor(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Monitoring stopped")
				return nil
			},
		},
		&cobra.Command{
			Use:   "state",
			Short: "Print whether monitoring is running",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := newClient().Monitor(cmd.Context())
				if err != nil {
					return err
				}
				if done, err := printStructured(cmd.OutOrStdout(), outputFormat, st); done {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), runningLabel(st.Running))
				return nil
			},
		},
	)
	return cmd
}

func newInterfacesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interfaces",
		Aliases: []string{"if", "adapters"},
		Short:   "List network adapters and their DNS servers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ifaces, err := newClient().Interfaces(cmd.Context())
			if err != nil {
				return err
			}
			if done, err := printStructured(cmd.OutOrStdout(), outputFormat, ifaces); done {
				return err
			}
			renderInterfaces(cmd.OutOrStdout(), ifaces)
			return nil
		},
	}
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <task-id>",
		Short: "Check that a task's DNS servers answer queries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().ProbeTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if done, err := printStructured(cmd.OutOrStdout(), outputFormat, resp); done {
				return err
			}
			renderProbe(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func runningLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
