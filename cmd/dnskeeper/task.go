package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/user/dnskeeper/internal/api"
	"github.com/user/dnskeeper/internal/dnstask"
)

type taskFlags struct {
	name     string
	pattern  string
	dns      []string
	interval uint64
	disabled bool
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "display name")
	fs.StringVar(&f.pattern, "pattern", "", "adapter name pattern, '*' matches any run of characters")
	fs.StringSliceVar(&f.dns, "dns", nil, "target DNS servers, comma separated or repeated")
	fs.Uint64Var(&f.interval, "interval", 1, "minimum seconds between enforcement attempts")
	fs.BoolVar(&f.disabled, "disabled", false, "create or set the task as disabled")
}

// merge builds an update request from base, overriding only the flags the
// user set.
func (f *taskFlags) merge(fs *pflag.FlagSet, base dnstask.Task) api.TaskRequest {
	req := api.TaskRequest{
		Name:             base.Name,
		InterfacePattern: base.InterfacePattern,
		TargetDNS:        base.TargetDNS,
		Interval:         base.Interval,
	}
	enabled := base.Enabled

	if fs.Changed("name") {
		req.Name = f.name
	}
	if fs.Changed("pattern") {
		req.InterfacePattern = f.pattern
	}
	if fs.Changed("dns") {
		req.TargetDNS = f.dns
	}
	if fs.Changed("interval") {
		req.Interval = f.interval
	}
	if fs.Changed("disabled") {
		enabled = !f.disabled
	}
	req.Enabled = &enabled
	return req
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage DNS tasks",
	}
	cmd.AddCommand(newTaskListCmd(), newTaskAddCmd(), newTaskUpdateCmd(), newTaskRemoveCmd())
	return cmd
}

func newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := newClient().ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			if done, err := printStructured(cmd.OutOrStdout(), outputFormat, tasks); done {
				return err
			}
			renderTasks(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
}

func newTaskAddCmd() *cobra.Command {
	f := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Example: `  dnskeeper task add --name office --pattern "Ethernet*" --dns 1.1.1.1,1.0.0.1
  dnskeeper task add --name lab --pattern eth0 --dns 10.0.0.53 --interval 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled := !f.disabled
			resp, err := newClient().CreateTask(cmd.Context(), api.TaskRequest{
				Name:             f.name,
				InterfacePattern: f.pattern,
				TargetDNS:        f.dns,
				Enabled:          &enabled,
				Interval:         f.interval,
			})
			if err != nil {
				return err
			}
			return printTaskResult(cmd, "Added", resp)
		},
	}
	f.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("dns")
	return cmd
}

func newTaskUpdateCmd() *cobra.Command {
	f := &taskFlags{}
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change a task; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			current, err := c.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp, err := c.UpdateTask(cmd.Context(), args[0], f.merge(cmd.Flags(), current))
			if err != nil {
				return err
			}
			return printTaskResult(cmd, "Updated", resp)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newTaskRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			warning, err := newClient().RemoveTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed task %s\n", args[0])
			return nil
		},
	}
}

func printTaskResult(cmd *cobra.Command, verb string, resp api.TaskResponse) error {
	if done, err := printStructured(cmd.OutOrStdout(), outputFormat, resp); done {
		return err
	}
	if resp.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", resp.Warning)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s task %s\n", verb, resp.ID)
	renderTasks(cmd.OutOrStdout(), []dnstask.Task{resp.Task})
	return nil
}
