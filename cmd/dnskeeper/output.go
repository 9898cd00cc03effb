package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/user/dnskeeper/internal/api"
	"github.com/user/dnskeeper/internal/dnstask"
	"github.com/user/dnskeeper/internal/netinfo"
)

// printStructured writes v as JSON or YAML. It returns false for the table
// format, leaving rendering to the caller.
func printStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func newTable(w io.Writer, header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	row := make(table.Row, len(header))
	for i, h := range header {
		row[i] = text.FgHiCyan.Sprint(h)
	}
	t.AppendHeader(row)
	return t
}

func emptyMessage(w io.Writer, msg string) {
	fmt.Fprintln(w, text.FgYellow.Sprint(msg))
}

func joinDNS(servers []string) string {
	if len(servers) == 0 {
		return "-"
	}
	return strings.Join(servers, ", ")
}

func colorState(s dnstask.State) string {
	switch s {
	case dnstask.StateMatched, dnstask.StateApplied:
		return text.FgGreen.Sprint(s)
	case dnstask.StateRunning:
		return text.FgYellow.Sprint(s)
	case dnstask.StateDNSMismatch:
		return text.FgRed.Sprint(s)
	default:
		return text.FgHiBlack.Sprint(s)
	}
}

func renderTasks(w io.Writer, tasks []dnstask.Task) {
	if len(tasks) == 0 {
		emptyMessage(w, "No tasks configured")
		return
	}
	t := newTable(w, "ID", "NAME", "PATTERN", "TARGET DNS", "ENABLED", "INTERVAL", "CREATED")
	for _, task := range tasks {
		t.AppendRow(table.Row{
			task.ID,
			task.Name,
			task.InterfacePattern,
			joinDNS(task.TargetDNS),
			task.Enabled,
			task.Every().String(),
			humanize.Time(time.Unix(task.CreatedAt, 0)),
		})
	}
	t.Render()
}

func renderStatuses(w io.Writer, statuses []dnstask.TaskStatus) {
	if len(statuses) == 0 {
		emptyMessage(w, "No statuses yet (is monitoring running?)")
		return
	}
	t := newTable(w, "TASK", "INTERFACE", "STATUS", "CURRENT DNS", "TARGET DNS", "LAST CHECK", "MESSAGE")
	for _, st := range statuses {
		t.AppendRow(table.Row{
			st.TaskName,
			st.InterfaceName,
			colorState(st.Status),
			joinDNS(st.CurrentDNS),
			joinDNS(st.TargetDNS),
			st.LastCheck,
			st.Message,
		})
	}
	t.Render()
}

func renderLogs(w io.Writer, logs []dnstask.LogEntry) {
	if len(logs) == 0 {
		emptyMessage(w, "Log is empty")
		return
	}
	t := newTable(w, "TIME", "TASK", "MESSAGE")
	for _, e := range logs {
		when := e.Time
		if ts, err := time.ParseInLocation(dnstask.TimeLayout, e.Time, time.Local); err == nil {
			when = fmt.Sprintf("%s (%s)", e.Time, humanize.Time(ts))
		}
		t.AppendRow(table.Row{when, e.TaskName, e.Message})
	}
	t.Render()
}

func renderInterfaces(w io.Writer, ifaces []netinfo.Interface) {
	if len(ifaces) == 0 {
		emptyMessage(w, "No adapters found")
		return
	}
	t := newTable(w, "NAME", "ENABLED", "TYPE", "IPV4", "DNS")
	for _, i := range ifaces {
		t.AppendRow(table.Row{i.Name, i.Enabled, i.Type, joinDNS(i.IPv4), joinDNS(i.DNSServers)})
	}
	t.Render()
}

func renderProbe(w io.Writer, resp api.ProbeResponse) {
	fmt.Fprintf(w, "Probing %s for task %s\n", resp.Name, resp.TaskID)
	t := newTable(w, "SERVER", "RESULT", "RTT", "ANSWERS")
	for _, r := range resp.Results {
		result := text.FgGreen.Sprint(r.Rcode)
		if r.Error != "" {
			result = text.FgRed.Sprint(r.Error)
		} else if !r.OK() {
			result = text.FgYellow.Sprint(r.Rcode)
		}
		t.AppendRow(table.Row{r.Server, result, r.RTT, joinDNS(r.Answers)})
	}
	t.Render()
}
