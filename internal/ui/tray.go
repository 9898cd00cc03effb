// Package ui provides the system tray shell for dnskeeper.
package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/systray"

	"github.com/user/dnskeeper/internal/dnstask"
	"github.com/user/dnskeeper/internal/logger"
)

var log = logger.For("ui")

// Tray shows the monitor's state and lets the user start and stop it.
type Tray struct {
	mon     *dnstask.Monitor
	refresh time.Duration
	onQuit  func()

	mStatus *systray.MenuItem
	mStart  *systray.MenuItem
	mStop   *systray.MenuItem
	mLogs   *systray.MenuItem
	mQuit   *systray.MenuItem
	shown   string
}

// NewTray creates a tray for mon. onQuit runs when the user picks Quit.
func NewTray(mon *dnstask.Monitor, onQuit func()) *Tray {
	return &Tray{mon: mon, refresh: time.Second, onQuit: onQuit}
}

// Run shows the tray and blocks until ctx is done or the user quits. It must
// be called from the main goroutine.
func (t *Tray) Run(ctx context.Context) {
	logger.SafeGo("tray-quit", func() {
		<-ctx.Done()
		systray.Quit()
	})
	systray.Run(func() { t.onReady(ctx) }, func() {
		log.Info("Tray closed")
	})
}

func (t *Tray) onReady(ctx context.Context) {
	systray.SetIcon(GetIcon(levelIdle))
	systray.SetTitle("dnskeeper")
	systray.SetTooltip("dnskeeper")

	t.mStatus = systray.AddMenuItem("Status: stopped", "")
	t.mStatus.Disable()
	systray.AddSeparator()
	t.mStart = systray.AddMenuItem("Start monitoring", "")
	t.mStop = systray.AddMenuItem("Stop monitoring", "")
	systray.AddSeparator()
	t.mLogs = systray.AddMenuItem("Open log file", "")
	t.mQuit = systray.AddMenuItem("Quit", "")

	t.update()

	go func() {
		defer logger.Recover("tray-menu-loop")
		ticker := time.NewTicker(t.refresh)
		defer ticker.Stop()

		for {
			select {
			case <-t.mStart.ClickedCh:
				if err := t.mon.Start(); err != nil {
					log.WithError(err).Warn("Start from tray failed")
				}
				t.update()
			case <-t.mStop.ClickedCh:
				t.mon.Stop()
				t.update()
			case <-t.mLogs.ClickedCh:
				openLogFile()
			case <-t.mQuit.ClickedCh:
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			case <-ticker.C:
				t.update()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (t *Tray) update() {
	defer logger.Recover("tray-update")

	running := t.mon.Running()
	level, summary := Summarize(t.mon.Registry().Statuses(), running)

	t.mStatus.SetTitle("Status: " + summary)
	systray.SetTooltip("dnskeeper: " + summary)
	if running {
		t.mStart.Disable()
		t.mStop.Enable()
	} else {
		t.mStart.Enable()
		t.mStop.Disable()
	}

	if level != t.shown {
		systray.SetIcon(GetIcon(level))
		t.shown = level
	}
}

const (
	levelIdle  = "idle"
	levelOK    = "ok"
	levelWork  = "working"
	levelError = "error"
)

// Summarize folds the statuses into an icon level and a one-line summary.
func Summarize(statuses []dnstask.TaskStatus, running bool) (string, string) {
	if !running {
		return levelIdle, "stopped"
	}

	var ok, waiting, failing int
	for _, st := range statuses {
		switch st.Status {
		case dnstask.StateMatched, dnstask.StateApplied:
			ok++
		case dnstask.StateRunning:
			waiting++
		case dnstask.StateDNSMismatch:
			failing++
		}
	}

	switch {
	case failing > 0:
		return levelError, fmt.Sprintf("%d mismatched, %d ok", failing, ok)
	case ok+waiting == 0:
		return levelWork, "running, no adapters matched"
	case waiting > 0:
		return levelWork, fmt.Sprintf("%d ok, %d waiting", ok, waiting)
	default:
		return levelOK, fmt.Sprintf("%d ok", ok)
	}
}
