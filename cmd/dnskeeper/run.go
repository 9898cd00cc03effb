package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/dnskeeper/internal/api"
	"github.com/user/dnskeeper/internal/config"
	"github.com/user/dnskeeper/internal/dns"
	"github.com/user/dnskeeper/internal/dnstask"
	"github.com/user/dnskeeper/internal/elevate"
	"github.com/user/dnskeeper/internal/logger"
	"github.com/user/dnskeeper/internal/metrics"
	"github.com/user/dnskeeper/internal/netinfo"
	"github.com/user/dnskeeper/internal/probe"
	"github.com/user/dnskeeper/internal/store"
	"github.com/user/dnskeeper/internal/ui"
)

type runOptions struct {
	elevate bool
	console bool
	tray    bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the DNS monitor daemon",
		Long: `Run loads the task store, restores monitoring if it was enabled when the
daemon last exited, and serves the local API until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("tray") {
				opts.tray = trayDefault()
			}
			return runDaemon(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.elevate, "elevate", false, "relaunch with administrator rights when not already elevated")
	cmd.Flags().BoolVar(&opts.console, "console", true, "mirror log output to stdout")
	cmd.Flags().BoolVar(&opts.tray, "tray", false, "show the system tray icon (default from tray.enabled)")
	return cmd
}

func trayDefault() bool {
	mgr := config.NewManager(configPath())
	if err := mgr.Load(); err != nil {
		return false
	}
	return mgr.Get().Tray.Enabled
}

func runDaemon(parent context.Context, opts *runOptions) error {
	if !elevate.IsAdmin() && opts.elevate {
		return elevate.RunAsAdmin()
	}

	mgr := config.NewManager(configPath())
	if err := mgr.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	cfg := mgr.Get()

	if err := logger.Init(cfg.LogLevel, opts.console); err != nil {
		return errors.Wrap(err, "failed to initialise logging")
	}
	defer logger.Close()
	log := logger.For("daemon")
	log.Infof("dnskeeper starting (config %s, log %s)", mgr.Path(), logger.GetLogPath())

	if err := elevate.Require(); err != nil {
		log.WithError(err).Warn("Running unprivileged, applying DNS will fail")
	}

	reg := dnstask.NewRegistry(nil)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(promReg, func() int { return len(reg.List()) })

	dnsMgr := dns.NewManager()
	monOpts := dnstask.Options{
		PollInterval: cfg.Monitor.PollInterval.Std(),
		ErrorBackoff: cfg.Monitor.ErrorBackoff.Std(),
		RestoreDelay: cfg.Monitor.RestoreDelay.Std(),
		Recorder:     recorder,
	}
	if cfg.Monitor.FlushCache {
		monOpts.Flusher = dnsMgr
	}
	adapters := netinfo.NewLister()
	mon := dnstask.NewMonitor(reg, adapters, dnsMgr, monOpts)

	storePath := config.ResolveStorePath(cfg, mgr.Path())
	log.Infof("Task store: %s", storePath)
	mon.Init(store.Opener(storePath))

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(api.Deps{
		Monitor:        mon,
		Adapters:       adapters,
		Prober:         probe.New(cfg.Probe.Name, cfg.Probe.Timeout.Std()),
		Gatherer:       promReg,
		RateLimitRPS:   cfg.API.RateLimitRPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
		NewID:          uuid.NewString,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.NewServer(cfg.API.Listen, handler).Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Close keeps the persisted flag so the next start restores it.
		if err := mon.Close(closeCtx); err != nil {
			return errors.Wrap(err, "monitor did not stop in time")
		}
		return nil
	})

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.WithError(err).Warn("Failed to notify systemd")
	} else if ok {
		log.Debug("Notified systemd of readiness")
	}

	if opts.tray {
		ui.NewTray(mon, stop).Run(gctx)
	}

	err := g.Wait()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	log.Info("dnskeeper stopped")
	return err
}
