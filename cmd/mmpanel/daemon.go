package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mmpanel/internal/daemon"
	"github.com/1broseidon/mmpanel/internal/hotkeys"
	"github.com/1broseidon/mmpanel/internal/indicators"
	"github.com/1broseidon/mmpanel/internal/ipc"
	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/ui"
	"github.com/1broseidon/mmpanel/internal/x11"
)

var daemonOpts struct {
	headless   bool
	monitors   []string
	primary    int
	workspaces int
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the panel daemon in the foreground",
	Long: `Run the panel daemon in the foreground.

With --headless no display is opened: the monitors given by --monitors are
simulated and panels exist only in memory. This is useful to exercise the
socket API and the settings file without an X server.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	f := daemonCmd.Flags()
	f.BoolVar(&daemonOpts.headless, "headless", false, "Simulate monitors instead of connecting to X")
	f.StringSliceVar(&daemonOpts.monitors, "monitors", []string{"1920x1080+0+0", "1920x1080+1920+0"},
		"Simulated monitor geometries (WxH+X+Y) for --headless")
	f.IntVar(&daemonOpts.primary, "primary", 0, "Primary monitor index for --headless")
	f.IntVar(&daemonOpts.workspaces, "workspaces", 4, "Workspace count for --headless")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, err := settingsPath()
	if err != nil {
		return err
	}
	store, err := openSettings()
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	logger.Info("settings loaded", "file", path)

	opts := daemon.Options{
		Config:     cfg,
		Settings:   store,
		Logger:     logger,
		LoadConfig: loadConfig,
	}
	var services []daemon.Service

	var backend *x11.Backend
	if daemonOpts.headless {
		topology, err := headlessTopology(daemonOpts.primary, daemonOpts.monitors)
		if err != nil {
			return err
		}
		mem := ui.NewMemorySurfaces()
		opts.Topology = topology
		opts.Workspaces = platform.NewStaticWorkspaces(daemonOpts.workspaces)
		opts.Surfaces = mem
		opts.Corners = mem
		logger.Info("running headless", "monitors", len(topology.Monitors()), "primary", topology.PrimaryIndex())
	} else {
		if cfg.XAuthority != "" {
			os.Setenv("XAUTHORITY", cfg.XAuthority)
		}
		backend, err = x11.NewBackendFromDisplay(cfg.Display, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to display: %w", err)
		}
		opts.Topology = backend.Topology()
		opts.Workspaces = backend.Workspaces()
		opts.Surfaces = backend
		opts.Corners = backend
		services = append(services, backend.Run)
	}

	if cfg.StatusNotifier {
		sni := indicators.NewSNIRegistry(logger)
		opts.Registry = sni
		services = append(services, optional("status notifier registry", sni.Run))
	}

	d := daemon.New(opts)

	if backend != nil {
		handler := hotkeys.NewHandler(backend.Connection())
		if err := handler.Register(cfg.OverviewHotkey, func() { toggleOverview(d) }); err != nil {
			logger.Warn("failed to register overview hotkey", "hotkey", cfg.OverviewHotkey, "error", err)
		} else if cfg.OverviewHotkey != "" {
			logger.Info("overview hotkey registered", "hotkey", cfg.OverviewHotkey)
		}
		defer handler.Unregister()
	}

	server, err := ipc.NewServer(d)
	if err != nil {
		return err
	}

	services = append(services,
		func(ctx context.Context) error { return store.Watch(ctx, d.Post) },
		server.Serve,
		reloadOnHangup(d),
	)

	logger.Info("mmpanel daemon started", "version", version, "socket", server.SocketPath())
	err = d.Run(ctx, services...)
	logger.Info("mmpanel daemon stopped")
	return err
}

// toggleOverview runs on the X event goroutine and hands over to the loop.
func toggleOverview(d *daemon.Daemon) {
	d.Post(func() {
		if !d.Enabled() {
			return
		}
		if c := d.Context(); c != nil {
			c.Overview.Toggle()
		}
	})
}

func headlessTopology(primary int, geometries []string) (*platform.StaticTopology, error) {
	if len(geometries) == 0 {
		return nil, fmt.Errorf("--headless needs at least one monitor")
	}
	bounds := make([]platform.Rect, 0, len(geometries))
	for _, g := range geometries {
		r, err := platform.ParseGeometry(g)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, r)
	}
	if primary < 0 || primary >= len(bounds) {
		return nil, fmt.Errorf("--primary %d out of range (have %d monitors)", primary, len(bounds))
	}
	return platform.NewStaticTopology(primary, bounds...), nil
}

// optional keeps the daemon running when svc cannot start, e.g. without a
// session bus.
func optional(name string, svc daemon.Service) daemon.Service {
	return func(ctx context.Context) error {
		if err := svc(ctx); err != nil {
			logger.Warn(name+" unavailable", "error", err)
			<-ctx.Done()
		}
		return nil
	}
}

func reloadOnHangup(d *daemon.Daemon) daemon.Service {
	return func(ctx context.Context) error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				logger.Info("SIGHUP received, reloading")
				if err := d.Reload(ctx); err != nil {
					logger.Error("reload failed", "error", err)
				}
			}
		}
	}
}
