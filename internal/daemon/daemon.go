package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/mmpanel/internal/config"
	"github.com/1broseidon/mmpanel/internal/indicators"
	"github.com/1broseidon/mmpanel/internal/overview"
	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/shell"
	"github.com/1broseidon/mmpanel/internal/ui"
)

// Service is a long-running task supervised next to the event loop. It must
// return once ctx is done.
type Service func(ctx context.Context) error

// Options wires the daemon to its environment.
type Options struct {
	Config     *config.Config
	Settings   settings.Store
	Topology   platform.Topology
	Workspaces platform.Workspaces
	Surfaces   ui.SurfaceFactory
	Corners    ui.CornerFactory
	// Registry feeds provider indicators into the primary panel. Optional.
	Registry indicators.Registry
	Logger   *slog.Logger
	// LoadConfig re-reads the configuration on Reload. Nil keeps the
	// current configuration.
	LoadConfig func() (*config.Config, error)
}

// Daemon owns one enable/disable cycle of the panel subsystem at a time.
// Apart from Post, Call and Run, its methods must run on the event loop.
type Daemon struct {
	opts    Options
	cfg     *config.Config
	log     *slog.Logger
	loop    *Loop
	started time.Time

	ctx        *shell.Context
	reconciler *shell.PanelReconciler
	controller *indicators.Controller
	corners    *shell.HotCornerReconfigurer
	mirrors    *overview.Manager
	binder     *indicators.Binder

	handlers       []settings.HandlerID
	cancelTopology func()
	enabled        bool
}

func New(opts Options) *Daemon {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	// Defaults outlive a cycle so that settings survive Reload.
	if opts.Settings == nil {
		opts.Settings = settings.NewMemory()
	}
	if opts.Topology == nil {
		opts.Topology = platform.NewStaticTopology(0, platform.Rect{Width: 1920, Height: 1080})
	}
	if opts.Workspaces == nil {
		opts.Workspaces = platform.NewStaticWorkspaces(1)
	}
	if opts.Surfaces == nil || opts.Corners == nil {
		mem := ui.NewMemorySurfaces()
		if opts.Surfaces == nil {
			opts.Surfaces = mem
		}
		if opts.Corners == nil {
			opts.Corners = mem
		}
	}
	d := &Daemon{
		opts:    opts,
		cfg:     opts.Config,
		log:     opts.Logger,
		started: time.Now(),
	}
	d.loop = NewLoop(LoopConfig{
		Interval: opts.Config.ResyncInterval,
		Resync:   d.Resync,
		Logger:   opts.Logger,
	})
	return d
}

// Post queues fn on the event loop.
func (d *Daemon) Post(fn func()) {
	d.loop.Post(fn)
}

// Call runs fn on the event loop and waits for it.
func (d *Daemon) Call(ctx context.Context, fn func() error) error {
	return d.loop.Call(ctx, fn)
}

// Config returns the configuration of the current cycle.
func (d *Daemon) Config() *config.Config {
	return d.cfg
}

// Context returns the shared context of the current cycle, or nil while
// disabled.
func (d *Daemon) Context() *shell.Context {
	return d.ctx
}

// Enabled reports whether a cycle is active.
func (d *Daemon) Enabled() bool {
	return d.enabled
}

// Enable builds the subsystem: settings subscriptions, primary panel,
// panels and indicator transfer, hot corners, then overview mirrors.
func (d *Daemon) Enable() error {
	if d.enabled {
		return nil
	}

	ctx, err := shell.NewContext(shell.Options{
		Settings:   d.opts.Settings,
		Topology:   d.opts.Topology,
		Workspaces: d.opts.Workspaces,
		Surfaces:   d.opts.Surfaces,
		Corners:    d.opts.Corners,
		Config:     d.cfg,
		Logger:     d.log,
		Dispatch:   d.loop.Post,
	})
	if err != nil {
		return fmt.Errorf("failed to build shell context: %w", err)
	}
	d.ctx = ctx
	d.enabled = true

	d.handlers = append(d.handlers,
		ctx.Settings.OnChanged(settings.KeyShowPanel, func(string) { d.syncPanels() }),
		ctx.Settings.OnChanged(settings.KeyShowIndicator, func(string) { d.syncSelfIndicator() }),
		ctx.Settings.OnChanged(settings.KeyEnableHotCorners, func(string) {
			// The installed strategy follows the flag itself.
			if !ctx.Host.HasCornerStrategy() {
				ctx.Host.UpdateHotCorners()
			}
		}),
	)
	d.cancelTopology = ctx.Topology.OnChanged(func() {
		ctx.Dispatch(d.topologyChanged)
	})

	if err := ctx.Host.Realize(); err != nil {
		d.Disable()
		return err
	}
	if d.opts.Registry != nil {
		d.binder = indicators.Bind(ctx, d.opts.Registry)
	}
	d.syncSelfIndicator()
	ctx.Host.UpdateHotCorners()

	d.reconciler = shell.NewPanelReconciler(ctx)
	d.corners = shell.NewHotCornerReconfigurer(ctx)
	d.syncPanels()

	d.mirrors = overview.NewManager(ctx)
	if err := d.mirrors.Enable(); err != nil {
		d.log.Warn("overview mirrors failed", "error", err)
	}

	monitors := ctx.Topology.Monitors()
	d.log.Info("panels enabled",
		"monitors", len(monitors),
		"primary", ctx.Topology.PrimaryIndex(),
		"panels", ctx.Panels.Len(),
		"mirrors", len(d.mirrors.Mirrors()))
	return nil
}

// Disable tears the subsystem down: settings subscriptions first, then
// indicator reverts, panel destruction and hot-corner restoration.
func (d *Daemon) Disable() {
	if !d.enabled {
		return
	}
	ctx := d.ctx
	for _, id := range d.handlers {
		ctx.Settings.Disconnect(id)
	}
	d.handlers = nil
	if d.cancelTopology != nil {
		d.cancelTopology()
		d.cancelTopology = nil
	}
	if d.reconciler != nil {
		d.reconciler.Unsubscribe()
	}

	d.hidePanels()
	d.reconciler = nil
	d.corners = nil

	if d.mirrors != nil {
		d.mirrors.Disable()
		d.mirrors = nil
	}
	if d.binder != nil {
		d.binder.Close()
		d.binder = nil
	}
	ctx.Host.RemoveIndicator(shell.IndicatorSelf)
	ctx.Host.Unrealize()
	ctx.Overview.Hide()

	d.enabled = false
	d.ctx = nil
	d.log.Info("panels disabled")
}

// syncPanels follows show-panel.
func (d *Daemon) syncPanels() {
	if !d.enabled {
		return
	}
	if d.ctx.Settings.Bool(settings.KeyShowPanel) {
		d.showPanels()
	} else {
		d.hidePanels()
	}
}

func (d *Daemon) showPanels() {
	if d.reconciler.Shown() {
		return
	}
	if err := d.reconciler.Show(); err != nil {
		d.log.Warn("panel reconciliation failed", "error", err)
	}
	d.controller = indicators.NewController(d.ctx)
	d.reconciler.SetTransferNotifier(d.controller)
	d.corners.Install()
}

func (d *Daemon) hidePanels() {
	if d.reconciler != nil {
		d.reconciler.Unsubscribe()
	}
	if d.controller != nil {
		d.controller.Destroy()
		d.controller = nil
	}
	if d.reconciler != nil {
		d.reconciler.SetTransferNotifier(nil)
		d.reconciler.Hide()
	}
	if d.corners != nil && d.corners.Installed() {
		d.corners.Uninstall()
	}
}

// syncSelfIndicator follows show-indicator.
func (d *Daemon) syncSelfIndicator() {
	if !d.enabled {
		return
	}
	host := d.ctx.Host
	_, present := host.StatusArea(shell.IndicatorSelf)
	want := d.ctx.Settings.Bool(settings.KeyShowIndicator)
	switch {
	case want && !present:
		if _, err := host.AddIndicator(shell.IndicatorSelf, shell.BoxRight, 0); err != nil {
			d.log.Warn("failed to add indicator", "indicator", shell.IndicatorSelf, "error", err)
		}
	case !want && present:
		host.RemoveIndicator(shell.IndicatorSelf)
	}
}

// topologyChanged moves the primary panel and rebuilds the hot corners.
// Panels and mirrors follow the topology on their own.
func (d *Daemon) topologyChanged() {
	if !d.enabled {
		return
	}
	if err := d.ctx.Host.Relayout(); err != nil {
		d.log.Warn("primary panel relayout failed", "error", err)
	}
	d.ctx.Host.UpdateHotCorners()
}

// Resync is the periodic safety pass: a full reconciliation against the
// current topology followed by re-applying the mapping.
func (d *Daemon) Resync() {
	if !d.enabled {
		return
	}
	if d.reconciler.Shown() {
		res, err := d.reconciler.Sync()
		if err != nil {
			d.log.Warn("resync: panel reconciliation failed", "error", err)
		} else if res.Changed() {
			d.log.Info("resync: panels drifted", "created", res.Created, "updated", res.Updated, "removed", res.Removed)
		}
	}
	if d.controller != nil {
		d.controller.ApplyMapping()
	}
	if d.mirrors.Shown() {
		if _, err := d.mirrors.Sync(); err != nil {
			d.log.Warn("resync: overview mirrors failed", "error", err)
		}
	}
}

// reload re-reads the configuration and settings and restarts the cycle.
// A changed resync_interval takes effect on the next daemon start.
func (d *Daemon) reload() error {
	cfg := d.cfg
	if d.opts.LoadConfig != nil {
		next, err := d.opts.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to reload config: %w", err)
		}
		cfg = next
	}
	wasEnabled := d.enabled
	d.Disable()
	if f, ok := d.opts.Settings.(*settings.File); ok {
		if err := f.Reload(); err != nil {
			d.log.Warn("settings reload failed", "path", f.Path(), "error", err)
		}
	}
	d.cfg = cfg
	if !wasEnabled {
		return nil
	}
	return d.Enable()
}

// Run enables the subsystem on the event loop, supervises services until
// ctx is done or one of them fails, then disables it.
func (d *Daemon) Run(ctx context.Context, services ...Service) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.loop.Run(loopCtx)
	})
	g.Go(func() error {
		defer stopLoop()
		if err := d.loop.Call(gctx, d.Enable); err != nil {
			return fmt.Errorf("failed to enable panels: %w", err)
		}

		sg, sctx := errgroup.WithContext(gctx)
		for _, svc := range services {
			sg.Go(func() error { return svc(sctx) })
		}
		sg.Go(func() error {
			<-sctx.Done()
			return nil
		})
		err := sg.Wait()

		callCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if derr := d.loop.Call(callCtx, func() error {
			d.Disable()
			return nil
		}); derr != nil {
			d.log.Warn("failed to disable panels", "error", derr)
		}
		return err
	})
	return g.Wait()
}
