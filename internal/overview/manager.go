package overview

import (
	"errors"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/reconcile"
	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/shell"
)

// Manager keeps one Mirror per non-primary monitor while the slider is
// enabled. Mirrors are matched to monitors by position, like panels.
type Manager struct {
	ctx   *shell.Context
	slots reconcile.Slots[platform.Identity, *Mirror]

	sliderID      settings.HandlerID
	onlyPrimaryID settings.HandlerID
	cancelTopo    func()
	enabled       bool
	shown         bool
}

func NewManager(ctx *shell.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Enable follows the slider settings and the topology.
func (m *Manager) Enable() error {
	if m.enabled {
		return nil
	}
	m.enabled = true
	m.sliderID = m.ctx.Settings.OnChanged(settings.KeyThumbnailsSlider, func(string) {
		if err := m.apply(); err != nil {
			m.ctx.Logger.Warn("overview mirrors failed", "error", err)
		}
	})
	m.onlyPrimaryID = m.ctx.Settings.OnChanged(settings.KeyWorkspacesOnlyOnPrimary, func(string) {
		m.switchOffThumbnails()
	})
	m.cancelTopo = m.ctx.Topology.OnChanged(func() {
		m.ctx.Dispatch(func() {
			if !m.enabled || !m.shown {
				return
			}
			if _, err := m.Sync(); err != nil {
				m.ctx.Logger.Warn("overview mirror reconciliation failed", "error", err)
			}
		})
	})
	return m.apply()
}

// Disable unsubscribes and destroys every mirror.
func (m *Manager) Disable() {
	if !m.enabled {
		return
	}
	m.enabled = false
	m.ctx.Settings.Disconnect(m.sliderID)
	m.ctx.Settings.Disconnect(m.onlyPrimaryID)
	if m.cancelTopo != nil {
		m.cancelTopo()
		m.cancelTopo = nil
	}
	m.hide()
}

func (m *Manager) apply() error {
	if !m.enabled {
		return nil
	}
	if m.ctx.Settings.String(settings.KeyThumbnailsSlider) == settings.SliderNone {
		m.hide()
		return nil
	}
	return m.show()
}

func (m *Manager) show() error {
	// Mirrored pickers need workspaces on every monitor.
	if m.ctx.Settings.Bool(settings.KeyWorkspacesOnlyOnPrimary) {
		if err := m.ctx.Settings.SetBool(settings.KeyWorkspacesOnlyOnPrimary, false); err != nil {
			return err
		}
	}
	m.shown = true
	_, err := m.Sync()
	return err
}

func (m *Manager) hide() {
	if !m.shown {
		return
	}
	m.shown = false
	n := m.slots.Clear(func(j int, mr *Mirror) {
		mr.destroy()
	})
	m.ctx.Logger.Debug("overview mirrors hidden", "count", n)
}

func (m *Manager) switchOffThumbnails() {
	if !m.enabled || !m.ctx.Settings.Bool(settings.KeyWorkspacesOnlyOnPrimary) {
		return
	}
	if err := m.ctx.Settings.SetString(settings.KeyThumbnailsSlider, settings.SliderNone); err != nil {
		m.ctx.Logger.Warn("failed to switch off thumbnails", "error", err)
	}
}

// Sync reconciles the mirrors against the current topology and re-places
// every slider, since the side depends on where the primary monitor is.
func (m *Manager) Sync() (reconcile.Result, error) {
	monitors := m.ctx.Topology.Monitors()
	primaryIdx := m.ctx.Topology.PrimaryIndex()
	primary, _ := platform.Find(monitors, primaryIdx)
	setting := m.ctx.Settings.String(settings.KeyThumbnailsSlider)

	others := platform.Others(monitors, primaryIdx)
	keys := make([]platform.Identity, len(others))
	for i, mon := range others {
		keys[i] = mon.Identity()
	}

	res, err := m.slots.Sync(keys, reconcile.Hooks[platform.Identity, *Mirror]{
		Create: func(j int, id platform.Identity) (*Mirror, error) {
			mr, err := newMirror(m.ctx, others[j], Placement(setting, others[j].Bounds, primary.Bounds))
			if err != nil {
				return nil, err
			}
			m.ctx.Logger.Info("overview mirror added", "monitor", id.Index, "identity", id.String(), "side", string(mr.Side()))
			return mr, nil
		},
		Update: func(j int, mr *Mirror, id platform.Identity) error {
			m.ctx.Logger.Info("overview mirror updated", "monitor", id.Index, "identity", id.String())
			mr.update(others[j])
			return nil
		},
		Destroy: func(j int, mr *Mirror) {
			m.ctx.Logger.Info("overview mirror removed", "monitor", mr.MonitorIndex())
			mr.destroy()
		},
	})

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	for _, mr := range m.slots.Values() {
		if perr := mr.place(Placement(setting, mr.monitor.Bounds, primary.Bounds)); perr != nil {
			errs = append(errs, perr)
		}
	}
	return res, errors.Join(errs...)
}

// Mirrors returns the live mirrors in slot order.
func (m *Manager) Mirrors() []*Mirror {
	return m.slots.Values()
}

// Shown reports whether mirrors are enabled by the slider setting.
func (m *Manager) Shown() bool {
	return m.shown
}
