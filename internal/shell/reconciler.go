package shell

import (
	"errors"

	"github.com/1broseidon/mmpanel/internal/platform"
	"github.com/1broseidon/mmpanel/internal/reconcile"
	"github.com/1broseidon/mmpanel/internal/settings"
)

// TransferNotifier is told about panel lifecycle changes that affect
// transferred indicators.
type TransferNotifier interface {
	// TransferBack returns every indicator placed on p to the primary panel.
	TransferBack(p *Panel)
	// ApplyMapping re-applies the declared indicator mapping.
	ApplyMapping()
}

// PanelReconciler keeps one Panel per non-primary monitor. Panels are matched
// to monitors by position in the filtered monitor list, never by identity.
type PanelReconciler struct {
	ctx      *Context
	slots    reconcile.Slots[platform.Identity, *Panel]
	notifier TransferNotifier

	cancelTopology func()
	positionID     settings.HandlerID
	shown          bool
}

func NewPanelReconciler(ctx *Context) *PanelReconciler {
	return &PanelReconciler{ctx: ctx}
}

// SetTransferNotifier installs n, or clears it when n is nil.
func (r *PanelReconciler) SetTransferNotifier(n TransferNotifier) {
	r.notifier = n
}

// Reconcile brings the panels in line with monitors. Surplus panels are
// destroyed from the end after their indicators are sent back; new trailing
// slots get new panels; slots whose identity changed are repositioned.
func (r *PanelReconciler) Reconcile(monitors []platform.Monitor, primary int) (reconcile.Result, error) {
	log := r.ctx.Logger
	others := platform.Others(monitors, primary)
	keys := make([]platform.Identity, len(others))
	for i, m := range others {
		keys[i] = m.Identity()
	}

	reindexed := false
	res, err := r.slots.Sync(keys, reconcile.Hooks[platform.Identity, *Panel]{
		Create: func(j int, id platform.Identity) (*Panel, error) {
			p, err := newPanel(r.ctx, others[j])
			if err != nil {
				return nil, err
			}
			r.ctx.Panels.add(p)
			log.Info("panel added", "monitor", id.Index, "identity", id.String(), "panel", p.ID.String())
			return p, nil
		},
		Update: func(j int, p *Panel, id platform.Identity) error {
			log.Info("panel updated", "monitor", id.Index, "from", p.Identity().String(), "identity", id.String())
			if p.MonitorIndex() != id.Index {
				// Records target monitor indexes; retire them before the
				// index moves under them.
				if r.notifier != nil {
					r.notifier.TransferBack(p)
				}
				reindexed = true
			}
			return p.update(others[j])
		},
		Destroy: func(j int, p *Panel) {
			r.destroyPanel(p)
		},
	})

	if (res.Created > 0 || reindexed) && r.notifier != nil {
		r.notifier.ApplyMapping()
	}
	return res, err
}

func (r *PanelReconciler) destroyPanel(p *Panel) {
	r.ctx.Logger.Info("panel removed", "monitor", p.MonitorIndex(), "identity", p.Identity().String())
	if r.notifier != nil {
		r.notifier.TransferBack(p)
	}
	r.ctx.Panels.remove(p)
	p.Destroy()
}

// Sync reconciles against the current topology.
func (r *PanelReconciler) Sync() (reconcile.Result, error) {
	return r.Reconcile(r.ctx.Topology.Monitors(), r.ctx.Topology.PrimaryIndex())
}

// Show starts tracking the topology and the panel position.
func (r *PanelReconciler) Show() error {
	if r.shown {
		return nil
	}
	r.shown = true
	r.cancelTopology = r.ctx.Topology.OnChanged(func() {
		r.ctx.Dispatch(func() {
			if !r.shown {
				return
			}
			if _, err := r.Sync(); err != nil {
				r.ctx.Logger.Warn("panel reconciliation failed", "error", err)
			}
		})
	})
	r.positionID = r.ctx.Settings.OnChanged(settings.KeyPanelPosition, func(string) {
		if err := r.Relayout(); err != nil {
			r.ctx.Logger.Warn("panel relayout failed", "error", err)
		}
	})
	_, err := r.Sync()
	return err
}

// Unsubscribe stops tracking the topology and the panel position. Panels
// stay up until Hide.
func (r *PanelReconciler) Unsubscribe() {
	if r.cancelTopology == nil {
		return
	}
	r.cancelTopology()
	r.cancelTopology = nil
	r.ctx.Settings.Disconnect(r.positionID)
}

// Hide stops tracking and destroys every panel, last first.
func (r *PanelReconciler) Hide() {
	if !r.shown {
		return
	}
	r.shown = false
	r.Unsubscribe()
	r.slots.Clear(func(j int, p *Panel) {
		r.destroyPanel(p)
	})
}

// Shown reports whether Show is in effect.
func (r *PanelReconciler) Shown() bool {
	return r.shown
}

// Relayout moves every panel to the configured edge.
func (r *PanelReconciler) Relayout() error {
	var errs []error
	for _, p := range r.slots.Values() {
		if err := p.relayout(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Panels returns the panels in slot order.
func (r *PanelReconciler) Panels() []*Panel {
	return r.slots.Values()
}
