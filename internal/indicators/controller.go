package indicators

import (
	"sort"

	"github.com/1broseidon/mmpanel/internal/settings"
	"github.com/1broseidon/mmpanel/internal/shell"
)

// Record is one indicator currently placed on a per-monitor panel.
type Record struct {
	Indicator string        `json:"indicator"`
	Box       shell.BoxRole `json:"box"`
	Monitor   int           `json:"monitor"`
}

// Controller applies the transfer-indicators mapping. It refers to panels by
// monitor index only and never mutates the panel collection.
type Controller struct {
	ctx       *shell.Context
	active    []Record
	available []string

	handlerID  settings.HandlerID
	cancelHost func()
	destroyed  bool
}

var _ shell.TransferNotifier = (*Controller)(nil)

// NewController subscribes to the mapping and to the host indicator set,
// publishes the available indicators and applies the mapping once.
func NewController(ctx *shell.Context) *Controller {
	c := &Controller{ctx: ctx}
	c.handlerID = ctx.Settings.OnChanged(settings.KeyTransferIndicators, func(string) {
		c.ApplyMapping()
	})
	c.cancelHost = ctx.Host.OnIndicatorsChanged(c.indicatorsChanged)
	c.publishAvailable()
	c.ApplyMapping()
	return c
}

func (c *Controller) indicatorsChanged() {
	if c.destroyed {
		return
	}
	c.publishAvailable()
	c.ApplyMapping()
}

// ApplyMapping reverts records the mapping no longer asks for, then moves
// every mapped indicator found on the primary panel to its target panel.
func (c *Controller) ApplyMapping() {
	if c.destroyed {
		return
	}
	log := c.ctx.Logger
	host := c.ctx.Host
	mapping := c.ctx.Settings.Mapping(settings.KeyTransferIndicators)

	for _, r := range c.Records() {
		if _, exists := host.StatusArea(r.Indicator); !exists {
			c.drop(r)
			log.Debug("indicator gone, record retired", "indicator", r.Indicator, "monitor", r.Monitor)
			continue
		}
		if monitor, ok := mapping[r.Indicator]; !ok || monitor != r.Monitor {
			c.Revert(r)
		}
	}

	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		monitor := mapping[name]
		if _, ok := c.find(name); ok {
			continue
		}
		actor, ok := host.StatusArea(name)
		if !ok {
			log.Debug("mapped indicator not present", "indicator", name)
			continue
		}
		panel, ok := c.ctx.Panels.Find(monitor)
		if !ok {
			log.Debug("no panel for mapped monitor", "indicator", name, "monitor", monitor)
			continue
		}
		for _, role := range shell.BoxRoles {
			src := host.Box(role)
			if !src.Contains(actor) {
				continue
			}
			if err := src.RemoveChild(actor); err != nil {
				log.Warn("failed to detach indicator", "indicator", name, "box", string(role), "error", err)
				break
			}
			if err := panel.Box(role).InsertChildAt(actor, 0); err != nil {
				log.Warn("failed to attach indicator", "indicator", name, "box", string(role), "error", err)
				_ = src.InsertChildAt(actor, 0)
				break
			}
			c.active = append(c.active, Record{Indicator: name, Box: role, Monitor: monitor})
			log.Info("indicator transferred", "indicator", name, "box", string(role), "monitor", monitor)
			break
		}
	}
}

// Revert retires r and puts the indicator back at the front of the same box
// on the primary panel. The panel side is best effort: the indicator is
// detached from wherever it currently is.
func (c *Controller) Revert(r Record) {
	c.drop(r)
	host := c.ctx.Host
	actor, ok := host.StatusArea(r.Indicator)
	if !ok {
		return
	}
	dst := host.Box(r.Box)
	if dst == nil || dst.Contains(actor) {
		return
	}
	actor.Detach()
	if err := dst.InsertChildAt(actor, 0); err != nil {
		c.ctx.Logger.Warn("failed to restore indicator", "indicator", r.Indicator, "box", string(r.Box), "error", err)
		return
	}
	c.ctx.Logger.Info("indicator restored", "indicator", r.Indicator, "box", string(r.Box), "monitor", r.Monitor)
}

// TransferBack reverts every record targeting p.
func (c *Controller) TransferBack(p *shell.Panel) {
	for _, r := range c.Records() {
		if r.Monitor == p.MonitorIndex() {
			c.Revert(r)
		}
	}
}

// Records returns the active records sorted by indicator name.
func (c *Controller) Records() []Record {
	out := make([]Record, len(c.active))
	copy(out, c.active)
	sort.Slice(out, func(i, j int) bool { return out[i].Indicator < out[j].Indicator })
	return out
}

// Available returns the last published list of transferable indicators.
func (c *Controller) Available() []string {
	out := make([]string, len(c.available))
	copy(out, c.available)
	return out
}

// Destroy unsubscribes, clears the advertisement and reverts every record.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.ctx.Settings.Disconnect(c.handlerID)
	if c.cancelHost != nil {
		c.cancelHost()
	}
	if err := c.ctx.Settings.SetStrings(settings.KeyAvailableIndicators, []string{}); err != nil {
		c.ctx.Logger.Warn("failed to clear available indicators", "error", err)
	}
	for _, r := range c.Records() {
		c.Revert(r)
	}
	c.destroyed = true
}

// publishAvailable advertises the transferable indicators. Only a change in
// count is published.
func (c *Controller) publishAvailable() {
	var available []string
	for _, name := range c.ctx.Host.Indicators() {
		if name == shell.IndicatorSelf || c.ctx.Config.IsSessionIndicator(name) {
			continue
		}
		available = append(available, name)
	}
	if len(available) == len(c.available) {
		return
	}
	c.available = available
	if available == nil {
		available = []string{}
	}
	if err := c.ctx.Settings.SetStrings(settings.KeyAvailableIndicators, available); err != nil {
		c.ctx.Logger.Warn("failed to publish available indicators", "error", err)
	}
}

func (c *Controller) find(name string) (Record, bool) {
	for _, r := range c.active {
		if r.Indicator == name {
			return r, true
		}
	}
	return Record{}, false
}

func (c *Controller) drop(r Record) {
	for i, a := range c.active {
		if a == r {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}
