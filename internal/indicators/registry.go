// Package indicators moves named status indicators between the primary panel
// and the per-monitor panels, and feeds the primary panel from indicator
// providers.
package indicators

import (
	"sort"
	"sync"

	"github.com/1broseidon/mmpanel/internal/shell"
)

// Indicator is an entry offered by a provider.
type Indicator struct {
	Name string
	// Box and Index place the indicator on the primary panel.
	Box   shell.BoxRole
	Index int
}

// Registry enumerates provider indicators. OnChanged callbacks may run on any
// goroutine.
type Registry interface {
	Names() []string
	Lookup(name string) (Indicator, bool)
	OnChanged(fn func()) (cancel func())
}

// StaticRegistry is a settable Registry.
type StaticRegistry struct {
	mu    sync.Mutex
	items map[string]Indicator
	subs  map[int]func()
	next  int
}

var _ Registry = (*StaticRegistry)(nil)

func NewStaticRegistry(items ...Indicator) *StaticRegistry {
	r := &StaticRegistry{items: make(map[string]Indicator), subs: make(map[int]func())}
	for _, it := range items {
		r.items[it.Name] = it
	}
	return r
}

func (r *StaticRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *StaticRegistry) Lookup(name string) (Indicator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[name]
	return it, ok
}

func (r *StaticRegistry) Add(it Indicator) {
	r.mu.Lock()
	r.items[it.Name] = it
	r.mu.Unlock()
	r.fire()
}

func (r *StaticRegistry) Remove(name string) {
	r.mu.Lock()
	_, ok := r.items[name]
	delete(r.items, name)
	r.mu.Unlock()
	if ok {
		r.fire()
	}
}

func (r *StaticRegistry) OnChanged(fn func()) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *StaticRegistry) fire() {
	r.mu.Lock()
	var fns []func()
	for id := 0; id < r.next; id++ {
		if fn, ok := r.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Binder keeps the host's status area in step with a registry. It only
// touches indicators it added itself.
type Binder struct {
	ctx    *shell.Context
	reg    Registry
	owned  map[string]bool
	cancel func()
}

// Bind populates the host from reg and follows its changes.
func Bind(ctx *shell.Context, reg Registry) *Binder {
	b := &Binder{ctx: ctx, reg: reg, owned: make(map[string]bool)}
	b.cancel = reg.OnChanged(func() {
		ctx.Dispatch(b.Sync)
	})
	b.Sync()
	return b
}

// Sync adds new provider indicators and removes vanished ones.
func (b *Binder) Sync() {
	if b.reg == nil {
		return
	}
	host := b.ctx.Host
	present := make(map[string]bool)
	for _, name := range b.reg.Names() {
		present[name] = true
		if b.owned[name] {
			continue
		}
		if _, exists := host.StatusArea(name); exists {
			b.ctx.Logger.Debug("indicator name already taken", "indicator", name)
			continue
		}
		it, ok := b.reg.Lookup(name)
		if !ok {
			continue
		}
		if it.Box == "" {
			it.Box = shell.BoxRight
		}
		if _, err := host.AddIndicator(name, it.Box, it.Index); err != nil {
			b.ctx.Logger.Warn("failed to add indicator", "indicator", name, "error", err)
			continue
		}
		b.owned[name] = true
		b.ctx.Logger.Debug("indicator added", "indicator", name, "box", string(it.Box))
	}
	for name := range b.owned {
		if present[name] {
			continue
		}
		host.RemoveIndicator(name)
		delete(b.owned, name)
		b.ctx.Logger.Debug("indicator removed", "indicator", name)
	}
}

// Close stops following the registry and removes the indicators it added.
func (b *Binder) Close() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	for name := range b.owned {
		b.ctx.Host.RemoveIndicator(name)
	}
	b.owned = map[string]bool{}
	b.reg = nil
}
