package indicators

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/mmpanel/internal/shell"
)

const (
	watcherName      = "org.kde.StatusNotifierWatcher"
	watcherPath      = dbus.ObjectPath("/StatusNotifierWatcher")
	watcherInterface = "org.kde.StatusNotifierWatcher"
	itemInterface    = "org.kde.StatusNotifierItem"
	defaultItemPath  = dbus.ObjectPath("/StatusNotifierItem")
)

// SNIRegistry exposes the StatusNotifierItems registered with the session's
// StatusNotifierWatcher as indicators docked at the front of the right box.
type SNIRegistry struct {
	logger *slog.Logger

	mu    sync.Mutex
	items map[string]string // indicator name -> watcher entry
	subs  map[int]func()
	next  int
}

var _ Registry = (*SNIRegistry)(nil)

func NewSNIRegistry(logger *slog.Logger) *SNIRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SNIRegistry{
		logger: logger,
		items:  make(map[string]string),
		subs:   make(map[int]func()),
	}
}

func (r *SNIRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *SNIRegistry) Lookup(name string) (Indicator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[name]; !ok {
		return Indicator{}, false
	}
	return Indicator{Name: name, Box: shell.BoxRight, Index: 0}, true
}

func (r *SNIRegistry) OnChanged(fn func()) func() {
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

// Run connects to the session bus and tracks the watcher until ctx is done.
func (r *SNIRegistry) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	for _, member := range []string{"StatusNotifierItemRegistered", "StatusNotifierItemUnregistered"} {
		if err := conn.AddMatchSignal(
			dbus.WithMatchInterface(watcherInterface),
			dbus.WithMatchMember(member),
		); err != nil {
			return fmt.Errorf("failed to watch %s: %w", member, err)
		}
	}
	// Watcher restarts re-register every item.
	if err := conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
		dbus.WithMatchArg(0, watcherName),
	); err != nil {
		return fmt.Errorf("failed to watch %s owner: %w", watcherName, err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	r.refresh(conn)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			r.logger.Debug("status notifier signal", "name", sig.Name, "sender", sig.Sender)
			r.refresh(conn)
		}
	}
}

func (r *SNIRegistry) refresh(conn *dbus.Conn) {
	entries, err := registeredItems(conn)
	if err != nil {
		r.logger.Debug("status notifier watcher unavailable", "error", err)
		entries = nil
	}

	next := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := itemName(conn, entry)
		if _, dup := next[name]; dup {
			name = name + "-" + sanitize(entry)
		}
		next[name] = entry
	}

	r.mu.Lock()
	changed := len(next) != len(r.items)
	if !changed {
		for name, entry := range next {
			if r.items[name] != entry {
				changed = true
				break
			}
		}
	}
	r.items = next
	var fns []func()
	if changed {
		for id := 0; id < r.next; id++ {
			if fn, ok := r.subs[id]; ok {
				fns = append(fns, fn)
			}
		}
	}
	r.mu.Unlock()

	if changed {
		r.logger.Info("status notifier items changed", "count", len(next))
	}
	for _, fn := range fns {
		fn()
	}
}

func registeredItems(conn *dbus.Conn) ([]string, error) {
	obj := conn.Object(watcherName, watcherPath)
	v, err := obj.GetProperty(watcherInterface + ".RegisteredStatusNotifierItems")
	if err != nil {
		return nil, err
	}
	var entries []string
	if err := v.Store(&entries); err != nil {
		return nil, fmt.Errorf("unexpected RegisteredStatusNotifierItems value: %w", err)
	}
	return entries, nil
}

// splitEntry splits a watcher entry ("bus/path" or a bare bus name).
func splitEntry(entry string) (string, dbus.ObjectPath) {
	if i := strings.Index(entry, "/"); i > 0 {
		return entry[:i], dbus.ObjectPath(entry[i:])
	}
	return entry, defaultItemPath
}

// itemName prefers the item's Id property and falls back to the entry.
func itemName(conn *dbus.Conn, entry string) string {
	dest, path := splitEntry(entry)
	if path.IsValid() {
		v, err := conn.Object(dest, path).GetProperty(itemInterface + ".Id")
		if err == nil {
			if id, ok := v.Value().(string); ok && strings.TrimSpace(id) != "" {
				return sanitize(id)
			}
		}
	}
	return sanitize(entry)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

func sanitize(s string) string {
	s = strings.Trim(unsafeChars.ReplaceAllString(s, "-"), "-")
	if s == "" {
		return "item"
	}
	return s
}
