package settings

import (
	"fmt"
	"sync"
)

// HandlerID identifies a change subscription.
type HandlerID uint64

// Store is the preferences store. Getters on unknown keys return the zero
// value. OnChanged with an empty key subscribes to every key.
type Store interface {
	Bool(key string) bool
	String(key string) string
	Mapping(key string) map[string]int
	Strings(key string) []string

	SetBool(key string, v bool) error
	SetString(key string, v string) error
	SetMapping(key string, v map[string]int) error
	SetStrings(key string, v []string) error

	OnChanged(key string, fn func(key string)) HandlerID
	Disconnect(id HandlerID)
	Keys() []string
}

// Get returns the current value of key.
func Get(s Store, key string) (any, error) {
	k, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	switch k.Kind {
	case KindBool:
		return s.Bool(key), nil
	case KindString:
		return s.String(key), nil
	case KindMapping:
		return s.Mapping(key), nil
	default:
		return s.Strings(key), nil
	}
}

// Set writes a value produced by Parse.
func Set(s Store, key string, v any) error {
	k, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if _, err := validate(k, v); err != nil {
		return err
	}
	switch k.Kind {
	case KindBool:
		return s.SetBool(key, v.(bool))
	case KindString:
		return s.SetString(key, v.(string))
	case KindMapping:
		return s.SetMapping(key, v.(map[string]int))
	default:
		return s.SetStrings(key, v.([]string))
	}
}

type handler struct {
	id  HandlerID
	key string
	fn  func(string)
}

// Memory is an in-memory Store. Change notifications run synchronously on the
// goroutine that made the change, after the value is committed.
type Memory struct {
	mu       sync.Mutex
	values   map[string]any
	handlers []handler
	nextID   HandlerID

	// persist, when set, is called with the full value set before a change is
	// committed. An error aborts the change.
	persist func(values map[string]any) error
}

var _ Store = (*Memory)(nil)

// NewMemory returns a store holding the schema defaults.
func NewMemory() *Memory {
	m := &Memory{values: make(map[string]any, len(schema))}
	for _, k := range schema {
		m.values[k.Name] = defaultValue(k)
	}
	return m
}

func (m *Memory) get(key string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneValue(m.values[key])
}

func (m *Memory) Bool(key string) bool {
	b, _ := m.get(key).(bool)
	return b
}

func (m *Memory) String(key string) string {
	s, _ := m.get(key).(string)
	return s
}

func (m *Memory) Mapping(key string) map[string]int {
	v, _ := m.get(key).(map[string]int)
	if v == nil {
		v = map[string]int{}
	}
	return v
}

func (m *Memory) Strings(key string) []string {
	v, _ := m.get(key).([]string)
	if v == nil {
		v = []string{}
	}
	return v
}

func (m *Memory) SetBool(key string, v bool) error { return m.setOne(key, v, KindBool) }

func (m *Memory) SetString(key string, v string) error { return m.setOne(key, v, KindString) }

func (m *Memory) SetMapping(key string, v map[string]int) error {
	return m.setOne(key, v, KindMapping)
}

func (m *Memory) SetStrings(key string, v []string) error { return m.setOne(key, v, KindStrings) }

func (m *Memory) setOne(key string, v any, kind Kind) error {
	k, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if k.Kind != kind {
		return fmt.Errorf("%s is a %s key, not %s", key, k.Kind, kind)
	}
	return m.apply(map[string]any{key: v}, true)
}

// apply validates and commits changes, then notifies subscribers of the keys
// whose value actually changed.
func (m *Memory) apply(changes map[string]any, persist bool) error {
	m.mu.Lock()
	next := make(map[string]any, len(m.values))
	for k, v := range m.values {
		next[k] = v
	}
	var changed []string
	for _, k := range schema {
		raw, ok := changes[k.Name]
		if !ok {
			continue
		}
		v, err := validate(k, raw)
		if err != nil {
			m.mu.Unlock()
			return err
		}
		if equalValues(next[k.Name], v) {
			continue
		}
		next[k.Name] = v
		changed = append(changed, k.Name)
	}
	if len(changed) == 0 {
		m.mu.Unlock()
		return nil
	}
	if persist && m.persist != nil {
		if err := m.persist(next); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	m.values = next
	m.mu.Unlock()

	m.notify(changed)
	return nil
}

func (m *Memory) notify(keys []string) {
	for _, key := range keys {
		m.mu.Lock()
		var fns []func(string)
		for _, h := range m.handlers {
			if h.key == "" || h.key == key {
				fns = append(fns, h.fn)
			}
		}
		m.mu.Unlock()
		for _, fn := range fns {
			fn(key)
		}
	}
}

func (m *Memory) OnChanged(key string, fn func(key string)) HandlerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.handlers = append(m.handlers, handler{id: m.nextID, key: key, fn: fn})
	return m.nextID
}

func (m *Memory) Disconnect(id HandlerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, h := range m.handlers {
		if h.id == id {
			m.handlers = append(m.handlers[:i], m.handlers[i+1:]...)
			return
		}
	}
}

// Handlers returns the number of live subscriptions.
func (m *Memory) Handlers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

func (m *Memory) Keys() []string {
	out := make([]string, len(schema))
	for i, k := range schema {
		out[i] = k.Name
	}
	return out
}

func (m *Memory) snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = cloneValue(v)
	}
	return out
}
