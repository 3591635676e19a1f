// Package settings holds the user preferences consumed by the panels: a typed
// key/value store with per-key change notifications.
package settings

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

const (
	KeyShowPanel               = "show-panel"
	KeyPanelPosition           = "panel-position"
	KeyEnableHotCorners        = "enable-hot-corners"
	KeyThumbnailsSlider        = "thumbnails-slider-position"
	KeyTransferIndicators      = "transfer-indicators"
	KeyAvailableIndicators     = "available-indicators"
	KeyShowActivities          = "show-activities"
	KeyShowDateTime            = "show-date-time"
	KeyShowIndicator           = "show-indicator"
	KeyWorkspacesOnlyOnPrimary = "workspaces-only-on-primary"
)

// Panel positions.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// Thumbnail slider positions.
const (
	SliderNone  = "none"
	SliderLeft  = "left"
	SliderRight = "right"
	SliderAuto  = "auto"
)

var ErrUnknownKey = errors.New("unknown settings key")

// Kind is the value type of a key.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindMapping
	KindStrings
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindMapping:
		return "mapping"
	case KindStrings:
		return "strings"
	default:
		return "unknown"
	}
}

// Key describes one schema entry.
type Key struct {
	Name    string
	Kind    Kind
	Default any
	Choices []string
	Summary string
}

var schema = []Key{
	{Name: KeyShowPanel, Kind: KindBool, Default: true, Summary: "Show panels on additional monitors"},
	{Name: KeyPanelPosition, Kind: KindString, Default: PositionTop, Choices: []string{PositionTop, PositionBottom}, Summary: "Screen edge of the additional panels"},
	{Name: KeyEnableHotCorners, Kind: KindBool, Default: true, Summary: "Activities hot corner on every monitor"},
	{Name: KeyThumbnailsSlider, Kind: KindString, Default: SliderAuto, Choices: []string{SliderNone, SliderLeft, SliderRight, SliderAuto}, Summary: "Workspace thumbnails on additional monitors"},
	{Name: KeyTransferIndicators, Kind: KindMapping, Default: map[string]int{}, Summary: "Indicators moved to additional monitors"},
	{Name: KeyAvailableIndicators, Kind: KindStrings, Default: []string{}, Summary: "Indicators that can be moved (published by the daemon)"},
	{Name: KeyShowActivities, Kind: KindBool, Default: true, Summary: "Activities button on additional panels"},
	{Name: KeyShowDateTime, Kind: KindBool, Default: true, Summary: "Clock on additional panels"},
	{Name: KeyShowIndicator, Kind: KindBool, Default: true, Summary: "mmpanel indicator on the primary panel"},
	{Name: KeyWorkspacesOnlyOnPrimary, Kind: KindBool, Default: false, Summary: "Workspaces only on the primary monitor"},
}

// Schema returns every key in declaration order.
func Schema() []Key {
	out := make([]Key, len(schema))
	copy(out, schema)
	return out
}

// Lookup returns the schema entry for name.
func Lookup(name string) (Key, bool) {
	for _, k := range schema {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// ValueError reports a value rejected by the schema.
type ValueError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Key, e.Reason)
}

func defaultValue(k Key) any {
	return cloneValue(k.Default)
}

// validate checks v against k and returns a private copy of it.
func validate(k Key, v any) (any, error) {
	switch k.Kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, &ValueError{Key: k.Name, Value: fmt.Sprint(v), Reason: "expected bool"}
		}
		return b, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, &ValueError{Key: k.Name, Value: fmt.Sprint(v), Reason: "expected string"}
		}
		if len(k.Choices) > 0 && !slices.Contains(k.Choices, s) {
			return nil, &ValueError{Key: k.Name, Value: s, Reason: "must be one of " + strings.Join(k.Choices, ", ")}
		}
		return s, nil
	case KindMapping:
		m, ok := v.(map[string]int)
		if !ok {
			return nil, &ValueError{Key: k.Name, Value: fmt.Sprint(v), Reason: "expected name to monitor mapping"}
		}
		for name, idx := range m {
			if name == "" {
				return nil, &ValueError{Key: k.Name, Value: fmt.Sprint(v), Reason: "empty indicator name"}
			}
			if idx < 0 {
				return nil, &ValueError{Key: k.Name, Value: fmt.Sprintf("%s=%d", name, idx), Reason: "monitor index must not be negative"}
			}
		}
		return cloneValue(m), nil
	case KindStrings:
		s, ok := v.([]string)
		if !ok {
			return nil, &ValueError{Key: k.Name, Value: fmt.Sprint(v), Reason: "expected string list"}
		}
		return cloneValue(s), nil
	}
	return nil, fmt.Errorf("%s: unsupported kind %v", k.Name, k.Kind)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]int:
		out := make(map[string]int, len(t))
		for k, i := range t {
			out[k] = i
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

func equalValues(a, b any) bool {
	switch av := a.(type) {
	case map[string]int:
		bv, ok := b.(map[string]int)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if w, ok := bv[k]; !ok || w != v {
				return false
			}
		}
		return true
	case []string:
		bv, ok := b.([]string)
		return ok && slices.Equal(av, bv)
	default:
		return a == b
	}
}

// Parse converts the textual form used by the CLI into a value for key.
// Mappings are written "name=monitor,name=monitor"; lists are comma separated.
func Parse(key, raw string) (any, error) {
	k, ok := Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	raw = strings.TrimSpace(raw)
	switch k.Kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &ValueError{Key: key, Value: raw, Reason: "expected true or false"}
		}
		return b, nil
	case KindString:
		return validate(k, raw)
	case KindMapping:
		m := map[string]int{}
		for _, part := range splitList(raw) {
			name, idx, ok := strings.Cut(part, "=")
			if !ok {
				return nil, &ValueError{Key: key, Value: part, Reason: "expected name=monitor"}
			}
			n, err := strconv.Atoi(strings.TrimSpace(idx))
			if err != nil {
				return nil, &ValueError{Key: key, Value: part, Reason: "monitor must be an integer"}
			}
			m[strings.TrimSpace(name)] = n
		}
		return validate(k, m)
	case KindStrings:
		return splitList(raw), nil
	}
	return nil, fmt.Errorf("%s: unsupported kind %v", key, k.Kind)
}

// Format renders a value in the form accepted by Parse.
func Format(v any) string {
	switch t := v.(type) {
	case map[string]int:
		names := make([]string, 0, len(t))
		for name := range t {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s=%d", name, t[name])
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprint(v)
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
