package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath returns ~/.config/mmpanel/settings.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "mmpanel", "settings.toml"), nil
}

// File is a Store persisted as TOML. Every successful Set rewrites the file
// atomically.
type File struct {
	*Memory
	path string
}

var _ Store = (*File)(nil)

// OpenFile loads path, or starts from defaults if it does not exist yet.
func OpenFile(path string) (*File, error) {
	f := &File{Memory: NewMemory(), path: path}
	f.Memory.persist = f.write

	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := f.Memory.apply(values, false); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return f, nil
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

// Reload re-reads the file and notifies subscribers of every key whose value
// differs from memory. Keys missing from the file fall back to defaults.
func (f *File) Reload() error {
	values, err := readFile(f.path)
	if err != nil {
		return err
	}
	return f.Memory.apply(values, false)
}

func readFile(path string) (map[string]any, error) {
	values := make(map[string]any, len(schema))
	for _, k := range schema {
		values[k.Name] = defaultValue(k)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	for name, raw := range doc {
		k, ok := Lookup(name)
		if !ok {
			slog.Debug("ignoring unknown settings key", "key", name, "file", path)
			continue
		}
		v, err := fromTOML(k, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		values[name] = v
	}
	return values, nil
}

func fromTOML(k Key, raw any) (any, error) {
	bad := &ValueError{Key: k.Name, Value: fmt.Sprint(raw), Reason: "expected " + k.Kind.String()}
	switch k.Kind {
	case KindBool, KindString:
		return raw, nil
	case KindMapping:
		table, ok := raw.(map[string]any)
		if !ok {
			return nil, bad
		}
		m := make(map[string]int, len(table))
		for name, v := range table {
			n, ok := v.(int64)
			if !ok {
				return nil, bad
			}
			m[name] = int(n)
		}
		return m, nil
	case KindStrings:
		list, ok := raw.([]any)
		if !ok {
			return nil, bad
		}
		out := make([]string, 0, len(list))
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return nil, bad
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, bad
}

func (f *File) write(values map[string]any) error {
	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// Watch reloads the store when the file changes on disk until ctx is done.
// dispatch runs each reload; pass the owner's event loop so notifications
// arrive on the same goroutine as every other change. A nil dispatch reloads
// on the watcher goroutine.
func (f *File) Watch(ctx context.Context, dispatch func(func())) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: atomic renames replace the inode.
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	filename := filepath.Base(f.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				slog.Debug("settings file changed, reloading", "file", f.path)
				dispatch(func() {
					if err := f.Reload(); err != nil {
						slog.Warn("failed to reload settings", "error", err)
					}
				})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("settings watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// Dump returns every key with its current textual value, sorted by key.
func Dump(s Store) [][2]string {
	keys := s.Keys()
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, key := range keys {
		v, err := Get(s, key)
		if err != nil {
			continue
		}
		out = append(out, [2]string{key, Format(v)})
	}
	return out
}
