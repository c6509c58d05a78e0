package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileConfig is an on-disk provider configuration holding named client
// configs. Load one with LoadFile and build clients with Client.
type FileConfig struct {
	// Default names the entry used when Client is called with "".
	Default string

	// Providers maps entry names to client configurations.
	Providers map[string]Config
}

// fileDoc is the on-disk shape. Timeouts are duration strings ("5m")
// so the same document parses identically as TOML, YAML, and JSON.
type fileDoc struct {
	Default   string               `json:"default" yaml:"default" toml:"default"`
	Providers map[string]fileEntry `json:"providers" yaml:"providers" toml:"providers"`
}

type fileEntry struct {
	Provider     string         `json:"provider" yaml:"provider" toml:"provider"`
	Model        string         `json:"model" yaml:"model" toml:"model"`
	BaseURL      string         `json:"base_url" yaml:"base_url" toml:"base_url"`
	SystemPrompt string         `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`
	Timeout      string         `json:"timeout" yaml:"timeout" toml:"timeout"`
	Options      map[string]any `json:"options" yaml:"options" toml:"options"`
}

// LoadFile reads a provider configuration from path.
// The format is chosen by extension: .toml, .yaml/.yml, or JSON otherwise.
// Entries without an explicit provider name default to their entry key.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var doc fileDoc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	fc := &FileConfig{
		Default:   doc.Default,
		Providers: make(map[string]Config, len(doc.Providers)),
	}
	for name, entry := range doc.Providers {
		cfg := DefaultConfig()
		cfg.Provider = entry.Provider
		if cfg.Provider == "" {
			cfg.Provider = name
		}
		cfg.Model = entry.Model
		cfg.BaseURL = entry.BaseURL
		cfg.SystemPrompt = entry.SystemPrompt
		if entry.Timeout != "" {
			d, err := time.ParseDuration(entry.Timeout)
			if err != nil {
				return nil, fmt.Errorf("entry %q: bad timeout %q: %w", name, entry.Timeout, err)
			}
			cfg.Timeout = d
		}
		cfg.Options = entry.Options
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		fc.Providers[name] = cfg
	}

	if fc.Default != "" {
		if _, ok := fc.Providers[fc.Default]; !ok {
			return nil, fmt.Errorf("default entry %q not defined", fc.Default)
		}
	}
	return fc, nil
}

// Client builds a client from the named entry.
// An empty name selects the Default entry.
func (fc *FileConfig) Client(name string) (Client, error) {
	if name == "" {
		name = fc.Default
	}
	cfg, ok := fc.Providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: no config entry %q", ErrUnknownProvider, name)
	}
	return New(cfg.Provider, cfg)
}

// watchDebounce coalesces the bursts of filesystem events editors
// produce for a single save.
const watchDebounce = 100 * time.Millisecond

// WatchFile reloads path whenever it changes and invokes onChange with each
// result. Reload failures are reported by invoking onChange with a nil
// config and the error; watching continues. The watch stops when ctx is
// canceled. Only watcher setup errors are returned.
//
// The parent directory is watched rather than the file itself so that
// atomic replace-on-save (rename over the target) keeps working.
func WatchFile(ctx context.Context, path string, onChange func(*FileConfig, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(watchDebounce)
					pending = debounce.C
				} else {
					debounce.Reset(watchDebounce)
				}

			case <-pending:
				debounce = nil
				pending = nil
				onChange(LoadFile(path))

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onChange(nil, err)
			}
		}
	}()
	return nil
}
