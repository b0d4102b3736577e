package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Holder provides thread-safe access to the configuration with hot
// reload. Change callbacks receive the old and new configs so callers
// can react only to the fields they care about (the key-cache
// invalidation triggers hang off these).
type Holder struct {
	mu       sync.RWMutex
	config   Config
	path     string
	log      zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(prev, next Config)
	stopCh   chan struct{}
}

func NewHolder(path string, log zerolog.Logger) (*Holder, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		config: cfg,
		path:   absPath,
		log:    log,
		stopCh: make(chan struct{}),
	}, nil
}

func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// OnChange registers a callback invoked after every successful reload.
func (h *Holder) OnChange(fn func(prev, next Config)) {
	h.mu.Lock()
	h.onChange = append(h.onChange, fn)
	h.mu.Unlock()
}

// Reload re-reads the config file. A load failure keeps the old config.
func (h *Holder) Reload() error {
	newCfg, err := LoadFrom(h.path)
	if err != nil {
		h.log.Error().Err(err).Msg("config reload failed, keeping old config")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.config
	h.config = newCfg
	callbacks := append(([]func(prev, next Config))(nil), h.onChange...)
	h.mu.Unlock()

	if reflect.DeepEqual(oldCfg, newCfg) {
		return nil
	}

	h.log.Info().Str("path", h.path).Msg("configuration reloaded")
	for _, fn := range callbacks {
		fn(oldCfg, newCfg)
	}
	return nil
}

// Watch starts watching the config file for changes. The parent
// directory is watched because editors commonly save atomically via
// rename.
func (h *Holder) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go h.watchLoop()
	return nil
}

func (h *Holder) watchLoop() {
	for {
		select {
		case <-h.stopCh:
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != h.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := h.Reload(); err != nil {
				h.log.Debug().Err(err).Msg("ignoring unreadable config change")
			}
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.log.Debug().Err(err).Msg("config watcher error")
		}
	}
}

// Close stops the watcher.
func (h *Holder) Close() error {
	close(h.stopCh)
	if h.watcher != nil {
		return h.watcher.Close()
	}
	return nil
}

// EndpointChanged reports whether the active server endpoint or its
// credential differs between two configs.
func EndpointChanged(prev, next Config) bool {
	return prev.Endpoint != next.Endpoint || prev.ManagementKey != next.ManagementKey
}

// KeyListChanged reports whether the statically configured API key
// list differs between two configs.
func KeyListChanged(prev, next Config) bool {
	return !reflect.DeepEqual(prev.APIKeys, next.APIKeys)
}
