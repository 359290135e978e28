package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kobzarvs/qtranslit/internal/logger"
)

// SettingsWatcher pushes settings.toml changes to a callback. Files that fail
// to parse are ignored and the previous settings stay in effect.
type SettingsWatcher struct {
	path     string
	onChange func(Settings)
	delay    time.Duration
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	current Settings
	timer   *time.Timer

	done     chan struct{}
	stopOnce sync.Once
}

// WatchSettings loads path and starts watching its directory.
func WatchSettings(path string, onChange func(Settings)) (*SettingsWatcher, error) {
	initial, err := LoadSettings(path)
	if err != nil {
		logger.Warn("settings: initial load failed, using defaults", "path", path, "err", err)
		initial = DefaultSettings()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings: create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("settings: watch directory: %w", err)
	}
	w := &SettingsWatcher{
		path:     path,
		onChange: onChange,
		delay:    100 * time.Millisecond,
		watcher:  fw,
		current:  initial,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *SettingsWatcher) Current() Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *SettingsWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(w.delay, w.reload)
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("settings: watcher error", "err", err)
		}
	}
}

func (w *SettingsWatcher) reload() {
	s, err := LoadSettings(w.path)
	if err != nil {
		logger.Warn("settings: ignoring malformed file", "path", w.path, "err", err)
		return
	}
	w.mu.Lock()
	if s == w.current {
		w.mu.Unlock()
		return
	}
	w.current = s
	w.mu.Unlock()
	logger.Info("settings: reloaded", "enabled", s.Enabled, "language", s.Language, "auto", s.AutoReplace)
	if w.onChange != nil {
		w.onChange(s)
	}
}

func (w *SettingsWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		_ = w.watcher.Close()
	})
}
