package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("QTRANSLIT_CONFIG_HOME", "/tmp/qtranslit-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/qtranslit-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/qtranslit-config")
	}

	t.Setenv("QTRANSLIT_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/qtranslit" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/qtranslit")
	}
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	t.Setenv("QTRANSLIT_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.DebounceMs != 500 {
		t.Fatalf("DebounceMs = %d, want 500", cfg.Editor.DebounceMs)
	}
	if cfg.Editor.Separator != " " {
		t.Fatalf("Separator = %q, want space", cfg.Editor.Separator)
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTRANSLIT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "light.toml"), `
foreground = "#111111"
background = "#FAFAFA"
statusline-foreground = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
debounce-ms = 250

[provider]
timeout-ms = 1500
bridge-url = "ws://127.0.0.1:7733/ws"

[theme]
theme = "light"
overlay-background = "#123456"

[keymap.form]
"ctrl+n" = "focus_next"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.DebounceMs != 250 {
		t.Fatalf("DebounceMs = %d, want 250", cfg.Editor.DebounceMs)
	}
	if cfg.Provider.TimeoutMs != 1500 {
		t.Fatalf("TimeoutMs = %d, want 1500", cfg.Provider.TimeoutMs)
	}
	if cfg.Provider.BridgeURL != "ws://127.0.0.1:7733/ws" {
		t.Fatalf("BridgeURL = %q", cfg.Provider.BridgeURL)
	}
	if cfg.Provider.Candidates != 5 {
		t.Fatalf("Candidates = %d, want 5", cfg.Provider.Candidates)
	}
	if cfg.Theme.Background != "#FAFAFA" {
		t.Fatalf("Background = %q, want %q", cfg.Theme.Background, "#FAFAFA")
	}
	if cfg.Theme.OverlayBackground != "#123456" {
		t.Fatalf("OverlayBackground = %q, want %q", cfg.Theme.OverlayBackground, "#123456")
	}
	if cfg.Keymap.Form["ctrl+n"] != "focus_next" {
		t.Fatalf("keymap ctrl+n = %q, want %q", cfg.Keymap.Form["ctrl+n"], "focus_next")
	}
	if cfg.Keymap.Form["tab"] != "focus_next" {
		t.Fatalf("keymap tab = %q, want %q", cfg.Keymap.Form["tab"], "focus_next")
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTRANSLIT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTRANSLIT_CONFIG_HOME", dir)
	writeFile(t, filepath.Join(dir, "config.toml"), "[editor\n")
	if _, err := Load(); err == nil {
		t.Fatalf("Load error = nil, want parse error")
	}
}
