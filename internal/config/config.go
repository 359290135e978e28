package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Keymap struct {
	Form map[string]string `toml:"form"`
}

type EditorOptions struct {
	DebounceMs     int    `toml:"debounce-ms"`
	Separator      string `toml:"separator"`
	LabelWidth     int    `toml:"label-width"`
	OverlayMaxRows int    `toml:"overlay-max-rows"`
}

type ProviderOptions struct {
	Endpoint      string `toml:"endpoint"`
	TimeoutMs     int    `toml:"timeout-ms"`
	Candidates    int    `toml:"candidates"`
	BridgeURL     string `toml:"bridge-url"`
	BreakerFails  int    `toml:"breaker-failures"`
	BreakerResetS int    `toml:"breaker-reset-seconds"`
}

type Theme struct {
	Theme                     string `toml:"theme"`
	Foreground                string `toml:"foreground"`
	Background                string `toml:"background"`
	StatuslineForeground      string `toml:"statusline-foreground"`
	StatuslineBackground      string `toml:"statusline-background"`
	LabelForeground           string `toml:"label-foreground"`
	FieldBackground           string `toml:"field-background"`
	FocusBackground           string `toml:"focus-background"`
	OverlayForeground         string `toml:"overlay-foreground"`
	OverlayBackground         string `toml:"overlay-background"`
	OverlaySelectedForeground string `toml:"overlay-selected-foreground"`
	OverlaySelectedBackground string `toml:"overlay-selected-background"`
	OverlayBorderForeground   string `toml:"overlay-border-foreground"`
}

type Config struct {
	Editor   EditorOptions   `toml:"editor"`
	Provider ProviderOptions `toml:"provider"`
	Theme    Theme           `toml:"theme"`
	Keymap   Keymap          `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			DebounceMs:     500,
			Separator:      " ",
			LabelWidth:     8,
			OverlayMaxRows: 8,
		},
		Provider: ProviderOptions{
			Endpoint:      "https://inputtools.google.com/request",
			TimeoutMs:     3000,
			Candidates:    5,
			BreakerFails:  5,
			BreakerResetS: 30,
		},
		Theme: Theme{
			Foreground:                "#B3B1AD",
			Background:                "#0A0E14",
			StatuslineForeground:      "#B3B1AD",
			StatuslineBackground:      "#0F1419",
			LabelForeground:           "#59C2FF",
			FieldBackground:           "#0F1419",
			FocusBackground:           "#1A2430",
			OverlayForeground:         "",
			OverlayBackground:         "",
			OverlaySelectedForeground: "",
			OverlaySelectedBackground: "",
			OverlayBorderForeground:   "#3E4B59",
		},
		Keymap: Keymap{
			Form: map[string]string{
				"tab":       "focus_next",
				"shift+tab": "focus_prev",
				"ctrl+c":    "quit",
				"ctrl+q":    "quit",
				"ctrl+s":    "save",
				"ctrl+t":    "toggle_enabled",
				"ctrl+a":    "toggle_auto_replace",
				"ctrl+l":    "cycle_language",
				"left":      "move_left",
				"right":     "move_right",
				"home":      "line_start",
				"end":       "line_end",
				"backspace": "backspace",
				"enter":     "newline",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}

	if userCfg.Editor.DebounceMs > 0 {
		cfg.Editor.DebounceMs = userCfg.Editor.DebounceMs
	}
	if userCfg.Editor.Separator != "" {
		cfg.Editor.Separator = userCfg.Editor.Separator
	}
	if userCfg.Editor.LabelWidth > 0 {
		cfg.Editor.LabelWidth = userCfg.Editor.LabelWidth
	}
	if userCfg.Editor.OverlayMaxRows > 0 {
		cfg.Editor.OverlayMaxRows = userCfg.Editor.OverlayMaxRows
	}
	if userCfg.Provider.Endpoint != "" {
		cfg.Provider.Endpoint = userCfg.Provider.Endpoint
	}
	if userCfg.Provider.TimeoutMs > 0 {
		cfg.Provider.TimeoutMs = userCfg.Provider.TimeoutMs
	}
	if userCfg.Provider.Candidates > 0 {
		cfg.Provider.Candidates = userCfg.Provider.Candidates
	}
	if userCfg.Provider.BridgeURL != "" {
		cfg.Provider.BridgeURL = userCfg.Provider.BridgeURL
	}
	if userCfg.Provider.BreakerFails > 0 {
		cfg.Provider.BreakerFails = userCfg.Provider.BreakerFails
	}
	if userCfg.Provider.BreakerResetS > 0 {
		cfg.Provider.BreakerResetS = userCfg.Provider.BreakerResetS
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	if userCfg.Keymap.Form != nil {
		for k, v := range userCfg.Keymap.Form {
			cfg.Keymap.Form[k] = v
		}
	}

	return cfg, nil
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.LabelForeground != "" {
		dst.LabelForeground = src.LabelForeground
	}
	if src.FieldBackground != "" {
		dst.FieldBackground = src.FieldBackground
	}
	if src.FocusBackground != "" {
		dst.FocusBackground = src.FocusBackground
	}
	if src.OverlayForeground != "" {
		dst.OverlayForeground = src.OverlayForeground
	}
	if src.OverlayBackground != "" {
		dst.OverlayBackground = src.OverlayBackground
	}
	if src.OverlaySelectedForeground != "" {
		dst.OverlaySelectedForeground = src.OverlaySelectedForeground
	}
	if src.OverlaySelectedBackground != "" {
		dst.OverlaySelectedBackground = src.OverlaySelectedBackground
	}
	if src.OverlayBorderForeground != "" {
		dst.OverlayBorderForeground = src.OverlayBorderForeground
	}
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QTRANSLIT_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qtranslit"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qtranslit"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
