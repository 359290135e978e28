package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings are the user toggles pushed to the input session.
type Settings struct {
	Enabled     bool   `toml:"enabled"`
	Language    string `toml:"language"`
	AutoReplace bool   `toml:"auto-replace"`
}

func DefaultSettings() Settings {
	return Settings{Enabled: true, Language: "kn", AutoReplace: false}
}

// Validate rejects settings that cannot drive a request.
func (s Settings) Validate() error {
	lang := strings.TrimSpace(s.Language)
	if lang == "" {
		return fmt.Errorf("settings: language must not be empty")
	}
	for _, r := range lang {
		if (r < 'a' || r > 'z') && r != '-' {
			return fmt.Errorf("settings: invalid language %q", s.Language)
		}
	}
	return nil
}

func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.toml"), nil
}

// ParseSettings decodes data over the defaults and validates the result.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if _, err := toml.Decode(string(data), &s); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	s.Language = strings.TrimSpace(s.Language)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettings reads path; a missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, err
	}
	return ParseSettings(data)
}

func SaveSettings(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
