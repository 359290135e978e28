package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Language is one target script offered by the input tools service.
type Language struct {
	Name    string   `toml:"name"`
	Code    string   `toml:"code"`
	Aliases []string `toml:"aliases"`
}

type Languages struct {
	Languages []Language `toml:"language"`
}

func DefaultLanguages() Languages {
	return Languages{Languages: []Language{
		{Name: "Kannada", Code: "kn", Aliases: []string{"kannada", "knda"}},
		{Name: "Hindi", Code: "hi", Aliases: []string{"hindi", "deva"}},
		{Name: "Tamil", Code: "ta", Aliases: []string{"tamil", "taml"}},
		{Name: "Telugu", Code: "te", Aliases: []string{"telugu", "telu"}},
		{Name: "Malayalam", Code: "ml", Aliases: []string{"malayalam", "mlym"}},
		{Name: "Marathi", Code: "mr", Aliases: []string{"marathi"}},
		{Name: "Bengali", Code: "bn", Aliases: []string{"bengali", "bangla", "beng"}},
		{Name: "Gujarati", Code: "gu", Aliases: []string{"gujarati", "gujr"}},
		{Name: "Punjabi", Code: "pa", Aliases: []string{"punjabi", "guru"}},
		{Name: "Odia", Code: "or", Aliases: []string{"odia", "oriya", "orya"}},
		{Name: "Sanskrit", Code: "sa", Aliases: []string{"sanskrit"}},
		{Name: "Nepali", Code: "ne", Aliases: []string{"nepali"}},
	}}
}

// Match finds a language by code, name or alias, case-insensitively.
func (l Languages) Match(key string) *Language {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil
	}
	for i := range l.Languages {
		lang := &l.Languages[i]
		if strings.ToLower(lang.Code) == key || strings.ToLower(lang.Name) == key {
			return lang
		}
		for _, a := range lang.Aliases {
			if strings.ToLower(a) == key {
				return lang
			}
		}
	}
	return nil
}

// Next returns the code following code, wrapping around. Unknown codes
// restart at the first language.
func (l Languages) Next(code string) string {
	if len(l.Languages) == 0 {
		return code
	}
	for i, lang := range l.Languages {
		if lang.Code == code {
			return l.Languages[(i+1)%len(l.Languages)].Code
		}
	}
	return l.Languages[0].Code
}

func LoadLanguages() (Languages, error) {
	path, err := LanguagesPath()
	if err != nil {
		return DefaultLanguages(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultLanguages(), nil
		}
		return DefaultLanguages(), err
	}

	var cfg Languages
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return DefaultLanguages(), err
	}
	if len(cfg.Languages) == 0 {
		return DefaultLanguages(), nil
	}
	return cfg, nil
}

func LanguagesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "languages.toml"), nil
}
