package config

import (
	"path/filepath"
	"testing"
)

func TestLanguagesMatch(t *testing.T) {
	cfg := Languages{
		Languages: []Language{
			{Name: "Kannada", Code: "kn", Aliases: []string{"knda"}},
			{Name: "Hindi", Code: "hi", Aliases: []string{"deva"}},
		},
	}

	if got := cfg.Match("kn"); got == nil || got.Code != "kn" {
		t.Fatalf("Match kn = %#v, want kn", got)
	}
	if got := cfg.Match("HINDI"); got == nil || got.Code != "hi" {
		t.Fatalf("Match HINDI = %#v, want hi", got)
	}
	if got := cfg.Match(" knda "); got == nil || got.Code != "kn" {
		t.Fatalf("Match knda = %#v, want kn", got)
	}
	if got := cfg.Match("fr"); got != nil {
		t.Fatalf("Match fr = %#v, want nil", got)
	}
	if got := cfg.Match(""); got != nil {
		t.Fatalf("Match empty = %#v, want nil", got)
	}
}

func TestLanguagesNext(t *testing.T) {
	cfg := Languages{Languages: []Language{{Code: "kn"}, {Code: "hi"}, {Code: "ta"}}}
	tests := []struct{ in, want string }{
		{"kn", "hi"},
		{"hi", "ta"},
		{"ta", "kn"},
		{"xx", "kn"},
	}
	for _, tt := range tests {
		if got := cfg.Next(tt.in); got != tt.want {
			t.Fatalf("Next(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := (Languages{}).Next("kn"); got != "kn" {
		t.Fatalf("empty Next = %q, want kn", got)
	}
}

func TestLoadLanguages(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTRANSLIT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "languages.toml"), `
[[language]]
name = "Tamil"
code = "ta"
aliases = ["tamil"]

[[language]]
name = "Telugu"
code = "te"
`)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != 2 {
		t.Fatalf("languages = %d, want 2", len(cfg.Languages))
	}
	if got := cfg.Match("tamil"); got == nil || got.Code != "ta" {
		t.Fatalf("Match tamil = %#v, want ta", got)
	}
}

func TestLoadLanguagesDefaults(t *testing.T) {
	t.Setenv("QTRANSLIT_CONFIG_HOME", t.TempDir())
	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if got := cfg.Match("kn"); got == nil || got.Name != "Kannada" {
		t.Fatalf("default Match kn = %#v, want Kannada", got)
	}
}
