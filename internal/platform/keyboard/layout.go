package keyboard

import "strings"

// abbreviations maps input source names, lowercased, to the two letter tag
// shown in the statusline.
var abbreviations = map[string]string{
	"abc":               "US",
	"us":                "US",
	"us extended":       "US",
	"british":           "GB",
	"kannada":           "KN",
	"kannada qwerty":    "KN",
	"devanagari":        "HI",
	"devanagari qwerty": "HI",
	"hindi":             "HI",
	"tamil":             "TA",
	"tamil anjal":       "TA",
	"telugu":            "TE",
	"telugu qwerty":     "TE",
	"malayalam":         "ML",
	"bangla":            "BN",
	"bangla qwerty":     "BN",
	"gujarati":          "GU",
	"gurmukhi":          "PA",
	"oriya":             "OR",
	"odia":              "OR",
}

// Short reduces a raw layout identifier to a statusline tag. It accepts XKB
// lists ("us,in"), reverse-DNS source IDs ("com.apple.keylayout.Kannada")
// and plain names.
func Short(raw string) string {
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndexByte(raw, '.'); i >= 0 {
		raw = raw[i+1:]
	}
	name := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(raw))
	if name == "" {
		return ""
	}
	if tag, ok := abbreviations[strings.ToLower(name)]; ok {
		return tag
	}
	if len(name) <= 3 {
		return strings.ToUpper(name)
	}
	return name
}
