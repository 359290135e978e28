//go:build !darwin || !cgo

package keyboard

import (
	"os"
	"strings"
)

// CurrentLayoutRaw reads the XKB layout hint from the environment when there
// is no platform API to ask.
func CurrentLayoutRaw() string {
	for _, key := range []string{"QTRANSLIT_LAYOUT", "XKB_DEFAULT_LAYOUT"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func CurrentLayout() string {
	return Short(CurrentLayoutRaw())
}
