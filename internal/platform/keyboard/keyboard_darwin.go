//go:build darwin && cgo

package keyboard

/*
#cgo LDFLAGS: -framework Carbon -framework CoreFoundation
#include <Carbon/Carbon.h>
#include <CoreFoundation/CoreFoundation.h>

// qtranslit_input_source writes the most specific identifier of the active
// input source into buf. It returns 0 when none is available.
static int qtranslit_input_source(char *buf, int size) {
    CFRunLoopRunInMode(kCFRunLoopDefaultMode, 0, false);
    TISInputSourceRef src = TISCopyCurrentKeyboardInputSource();
    if (src == NULL) {
        return 0;
    }
    CFStringRef keys[] = {
        kTISPropertyInputModeID,
        kTISPropertyInputSourceID,
        kTISPropertyLocalizedName,
    };
    int found = 0;
    for (int i = 0; i < 3 && !found; i++) {
        CFStringRef v = TISGetInputSourceProperty(src, keys[i]);
        if (v != NULL && CFStringGetCString(v, buf, size, kCFStringEncodingUTF8)) {
            found = 1;
        }
    }
    CFRelease(src);
    return found;
}
*/
import "C"

import "strings"

// CurrentLayoutRaw is the input mode or source ID reported by Text Input
// Sources, falling back to its localized name.
func CurrentLayoutRaw() string {
	var buf [256]C.char
	if C.qtranslit_input_source(&buf[0], C.int(len(buf))) == 0 {
		return ""
	}
	return strings.TrimSpace(C.GoString(&buf[0]))
}

// CurrentLayout is the statusline tag of the active input source.
func CurrentLayout() string {
	return Short(CurrentLayoutRaw())
}
