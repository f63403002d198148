//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

// Post Cmd+<key> to the HID event tap
int postCommandShortcut(CGKeyCode key) {
    CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
    if (source == NULL) return 0;

    CGEventRef down = CGEventCreateKeyboardEvent(source, key, true);
    CGEventRef up = CGEventCreateKeyboardEvent(source, key, false);
    CGEventSetFlags(down, kCGEventFlagMaskCommand);
    CGEventSetFlags(up, kCGEventFlagMaskCommand);

    CGEventPost(kCGHIDEventTap, down);
    CGEventPost(kCGHIDEventTap, up);

    CFRelease(down);
    CFRelease(up);
    CFRelease(source);
    return 1;
}
*/
import "C"

import "fmt"

// macOS virtual key codes
const (
	keyC = 8
	keyV = 9
)

// sendPasteShortcut sends Cmd+V on macOS
func sendPasteShortcut() error {
	return postCommandShortcut(keyV)
}

// sendCopyShortcut sends Cmd+C on macOS
func sendCopyShortcut() error {
	return postCommandShortcut(keyC)
}

func postCommandShortcut(key C.CGKeyCode) error {
	if C.postCommandShortcut(key) == 0 {
		return fmt.Errorf("failed to create keyboard event source")
	}
	return nil
}
