//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework ApplicationServices -framework Cocoa
#import <ApplicationServices/ApplicationServices.h>
#import <Cocoa/Cocoa.h>

int checkAccessibilityPermission(int prompt) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: prompt ? @YES : @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

// CheckAccessibility reports whether the app may observe and post key events.
// With prompt set, macOS shows its grant dialog when access is missing.
func CheckAccessibility(prompt bool) bool {
	p := C.int(0)
	if prompt {
		p = 1
	}
	return C.checkAccessibilityPermission(p) == 1
}

// EnsurePermissions prompts for accessibility access (System Settings >
// Privacy & Security > Accessibility) and fails until it is granted.
func EnsurePermissions() error {
	if !CheckAccessibility(true) {
		return ErrAccessibilityDenied
	}
	return nil
}
