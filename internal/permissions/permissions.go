// Package permissions checks the OS grants global hotkeys and synthetic
// keystrokes depend on.
package permissions

import "errors"

// ErrAccessibilityDenied means the process is not trusted for accessibility.
var ErrAccessibilityDenied = errors.New("accessibility permission not granted")
