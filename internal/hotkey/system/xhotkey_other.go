//go:build !darwin && !linux && !windows

package system

import "github.com/petems/shortcut-tray/internal/hotkey"

// New reports that global hotkeys are unavailable.
func New() (hotkey.Registrar, error) {
	return nil, hotkey.ErrUnsupported
}
