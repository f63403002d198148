package hotkey

import (
	"errors"

	"github.com/petems/shortcut-tray/internal/keys"
)

var (
	// ErrUnsupported is returned by New where global hotkeys are unavailable.
	ErrUnsupported = errors.New("global hotkeys not supported on this platform")
	// ErrUnsupportedKey means the key code has no OS equivalent.
	ErrUnsupportedKey = errors.New("key code cannot be registered as a global hotkey")
)

// Registrar defines the interface for OS-level global hotkey registration.
// onPress is called for key-down only.
type Registrar interface {
	Register(combo keys.Combination, onPress func()) error
	Unregister(combo keys.Combination) error
	Close() error
}

type nopRegistrar struct{}

// Nop returns a Registrar that accepts every registration and never fires.
func Nop() Registrar { return nopRegistrar{} }

func (nopRegistrar) Register(keys.Combination, func()) error { return nil }
func (nopRegistrar) Unregister(keys.Combination) error       { return nil }
func (nopRegistrar) Close() error                            { return nil }
