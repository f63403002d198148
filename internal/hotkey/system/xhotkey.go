//go:build darwin || linux || windows

// Package system registers global hotkeys with the operating system.
package system

import (
	"fmt"
	"sync"

	"github.com/petems/shortcut-tray/internal/hotkey"
	"github.com/petems/shortcut-tray/internal/keys"
	xhotkey "golang.design/x/hotkey"
)

type registration struct {
	hk   *xhotkey.Hotkey
	done chan struct{}
}

type osRegistrar struct {
	mu     sync.Mutex
	active map[keys.Combination]*registration
}

// New creates a hotkey.Registrar using golang.design/x/hotkey (X11/Cocoa/Win32).
// On macOS registration needs a running main event loop, so call Register
// from a goroutine other than the one running the tray.
func New() (hotkey.Registrar, error) {
	return &osRegistrar{active: make(map[keys.Combination]*registration)}, nil
}

func (r *osRegistrar) Register(combo keys.Combination, onPress func()) error {
	key, ok := keyMap[combo.Code]
	if !ok {
		return fmt.Errorf("%w: %s", hotkey.ErrUnsupportedKey, combo)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.active[combo]; exists {
		return fmt.Errorf("hotkey %s already registered", combo)
	}

	hk := xhotkey.New(toModifiers(combo.Mods), key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("registering %s: %w", combo, err)
	}

	reg := &registration{hk: hk, done: make(chan struct{})}
	r.active[combo] = reg

	go func() {
		for {
			select {
			case <-reg.done:
				return
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				onPress()
			}
		}
	}()
	return nil
}

func (r *osRegistrar) Unregister(combo keys.Combination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(combo)
}

func (r *osRegistrar) unregisterLocked(combo keys.Combination) error {
	reg, ok := r.active[combo]
	if !ok {
		return nil
	}
	delete(r.active, combo)
	close(reg.done)
	if err := reg.hk.Unregister(); err != nil {
		return fmt.Errorf("unregistering %s: %w", combo, err)
	}
	return nil
}

func (r *osRegistrar) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for combo := range r.active {
		if err := r.unregisterLocked(combo); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func toModifiers(m keys.Modifier) []xhotkey.Modifier {
	var mods []xhotkey.Modifier
	for _, mod := range []keys.Modifier{keys.ModSuper, keys.ModAlt, keys.ModControl, keys.ModShift} {
		if m.Has(mod) {
			mods = append(mods, modifierMap[mod])
		}
	}
	return mods
}

// keyMap covers the codes every supported platform can grab.
var keyMap = map[keys.Code]xhotkey.Key{
	"KeyA": xhotkey.KeyA, "KeyB": xhotkey.KeyB, "KeyC": xhotkey.KeyC, "KeyD": xhotkey.KeyD,
	"KeyE": xhotkey.KeyE, "KeyF": xhotkey.KeyF, "KeyG": xhotkey.KeyG, "KeyH": xhotkey.KeyH,
	"KeyI": xhotkey.KeyI, "KeyJ": xhotkey.KeyJ, "KeyK": xhotkey.KeyK, "KeyL": xhotkey.KeyL,
	"KeyM": xhotkey.KeyM, "KeyN": xhotkey.KeyN, "KeyO": xhotkey.KeyO, "KeyP": xhotkey.KeyP,
	"KeyQ": xhotkey.KeyQ, "KeyR": xhotkey.KeyR, "KeyS": xhotkey.KeyS, "KeyT": xhotkey.KeyT,
	"KeyU": xhotkey.KeyU, "KeyV": xhotkey.KeyV, "KeyW": xhotkey.KeyW, "KeyX": xhotkey.KeyX,
	"KeyY": xhotkey.KeyY, "KeyZ": xhotkey.KeyZ,

	"Digit0": xhotkey.Key0, "Digit1": xhotkey.Key1, "Digit2": xhotkey.Key2, "Digit3": xhotkey.Key3,
	"Digit4": xhotkey.Key4, "Digit5": xhotkey.Key5, "Digit6": xhotkey.Key6, "Digit7": xhotkey.Key7,
	"Digit8": xhotkey.Key8, "Digit9": xhotkey.Key9,

	"F1": xhotkey.KeyF1, "F2": xhotkey.KeyF2, "F3": xhotkey.KeyF3, "F4": xhotkey.KeyF4,
	"F5": xhotkey.KeyF5, "F6": xhotkey.KeyF6, "F7": xhotkey.KeyF7, "F8": xhotkey.KeyF8,
	"F9": xhotkey.KeyF9, "F10": xhotkey.KeyF10, "F11": xhotkey.KeyF11, "F12": xhotkey.KeyF12,
	"F13": xhotkey.KeyF13, "F14": xhotkey.KeyF14, "F15": xhotkey.KeyF15, "F16": xhotkey.KeyF16,
	"F17": xhotkey.KeyF17, "F18": xhotkey.KeyF18, "F19": xhotkey.KeyF19, "F20": xhotkey.KeyF20,

	"Space":      xhotkey.KeySpace,
	"Enter":      xhotkey.KeyReturn,
	"Escape":     xhotkey.KeyEscape,
	"Delete":     xhotkey.KeyDelete,
	"Tab":        xhotkey.KeyTab,
	"ArrowLeft":  xhotkey.KeyLeft,
	"ArrowRight": xhotkey.KeyRight,
	"ArrowUp":    xhotkey.KeyUp,
	"ArrowDown":  xhotkey.KeyDown,
}
