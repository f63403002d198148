// Package hotkey connects the shortcut dispatch index to OS-level global
// hotkeys. The OS side lives behind Registrar; see the system subpackage.
package hotkey

import (
	"errors"
	"sort"
	"sync"

	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/rs/zerolog"
)

// DispatchFunc delivers a pressed combination. It reports whether an action ran.
type DispatchFunc func(keys.Combination) bool

// Binder keeps the set of OS registrations equal to the combinations it was
// last synced with, routing each key-down to dispatch.
type Binder struct {
	registrar Registrar
	dispatch  DispatchFunc
	log       zerolog.Logger

	mu     sync.Mutex
	active map[keys.Combination]struct{}
}

func NewBinder(registrar Registrar, dispatch DispatchFunc, log zerolog.Logger) *Binder {
	return &Binder{
		registrar: registrar,
		dispatch:  dispatch,
		log:       log,
		active:    make(map[keys.Combination]struct{}),
	}
}

// Sync unregisters combinations no longer wanted and registers new ones.
// A combination that fails to register is logged and skipped; the returned
// error joins every such failure.
func (b *Binder) Sync(wanted []keys.Combination) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	want := make(map[keys.Combination]struct{}, len(wanted))
	for _, c := range wanted {
		want[c] = struct{}{}
	}

	var errs []error
	for _, combo := range sortedCombos(b.active) {
		if _, keep := want[combo]; keep {
			continue
		}
		if err := b.registrar.Unregister(combo); err != nil {
			b.log.Error().Err(err).Str("shortcut", combo.String()).Msg("Failed to unregister hotkey")
			errs = append(errs, err)
		}
		delete(b.active, combo)
	}

	for _, combo := range sortedCombos(want) {
		if _, have := b.active[combo]; have {
			continue
		}
		if err := b.registrar.Register(combo, b.onPress(combo)); err != nil {
			b.log.Error().Err(err).Str("shortcut", combo.String()).Msg("Failed to register hotkey")
			errs = append(errs, err)
			continue
		}
		b.active[combo] = struct{}{}
	}

	b.log.Debug().Int("hotkeys", len(b.active)).Msg("Hotkeys synced")
	return errors.Join(errs...)
}

// Active returns the registered combinations sorted by canonical text.
func (b *Binder) Active() []keys.Combination {
	b.mu.Lock()
	defer b.mu.Unlock()
	return sortedCombos(b.active)
}

// Close unregisters everything and closes the registrar.
func (b *Binder) Close() error {
	if err := b.Sync(nil); err != nil {
		b.log.Warn().Err(err).Msg("Hotkeys left registered on close")
	}
	return b.registrar.Close()
}

func (b *Binder) onPress(combo keys.Combination) func() {
	return func() {
		if !b.dispatch(combo) {
			b.log.Debug().Str("shortcut", combo.String()).Msg("Hotkey has no bound action")
		}
	}
}

func sortedCombos(set map[keys.Combination]struct{}) []keys.Combination {
	out := make([]keys.Combination, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
