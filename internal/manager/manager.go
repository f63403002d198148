// Package manager joins the extension registry with the shortcut cache. It
// renders the merged state for the settings UI and routes key combinations to
// the action bound to them.
package manager

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/petems/shortcut-tray/internal/cache"
	"github.com/petems/shortcut-tray/internal/extension"
	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/rs/zerolog"
)

var (
	// ErrMissingDefaultCombination means a shortcut has neither an override nor a default.
	ErrMissingDefaultCombination = errors.New("shortcut has no default combination")
	// ErrCombinationConflict means two shortcuts resolved to the same combination.
	ErrCombinationConflict = errors.New("key combination bound more than once")
	// ErrUnknownExtension means no registered extension has the given name.
	ErrUnknownExtension = errors.New("unknown extension")
	// ErrUnknownAction means the extension declares no shortcut with the given name.
	ErrUnknownAction = errors.New("unknown action")
)

type Config struct {
	Registry *extension.Registry
	Cache    *cache.Cache
	Logger   zerolog.Logger
}

// Manager owns the cache and the lookup indices built from it.
//
// Dispatch reads the published index without locking. Rebuilds and cache
// access are serialized by mu, and a rebuilt index is published only once it
// is complete.
type Manager struct {
	registry *extension.Registry
	cache    *cache.Cache
	log      zerolog.Logger

	mu  sync.Mutex
	idx atomic.Pointer[index]
}

func New(cfg Config) *Manager {
	reg := cfg.Registry
	if reg == nil {
		reg = extension.NewRegistry()
	}
	m := &Manager{
		registry: reg,
		cache:    cfg.Cache,
		log:      cfg.Logger,
	}
	m.idx.Store(emptyIndex())
	return m
}

// Register adds a built-in extension. Call it before Initialize.
func (m *Manager) Register(ext extension.Extension) {
	m.registry.Register(ext)
}

// Initialized reports whether Initialize has published an index.
func (m *Manager) Initialized() bool {
	return m.idx.Load().initialized
}

// Initialize loads the cache and rebuilds both indices from scratch. It can
// be called again at any time.
//
// An unreadable or malformed cache is treated as empty so the app can still
// start; the condition is logged and returned alongside any combination
// conflicts. The index is published in every case.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if err := m.cache.Load(); err != nil {
		if errors.Is(err, cache.ErrMalformedCache) {
			m.log.Warn().Err(err).Str("path", m.cache.Path()).Msg("Ignoring malformed shortcut cache")
		} else {
			m.log.Error().Err(err).Str("path", m.cache.Path()).Msg("Failed to read shortcut cache, starting empty")
		}
		m.cache.ReplaceFrom(nil)
		errs = append(errs, err)
	}

	errs = append(errs, m.rebuildLocked())
	return errors.Join(errs...)
}

func (m *Manager) rebuildLocked() error {
	next, err := buildIndex(m.registry, m.cache.Records(), m.log)
	m.idx.Store(next)

	if err != nil {
		m.log.Error().Err(err).Msg("Conflicting shortcut combinations")
	}
	m.log.Info().Int("bindings", len(next.dispatch)).Msg("Shortcut index rebuilt")
	return err
}

// Dispatch runs the action bound to combo, if any, on the calling goroutine.
// It reports whether an action ran. Unbound combinations are ignored.
func (m *Manager) Dispatch(combo keys.Combination) bool {
	bound, ok := m.idx.Load().dispatch[combo]
	if !ok {
		return false
	}
	bound.action.Run()
	return true
}

// Bindings returns the live dispatch index sorted by combination text.
func (m *Manager) Bindings() []Binding {
	return m.idx.Load().bindings()
}

// Records returns a copy of the cache records.
func (m *Manager) Records() []cache.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Records()
}

// Apply replaces every cache record, rebuilds the indices and saves the cache.
func (m *Manager) Apply(records []cache.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.ReplaceFrom(records)
	return m.commitLocked()
}

// ApplyJSON is Apply for a JSON payload in the cache or snapshot shape.
func (m *Manager) ApplyJSON(payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cache.ReplaceFromJSON(payload); err != nil {
		return err
	}
	return m.commitLocked()
}

// SetEnabled turns an extension on or off.
func (m *Manager) SetEnabled(ext string, enabled bool) error {
	return m.update(ext, "", func(rec *cache.Record) {
		rec.Enabled = enabled
	})
}

// SetShortcut overrides the combination of one action.
func (m *Manager) SetShortcut(ext, action string, combo keys.Combination) error {
	if combo.IsZero() {
		return keys.ErrMissingCode
	}
	return m.update(ext, action, func(rec *cache.Record) {
		for i := range rec.Shortcuts {
			if rec.Shortcuts[i].Name == action {
				rec.Shortcuts[i].Shortcut = combo
				return
			}
		}
		rec.Shortcuts = append(rec.Shortcuts, cache.Shortcut{Name: action, Shortcut: combo})
	})
}

// ResetShortcut drops the override of one action so its default applies again.
func (m *Manager) ResetShortcut(ext, action string) error {
	return m.update(ext, action, func(rec *cache.Record) {
		kept := rec.Shortcuts[:0]
		for _, s := range rec.Shortcuts {
			if s.Name != action {
				kept = append(kept, s)
			}
		}
		rec.Shortcuts = kept
	})
}

// update edits the record of ext, creating a disabled one if needed. A
// non-empty action must be declared by ext.
func (m *Manager) update(ext, action string, edit func(*cache.Record)) error {
	declared, ok := m.registry.Get(ext)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownExtension, ext)
	}
	if action != "" {
		if _, ok := declared.Shortcut(action); !ok {
			return fmt.Errorf("%w: %s/%s", ErrUnknownAction, ext, action)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.cache.AsMap()[ext]
	if !ok {
		rec = cache.Record{Name: ext, Shortcuts: []cache.Shortcut{}}
	}
	edit(&rec)
	m.cache.Add(rec)
	return m.commitLocked()
}

// commitLocked publishes a new index for the current records and persists them.
func (m *Manager) commitLocked() error {
	rebuildErr := m.rebuildLocked()
	if err := m.cache.Save(); err != nil {
		m.log.Error().Err(err).Str("path", m.cache.Path()).Msg("Failed to save shortcut cache")
		return errors.Join(err, rebuildErr)
	}
	return rebuildErr
}
