package manager

import (
	"errors"
	"fmt"
	"sort"

	"github.com/petems/shortcut-tray/internal/cache"
	"github.com/petems/shortcut-tray/internal/extension"
	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/rs/zerolog"
)

// handlerKey identifies one shortcut across all extensions.
type handlerKey struct {
	extension string
	shortcut  string
}

// Binding is one live entry of the dispatch index.
type Binding struct {
	Combination keys.Combination
	Extension   string
	Shortcut    string
}

type boundAction struct {
	Binding
	action extension.Action
}

// index is immutable once published.
type index struct {
	initialized bool
	handlers    map[handlerKey]extension.Shortcut
	dispatch    map[keys.Combination]boundAction
}

func emptyIndex() *index {
	return &index{
		handlers: make(map[handlerKey]extension.Shortcut),
		dispatch: make(map[keys.Combination]boundAction),
	}
}

// buildIndex derives both lookups from the registry and the cache records.
// Every registered shortcut gets a handler entry. A dispatch entry exists for
// each shortcut of an enabled extension, bound to its override or, failing
// that, its default. A combination claimed twice keeps the later binding and
// the conflict is reported in the returned error.
func buildIndex(reg *extension.Registry, records []cache.Record, log zerolog.Logger) (*index, error) {
	idx := emptyIndex()
	idx.initialized = true

	for _, ext := range reg.All() {
		for _, s := range ext.Shortcuts {
			idx.handlers[handlerKey{ext.Name, s.Name}] = s
		}
	}

	var conflicts []error
	for _, rec := range records {
		if !rec.Enabled {
			continue
		}
		ext, ok := reg.Get(rec.Name)
		if !ok {
			log.Debug().Str("extension", rec.Name).Msg("Cache record has no registered extension")
			continue
		}

		for _, declared := range ext.Shortcuts {
			s, ok := idx.handlers[handlerKey{ext.Name, declared.Name}]
			if !ok {
				continue
			}

			combo, overridden := rec.Override(s.Name)
			if !overridden {
				if !s.HasDefault() {
					log.Warn().Str("extension", ext.Name).Str("action", s.Name).
						Msg("Shortcut has no combination, not bound")
					continue
				}
				combo = s.Default
			}

			if prev, taken := idx.dispatch[combo]; taken {
				conflicts = append(conflicts, fmt.Errorf("%w: %s bound to %s/%s and %s/%s",
					ErrCombinationConflict, combo, prev.Extension, prev.Shortcut, ext.Name, s.Name))
			}
			idx.dispatch[combo] = boundAction{
				Binding: Binding{Combination: combo, Extension: ext.Name, Shortcut: s.Name},
				action:  s.Action,
			}
		}
	}

	return idx, errors.Join(conflicts...)
}

// bindings lists the dispatch index ordered by canonical combination text.
func (idx *index) bindings() []Binding {
	out := make([]Binding, 0, len(idx.dispatch))
	for _, b := range idx.dispatch {
		out = append(out, b.Binding)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Combination.String() < out[j].Combination.String()
	})
	return out
}
