package manager

import (
	"encoding/json"
	"fmt"

	"github.com/petems/shortcut-tray/internal/cache"
	"github.com/petems/shortcut-tray/internal/extension"
)

// ExtensionView is the rendered state of one registered extension.
type ExtensionView struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Enabled     bool           `json:"enabled"`
	Shortcuts   []ShortcutView `json:"shortcuts"`
}

// ShortcutView is the rendered state of one shortcut. Shortcut holds the
// effective combination in canonical text.
type ShortcutView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Shortcut    string `json:"shortcut"`
}

// Snapshot renders every registered extension merged with its cache record.
// Extensions without a record render disabled with default combinations.
func (m *Manager) Snapshot() ([]ExtensionView, error) {
	m.mu.Lock()
	records := m.cache.AsMap()
	m.mu.Unlock()

	exts := m.registry.All()
	views := make([]ExtensionView, 0, len(exts))
	for _, ext := range exts {
		view, err := renderExtension(ext, records)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// SnapshotJSON renders Snapshot as the JSON array the settings UI reads.
func (m *Manager) SnapshotJSON() (string, error) {
	views, err := m.Snapshot()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(views)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

func renderExtension(ext extension.Extension, records map[string]cache.Record) (ExtensionView, error) {
	rec, hasRecord := records[ext.Name]

	view := ExtensionView{
		Name:        ext.Name,
		Description: ext.Description,
		Enabled:     hasRecord && rec.Enabled,
		Shortcuts:   make([]ShortcutView, 0, len(ext.Shortcuts)),
	}

	for _, s := range ext.Shortcuts {
		combo, ok := rec.Override(s.Name)
		if !ok {
			if !s.HasDefault() {
				return ExtensionView{}, fmt.Errorf("%w: %s/%s", ErrMissingDefaultCombination, ext.Name, s.Name)
			}
			combo = s.Default
		}
		view.Shortcuts = append(view.Shortcuts, ShortcutView{
			Name:        s.Name,
			Description: s.Description,
			Shortcut:    combo.String(),
		})
	}
	return view, nil
}
