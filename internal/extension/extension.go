// Package extension declares extensions: named bundles of actions, each bound
// to a default key combination.
package extension

import (
	"encoding/json"

	"github.com/petems/shortcut-tray/internal/keys"
)

// Action is the work a shortcut triggers. Run is called synchronously on the
// goroutine that delivered the key event.
type Action interface {
	Run()
}

// ActionFunc adapts a plain function to Action.
type ActionFunc func()

// Run calls f.
func (f ActionFunc) Run() { f() }

// Shortcut is one named action within an extension.
type Shortcut struct {
	Name        string
	Description string
	Action      Action
	// Default is the combination used when the user has no override.
	// The zero value means there is no default.
	Default keys.Combination
}

// HasDefault reports whether s declares a default combination.
func (s Shortcut) HasDefault() bool {
	return !s.Default.IsZero()
}

// Extension is a fixed bundle of related shortcuts.
type Extension struct {
	Name        string
	Description string
	Shortcuts   []Shortcut
}

// Shortcut returns the named shortcut.
func (e Extension) Shortcut(name string) (Shortcut, bool) {
	for _, s := range e.Shortcuts {
		if s.Name == name {
			return s, true
		}
	}
	return Shortcut{}, false
}

// Description is the name/description view of an extension. It never carries
// actions or combinations.
type Description struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Shortcuts   []ShortcutDescription `json:"shortcuts"`
}

// ShortcutDescription is the name/description view of a shortcut.
type ShortcutDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Describe returns the description payload for e.
func (e Extension) Describe() Description {
	d := Description{
		Name:        e.Name,
		Description: e.Description,
		Shortcuts:   make([]ShortcutDescription, 0, len(e.Shortcuts)),
	}
	for _, s := range e.Shortcuts {
		d.Shortcuts = append(d.Shortcuts, ShortcutDescription{Name: s.Name, Description: s.Description})
	}
	return d
}

// String returns the description payload as JSON.
func (e Extension) String() string {
	data, err := json.Marshal(e.Describe())
	if err != nil {
		return e.Name
	}
	return string(data)
}
