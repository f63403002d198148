package keys

import "strings"

// Modifier is a set of modifier keys held alongside a key code.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModSuper is Cmd on macOS and the Windows/Super key elsewhere.
	ModSuper Modifier = 1 << iota

	// ModAlt is Option on macOS.
	ModAlt

	// ModControl is the Control key.
	ModControl

	// ModShift is the Shift key.
	ModShift
)

// canonicalOrder is the order modifiers appear in canonical text.
var canonicalOrder = []struct {
	mod     Modifier
	name    string
	present string
}{
	{ModSuper, "super", "Cmd"},
	{ModAlt, "alt", "Opt"},
	{ModControl, "control", "Ctrl"},
	{ModShift, "shift", "Shift"},
}

// modifierNames maps lower-cased modifier spellings to Modifier values.
var modifierNames = map[string]Modifier{
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"meta":    ModSuper,
	"win":     ModSuper,
	"alt":     ModAlt,
	"opt":     ModAlt,
	"option":  ModAlt,
	"control": ModControl,
	"ctrl":    ModControl,
	"shift":   ModShift,
}

// Has returns true if m contains every modifier in mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod == mod
}

// With returns a new Modifier with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// String returns the canonical form, e.g. "super+alt".
func (m Modifier) String() string {
	return m.join(func(name, _ string) string { return name })
}

// Present returns the form shown to users, e.g. "Cmd+Opt".
func (m Modifier) Present() string {
	return m.join(func(_, present string) string { return present })
}

func (m Modifier) join(pick func(name, present string) string) string {
	if m.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(canonicalOrder))
	for _, entry := range canonicalOrder {
		if m.Has(entry.mod) {
			parts = append(parts, pick(entry.name, entry.present))
		}
	}
	return strings.Join(parts, "+")
}

// ModifierFromName returns the Modifier for a name (case-insensitive).
// The second result is false when the name is not a modifier.
func ModifierFromName(name string) (Modifier, bool) {
	m, ok := modifierNames[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}
