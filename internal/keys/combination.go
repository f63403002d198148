// Package keys models global-hotkey key combinations and their canonical text form.
//
// A combination is written "modifier+modifier+...+Code" with modifiers lower-cased in the
// fixed order super, alt, control, shift, e.g. "super+alt+KeyV". That text is what the
// cache file stores and what the UI renders.
package keys

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmptyCombination = errors.New("empty key combination")
	ErrUnknownModifier  = errors.New("unknown modifier")
	ErrUnknownCode      = errors.New("unknown key code")
	ErrMissingCode      = errors.New("key combination has no key code")
)

// Combination is a modifier set plus exactly one key code. It is comparable and
// can be used as a map key.
type Combination struct {
	Mods Modifier
	Code Code
}

// New builds a combination from a code and any number of modifiers.
func New(code Code, mods ...Modifier) Combination {
	var m Modifier
	for _, mod := range mods {
		m = m.With(mod)
	}
	return Combination{Mods: m, Code: code}
}

// MustParse is like Parse but panics on error. Intended for compiled-in defaults.
func MustParse(s string) Combination {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse parses canonical text ("super+KeyC") as well as the UI's preset form
// ("Cmd+Shift+C"). Modifier order and case are not significant.
func Parse(s string) (Combination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Combination{}, ErrEmptyCombination
	}

	parts := strings.Split(s, "+")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return Combination{}, fmt.Errorf("%w: %q", ErrMissingCode, s)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod, ok := ModifierFromName(p)
		if !ok {
			return Combination{}, fmt.Errorf("%w: %q in %q", ErrUnknownModifier, strings.TrimSpace(p), s)
		}
		mods = mods.With(mod)
	}

	if _, ok := ModifierFromName(last); ok {
		return Combination{}, fmt.Errorf("%w: %q", ErrMissingCode, s)
	}
	code, err := ParseCode(last)
	if err != nil {
		return Combination{}, err
	}
	return Combination{Mods: mods, Code: code}, nil
}

// IsZero reports whether c has no key code.
func (c Combination) IsZero() bool {
	return c.Code == ""
}

// String returns the canonical text form.
func (c Combination) String() string {
	if c.Mods.IsEmpty() {
		return string(c.Code)
	}
	return c.Mods.String() + "+" + string(c.Code)
}

// Present returns the label a settings UI displays, e.g. "Cmd+Opt+V".
func (c Combination) Present() string {
	if c.Mods.IsEmpty() {
		return c.Code.Present()
	}
	return c.Mods.Present() + "+" + c.Code.Present()
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (c Combination) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, ErrMissingCode
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Combination) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// structured is the object form accepted on decode: {"mods":["super"],"key":"KeyC"}.
type structured struct {
	Mods []string `json:"mods"`
	Key  string   `json:"key"`
}

// UnmarshalJSON accepts either the canonical string or the structured object form.
func (c *Combination) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var s structured
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s.Key == "" {
			return ErrMissingCode
		}
		parts := append(append([]string{}, s.Mods...), s.Key)
		return c.UnmarshalText([]byte(strings.Join(parts, "+")))
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	return c.UnmarshalText([]byte(text))
}
