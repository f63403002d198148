package keys

import (
	"fmt"
	"strings"
)

// Code is a physical key code in its symbolic W3C form, e.g. "KeyC" or "Digit1".
type Code string

// Frequently referenced codes.
const (
	KeyA   Code = "KeyA"
	KeyC   Code = "KeyC"
	KeyE   Code = "KeyE"
	KeyR   Code = "KeyR"
	KeyV   Code = "KeyV"
	KeyX   Code = "KeyX"
	KeyZ   Code = "KeyZ"
	Space  Code = "Space"
	Enter  Code = "Enter"
	Escape Code = "Escape"
)

// knownCodes is keyed by the lower-cased code so lookups are case-insensitive.
var knownCodes = map[string]Code{}

// presets maps the short labels a UI shows ("V", "1") to codes.
var presets = map[string]Code{}

func init() {
	add := func(c Code) { knownCodes[strings.ToLower(string(c))] = c }

	for r := 'A'; r <= 'Z'; r++ {
		c := Code("Key" + string(r))
		add(c)
		presets[string(r)] = c
	}
	for r := '0'; r <= '9'; r++ {
		c := Code("Digit" + string(r))
		add(c)
		presets[string(r)] = c
	}
	for i := 1; i <= 24; i++ {
		add(Code(fmt.Sprintf("F%d", i)))
	}
	for _, c := range []Code{
		Space, Enter, Escape, "Tab", "Backspace", "Delete", "Insert",
		"Home", "End", "PageUp", "PageDown",
		"ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight",
		"Minus", "Equal", "BracketLeft", "BracketRight", "Backslash",
		"Semicolon", "Quote", "Comma", "Period", "Slash", "Backquote",
	} {
		add(c)
	}
}

// Present returns the short label for c: "V" for KeyV, "1" for Digit1, else the code itself.
func (c Code) Present() string {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "Key") && len(s) == 4:
		return s[3:]
	case strings.HasPrefix(s, "Digit") && len(s) == 6:
		return s[5:]
	}
	return s
}

// ParseCode resolves a code or a preset label to its canonical Code. Codes
// in the common set are case-normalised; any other identifier-shaped code
// ("Numpad1", "AudioVolumeUp") is kept as written. Whether the OS can grab
// it is decided at registration.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if c, ok := presets[strings.ToUpper(s)]; ok && len(s) == 1 {
		return c, nil
	}
	if c, ok := knownCodes[strings.ToLower(s)]; ok {
		return c, nil
	}
	if !isIdentifier(s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCode, s)
	}
	return Code(s), nil
}

// isIdentifier reports whether s is an ASCII letter followed by letters or digits.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case 'A' <= b && b <= 'Z', 'a' <= b && b <= 'z':
		case '0' <= b && b <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
