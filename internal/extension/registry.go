package extension

import "fmt"

// Registry is the ordered list of built-in extensions. It is assembled once at
// startup and only read afterwards; Register is not safe to call concurrently
// with readers.
//
// Register panics on malformed or duplicate definitions, the way
// database/sql.Register does: these are authoring bugs, not runtime conditions.
type Registry struct {
	extensions []Extension
	byName     map[string]int
}

// NewRegistry returns a registry holding exts in order.
func NewRegistry(exts ...Extension) *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, ext := range exts {
		r.Register(ext)
	}
	return r
}

// Register appends ext.
func (r *Registry) Register(ext Extension) {
	if ext.Name == "" {
		panic("extension: empty extension name")
	}
	if _, dup := r.byName[ext.Name]; dup {
		panic("extension: extension already registered: " + ext.Name)
	}

	seen := make(map[string]struct{}, len(ext.Shortcuts))
	for _, s := range ext.Shortcuts {
		if s.Name == "" {
			panic(fmt.Sprintf("extension: %s: empty shortcut name", ext.Name))
		}
		if _, dup := seen[s.Name]; dup {
			panic(fmt.Sprintf("extension: %s: duplicate shortcut %s", ext.Name, s.Name))
		}
		if s.Action == nil {
			panic(fmt.Sprintf("extension: %s: shortcut %s has no action", ext.Name, s.Name))
		}
		seen[s.Name] = struct{}{}
	}

	ext.Shortcuts = append([]Shortcut(nil), ext.Shortcuts...)
	r.byName[ext.Name] = len(r.extensions)
	r.extensions = append(r.extensions, ext)
}

// All returns the extensions in registration order.
func (r *Registry) All() []Extension {
	return append([]Extension(nil), r.extensions...)
}

// Get returns the named extension.
func (r *Registry) Get(name string) (Extension, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Extension{}, false
	}
	return r.extensions[i], true
}

// Len returns the number of registered extensions.
func (r *Registry) Len() int {
	return len(r.extensions)
}
