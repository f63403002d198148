// Package cache persists which extensions are enabled and which shortcut
// overrides are in effect.
//
// The file holds a JSON array of records:
//
//	[{"name":"Clipboard","enabled":true,"shortcuts":[{"name":"Copy","shortcut":"super+KeyC"}]}]
//
// A save always rewrites the full record set.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/petems/shortcut-tray/internal/store"
	"github.com/rs/zerolog"
)

// ErrMalformedCache is returned when stored content does not parse as records.
var ErrMalformedCache = errors.New("malformed shortcut cache")

// Shortcut is a per-action key combination override.
type Shortcut struct {
	Name     string           `json:"name"`
	Shortcut keys.Combination `json:"shortcut"`
}

// Record is the persisted state of one extension.
type Record struct {
	Name      string     `json:"name"`
	Enabled   bool       `json:"enabled"`
	Shortcuts []Shortcut `json:"shortcuts"`
}

// Override returns the override for an action, if the record has one.
func (r Record) Override(action string) (keys.Combination, bool) {
	for _, s := range r.Shortcuts {
		if s.Name == action {
			return s.Shortcut, true
		}
	}
	return keys.Combination{}, false
}

func (r Record) clone() Record {
	out := r
	out.Shortcuts = append(make([]Shortcut, 0, len(r.Shortcuts)), r.Shortcuts...)
	return out
}

// Cache is an ordered record set paired with the Store it persists to.
// It is not safe for concurrent use.
type Cache struct {
	store   *store.Store
	log     zerolog.Logger
	records []Record
}

// New returns an empty cache persisting to st.
func New(st *store.Store, log zerolog.Logger) *Cache {
	return &Cache{store: st, log: log}
}

// Path returns the location of the backing file.
func (c *Cache) Path() string {
	return c.store.Path()
}

// Load reads the backing file. Empty content leaves the current records
// untouched; otherwise the records are replaced wholesale. On error the
// records are not modified.
func (c *Cache) Load() error {
	content, err := c.store.Read()
	if err != nil {
		return fmt.Errorf("loading cache: %w", err)
	}
	if content == "" {
		return nil
	}
	return c.ReplaceFromJSON(content)
}

// ReplaceFromJSON parses payload as a record array and replaces the records.
// Fields other than name, enabled and shortcuts are ignored, so the snapshot
// shape a UI renders can be pushed back unchanged.
func (c *Cache) ReplaceFromJSON(payload string) error {
	var records []Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCache, err)
	}
	c.ReplaceFrom(records)
	return nil
}

// ReplaceFrom clears the records and replaces them with records. Records
// sharing a name are collapsed: the last one's content is kept at the first
// one's position.
func (c *Cache) ReplaceFrom(records []Record) {
	c.records = nil
	for _, r := range records {
		c.upsert(r)
	}
}

// Add appends a record, or replaces an existing record with the same name in place.
func (c *Cache) Add(r Record) {
	c.upsert(r)
}

func (c *Cache) upsert(r Record) {
	r = r.clone()
	for i := range c.records {
		if c.records[i].Name == r.Name {
			c.log.Warn().Str("extension", r.Name).Msg("Duplicate cache record replaced")
			c.records[i] = r
			return
		}
	}
	c.records = append(c.records, r)
}

// Save writes every record to the backing file. With no records it does
// nothing, so an uninitialized cache never wipes an existing file.
func (c *Cache) Save() error {
	if len(c.records) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := c.store.Write(string(data)); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	c.log.Debug().Str("path", c.store.Path()).Int("records", len(c.records)).Msg("Saved shortcut cache")
	return nil
}

// Len returns the number of records.
func (c *Cache) Len() int {
	return len(c.records)
}

// Records returns a copy of the records in order.
func (c *Cache) Records() []Record {
	out := make([]Record, len(c.records))
	for i, r := range c.records {
		out[i] = r.clone()
	}
	return out
}

// AsMap returns the records keyed by extension name.
func (c *Cache) AsMap() map[string]Record {
	m := make(map[string]Record, len(c.records))
	for _, r := range c.records {
		m[r.Name] = r.clone()
	}
	return m
}
