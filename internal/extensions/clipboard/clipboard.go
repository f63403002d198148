// Package clipboard is the built-in clipboard history extension.
package clipboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/petems/shortcut-tray/internal/extension"
	"github.com/petems/shortcut-tray/internal/inject"
	"github.com/petems/shortcut-tray/internal/keys"
	"github.com/rs/zerolog"
)

// Name is the extension name and the key of its cache record.
const Name = "Clipboard"

// Shortcut names.
const (
	ActionCopy          = "Copy"
	ActionPaste         = "Paste"
	ActionHistoryViewer = "HistoryViewer"
)

const (
	defaultHistorySize = 20
	keystrokeTimeout   = 2 * time.Second
	// copySettle is how long the focused app gets to fill the clipboard.
	copySettle = 100 * time.Millisecond
	// pasteEcho swallows a Paste triggered by our own synthetic keystroke.
	pasteEcho = 300 * time.Millisecond
)

// Backend reads and writes the system clipboard.
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemBackend struct{}

func (systemBackend) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }

type Config struct {
	Backend     Backend       // Optional - system clipboard when nil
	Copier      inject.Copier // Optional - Copy only reads the clipboard when nil
	Paster      inject.Paster // Optional - Paste only fills the clipboard when nil
	HistorySize int
	Viewer      func(history []string) // Optional
	Logger      zerolog.Logger
}

// Clipboard keeps a most-recent-first history of copied text.
type Clipboard struct {
	backend Backend
	copier  inject.Copier
	paster  inject.Paster
	viewer  func([]string)
	limit   int
	log     zerolog.Logger
	now     func() time.Time
	settle  time.Duration

	mu            sync.Mutex
	history       []string
	suppressUntil time.Time
}

func New(cfg Config) *Clipboard {
	backend := cfg.Backend
	if backend == nil {
		backend = systemBackend{}
	}
	limit := cfg.HistorySize
	if limit <= 0 {
		limit = defaultHistorySize
	}
	return &Clipboard{
		backend: backend,
		copier:  cfg.Copier,
		paster:  cfg.Paster,
		viewer:  cfg.Viewer,
		limit:   limit,
		log:     cfg.Logger,
		now:     time.Now,
		settle:  copySettle,
	}
}

// Extension declares the clipboard shortcuts with their default combinations.
// Copy and Paste default to Shift variants of the system shortcuts: a global
// grab of Cmd+C or Cmd+V would also swallow the keystrokes sent by Copy and
// Paste themselves.
func (c *Clipboard) Extension() extension.Extension {
	return extension.Extension{
		Name:        Name,
		Description: "Clipboard history manager",
		Shortcuts: []extension.Shortcut{
			{
				Name:        ActionCopy,
				Description: "Copy the selected text to the clipboard",
				Action:      extension.ActionFunc(c.Copy),
				Default:     keys.New(keys.KeyC, keys.ModSuper, keys.ModShift),
			},
			{
				Name:        ActionPaste,
				Description: "Paste the selected text to the clipboard",
				Action:      extension.ActionFunc(c.Paste),
				Default:     keys.New(keys.KeyV, keys.ModSuper, keys.ModShift),
			},
			{
				Name:        ActionHistoryViewer,
				Description: "View paste history board",
				Action:      extension.ActionFunc(c.ShowHistory),
				Default:     keys.New(keys.KeyV, keys.ModSuper, keys.ModAlt),
			},
		},
	}
}

// Copy asks the focused application to copy its selection, when a Copier is
// configured, then records the clipboard text at the top of the history.
func (c *Clipboard) Copy() {
	if c.copier != nil {
		c.copySelection()
	}

	text, err := c.backend.ReadAll()
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to read clipboard")
		return
	}
	if text == "" {
		return
	}

	c.mu.Lock()
	c.pushLocked(text)
	n := len(c.history)
	c.mu.Unlock()

	c.log.Debug().Int("entries", n).Msg("Copied to history")
}

// Paste puts the most recent history entry on the clipboard and, with a
// Paster configured, sends the paste keystroke.
func (c *Clipboard) Paste() {
	c.mu.Lock()
	if c.now().Before(c.suppressUntil) {
		c.mu.Unlock()
		return
	}
	if len(c.history) == 0 {
		c.mu.Unlock()
		c.log.Debug().Msg("Clipboard history is empty")
		return
	}
	text := c.history[0]
	if c.paster != nil {
		c.suppressUntil = c.now().Add(pasteEcho)
	}
	c.mu.Unlock()

	if err := c.backend.WriteAll(text); err != nil {
		c.log.Error().Err(err).Msg("Failed to write clipboard")
		return
	}
	if c.paster == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), keystrokeTimeout)
	defer cancel()
	if err := c.paster.Paste(ctx); err != nil {
		if errors.Is(err, inject.ErrUnsupported) {
			c.log.Debug().Msg("Paste keystroke unsupported, clipboard updated only")
			return
		}
		c.log.Error().Err(err).Msg("Paste keystroke failed")
	}
}

func (c *Clipboard) copySelection() {
	ctx, cancel := context.WithTimeout(context.Background(), keystrokeTimeout)
	defer cancel()
	if err := c.copier.Copy(ctx); err != nil {
		if errors.Is(err, inject.ErrUnsupported) {
			c.log.Debug().Msg("Copy keystroke unsupported, reading clipboard only")
		} else {
			c.log.Error().Err(err).Msg("Copy keystroke failed")
		}
		return
	}
	time.Sleep(c.settle)
}

// ShowHistory hands the history to the viewer and logs it.
func (c *Clipboard) ShowHistory() {
	history := c.History()
	c.log.Info().Strs("history", history).Msg("Clipboard history")
	if c.viewer != nil {
		c.viewer(history)
	}
}

// History returns a copy of the history, most recent first.
func (c *Clipboard) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

func (c *Clipboard) pushLocked(text string) {
	out := make([]string, 0, len(c.history)+1)
	out = append(out, text)
	for _, h := range c.history {
		if h != text {
			out = append(out, h)
		}
	}
	if len(out) > c.limit {
		out = out[:c.limit]
	}
	c.history = out
}
