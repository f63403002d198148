package inject

import (
	"context"
	"time"
)

// settleDelay gives the target application time to observe a clipboard change
// before the keystroke arrives.
const settleDelay = 50 * time.Millisecond

// Keystroker posts the copy and paste shortcuts to the focused application.
type Keystroker struct {
	delay time.Duration
}

// New creates a Keystroker that posts Cmd+C and Cmd+V on macOS. Other
// platforms return ErrUnsupported.
// Implementation is platform-specific (see paste_darwin.go, paste_other.go).
func New() *Keystroker {
	return &Keystroker{delay: settleDelay}
}

func (k *Keystroker) Paste(ctx context.Context) error {
	if err := k.wait(ctx); err != nil {
		return err
	}
	return sendPasteShortcut()
}

func (k *Keystroker) Copy(ctx context.Context) error {
	if err := k.wait(ctx); err != nil {
		return err
	}
	return sendCopyShortcut()
}

func (k *Keystroker) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(k.delay):
		return nil
	}
}
