package inject

import (
	"context"
	"errors"
)

// ErrUnsupported is returned where synthetic keystrokes are not implemented.
var ErrUnsupported = errors.New("synthetic keystrokes not supported on this platform")

// Paster sends the platform paste keystroke to the focused application.
type Paster interface {
	Paste(ctx context.Context) error
}

// Copier sends the platform copy keystroke to the focused application.
type Copier interface {
	Copy(ctx context.Context) error
}
