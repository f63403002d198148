//go:build !darwin

package inject

// TODO: Implement with XTest on Linux and SendInput on Windows
func sendPasteShortcut() error {
	return ErrUnsupported
}

func sendCopyShortcut() error {
	return ErrUnsupported
}
