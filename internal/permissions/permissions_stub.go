//go:build !darwin

package permissions

// CheckAccessibility always succeeds off macOS.
func CheckAccessibility(prompt bool) bool {
	return true
}

// EnsurePermissions is a no-op on non-macOS platforms.
func EnsurePermissions() error {
	return nil
}
