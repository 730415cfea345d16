//go:build !windows

package action

// ReleaseLeft is only implemented on Windows.
func ReleaseLeft() error { return ErrUnsupported }

// KeyDown always reports false outside Windows; use the window key binding instead.
func KeyDown(byte) bool { return false }
