//go:build !windows

package capture

func newGDIGrabber() Grabber { return nil }
