package action

import (
	"errors"
	"strings"
)

// ErrUnsupported is returned by input actions on platforms without an implementation.
var ErrUnsupported = errors.New("action: not supported on this platform")

// Windows virtual-key codes used by the stop key.
const (
	VKEscape byte = 0x1B
	VKPause  byte = 0x13
	VKEnd    byte = 0x23
	VKHome   byte = 0x24
	VKF1     byte = 0x70
)

var namedKeys = map[string]byte{
	"ESC":    VKEscape,
	"ESCAPE": VKEscape,
	"PAUSE":  VKPause,
	"END":    VKEnd,
	"HOME":   VKHome,
}

// ParseVK converts a key token (e.g. "ESC", "F8", "Q") into a Windows virtual-key code.
// Recognizes ESC, PAUSE, END, HOME, F1..F12 and single letters A..Z.
// Unknown tokens return VKEscape.
func ParseVK(key string) byte {
	k := strings.ToUpper(strings.TrimSpace(key))
	if vk, ok := namedKeys[k]; ok {
		return vk
	}
	if len(k) >= 2 && len(k) <= 3 && k[0] == 'F' {
		n := 0
		for _, c := range k[1:] {
			if c < '0' || c > '9' {
				n = -1
				break
			}
			n = n*10 + int(c-'0')
		}
		if n >= 1 && n <= 12 {
			return VKF1 + byte(n-1)
		}
	}
	if len(k) == 1 && k[0] >= 'A' && k[0] <= 'Z' {
		return k[0] // 'A'..'Z' match VK codes
	}
	return VKEscape
}
