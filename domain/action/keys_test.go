package action

import "testing"

func TestParseVK(t *testing.T) {
	cases := map[string]byte{
		"ESC":    VKEscape,
		" esc ":  VKEscape,
		"Escape": VKEscape,
		"pause":  VKPause,
		"F1":     0x70,
		"F9":     0x78,
		"F10":    0x79,
		"f12":    0x7B,
		"q":      'Q',
		"Z":      'Z',
		"F13":    VKEscape,
		"F0":     VKEscape,
		"FX":     VKEscape,
		"":       VKEscape,
		"??":     VKEscape,
	}
	for in, want := range cases {
		if got := ParseVK(in); got != want {
			t.Errorf("ParseVK(%q) = %#x, want %#x", in, got, want)
		}
	}
}
