//go:build windows

package action

import (
	"fmt"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var procGetAsyncKeyState = windows.NewLazySystemDLL("user32.dll").NewProc("GetAsyncKeyState")

// ReleaseLeft injects a left mouse button release at the current cursor position.
func ReleaseLeft() error {
	inputs := []win.MOUSE_INPUT{{
		Type: win.INPUT_MOUSE,
		Mi:   win.MOUSEINPUT{DwFlags: win.MOUSEEVENTF_LEFTUP},
	}}
	sent := win.SendInput(uint32(len(inputs)), unsafe.Pointer(&inputs[0]), int32(unsafe.Sizeof(inputs[0])))
	if sent != uint32(len(inputs)) {
		return fmt.Errorf("action: SendInput sent %d of %d inputs: %w", sent, len(inputs), windows.GetLastError())
	}
	return nil
}

// KeyDown reports whether the key with the given virtual-key code is currently held.
func KeyDown(vk byte) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(r)&0x8000 != 0
}
