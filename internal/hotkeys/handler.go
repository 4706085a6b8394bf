// Package hotkeys registers the window manager's global key and pointer
// bindings with the X server.
package hotkeys

import (
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/floatwm/internal/platform"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. It fails for backends that are
// not backed by X11.
func NewHandler(backend platform.Backend) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("hotkeys require an X11 backend")
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:   xu,
		root: accessor.RootWindow(),
	}, nil
}

// RegisterFunc registers a callback for a key sequence such as "Control-q".
// The callback receives the modifier state of the key press.
func (h *Handler) RegisterFunc(keySequence string, callback func(mods platform.Modifiers)) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback(ModifiersFromState(ev.State))
	}).Connect(h.xu, h.root, keySequence, true)
}

// UnregisterAll drops every key binding on the root window.
func (h *Handler) UnregisterAll() {
	keybind.Detach(h.xu, h.root)
}

// ModifiersFromState converts an X11 key/button state mask. The core
// modifier bits line up one to one with platform.Modifiers.
func ModifiersFromState(state uint16) platform.Modifiers {
	return platform.Modifiers(state & 0xff)
}

var modifierNames = []struct {
	mod  platform.Modifiers
	name string
}{
	{platform.ModShift, "Shift"},
	{platform.ModCaps, "Lock"},
	{platform.ModCtrl, "Control"},
	{platform.ModAlt, "Mod1"},
	{platform.ModMod2, "Mod2"},
	{platform.ModMod3, "Mod3"},
	{platform.ModLogo, "Mod4"},
	{platform.ModMod5, "Mod5"},
}

// Sequence builds an xgbutil binding string, e.g. "Control-Mod1-q".
func Sequence(mods platform.Modifiers, key string) string {
	parts := make([]string, 0, len(modifierNames)+1)
	for _, m := range modifierNames {
		if mods.Contains(m.mod) {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, key)
	return strings.Join(parts, "-")
}

// ButtonSequence builds a mouse binding string from an evdev button code.
func ButtonSequence(mods platform.Modifiers, button uint32) (string, error) {
	x, ok := XButton(button)
	if !ok {
		return "", fmt.Errorf("button 0x%x has no X11 equivalent", button)
	}
	return Sequence(mods, fmt.Sprint(x)), nil
}

// XButton maps an evdev button code to the core X11 button number.
func XButton(button uint32) (xproto.Button, bool) {
	switch button {
	case platform.ButtonLeft:
		return 1, true
	case platform.ButtonMiddle:
		return 2, true
	case platform.ButtonRight:
		return 3, true
	}
	return 0, false
}

// EvdevButton maps a core X11 button number to its evdev code.
func EvdevButton(button xproto.Button) (uint32, bool) {
	switch button {
	case 1:
		return platform.ButtonLeft, true
	case 2:
		return platform.ButtonMiddle, true
	case 3:
		return platform.ButtonRight, true
	}
	return 0, false
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
