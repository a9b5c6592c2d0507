package x11

import (
	"github.com/jezek/xgb/xproto"
)

// KeySym mirrors the X11 KeySym type (§3 Keymap.sym).
type KeySym uint32

// Well-known keysym values (X11/keysymdef.h), enough to cover the default
// binding table in §4.8 and the keys/<modifier>_<sym> file-configured
// bindings. Extending this table is the only thing needed to support a new
// named key.
var keysymByName = map[string]KeySym{
	"Tab":         0xff09,
	"Return":      0xff0d,
	"Escape":      0xff1b,
	"BackSpace":   0xff08,
	"Left":        0xff51,
	"Up":          0xff52,
	"Right":       0xff53,
	"Down":        0xff54,
	"F1":          0xffbe,
	"F2":          0xffbf,
	"F3":          0xffc0,
	"F4":          0xffc1,
	"F5":          0xffc2,
	"F6":          0xffc3,
	"F7":          0xffc4,
	"F8":          0xffc5,
	"F9":          0xffc6,
	"F10":         0xffc7,
	"F11":         0xffc8,
	"F12":         0xffc9,
	"Delete":      0xffff,
	"space":       0x0020,
	"grave":       0x0060,
	"0":           0x0030,
	"1":           0x0031,
	"2":           0x0032,
	"3":           0x0033,
	"4":           0x0034,
	"5":           0x0035,
	"6":           0x0036,
	"7":           0x0037,
	"8":           0x0038,
	"9":           0x0039,
}

func init() {
	// Lowercase letters a-z map directly onto their ASCII codepoints in the
	// Latin-1 keysym block.
	for c := 'a'; c <= 'z'; c++ {
		keysymByName[string(c)] = KeySym(c)
	}
}

// KeysymByName resolves a named key (as it appears in a keys/<mod>_<sym>
// filename, §6) to its KeySym, or ok=false if unknown.
func KeysymByName(name string) (KeySym, bool) {
	sym, ok := keysymByName[name]
	return sym, ok
}

// Keyboard caches the server's keycode→keysym table so Keycode can answer
// keysym→keycode without a round trip per lookup.
type Keyboard struct {
	minCode, maxCode xproto.Keycode
	keysymsPerCode   byte
	table            []uint32 // [ (code-min)*keysymsPerCode + col ]
}

// LoadKeyboard fetches the mapping once at startup/reload (§4.8).
func (c *Conn) LoadKeyboard() (*Keyboard, error) {
	setup := xproto.Setup(c.X)
	min, max := setup.MinKeycode, setup.MaxKeycode
	reply, err := xproto.GetKeyboardMapping(c.X, min, byte(max-min+1)).Reply()
	if err != nil {
		return nil, err
	}
	return &Keyboard{
		minCode:        min,
		maxCode:        max,
		keysymsPerCode: reply.KeysymsPerKeycode,
		table:          reply.Keysyms,
	}, nil
}

// Keycode resolves sym to the first keycode whose mapping contains it, and
// ok=false if the symbol isn't present on this keyboard (§4.8).
func (k *Keyboard) Keycode(sym KeySym) (xproto.Keycode, bool) {
	if k == nil {
		return 0, false
	}
	n := int(k.keysymsPerCode)
	for code := k.minCode; code <= k.maxCode; code++ {
		base := int(code-k.minCode) * n
		if base+n > len(k.table) {
			continue
		}
		for col := 0; col < n; col++ {
			if KeySym(k.table[base+col]) == sym {
				return code, true
			}
		}
	}
	return 0, false
}

// Keysym returns the first (unshifted) keysym bound to code.
func (k *Keyboard) Keysym(code xproto.Keycode) KeySym {
	if k == nil || code < k.minCode || code > k.maxCode {
		return 0
	}
	n := int(k.keysymsPerCode)
	base := int(code-k.minCode) * n
	if base >= len(k.table) {
		return 0
	}
	return KeySym(k.table[base])
}

// Modifier masks, mirrored from xproto for readability at call sites.
const (
	ModShift = xproto.ModMaskShift
	ModLock  = xproto.ModMaskLock
	ModCtrl  = xproto.ModMaskControl
	Mod1     = xproto.ModMask1 // usually Alt
	Mod4     = xproto.ModMask4 // usually Super/"Mod" key
)
