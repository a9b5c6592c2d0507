package wm

import (
	"github.com/jezek/xgb/xproto"

	"github.com/polarcat-fwm/fwm/internal/x11"
)

// Arg is the invocation context passed to an Action (§3): the client the
// binding should act on, the Keymap entry that fired (so the action can
// read its numeric arg), and a free-form data word for actions that don't
// need a client (e.g. make-grid's toggle suppression).
type Arg struct {
	Cli  ClientID
	Kmap *Keymap
	Data uint32
}

// Action is the function body bound to a Keymap entry.
type Action func(a *Arg)

// Keymap is one binding (§3). Key is resolved from Sym via the server's
// current keyboard mapping at load time (§4.8); Action is looked up by
// ActionName in the registry so file-configured rebinds (keys/<mod>_<sym>)
// can retarget an existing action without constructing a closure by hand.
type Keymap struct {
	Mod        uint16
	Sym        x11.KeySym
	Key        xproto.Keycode
	KeyName    string
	ActionName string
	Action     Action
	Arg        uint32
}
