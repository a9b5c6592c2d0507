// Package keymap implements §4.8: the built-in binding table, keysym
// resolution against the live keyboard mapping, file-configured rebinds
// and spawn bindings under keys/<modifier>_<sym>, and KEY_PRESS dispatch
// by linear scan (first match wins).
package keymap

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/polarcat-fwm/fwm/internal/spawn"
	"github.com/polarcat-fwm/fwm/internal/wm"
	"github.com/polarcat-fwm/fwm/internal/wmlog"
	"github.com/polarcat-fwm/fwm/internal/x11"
)

var log = wmlog.For("keymap")

// ActionSet maps action names to their Go implementation, populated by
// the caller (cmd/fwm) once layout/focus/toolbar handlers exist.
type ActionSet map[string]wm.Action

// Registry holds the live, ordered binding list; first (mod,key) match
// wins on dispatch, matching §4.8's "iterate the keymap list" rule.
type Registry struct {
	conn    *x11.Conn
	kb      *x11.Keyboard
	root    uint32
	actions ActionSet
	shell   string
	keysDir string
	reaper  *spawn.Reaper

	bindings []*wm.Keymap
	toolbar  []*wm.Keymap // Left/Right/Return/Escape, resolved at Load and never grabbed
}

func NewRegistry(conn *x11.Conn, root uint32, actions ActionSet, shell, home string, reaper *spawn.Reaper) *Registry {
	return &Registry{conn: conn, root: root, actions: actions, shell: shell, keysDir: filepath.Join(home, "keys"), reaper: reaper}
}

// Binding describes one built-in or user-configured entry before keysym
// resolution.
type Binding struct {
	ModName string // "mod", "mod+shift", ...
	Sym     string
	Action  string
	Arg     uint32
}

// defaultBindings is the built-in table named in §4.8, grounded directly
// on original_source/src/fwm.c's kmap_def[]: navigation (next/prev
// window), retag (next/prev tag), tag walk, the four quarter placements
// on Shift, the matching fill placements plus fullscreen and grow on mod,
// make-grid, show-toolbar and flag-window.
var defaultBindings = []Binding{
	{"mod", "Tab", "next-window", 0},
	{"mod", "BackSpace", "prev-window", 0},
	{"mod", "Return", "raise-client", 1},
	{"mod", "u", "retag-next", 0},
	{"mod", "y", "retag-prev", 0},
	{"mod", "o", "walk-tags-next", 0},
	{"mod", "i", "walk-tags-prev", 0},
	{"shift", "F5", "place-topleft", 0},
	{"shift", "F6", "place-topright", 0},
	{"shift", "F7", "place-bottomleft", 0},
	{"shift", "F8", "place-bottomright", 0},
	{"shift", "F10", "place-center", 0},
	{"mod", "F1", "grow-window", 0},
	{"mod", "F5", "place-leftfill", 0},
	{"mod", "F6", "place-rightfill", 0},
	{"mod", "F7", "place-topfill", 0},
	{"mod", "F8", "place-bottomfill", 0},
	{"mod", "F9", "place-fill", 0},
	{"mod", "F3", "make-grid", 0},
	{"mod", "F4", "show-toolbar", 0},
	{"mod", "F2", "flag-window", 0},
	{"shift", "Delete", "raise-client", 1},
}

// toolbarSpecials are resolved but never grabbed, on root or anywhere
// else; they are matched only against key presses that reach the WM
// through other grabs while the toolbar is visible (§4.8).
var toolbarSpecials = []Binding{
	{"", "Left", "toolbar-left", 0},
	{"", "Right", "toolbar-right", 0},
	{"", "Return", "toolbar-fire", 0},
	{"", "Escape", "toolbar-hide", 0},
}

// modByName resolves the config-file modifier prefix to an X modmask.
func modByName(name string) uint16 {
	var mask uint16
	for _, part := range strings.Split(name, "+") {
		switch part {
		case "mod":
			mask |= uint16(x11.Mod4)
		case "shift":
			mask |= uint16(x11.ModShift)
		case "ctrl":
			mask |= uint16(x11.ModCtrl)
		case "lock":
			mask |= uint16(x11.ModLock)
		case "mod1", "alt":
			mask |= uint16(x11.Mod1)
		}
	}
	return mask
}

// Load resolves the built-in table and the keys/ directory overrides,
// grabbing every non-toolbar binding on root (§4.8).
func (r *Registry) Load() error {
	kb, err := r.conn.LoadKeyboard()
	if err != nil {
		return err
	}
	r.kb = kb
	r.bindings = nil
	r.toolbar = nil

	for _, b := range defaultBindings {
		r.addBinding(b, true)
	}
	r.loadUserKeys()

	for _, b := range toolbarSpecials {
		km := r.resolve(b)
		if km != nil {
			r.toolbar = append(r.toolbar, km)
		}
	}
	return nil
}

// loadUserKeys implements the keys/<modifier>_<sym> scan (§4.8): a file
// whose content names an existing action rebinds it; otherwise a new
// spawn binding is created.
func (r *Registry) loadUserKeys() {
	entries, err := os.ReadDir(r.keysDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("read keys dir: %v", err)
		}
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		parts := strings.SplitN(name, "_", 2)
		if len(parts) != 2 {
			continue
		}
		modName, sym := parts[0], parts[1]

		data, err := os.ReadFile(filepath.Join(r.keysDir, name))
		if err != nil {
			log.Printf("read %s: %v", name, err)
			continue
		}
		actionName := strings.TrimSpace(string(data))

		if _, ok := r.actions[actionName]; ok {
			r.rebind(modName, sym, actionName)
			continue
		}

		// spawn binding: fork+run keys/<filename> via the shell
		filename := name
		r.addBinding(Binding{ModName: modName, Sym: sym, Action: "spawn:" + filename}, true)
	}
}

func (r *Registry) rebind(modName, sym, actionName string) {
	mod := modByName(modName)
	keysym, ok := x11.KeysymByName(sym)
	if !ok {
		return
	}
	for _, km := range r.bindings {
		if km.Sym == keysym && km.Mod == mod {
			km.ActionName = actionName
			km.Action = r.actions[actionName]
			return
		}
	}
	r.addBinding(Binding{ModName: modName, Sym: sym, Action: actionName}, true)
}

func (r *Registry) addBinding(b Binding, grab bool) {
	km := r.resolve(b)
	if km == nil {
		return
	}
	r.bindings = append(r.bindings, km)
	if grab {
		r.conn.GrabKey(wm.Window(r.root), km.Mod, km.Key)
	}
}

func (r *Registry) resolve(b Binding) *wm.Keymap {
	keysym, ok := x11.KeysymByName(b.Sym)
	if !ok {
		log.Printf("unknown key symbol %q", b.Sym)
		return nil
	}
	code, ok := r.kb.Keycode(keysym)
	if !ok {
		log.Printf("keysym %q not present on this keyboard", b.Sym)
		return nil
	}
	mod := modByName(b.ModName)

	var action wm.Action
	actionName := b.Action
	if strings.HasPrefix(b.Action, "spawn:") {
		filename := strings.TrimPrefix(b.Action, "spawn:")
		action = func(a *wm.Arg) {
			r.reaper.Run(r.shell, filepath.Join(r.keysDir, filename))
		}
	} else {
		action = r.actions[b.Action]
	}

	return &wm.Keymap{Mod: mod, Sym: keysym, Key: code, KeyName: b.Sym, ActionName: actionName, Action: action, Arg: b.Arg}
}

// Dispatch implements the KEY_PRESS rule in §4.8: iterate bindings,
// first (mod,key) match fires.
func (r *Registry) Dispatch(mod uint16, key uint8, arg *wm.Arg) bool {
	for _, km := range r.bindings {
		if uint8(km.Key) == key && km.Mod == mod {
			arg.Kmap = km
			if km.Action != nil {
				km.Action(arg)
			}
			return true
		}
	}
	return false
}

// DispatchToolbar resolves one of the toolbar-only specials while the
// toolbar is visible (§4.8).
func (r *Registry) DispatchToolbar(key uint8, arg *wm.Arg) bool {
	for _, km := range r.toolbar {
		if uint8(km.Key) == key {
			arg.Kmap = km
			if km.Action != nil {
				km.Action(arg)
			}
			return true
		}
	}
	return false
}

