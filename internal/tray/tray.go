// Package tray implements §4.15's system tray protocol: acquiring the
// _NET_SYSTEM_TRAY_S<screen> selection on defscr's panel window,
// broadcasting the MANAGER ownership notice, and admitting
// SYSTEM_TRAY_REQUEST_DOCK requests as tray dock clients.
package tray

import (
	"github.com/jezek/xgb/xproto"

	"github.com/polarcat-fwm/fwm/internal/wm"
	"github.com/polarcat-fwm/fwm/internal/wmlog"
	"github.com/polarcat-fwm/fwm/internal/x11"
)

var log = wmlog.For("tray")

// Manager owns tray selection state for one screen (always defscr, per
// §4.15).
type Manager struct {
	conn       *x11.Conn
	screenAtom uint32 // _NET_SYSTEM_TRAY_S<n>
	owner      xproto.Window
}

// Acquire takes ownership of _NET_SYSTEM_TRAY_S<screenNo> on panelWin and
// broadcasts the MANAGER ClientMessage to root (§4.15).
func Acquire(conn *x11.Conn, screenNo int, panelWin xproto.Window) (*Manager, error) {
	atomName := trayAtomName(screenNo)
	atom := conn.Atoms.Get(atomName)
	if atom == 0 {
		var err error
		atom, err = conn.InternAtom(atomName)
		if err != nil {
			return nil, err
		}
	}
	err := xproto.SetSelectionOwnerChecked(conn.X, panelWin, xproto.Atom(atom), xproto.TimeCurrentTime).Check()
	if err != nil {
		return nil, err
	}

	managerAtom := conn.Atoms.Get("MANAGER")
	conn.SendClientMessage(conn.Root, managerAtom, [5]uint32{
		uint32(xproto.TimeCurrentTime), atom, uint32(panelWin), 0, 0,
	})

	return &Manager{conn: conn, screenAtom: atom, owner: panelWin}, nil
}

func trayAtomName(screenNo int) string {
	if screenNo == 0 {
		return "_NET_SYSTEM_TRAY_S0"
	}
	return "_NET_SYSTEM_TRAY_S" + itoa(screenNo)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// HandleDockRequest implements SYSTEM_TRAY_REQUEST_DOCK (§4.1
// CLIENT_MESSAGE, §4.15): the sending window (data[2]) is admitted as a
// tray client on defscr. It only returns the window; the caller runs it
// through add_window with TrayFlags() so dock layout (§4.10) picks it up.
func (m *Manager) HandleDockRequest(ev xproto.ClientMessageEvent) (xproto.Window, bool) {
	vals := ev.Data.Data32
	if len(vals) < 3 {
		return 0, false
	}
	const systemTrayRequestDock = 0
	if vals[1] != systemTrayRequestDock {
		return 0, false
	}
	return xproto.Window(vals[2]), true
}

// TrayFlags returns the flags a dock request admission should carry.
func TrayFlags() wm.ClientFlags { return wm.FlagTray | wm.FlagDock }
