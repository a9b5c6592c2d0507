package x11

// Names interned at startup (§6 wire protocol). Only _NET_ACTIVE_WINDOW is
// published in _NET_SUPPORTED, matching the original's minimal EWMH surface.
var atomNames = []string{
	"WM_STATE",
	"_NET_CLIENT_LIST",
	"_NET_SYSTEM_TRAY_OPCODE",
	"_NET_ACTIVE_WINDOW",
	"XFree86_has_VT",
	"_NET_SUPPORTED",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_CLIENT_LEADER",
	"WM_PROTOCOLS",
	"WM_DELETE_WINDOW",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_HIDDEN",
	"_NET_WM_USER_TIME",
	"_NET_WM_PING",
	"_XEMBED_INFO",
	"WM_NAME",
	"WM_CLASS",
	"MANAGER",
	"_NET_SYSTEM_TRAY_S0", // interned as-is; tray.Acquire interns the name for the real screen itself
}

// Atoms exposes every interned atom id by name.
type Atoms struct {
	byName map[string]uint32
}

func (a *Atoms) Get(name string) uint32 { return a.byName[name] }
