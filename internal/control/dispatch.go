package control

// Handlers is the verb table of §4.13, one function field per command.
// Kept as plain funcs rather than an interface so the wiring in cmd/fwm
// can close over whatever state each verb needs without this package
// knowing about wm.Model, internal/session, or internal/screens.
type Handlers struct {
	ReloadKeys      func()
	ReloadColors    func()
	Lock            func()
	ReinitOutputs   func()
	ListClients     func(all bool)
	ListScreens     func()
	ListTags        func()
	RefreshPanel    func(screenID uint8)
	FocusScreen     func(screenID uint8)
	FocusTag        func(tagID uint8, win uint32)
	FocusWindow     func(win uint32)
	MakeGrid        func()
	UpdateDock      func(pid int32, msg string)
}

// Dispatch runs the handler for cmd, logging unknown verbs rather than
// failing the control plane (§4.13 has no documented error verb).
func Dispatch(h Handlers, cmd Command) {
	switch cmd.Verb {
	case "reload-keys":
		call0(h.ReloadKeys)
	case "reload-colors":
		call0(h.ReloadColors)
	case "lock":
		call0(h.Lock)
	case "reinit-outputs":
		call0(h.ReinitOutputs)
	case "list-clients":
		if h.ListClients != nil {
			h.ListClients(false)
		}
	case "list-clients-all":
		if h.ListClients != nil {
			h.ListClients(true)
		}
	case "list-screens":
		call0(h.ListScreens)
	case "list-tags":
		call0(h.ListTags)
	case "refresh-panel":
		if id, ok := cmd.ArgUint(0); ok && h.RefreshPanel != nil {
			h.RefreshPanel(uint8(id))
		}
	case "focus-screen":
		if id, ok := cmd.ArgUint(0); ok && h.FocusScreen != nil {
			h.FocusScreen(uint8(id))
		}
	case "focus-tag":
		id, idOK := cmd.ArgUint(0)
		win, winOK := cmd.ArgUint(1)
		if idOK && winOK && h.FocusTag != nil {
			h.FocusTag(uint8(id), uint32(win))
		}
	case "focus-window":
		if win, ok := cmd.ArgUint(0); ok && h.FocusWindow != nil {
			h.FocusWindow(uint32(win))
		}
	case "make-grid":
		call0(h.MakeGrid)
	case "update-dock":
		pid, pidOK := cmd.ArgUint(0)
		if pidOK && h.UpdateDock != nil {
			msg := cmd.Arg(1)
			if len(msg) > 20 {
				msg = msg[:20]
			}
			h.UpdateDock(int32(pid), msg)
		}
	default:
		log.Printf("unknown control verb %q", cmd.Verb)
	}
}

func call0(fn func()) {
	if fn != nil {
		fn()
	}
}
