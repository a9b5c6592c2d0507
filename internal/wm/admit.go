package wm

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/polarcat-fwm/fwm/internal/wmlog"
	"github.com/polarcat-fwm/fwm/internal/x11"
)

var log = wmlog.For("wm")

// SessionStore is the persistence dependency add_window/free_client need
// (§4.4, §4.12); internal/session implements it. Kept as an interface here
// so the core data model doesn't need to know about file formats or
// sqlite.
type SessionStore interface {
	Restore(win Window) (scr ScreenID, tag TagID, ok bool)
	Store(cli *Client)
	Remove(win Window)
}

// AddFlags mirrors the USER/SCAN bits passed into add_window (§4.4).
type AddFlags = ClientFlags

// Admitter holds the dependencies add_window needs beyond the pure model:
// the wire adapter, the classifier, session persistence, and the process
// singletons it may attach (§4.4 steps 10-13).
type Admitter struct {
	Conn       *x11.Conn
	Classifier *Classifier
	Session    SessionStore
	Colors     FocusColors
	Rules      []ClassRule // class->tag pins loaded from screens/<sid>/tags/<tid>/<class> files, consulted in step 9

	// Rescan is set when a window with WM_CLIENT_LEADER is added or
	// destroyed, consumed by the event dispatcher after the batch (§4.1,
	// §4.4 step 3).
	Rescan bool
}

// AddWindowResult reports what add_window decided, for callers that need
// to know whether a client now exists (e.g. to consume a Config or raise
// it).
type AddWindowResult struct {
	Client  *Client
	Scr     *Screen
	Tag     *Tag
	Ignored bool
	Rejected bool
}

// AddWindow implements add_window (§4.4). scanning distinguishes a
// topology rescan (FlagScan) from a live MAP_REQUEST; pointerScr is the
// screen under the pointer right now, used when no persisted tag exists.
func (a *Admitter) AddWindow(m *Model, win Window, flags ClientFlags, isKnownSpecial func(Window) bool, pointerScr, defScr *Screen, nowTS uint64) AddWindowResult {
	// step 1: reject root/panel/toolbar/toolbox/dock windows.
	if isKnownSpecial != nil && isKnownSpecial(win) {
		return AddWindowResult{Rejected: true}
	}

	// step 2: geometry + attributes.
	x, y, w, h, ok := a.Conn.GetGeometry(win)
	attrs := a.Conn.GetAttributes(win)
	if !ok || !attrs.OK {
		if a.Session != nil {
			a.Session.Remove(win)
		}
		m.Configs.DropFor(win)
		return AddWindowResult{Rejected: true}
	}
	if attrs.Class == 2 { // InputOnly: zero depth/colormap, ignored
		return AddWindowResult{Rejected: true}
	}

	class, _ := a.Conn.GetPropertyString(win, "WM_CLASS")
	title, _ := a.Conn.GetPropertyString(win, "WM_NAME")

	// step 3: leader.
	leaderPID, hasLeader := a.Conn.GetPropertyCardinal(win, "WM_CLIENT_LEADER")
	if hasLeader {
		a.Rescan = true
	}

	// step 4: special flags + exclusivity.
	special, ignore := a.Classifier.Classify(class, title)
	if ignore {
		return AddWindowResult{Ignored: true}
	}
	crc := ClassCRC(class)
	if a.Classifier.Exclusive(class) {
		for _, c := range m.AllClients() {
			if c.CRC == crc && c.ID != 0 {
				a.CloseWindowRequest(m, nil, c.Win)
			}
		}
	}

	// step 5: minimum size.
	tooSmall := w <= WinWidthMin || h <= WinHeightMin

	// step 6: unmanaged leader defers admission.
	if hasLeader && !flags.Has(FlagUser) {
		if _, managed := m.ClientByWindow(Window(leaderPID)); !managed {
			a.Conn.MapWindow(win)
			return AddWindowResult{}
		}
	}

	// step 7: resolve target screen.
	scr := pointerScr
	if scr == nil {
		scr = defScr
	}
	var persistedTag TagID
	havePersisted := false
	if a.Session != nil && flags.Has(FlagScan) {
		if sid, tid, ok := a.Session.Restore(win); ok {
			if s, ok2 := m.Screen(sid); ok2 {
				scr = s
			}
			persistedTag, havePersisted = tid, true
		}
	}
	if scr == nil {
		return AddWindowResult{Rejected: true}
	}

	// step 8: allocate.
	cli := m.NewClient(win, scr.ID)
	cli.Leader = Window(leaderPID)
	cli.Class, cli.Title = class, title
	cli.CRC = crc
	cli.Flags |= special | flags
	cli.Pos = PosPreserve

	if tooSmall {
		// "mark them only as members of the client list" — attach to the
		// current tag but skip placement entirely.
		if tag, ok := m.Tag(scr.CurrentTag); ok {
			m.AttachToTag(cli, tag)
		}
		return AddWindowResult{Client: cli, Scr: scr}
	}

	if cli.Flags.Has(FlagDock) {
		m.AttachToDock(cli, scr)
		cli.W, cli.H = w, h
		return AddWindowResult{Client: cli, Scr: scr}
	}

	if !flags.Has(FlagUser) && !flags.Has(FlagScan) &&
		w < scr.W/2 && h < scr.H/2 &&
		!cli.Flags.Has(FlagTopLeft|FlagTopRight|FlagBotLeft|FlagBotRight|FlagTray|FlagDock) {
		cli.Flags |= FlagCenter
	}
	cli.X, cli.Y, cli.W, cli.H = initialPlacement(scr, cli, x, y, w, h)

	// step 9: assign tag.
	tag := resolveTag(m, a.Rules, scr, class, persistedTag, havePersisted)
	m.AttachToTag(cli, tag)

	// step 11: consume any pending Config recorded before this window was
	// mapped, overriding the computed placement.
	if cfg, ok := m.Configs.Take(win); ok {
		if cfg.HasPos {
			cli.X, cli.Y = cfg.X, cfg.Y
		}
		if cfg.HasSize {
			cli.W, cli.H = cfg.W, cfg.H
		}
	}

	// step 10: border, event mask, unfocus previous, moveresize, iconify.
	cli.Flags |= FlagBorder
	a.Conn.ChangeSaveSet(win)
	a.Conn.ChangeWinAttrs(win, 0x800 /* CWEventMask */, []uint32{0x10 | 0x00400000 | 0x00020000}) // EnterWindow|PropertyChange|StructureNotify
	if cli.IsPopup() {
		a.Conn.ChangeWinAttrs(win, 0x800 /* CWEventMask */, []uint32{0x10 | 0x20 | 0x00400000 | 0x00020000}) // + LeaveWindow
	}
	ClientMoveResize(scr, cli, cli.X, cli.Y, cli.W, cli.H)
	if tag.ID != scr.CurrentTag {
		a.Conn.UnmapWindow(win)
	} else {
		a.Conn.MapWindow(win)
	}

	// step 13: publish _NET_CLIENT_LIST.
	a.publishClientList(m)

	return AddWindowResult{Client: cli, Scr: scr, Tag: tag}
}

func initialPlacement(scr *Screen, cli *Client, x, y int16, w, h uint16) (int16, int16, uint16, uint16) {
	switch {
	case cli.Flags.Has(FlagCenter):
		return scr.X + int16(scr.W-w)/2, scr.Top + int16(scr.H-h)/2, w, h
	case cli.Flags.Has(FlagTopLeft):
		return scr.X, scr.Top, w, h
	case cli.Flags.Has(FlagTopRight):
		return scr.X + int16(scr.W)-int16(w), scr.Top, w, h
	case cli.Flags.Has(FlagBotLeft):
		return scr.X, scr.Top + int16(scr.H)-int16(h), w, h
	case cli.Flags.Has(FlagBotRight):
		return scr.X + int16(scr.W)-int16(w), scr.Top + int16(scr.H)-int16(h), w, h
	default:
		return x, y, w, h
	}
}

// resolveTag implements step 9's priority: pinned tag for this class,
// else persisted tag, else the screen's current tag.
func resolveTag(m *Model, rules []ClassRule, scr *Screen, class string, persisted TagID, havePersisted bool) *Tag {
	if rule, ok := FindClassRule(rules, class); ok && rule.Tag != "" {
		for _, id := range scr.Tags.Items() {
			if t, ok := m.Tag(id); ok && t.Name == rule.Tag {
				return t
			}
		}
	}
	if havePersisted {
		if t, ok := m.Tag(persisted); ok {
			return t
		}
	}
	if t, ok := m.Tag(scr.CurrentTag); ok {
		return t
	}
	return m.NewTagFor(scr, "*")
}

func (a *Admitter) publishClientList(m *Model) {
	clients := m.AllClients()
	wins := make([]uint32, 0, len(clients))
	for _, c := range clients {
		wins = append(wins, uint32(c.Win))
	}
	a.Conn.SetProperty32(a.Conn.Root, "_NET_CLIENT_LIST", 33, wins)
}

// closePollInterval/closePollRounds implement "polls with 10 ms sleeps up
// to 500 ms" (§4.4, §5 Cancellation & timeouts): the one deliberate
// blocking suspension point outside the main poll loop, matching the
// original's nanosleep(10ms) x 50 loop inside close_window.
const (
	closePollInterval = 10 * time.Millisecond
	closePollRounds   = 50
	closeBusyLimit    = 2 // escalate to SIGTERM once cli.Busy exceeds this
)

// CloseWindowRequest implements close_window (§4.4, §5): send
// WM_DELETE_WINDOW, then block up to 500ms polling whether win is still
// visible — the one deliberate blocking suspension point outside the
// main poll loop (§5). m/tbx let it resolve win back to its Client and,
// if the client never goes away, free it the same way DESTROY_NOTIFY
// would (tbx may be nil, e.g. the exclusive-close precondition in
// AddWindow step 4, which runs before the toolbox singleton is wired up).
//
// Each call that doesn't see the window go away bumps Client.Busy; once
// Busy exceeds closeBusyLimit the client is SIGTERM'd and freed outright,
// mirroring the original's close_client (kill + free_client) vs. a bare
// free_client when the window already closed on its own.
func (a *Admitter) CloseWindowRequest(m *Model, tbx *Toolbox, win Window) {
	atom := a.Conn.Atoms.Get("WM_DELETE_WINDOW")
	if atom == 0 {
		a.Conn.DestroyWindow(win)
		return
	}
	a.Conn.SendClientMessage(win, a.Conn.Atoms.Get("WM_PROTOCOLS"), [5]uint32{atom, 0, 0, 0, 0})

	cli, ok := m.ClientByWindow(win)
	if !ok {
		return
	}

	cli.Busy++ // give the client a chance to exit gracefully

	stillOpen := true
	for i := 0; i < closePollRounds; i++ {
		if !a.Conn.IsWindowVisible(win) {
			cli.Busy = 0
			stillOpen = false
			break
		}
		log.Printf("%d: window %#x still open (%d)", i, win, cli.Busy)
		time.Sleep(closePollInterval)
	}

	switch {
	case cli.Busy > closeBusyLimit:
		cli.Busy = 0
		if cli.PID != 0 {
			if err := unix.Kill(int(cli.PID), unix.SIGTERM); err != nil {
				log.Printf("SIGTERM pid %d (win %#x): %v", cli.PID, win, err)
			}
		}
		a.FreeClient(m, tbx, cli.ID)
	case !stillOpen:
		a.FreeClient(m, tbx, cli.ID)
	}
	// otherwise cli.Busy is 1 or closeBusyLimit: still open, not yet
	// escalated; Busy persists so the next close request continues the
	// count (matches the original leaving cli->busy in place).
}

// FreeClient implements free_client (§4.4): clears tag slots, toolbox
// attachment, removes from both lists, wipes persisted state.
func (a *Admitter) FreeClient(m *Model, tbx *Toolbox, id ClientID) {
	c, ok := m.FreeClient(id)
	if !ok {
		return
	}
	if tbx != nil {
		tbx.Detach(id)
	}
	if a.Session != nil {
		a.Session.Remove(c.Win)
	}
	a.publishClientList(m)
}
