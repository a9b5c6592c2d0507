// Package x11 is the thin wire adapter described in spec §4.2: it wraps the
// handful of X11 core, Randr and ICCCM requests the window manager core
// needs into Go methods with explicit error handling, and owns nothing
// about layout, focus, or data-model policy.
//
// Grounded on the raw jezek/xgb + xgb/xproto style used by X11 window
// managers and automation clients in the retrieval pack (resetti's
// internal/x11 client, cortile's xgbutil-based store/client.go) — this
// adapter talks xproto directly rather than through xgbutil, since the
// core only needs a small, explicit request surface.
package x11

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/polarcat-fwm/fwm/internal/wmlog"
)

var log = wmlog.For("x11")

// Conn owns the connection to the X server and the root window.
type Conn struct {
	X        *xgb.Conn
	Root     xproto.Window
	ScreenNo int
	Atoms    Atoms

	mu sync.Mutex
}

// Open connects to the X display named by the DISPLAY environment variable
// (or displayName if non-empty) and interns the atom table. A failure here
// is fatal per §7: the caller aborts the process.
func Open(displayName string) (*Conn, error) {
	xc, err := xgb.NewConnDisplay(displayName)
	if err != nil {
		return nil, fmt.Errorf("x11: open display: %w", err)
	}
	if err := randr.Init(xc); err != nil {
		log.Printf("randr unavailable: %v", err)
	}

	setup := xproto.Setup(xc)
	if setup == nil || len(setup.Roots) == 0 {
		xc.Close()
		return nil, fmt.Errorf("x11: no root screen")
	}
	screen := setup.DefaultScreen(xc)

	c := &Conn{X: xc, Root: screen.Root, ScreenNo: int(setup.RootsLen()) - 1}
	c.Atoms.byName = make(map[string]uint32, len(atomNames))
	for _, name := range atomNames {
		atom, err := c.InternAtom(name)
		if err != nil {
			log.Printf("intern_atom(%s) failed: %v", name, err)
			continue
		}
		c.Atoms.byName[name] = atom
	}
	return c, nil
}

func (c *Conn) Close() { c.X.Close() }

// InternAtom returns NONE (0) together with the error on failure; the
// caller logs it, per the "logged" error policy in §4.2's contract table.
func (c *Conn) InternAtom(name string) (uint32, error) {
	reply, err := xproto.InternAtom(c.X, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return uint32(reply.Atom), nil
}

// GrabKey routes keycode+mods on win to us. Errors are logged, not returned,
// because a failed grab must not abort keymap initialization (§4.2).
func (c *Conn) GrabKey(win xproto.Window, mods uint16, code xproto.Keycode) {
	err := xproto.GrabKeyChecked(c.X, true, win, mods, code,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
	if err != nil {
		log.Printf("grab_key(win=%d, mods=%x, code=%d): %v", win, mods, code, err)
	}
}

func (c *Conn) UngrabKey(win xproto.Window, mods uint16, code xproto.Keycode) {
	_ = xproto.UngrabKeyChecked(c.X, code, win, mods).Check()
}

func (c *Conn) GrabButton(win xproto.Window, mods uint16, button xproto.Button) {
	evMask := uint16(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease)
	err := xproto.GrabButtonChecked(c.X, false, win, evMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, 0, 0, button, mods).Check()
	if err != nil {
		log.Printf("grab_button(win=%d, mods=%x, button=%d): %v", win, mods, button, err)
	}
}

func (c *Conn) GrabPointer(win xproto.Window, eventMask uint16) error {
	_, err := xproto.GrabPointer(c.X, false, win, eventMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, 0, 0, xproto.TimeCurrentTime).Reply()
	return err
}

func (c *Conn) UngrabPointer() {
	_ = xproto.UngrabPointerChecked(c.X, xproto.TimeCurrentTime).Check()
}

// ChangeWinAttrs sets attributes atomically (event mask, border pixel, …).
func (c *Conn) ChangeWinAttrs(win xproto.Window, mask uint32, values []uint32) {
	err := xproto.ChangeWindowAttributesChecked(c.X, win, mask, values).Check()
	if err != nil {
		log.Printf("change_win_attrs(win=%d): %v", win, err)
	}
}

// Geometry mirrors the subset of ConfigureWindow fields the core ever sets.
type Geometry struct {
	X, Y          int16
	W, H          uint16
	BorderWidth   uint16
	StackMode     *uint8
	HasBorder     bool
	HasStackOnTop bool
}

// ConfigureWindow always sets x, y, width and height from g, plus the
// border width when g.HasBorder is set and the stack mode when
// g.StackMode is non-nil.
func (c *Conn) ConfigureWindow(win xproto.Window, g Geometry) {
	var mask uint16
	var values []uint32
	mask |= xproto.ConfigWindowX
	values = append(values, uint32(int32(g.X)))
	mask |= xproto.ConfigWindowY
	values = append(values, uint32(int32(g.Y)))
	mask |= xproto.ConfigWindowWidth
	values = append(values, uint32(g.W))
	mask |= xproto.ConfigWindowHeight
	values = append(values, uint32(g.H))
	if g.HasBorder {
		mask |= xproto.ConfigWindowBorderWidth
		values = append(values, uint32(g.BorderWidth))
	}
	if g.StackMode != nil {
		mask |= xproto.ConfigWindowStackMode
		values = append(values, uint32(*g.StackMode))
	}
	err := xproto.ConfigureWindowChecked(c.X, win, mask, values).Check()
	if err != nil {
		log.Printf("configure_window(win=%d): %v", win, err)
	}
}

func (c *Conn) MapWindow(win xproto.Window) {
	_ = xproto.MapWindowChecked(c.X, win).Check()
}

func (c *Conn) UnmapWindow(win xproto.Window) {
	_ = xproto.UnmapWindowChecked(c.X, win).Check()
}

func (c *Conn) DestroyWindow(win xproto.Window) {
	_ = xproto.DestroyWindowChecked(c.X, win).Check()
}

// RaiseWindow restacks win above its siblings.
func (c *Conn) RaiseWindow(win xproto.Window) {
	err := xproto.ConfigureWindowChecked(c.X, win, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove}).Check()
	if err != nil {
		log.Printf("raise_window(win=%d): %v", win, err)
	}
}

// WarpPointer moves the pointer to root-relative (x,y), used by the
// focus-screen control verb to follow the keyboard focus (§4.13).
func (c *Conn) WarpPointer(x, y int16) {
	err := xproto.WarpPointerChecked(c.X, 0, c.Root, 0, 0, 0, 0, x, y).Check()
	if err != nil {
		log.Printf("warp_pointer(%d,%d): %v", x, y, err)
	}
}

func (c *Conn) SetInputFocus(win xproto.Window) {
	target := win
	revert := uint8(xproto.InputFocusPointerRoot)
	if win == 0 {
		target = c.Root
	}
	err := xproto.SetInputFocusChecked(c.X, revert, target, xproto.TimeCurrentTime).Check()
	if err != nil {
		log.Printf("set_input_focus(win=%d): %v", win, err)
	}
}

// QueryTree lists top-level children bottom-to-top. On failure, returns an
// empty slice (§4.2).
func (c *Conn) QueryTree(root xproto.Window) []xproto.Window {
	reply, err := xproto.QueryTree(c.X, root).Reply()
	if err != nil {
		log.Printf("query_tree: %v", err)
		return nil
	}
	return reply.Children
}

// QueryPointer returns root-relative coordinates and the child under the
// pointer. On failure coords are (-1,-1) and child is NONE (§4.2).
func (c *Conn) QueryPointer(root xproto.Window) (x, y int16, child xproto.Window) {
	reply, err := xproto.QueryPointer(c.X, root).Reply()
	if err != nil {
		log.Printf("query_pointer: %v", err)
		return -1, -1, 0
	}
	return reply.RootX, reply.RootY, reply.Child
}

// GetGeometry checks window existence; callers combine this with
// GetAttributes for Client.IsVisible (§4.2).
func (c *Conn) GetGeometry(win xproto.Window) (x, y int16, w, h uint16, ok bool) {
	reply, err := xproto.GetGeometry(c.X, xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, false
	}
	return reply.X, reply.Y, reply.Width, reply.Height, true
}

// WinAttrs is the subset of GetWindowAttributes the core consults.
type WinAttrs struct {
	MapState xproto.MapState
	Class    uint16 // InputOutput vs InputOnly
	OK       bool
}

func (c *Conn) GetAttributes(win xproto.Window) WinAttrs {
	reply, err := xproto.GetWindowAttributes(c.X, win).Reply()
	if err != nil {
		return WinAttrs{}
	}
	return WinAttrs{MapState: reply.MapState, Class: uint16(reply.Class), OK: true}
}

// IsWindowVisible implements Client::is_visible (§4.2): map_state ==
// Viewable and get_geometry succeeds. Used by close_window's busy poll
// (§4.4) to detect whether a client has gone away after WM_DELETE_WINDOW.
func (c *Conn) IsWindowVisible(win xproto.Window) bool {
	attrs := c.GetAttributes(win)
	if !attrs.OK || attrs.MapState != xproto.MapStateViewable {
		return false
	}
	_, _, _, _, ok := c.GetGeometry(win)
	return ok
}

// GetProperty reads an 8- or 32-bit property. Null/empty is tolerated and
// reported via ok=false (§4.2, §7 "short reads yield no preference").
func (c *Conn) GetProperty(win xproto.Window, atom uint32, maxLen uint32) (data []byte, ok bool) {
	reply, err := xproto.GetProperty(c.X, false, win, xproto.Atom(atom), xproto.AtomAny, 0, maxLen).Reply()
	if err != nil || reply == nil || reply.ValueLen == 0 {
		return nil, false
	}
	return reply.Value, true
}

// GetPropertyString reads a property as UTF-8/Latin-1 text, used for
// WM_NAME/_NET_WM_NAME/WM_CLASS lookups.
func (c *Conn) GetPropertyString(win xproto.Window, atomName string) (string, bool) {
	atom := c.Atoms.Get(atomName)
	if atom == 0 {
		return "", false
	}
	data, ok := c.GetProperty(win, atom, 1024)
	if !ok {
		return "", false
	}
	return string(data), true
}

// GetPropertyCardinal reads a single 32-bit cardinal property (e.g.
// _NET_WM_PID).
func (c *Conn) GetPropertyCardinal(win xproto.Window, atomName string) (uint32, bool) {
	atom := c.Atoms.Get(atomName)
	if atom == 0 {
		return 0, false
	}
	data, ok := c.GetProperty(win, atom, 4)
	if !ok || len(data) < 4 {
		return 0, false
	}
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24, true
}

// SendClientMessage emits a 32-bit format ClientMessage (WM_DELETE_WINDOW,
// tray selection notify, dock updates, …). Non-blocking per §4.2.
func (c *Conn) SendClientMessage(win xproto.Window, msgType uint32, data [5]uint32) {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   xproto.Atom(msgType),
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
	err := xproto.SendEventChecked(c.X, false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
	if err != nil {
		log.Printf("send_client_message(win=%d, type=%d): %v", win, msgType, err)
	}
}

// ChangeSaveSet protects a client's window from being destroyed if the WM
// crashes (§4.2).
func (c *Conn) ChangeSaveSet(win xproto.Window) {
	_ = xproto.ChangeSaveSetChecked(c.X, xproto.SetModeInsert, win).Check()
}

// SetProperty32 writes a 32-bit property (used for _NET_CLIENT_LIST, _NET_ACTIVE_WINDOW).
func (c *Conn) SetProperty32(win xproto.Window, atomName string, typ uint32, values []uint32) {
	atom := c.Atoms.Get(atomName)
	if atom == 0 {
		return
	}
	data := make([]byte, 4*len(values))
	for i, v := range values {
		data[4*i] = byte(v)
		data[4*i+1] = byte(v >> 8)
		data[4*i+2] = byte(v >> 16)
		data[4*i+3] = byte(v >> 24)
	}
	err := xproto.ChangePropertyChecked(c.X, xproto.PropModeReplace, win, xproto.Atom(atom),
		xproto.Atom(typ), 32, uint32(len(values)), data).Check()
	if err != nil {
		log.Printf("set_property(win=%d, %s): %v", win, atomName, err)
	}
}

// PollForEvent drains one pending event without blocking, or returns nil if
// none is ready. The event dispatcher does not use it: its drain loop reads
// the channel fed by WaitForEvent, so events stay in delivery order (§4.1).
func (c *Conn) PollForEvent() (xgb.Event, xgb.Error) {
	return c.X.PollForEvent()
}

// WaitForEvent blocks until the next event or protocol error arrives. jezek/xgb
// keeps its own internal read goroutine rather than exposing a raw socket fd,
// so the event dispatcher (§4.1) multiplexes this with the control FIFO the
// same way the teacher's Desktop.Run multiplexes tcellScreen.PollEvent()
// against refresh/draw channels: a dedicated goroutine blocks in
// WaitForEvent and forwards onto a channel that a select loop drains
// alongside the FIFO reader.
func (c *Conn) WaitForEvent() (xgb.Event, xgb.Error) {
	return c.X.WaitForEvent()
}
