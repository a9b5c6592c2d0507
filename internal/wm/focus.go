package wm

import "github.com/polarcat-fwm/fwm/internal/x11"

// This file is §4.6: focus & stacking. Grounded on the teacher's
// texel/desktop.go SwitchToWorkspace/broadcastStateUpdate pairing of
// "pick the new active thing" with "tell the backend and the rest of the
// UI about it" — here the backend is the X server instead of tcell.

// FocusColors carries the border pixel values the core paints with; owned
// by config loading, passed in rather than hardcoded so colors/ reloads
// (control-plane "reload-colors") take effect without restarting.
type FocusColors struct {
	FocusFG  uint32
	BorderFG uint32
	NoticeBG uint32
	ActiveBG uint32
	AlertFG  uint32
}

// RaiseClient implements raise_client (§4.6). nowTS is the caller's current
// monotonic microsecond clock. The toolbox is not touched here; the
// raise-client action in cmd/fwm hides a visible toolbox itself.
func RaiseClient(conn *x11.Conn, colors FocusColors, m *Model, scr *Screen, tag *Tag, cli *Client, nowTS uint64) {
	if prev, ok := m.clients[tag.Front]; ok && prev.ID != cli.ID {
		UnfocusWindow(conn, colors, prev)
	}
	if vis, ok := m.clients[tag.Visited]; ok && vis.ID != cli.ID && vis.ID != tag.Front {
		UnfocusWindow(conn, colors, vis)
	}
	tag.Prev = tag.Front
	tag.Visited = cli.ID
	tag.Front = cli.ID

	conn.RaiseWindow(cli.Win)
	FocusWindow(conn, colors, cli)
	cli.TS = nowTS
}

// FocusWindow sets the focused border color, assigns keyboard focus and
// publishes _NET_ACTIVE_WINDOW (§4.6).
func FocusWindow(conn *x11.Conn, colors FocusColors, cli *Client) {
	conn.ChangeWinAttrs(cli.Win, 0x8 /* CWBorderPixel */, []uint32{colors.FocusFG})
	conn.SetInputFocus(cli.Win)
	conn.SetProperty32(conn.Root, "_NET_ACTIVE_WINDOW", 33 /* AtomWindow */, []uint32{uint32(cli.Win)})
}

// UnfocusWindow sets the border back to border_fg (§4.6). It leaves
// _NET_ACTIVE_WINDOW alone; the next FocusWindow call overwrites it.
func UnfocusWindow(conn *x11.Conn, colors FocusColors, cli *Client) {
	conn.ChangeWinAttrs(cli.Win, 0x8 /* CWBorderPixel */, []uint32{colors.BorderFG})
}

// SwitchWindow implements switch_window (§4.6): walk the tag's client list
// past non-visible clients, forward if fwd else backward, returning the
// newly-selected client (nil if none found).
func SwitchWindow(m *Model, tag *Tag, from ClientID, fwd bool, isVisible func(*Client) bool) *Client {
	skip := func(id ClientID) bool {
		c, ok := m.clients[id]
		return !ok || (isVisible != nil && !isVisible(c))
	}
	var next ClientID
	var ok bool
	if fwd {
		next, ok = tag.Clients.Next(from, skip)
	} else {
		next, ok = tag.Clients.Prev(from, skip)
	}
	if !ok {
		return nil
	}
	return m.clients[next]
}

// SwitchTag implements switch_tag (§4.6): move scr.CurrentTag to the next
// or previous tag in scr.Tags (wrapping), then focus it. A single-tag
// screen is a no-op, matching walk_tags' list_single guard.
func SwitchTag(conn *x11.Conn, colors FocusColors, m *Model, scr *Screen, fwd bool, nowTS uint64) {
	if scr.Tags.Len() < 2 {
		return
	}
	var next TagID
	var ok bool
	noSkip := func(TagID) bool { return false }
	if fwd {
		next, ok = scr.Tags.Next(scr.CurrentTag, noSkip)
	} else {
		next, ok = scr.Tags.Prev(scr.CurrentTag, noSkip)
	}
	if !ok {
		return
	}
	newTag, ok := m.Tag(next)
	if !ok {
		return
	}
	oldTag, _ := m.Tag(scr.CurrentTag)
	FocusTag(conn, colors, m, scr, oldTag, newTag, nowTS)
}

// RetagClient implements retag_client (§4.6/§4.8): detach cli from its
// current tag, walk scr to the next/previous tag, and re-home cli onto the
// new current tag, refocusing it. Matches the original's guard against
// single-tag screens and its use of scr.ClientRetag to suppress the
// intermediate show_windows during FocusTag.
func RetagClient(conn *x11.Conn, colors FocusColors, m *Model, scr *Screen, cli *Client, fwd bool, nowTS uint64) {
	if scr.Tags.Len() < 2 {
		return
	}
	oldTag, ok := m.Tag(cli.Tag)
	if !ok {
		return
	}
	oldTag.Clients.Remove(cli.ID)
	if oldTag.Front == cli.ID {
		oldTag.Front = noClient
	}
	if oldTag.Visited == cli.ID {
		oldTag.Visited = noClient
	}
	if oldTag.Anchor == cli.ID {
		oldTag.Anchor = noClient
	}

	scr.ClientRetag = true
	SwitchTag(conn, colors, m, scr, fwd, nowTS)
	scr.ClientRetag = false

	newTag, ok := m.Tag(scr.CurrentTag)
	if !ok {
		return
	}
	newTag.Clients.Append(cli.ID)
	cli.Scr = scr.ID
	cli.Tag = newTag.ID

	conn.MapWindow(cli.Win)
	RaiseClient(conn, colors, m, scr, newTag, cli, nowTS)
}

// FocusTag implements focus_tag (§4.6): hide the old tag's windows, switch
// scr's current tag, and show/raise the new tag's front client — unless
// scr.ClientRetag is set, in which case the new tag's windows are left
// alone because RetagClient will map and raise the retagged client itself
// once it has re-homed it onto the tag (mirrors the original's
// SCR_FLG_CLIENT_RETAG guard around show_windows).
func FocusTag(conn *x11.Conn, colors FocusColors, m *Model, scr *Screen, oldTag, newTag *Tag, nowTS uint64) {
	if oldTag != nil {
		for _, id := range oldTag.Clients.Items() {
			if c, ok := m.clients[id]; ok {
				conn.UnmapWindow(c.Win)
			}
		}
		oldTag.Active = false
	}

	newTag.Active = true
	scr.CurrentTag = newTag.ID

	if scr.ClientRetag {
		return
	}

	for _, id := range newTag.Clients.Items() {
		if c, ok := m.clients[id]; ok {
			conn.MapWindow(c.Win)
		}
	}

	if front, ok := m.clients[newTag.Front]; ok {
		conn.RaiseWindow(front.Win)
		FocusWindow(conn, colors, front)
		front.TS = nowTS
	} else {
		conn.SetInputFocus(0)
	}
}
