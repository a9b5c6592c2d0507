package wm

// This file is §4.10: dock items are clients attached to a screen's Dock
// list instead of any tag. Docks have fixed height and bypass tag layout
// entirely (§3, §4.4 step 2 "zero depth/colormap ignored" exclusion does
// not apply here — docks are admitted through the classifier in
// classify.go, which sets FlagDock/FlagLDock/FlagLAnchor/FlagRAnchor).

// DockHeight is the fixed height every dock client is forced to, leaving
// equal margins above/below within the panel strip (§4.10).
func DockHeight(panelHeight uint16) uint16 {
	h := panelHeight - 2*ItemVMargin - 2*BorderWidth
	if h == 0 || h > panelHeight {
		return panelHeight
	}
	return h
}

// LayoutDock lays out scr.Dock right-to-left, subtracting each client's
// width plus spacing, then re-ordering any left/right anchors to the
// ends of the dock row (§4.10). Every dock client is centred vertically
// in the panel strip.
func LayoutDock(m *Model, scr *Screen, spacing int16) {
	ids := reorderAnchors(m, scr.Dock.Items())
	dockH := DockHeight(scr.Panel.Height)
	y := scr.Top - int16(scr.Panel.Height) + int16(scr.Panel.Height-dockH)/2
	if !scr.Panel.Top {
		y = scr.Y + int16(scr.H) + int16(scr.Panel.Height-dockH)/2
	}

	var left, right []ClientID
	var middle []ClientID
	for _, id := range ids {
		c, ok := m.clients[id]
		if !ok {
			continue
		}
		switch {
		case c.Flags.Has(FlagLAnchor):
			left = append(left, id)
		case c.Flags.Has(FlagRAnchor):
			right = append(right, id)
		case c.Flags.Has(FlagLDock):
			middle = append([]ClientID{id}, middle...)
		default:
			middle = append(middle, id)
		}
	}

	x := scr.X + int16(scr.W)
	place := func(ids []ClientID) {
		for _, id := range ids {
			c, ok := m.clients[id]
			if !ok {
				continue
			}
			x -= int16(c.W) + spacing
			ClientMoveResize(scr, c, x, y, c.W, dockH)
		}
	}
	place(right)
	place(middle)
	place(left)
}

// reorderAnchors moves left-anchor items to the front and right-anchor
// items to the back of the list, preserving relative order otherwise
// (§4.10 "anchored items are re-ordered to ends").
func reorderAnchors(m *Model, ids []ClientID) []ClientID {
	var left, right, rest []ClientID
	for _, id := range ids {
		c, ok := m.clients[id]
		switch {
		case ok && c.Flags.Has(FlagLAnchor):
			left = append(left, id)
		case ok && c.Flags.Has(FlagRAnchor):
			right = append(right, id)
		default:
			rest = append(rest, id)
		}
	}
	out := make([]ClientID, 0, len(ids))
	out = append(out, left...)
	out = append(out, rest...)
	out = append(out, right...)
	return out
}
