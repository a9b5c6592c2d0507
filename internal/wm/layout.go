package wm

// This file is the layout engine of §4.5: geometry clamping, placement,
// grow, and the near-square grid retile. It is pure: it only mutates
// Client/Tag fields in the model and returns nothing; none of these
// functions sends the resulting geometry to the X server. Grounded
// on the teacher's texel/tree.go Resize/resizeNode, which is likewise pure
// ratio math kept separate from the tcell draw calls in pane.go.

// AdjustX clamps an x coordinate to the screen's horizontal span (§4.5).
func AdjustX(scr *Screen, x int16) int16 {
	if x < scr.X {
		return scr.X
	}
	if max := scr.X + int16(scr.W); x > max {
		return max
	}
	return x
}

// AdjustY clamps to the usable vertical span below/above the panel.
func AdjustY(scr *Screen, y int16) int16 {
	if y < scr.Top {
		return scr.Top
	}
	if max := scr.Top + int16(scr.H); y > max {
		return max
	}
	return y
}

// AdjustW clamps a width to [WinWidthMin, scr.w-2*BorderWidth].
func AdjustW(scr *Screen, w uint16) uint16 {
	if w < WinWidthMin {
		return WinWidthMin
	}
	if maxW := scr.W - 2*BorderWidth; w > maxW {
		return maxW
	}
	return w
}

// AdjustH is AdjustW's vertical mirror.
func AdjustH(scr *Screen, h uint16) uint16 {
	if h < WinHeightMin {
		return WinHeightMin
	}
	if maxH := scr.H - 2*BorderWidth; h > maxH {
		return maxH
	}
	return h
}

// ClientMoveResize sets cli's geometry after clamping, except dock clients
// which bypass clamping entirely (§4.5 client_moveresize).
func ClientMoveResize(scr *Screen, cli *Client, x, y int16, w, h uint16) {
	if cli.IsDock() {
		cli.X, cli.Y, cli.W, cli.H = x, y, w, h
		return
	}
	cli.X = AdjustX(scr, x)
	cli.Y = AdjustY(scr, y)
	cli.W = AdjustW(scr, w)
	cli.H = AdjustH(scr, h)
}

// AnchorSpace computes tag.space for the anchor client's current
// WinPos, implementing the split-space math in §4.5.
func AnchorSpace(scr *Screen, tag *Tag, anchor *Client) Rect {
	usable := scr.UsableRect()
	if anchor == nil {
		return usable
	}
	switch anchor.Pos {
	case PosLeftFill:
		return Rect{
			X: scr.X + int16(anchor.W) + 2*BorderWidth,
			Y: scr.Top,
			W: scr.W - scr.W/uint16(max1(int(anchor.Div))),
			H: scr.H,
		}
	case PosRightFill:
		return Rect{
			X: scr.X,
			Y: scr.Top,
			W: scr.W - scr.W/uint16(max1(int(anchor.Div))),
			H: scr.H,
		}
	case PosTopFill:
		return Rect{
			X: scr.X,
			Y: scr.Top + int16(anchor.H) + 2*BorderWidth,
			W: scr.W,
			H: scr.H - scr.H/uint16(max1(int(anchor.Div))),
		}
	case PosBottomFill:
		return Rect{
			X: scr.X,
			Y: scr.Top,
			W: scr.W,
			H: scr.H - scr.H/uint16(max1(int(anchor.Div))),
		}
	default:
		// recalc_space only special-cases the four *_FILL positions; every
		// other winpos (including the four quarter corners) falls through
		// to space_fullscr — a corner-anchored client does not halve its
		// tag's grid space for the remaining siblings.
		return usable
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// PlaceWindow implements place_window (§4.5). pos is the requested
// placement (from arg.kmap.arg or cli.pos); repeat indicates a repeated
// invocation of the same binding, which ratchets div/inc.
func PlaceWindow(scr *Screen, tag *Tag, cli *Client, pos WinPos, repeat bool) {
	switch pos {
	case PosFill:
		tag.Anchor = noClient
		cli.Flags |= FlagFullscreen
		ClientMoveResize(scr, cli, scr.X, scr.Top, scr.W, scr.H)
	case PosCenter:
		if repeat {
			cli.Inc += WinIncStep
		} else {
			cli.Inc = 0
		}
		w, h := scr.W/2+cli.Inc, scr.H/2+cli.Inc
		if w > scr.W || h > scr.H {
			cli.Inc = 0
			w, h = scr.W/2, scr.H/2
		}
		x := scr.X + int16(scr.W-w)/2
		y := scr.Top + int16(scr.H-h)/2
		ClientMoveResize(scr, cli, x, y, w, h)
	case PosTopLeft, PosTopRight, PosBottomLeft, PosBottomRight, PosLeftFill, PosRightFill, PosTopFill, PosBottomFill:
		ratchetDiv(cli, repeat)
		applyDivPlacement(scr, cli, pos)
	default: // Preserve
		return
	}
	cli.Pos = pos
	cli.lastWinPos = pos

	if tag.Anchor == cli.ID {
		tag.Space = AnchorSpace(scr, tag, cli)
	}
}

// applyDivPlacement computes and applies the geometry for one of the
// div-ratcheted placements (quarter corners, half-screen fills) using
// cli.Div as it currently stands. Split out from PlaceWindow so
// FlagWindow can place a newly-anchored client at an explicit Div
// without going through ratchetDiv's repeat-driven reset (§4.5,
// original fwm.c flag_window setting div directly before place_window).
func applyDivPlacement(scr *Screen, cli *Client, pos WinPos) {
	switch pos {
	case PosTopLeft, PosTopRight, PosBottomLeft, PosBottomRight:
		w, h := scr.W/uint16(cli.Div), scr.H/uint16(cli.Div)
		if w > scr.W {
			w = scr.W / 2
		}
		if h > scr.H {
			h = scr.H / 2
		}
		x, y := scr.X, scr.Top
		if pos == PosTopRight || pos == PosBottomRight {
			x = scr.X + int16(scr.W-w)
		}
		if pos == PosBottomLeft || pos == PosBottomRight {
			y = scr.Top + int16(scr.H-h)
		}
		ClientMoveResize(scr, cli, x, y, w, h)
	case PosLeftFill, PosRightFill:
		w := scr.W/uint16(cli.Div) - 2*BorderWidth
		x := scr.X
		if pos == PosRightFill {
			x = scr.X + int16(scr.W-w)
		}
		ClientMoveResize(scr, cli, x, scr.Top, w, scr.H)
	case PosTopFill, PosBottomFill:
		h := scr.H/uint16(cli.Div) - 2*BorderWidth
		y := scr.Top
		if pos == PosBottomFill {
			y = scr.Top + int16(scr.H-h)
		}
		ClientMoveResize(scr, cli, scr.X, y, scr.W, h)
	}
}

// FlagWindow implements flag_window (§4.5/§4.9 Flag toolbar item, grounded
// on original_source/src/fwm.c flag_window): toggles cli as tag's anchor.
// If cli is already the anchor, it is cleared and tag.space reverts to the
// full usable rect. Otherwise cli becomes the new anchor, pinned near the
// screen edge (bottom-fill unless it already holds one of the four split
// positions), and the previous anchor (if any) is just superseded — it
// rejoins the grid on the next MakeGrid call.
func FlagWindow(scr *Screen, tag *Tag, cli *Client) {
	if tag.Anchor == cli.ID {
		tag.Anchor = noClient
		tag.Space = scr.UsableRect()
		return
	}
	tag.Anchor = cli.ID
	cli.Div = PosDivMax - 1
	switch cli.Pos {
	case PosLeftFill, PosRightFill, PosTopFill, PosBottomFill:
	default:
		cli.Pos = PosBottomFill
	}
	cli.lastWinPos = cli.Pos
	applyDivPlacement(scr, cli, cli.Pos)
	tag.Space = AnchorSpace(scr, tag, cli)
}

// ratchetDiv implements the "div starts at 2, increments each repeat up to
// POS_DIV_MAX then wraps" rule shared by the quarter/fill placements.
func ratchetDiv(cli *Client, repeat bool) {
	if !repeat || cli.Div < 2 {
		cli.Div = 2
		return
	}
	cli.Div++
	if cli.Div > PosDivMax {
		cli.Div = 2
	}
}

// GrowWindow implements grow_window (§4.5): only the last used split
// direction is affected, ratcheting div down to GrowStepMin then resetting.
func GrowWindow(scr *Screen, tag *Tag, cli *Client) {
	switch cli.lastWinPos {
	case PosTopLeft, PosTopRight, PosBottomLeft, PosBottomRight, PosLeftFill, PosRightFill, PosTopFill, PosBottomFill:
	default:
		return
	}
	if cli.Div > GrowStepMin {
		cli.Div -= GrowStep
		if cli.Div < GrowStepMin {
			cli.Div = GrowStepMin
		}
	} else {
		cli.Div = 2
	}
	PlaceWindow(scr, tag, cli, cli.lastWinPos, false)
}

// visibleNonAnchor returns the tag's clients eligible for grid placement:
// not the anchor, not popups, and not iconified on another tag.
func visibleNonAnchor(m *Model, tag *Tag) []*Client {
	var out []*Client
	for _, id := range tag.Clients.Items() {
		if id == tag.Anchor {
			continue
		}
		c, ok := m.clients[id]
		if !ok || c.IsPopup() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MakeGrid implements make_grid (§4.5): retile all visible non-anchor,
// non-popup clients on tag into a near-square grid within tag.space.
// suppressToggle corresponds to arg.data==1 for the n==2 case.
func MakeGrid(m *Model, scr *Screen, tag *Tag, ts uint64, suppressToggle bool) {
	clients := visibleNonAnchor(m, tag)
	n := len(clients)
	space := tag.Space
	if space.W == 0 && space.H == 0 {
		space = scr.UsableRect()
	}

	anchor, hasAnchor := m.clients[tag.Anchor]

	switch {
	case n == 0:
		return
	case n == 1 && !hasAnchor:
		ClientMoveResize(scr, clients[0], space.X, space.Y, space.W, space.H)
		clients[0].TS = ts
		return
	case n == 1 && hasAnchor:
		vertical := anchor.H > anchor.W
		tag.GridVertical = vertical
		ClientMoveResize(scr, clients[0], space.X, space.Y, space.W, space.H)
		clients[0].TS = ts
		return
	case n == 2:
		if !suppressToggle {
			tag.GridVertical = !tag.GridVertical
		}
		c0, c1 := clients[0], clients[1]
		if tag.GridVertical {
			w := space.W / 2
			ClientMoveResize(scr, c0, space.X, space.Y, w, space.H)
			ClientMoveResize(scr, c1, space.X+int16(w), space.Y, space.W-w, space.H)
		} else {
			h := space.H / 2
			ClientMoveResize(scr, c0, space.X, space.Y, space.W, h)
			ClientMoveResize(scr, c1, space.X, space.Y+int16(h), space.W, space.H-h)
		}
		c0.TS, c1.TS = ts, ts
		return
	}

	cols, rows := gridDim(n)
	cellW := space.W / uint16(cols)
	cellH := space.H / uint16(rows)

	for i, c := range clients {
		row, col := i/cols, i%cols
		w, h := cellW, cellH
		if i == n-1 {
			// last cell of the last row absorbs the rounding remainder
			w = space.W - cellW*uint16(col)
			h = space.H - cellH*uint16(row)
		}
		x := space.X + int16(col)*int16(cellW)
		y := space.Y + int16(row)*int16(cellH)
		ClientMoveResize(scr, c, x, y, w, h)
		c.TS = ts
	}
}

// gridDim finds the smallest i satisfying i*i>=n or i*(i+1)>=n and
// returns (cols, rows), grounded on original_source/src/fwm.c's
// cell_size (§4.5): the i*i branch is a square grid (cols=i, rows=i);
// the i*(i+1) branch is one column wider than it is tall (cols=i+1,
// rows=i) — whichever condition fires first for a given n, not both
// collapsed into a single square dimension.
func gridDim(n int) (cols, rows int) {
	for i := 1; ; i++ {
		if i*i >= n {
			return i, i
		}
		if i*(i+1) >= n {
			return i + 1, i
		}
	}
}
