// Package wm is the core data model and layout/focus engine described in
// spec §3–§4: Screen, Tag, Client, Config, Keymap, Toolbar, Toolbox and the
// operations that mutate them (place_window, make_grid, raise_client, ...).
//
// Grounded on the teacher's texel package: Screen/Tag play the role the
// teacher's Workspace/Node-tree play, Client plays the role of the
// teacher's pane, and the id-indexed arenas below replace the original's
// intrusive doubly-linked lists per §9's design note (option (a): owning
// slices keyed by small integer ids, weak references become id lookups).
package wm

import "github.com/jezek/xgb/xproto"

// Rect is an absolute-pixel rectangle, distinct from the teacher's
// fractional-coordinate Rect (texel/tree.go): every layout computation here
// works in screen pixels, clamped by adjust_{x,y,w,h} (§4.5).
type Rect struct {
	X, Y int16
	W, H uint16
}

// WinPos enumerates the placement requests §4.5 understands.
type WinPos int

const (
	PosPreserve WinPos = iota
	PosFill
	PosCenter
	PosTopLeft
	PosTopRight
	PosBottomLeft
	PosBottomRight
	PosLeftFill
	PosRightFill
	PosTopFill
	PosBottomFill
)

// ClientFlags is the bitset carried on Client.flags (§3).
type ClientFlags uint32

const (
	FlagDock ClientFlags = 1 << iota
	FlagTray
	FlagCenter
	FlagTopLeft
	FlagTopRight
	FlagBotLeft
	FlagBotRight
	FlagExclusive
	FlagMove
	FlagFullscreen
	FlagPopup
	FlagLAnchor
	FlagRAnchor
	FlagLDock
	FlagBorder
	FlagUser // caller explicitly requested placement (vs. scan/auto)
	FlagScan // client discovered by a topology rescan, not MAP_REQUEST
)

func (f ClientFlags) Has(bit ClientFlags) bool { return f&bit != 0 }

// Tunable constants named directly in the spec's scenarios (§8) and
// component design (§4.4, §4.5, §4.9).
const (
	BorderWidth    = 2
	WinWidthMin    = 8
	WinHeightMin   = 8
	WinIncStep     = 20
	PosDivMax      = 9
	GrowStep       = 2
	GrowStepMin    = 9
	ItemVMargin    = 4
	TagLongPressMS = 300
)

// Scale is $FWM_SCALE (§6): a float font/space scale multiplied into the
// panel's vertical item margin and tag-strip width, defaulting to 1.0.
// main.go sets this once at startup before any screen or panel is built.
var Scale float64 = 1.0

// ScaledItemVMargin applies Scale to ItemVMargin, rounding to the nearest
// pixel; internal/panel uses this instead of the bare constant so
// $FWM_SCALE reaches panel height and text baseline computation.
func ScaledItemVMargin() uint16 {
	v := float64(ItemVMargin) * Scale
	if v < 1 {
		v = 1
	}
	return uint16(v + 0.5)
}

// ScaledWidth applies Scale to a pixel width, used for the tag-strip and
// other panel item widths that FWM_SCALE is documented to affect.
func ScaledWidth(w uint16) uint16 {
	return uint16(float64(w)*Scale + 0.5)
}

// ScreenID, TagID and ClientID index the arenas in Model (§9 design notes).
type ScreenID uint8
type TagID uint8
type ClientID uint32

const noClient ClientID = 0

// Window is a raw X11 window id, kept distinct from ClientID so lookups
// through the win->ClientID map (§9, "resolve windows to clients via a hash
// map, rebuilt on add/remove only") are explicit about which space a value
// lives in.
type Window = xproto.Window
