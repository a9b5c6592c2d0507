package wm

// ToolbarItemKind is one of the ~10 action icons in §4.9.
type ToolbarItemKind int

const (
	ToolbarClose ToolbarItemKind = iota
	ToolbarCenter
	ToolbarFlag
	ToolbarLeft
	ToolbarRight
	ToolbarTop
	ToolbarBottom
	ToolbarExpand
	ToolbarMove
	ToolbarMouse
)

// ItemState is one of {normal, focused, active, alert, locked} (§4.9).
type ItemState int

const (
	StateNormal ItemState = iota
	StateFocused
	StateActive
	StateAlert
	StateLocked
)

// ToolbarItem is one icon of the strip, with its panel x-range.
type ToolbarItem struct {
	Kind  ToolbarItemKind
	Str   string
	X     int16
	W     uint16
	State ItemState
}

var toolbarLabels = map[ToolbarItemKind]string{
	ToolbarClose:  "Close",
	ToolbarCenter: "Center",
	ToolbarFlag:   "Flag",
	ToolbarLeft:   "Left",
	ToolbarRight:  "Right",
	ToolbarTop:    "Top",
	ToolbarBottom: "Bottom",
	ToolbarExpand: "Expand",
	ToolbarMove:   "Move",
	ToolbarMouse:  "Mouse",
}

// Toolbar is the process-singleton action strip bound to one client
// (§3, §4.9).
type Toolbar struct {
	Win Window
	Cli ClientID
	Scr ScreenID
	X, Y int16

	Items   []ToolbarItem
	focused int // index into Items, -1 if none
	Visible bool
}

// NewToolbar builds the fixed ~10-item strip in the fixed layout order.
func NewToolbar() *Toolbar {
	order := []ToolbarItemKind{
		ToolbarClose, ToolbarCenter, ToolbarFlag, ToolbarLeft, ToolbarRight,
		ToolbarTop, ToolbarBottom, ToolbarExpand, ToolbarMove, ToolbarMouse,
	}
	items := make([]ToolbarItem, len(order))
	for i, k := range order {
		items[i] = ToolbarItem{Kind: k, Str: toolbarLabels[k]}
	}
	return &Toolbar{Items: items, Cli: noClient, focused: -1}
}

// AttachTo positions the strip adjacent to the toolbox and marks the Flag
// item locked when cli is its tag's anchor (§4.9).
func (tb *Toolbar) AttachTo(cli *Client, scr *Screen, tbx *Toolbox, isAnchor bool) {
	tb.Cli = cli.ID
	tb.Scr = scr.ID
	tb.X, tb.Y = int16(tbx.X)+int16(tbx.Size), int16(tbx.Y)
	for i := range tb.Items {
		switch tb.Items[i].Kind {
		case ToolbarFlag:
			if isAnchor {
				tb.Items[i].State = StateLocked
			} else {
				tb.Items[i].State = StateNormal
			}
		case ToolbarClose:
			tb.Items[i].State = StateAlert
		default:
			if tb.Items[i].State == StateFocused || tb.Items[i].State == StateActive {
				tb.Items[i].State = StateNormal
			}
		}
	}
	tb.focused = -1
}

// Show/Hide toggle visibility; Escape and Move both hide the toolbar
// (§4.9).
func (tb *Toolbar) Show() { tb.Visible = true }
func (tb *Toolbar) Hide() { tb.Visible = false }

// MoveFocus implements the Left/Right keyboard navigation (§4.9).
func (tb *Toolbar) MoveFocus(right bool) {
	if len(tb.Items) == 0 {
		return
	}
	if tb.focused < 0 {
		tb.focused = 0
	} else if right {
		tb.focused = (tb.focused + 1) % len(tb.Items)
	} else {
		tb.focused = (tb.focused - 1 + len(tb.Items)) % len(tb.Items)
	}
	for i := range tb.Items {
		if i == tb.focused && tb.Items[i].State != StateLocked {
			tb.Items[i].State = StateFocused
		} else if tb.Items[i].State == StateFocused {
			tb.Items[i].State = StateNormal
		}
	}
}

// Fire returns the kind of the currently-focused item, if any (§4.9
// Return).
func (tb *Toolbar) Fire() (ToolbarItemKind, bool) {
	if tb.focused < 0 || tb.focused >= len(tb.Items) {
		return 0, false
	}
	return tb.Items[tb.focused].Kind, true
}
