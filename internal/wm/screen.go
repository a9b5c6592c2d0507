package wm

// PanelItemKind names the five partitions of a screen's panel (§3, §4.3).
type PanelItemKind int

const (
	ItemMenu PanelItemKind = iota
	ItemTags
	ItemDivider
	ItemTitle
	ItemDock
)

// PanelItem is one x-range of the panel, computed after tags are known
// (§4.3).
type PanelItem struct {
	Kind PanelItemKind
	X    int16
	W    uint16
}

// Panel is the per-screen status bar (§3, §4.3). Font/pixmap state is owned
// by internal/panel, which treats this as the geometry it draws into.
type Panel struct {
	Win      Window
	Top      bool // true: panel at y=0; false: panel at bottom
	Height   uint16
	Items    [5]PanelItem
	Title    string
}

// Screen is one X output, or the synthetic single-output screen (§3).
type Screen struct {
	ID     ScreenID
	Output uint32
	Name   string

	X, Y int16
	W, H uint16
	Top  int16 // y of usable area, after the panel (§3)

	Tags       OrderedList[TagID]
	CurrentTag TagID

	Dock OrderedList[ClientID] // right-to-left, optional end anchors

	Panel Panel

	// ClientRetag is set by retag_client (§4.8) only around its own tag
	// switch, so that switch skips mapping and focusing the destination
	// tag's windows; it is cleared again before retag_client returns.
	ClientRetag bool
}

func newScreen(id ScreenID, output uint32, name string, x, y int16, w, h uint16) *Screen {
	return &Screen{ID: id, Output: output, Name: name, X: x, Y: y, W: w, H: h, Top: y}
}

// UsableRect is the screen area below/above the panel, before any anchor
// split (§3 Tag.space starts from here).
func (s *Screen) UsableRect() Rect {
	return Rect{X: s.X, Y: s.Top, W: s.W, H: s.H}
}

// Contains reports whether (x,y) in root coordinates lies within the
// screen's bounds, used to resolve curscr from a pointer position (§4.1
// ENTER_NOTIFY, §4.11).
func (s *Screen) Contains(x, y int16) bool {
	return x >= s.X && x < s.X+int16(s.W) && y >= s.Y && y < s.Y+int16(s.H)
}
