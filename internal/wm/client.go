package wm

import "hash/crc32"

// Client is a managed X window (§3). Screen/Tag are held as ids, not
// pointers, so the arena in Model is the single owner (§9).
type Client struct {
	ID ClientID

	Win    Window
	Leader Window
	PID    int32

	Scr ScreenID
	Tag TagID

	X, Y int16
	W, H uint16

	Div float64 // split ratio, default 1 (§3)
	Inc uint16  // centered-grow step

	Flags ClientFlags
	CRC   uint32 // over class name, for the exclusivity check (§4.4)

	Pos WinPos
	TS  uint64 // raise timestamp, microseconds (§3)

	Busy uint8

	Class string
	Title string

	// lastWinPos remembers the last split direction/position actually
	// applied, consulted by grow_window (§4.5).
	lastWinPos WinPos
}

// ClassCRC computes the exclusivity CRC named in §3/§4.4.
func ClassCRC(class string) uint32 {
	return crc32.ChecksumIEEE([]byte(class))
}

// IsPopup reports whether c was marked transient (§3 Popup, closed on
// pointer leave per §4.1 LEAVE_NOTIFY).
func (c *Client) IsPopup() bool { return c.Flags.Has(FlagPopup) }

// IsDock reports membership in a screen's dock list rather than a tag's
// client list (§3 invariant 2).
func (c *Client) IsDock() bool { return c.Flags.Has(FlagDock) }

// Rect returns the client's current geometry.
func (c *Client) Rect() Rect { return Rect{X: c.X, Y: c.Y, W: c.W, H: c.H} }
