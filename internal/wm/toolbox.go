package wm

// Gravity names the corner a Toolbox is pinned to (§3).
type Gravity int

const (
	GravityTopLeft Gravity = iota
	GravityTopRight
	GravityBottomLeft
	GravityBottomRight
)

// Toolbox is the process-singleton square glyph window attached to
// whichever client most recently asked for attention (§3, §4.9). It holds
// a weak reference (ClientID, resolved through Model) rather than a
// pointer, consistent with the rest of the arena.
type Toolbox struct {
	Win     Window
	Cli     ClientID
	Size    uint16
	X, Y    uint16
	Gravity Gravity
	Visible bool
}

// NewToolbox sizes the toolbox to the panel height, as §4.9 specifies.
func NewToolbox(panelHeight uint16) *Toolbox {
	return &Toolbox{Size: panelHeight, Cli: noClient}
}

// corners enumerates a client's four corners in the fixed probe order
// used to pick the first unobscured one (§4.9).
func corners(c *Client) [4]struct {
	g    Gravity
	x, y int16
} {
	return [4]struct {
		g    Gravity
		x, y int16
	}{
		{GravityTopLeft, c.X, c.Y},
		{GravityTopRight, c.X + int16(c.W), c.Y},
		{GravityBottomLeft, c.X, c.Y + int16(c.H)},
		{GravityBottomRight, c.X + int16(c.W), c.Y + int16(c.H)},
	}
}

// pointIn reports whether (x,y) falls within other's rectangle.
func pointIn(x, y int16, other *Client) bool {
	return x >= other.X && x < other.X+int16(other.W) &&
		y >= other.Y && y < other.Y+int16(other.H)
}

// AttachTo picks the toolbox's gravity as the corner of cli not obscured
// by any older (lower ts) sibling on the same tag, and attaches it unless
// cli is a popup or exclusive (§4.9). siblings excludes cli itself. When
// more than one corner is unobscured, TopRight wins the tie rather than
// whichever happens to be probed first (SPEC_FULL §3 gravity tie-break).
func (tb *Toolbox) AttachTo(cli *Client, siblings []*Client) {
	if cli.IsPopup() || cli.Flags.Has(FlagExclusive) {
		tb.Visible = false
		tb.Cli = noClient
		return
	}
	all := corners(cli)
	var unobscured []int
	for i, corner := range all {
		obscured := false
		for _, s := range siblings {
			if s.ID == cli.ID || s.TS >= cli.TS {
				continue
			}
			if pointIn(corner.x, corner.y, s) {
				obscured = true
				break
			}
		}
		if !obscured {
			unobscured = append(unobscured, i)
		}
	}

	chosen := 0 // every corner obscured: fall back to TopLeft, still reachable
	if len(unobscured) > 0 {
		chosen = unobscured[0]
		for _, i := range unobscured {
			if all[i].g == GravityTopRight {
				chosen = i
				break
			}
		}
	}
	c := all[chosen]
	tb.Gravity = c.g
	tb.X, tb.Y = toolboxOrigin(cli, c.g, tb.Size)
	tb.Cli = cli.ID
	tb.Visible = true
}

func toolboxOrigin(cli *Client, g Gravity, size uint16) (uint16, uint16) {
	switch g {
	case GravityTopLeft:
		return uint16(cli.X), uint16(cli.Y)
	case GravityTopRight:
		return uint16(cli.X) + cli.W - size, uint16(cli.Y)
	case GravityBottomLeft:
		return uint16(cli.X), uint16(cli.Y) + cli.H - size
	default: // GravityBottomRight
		return uint16(cli.X) + cli.W - size, uint16(cli.Y) + cli.H - size
	}
}

// Detach clears the toolbox's attachment, used by free_client when its
// attached client goes away (§4.4 free_client).
func (tb *Toolbox) Detach(id ClientID) {
	if tb.Cli == id {
		tb.Cli = noClient
		tb.Visible = false
	}
}
