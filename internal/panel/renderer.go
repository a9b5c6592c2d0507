// Package panel is the text/panel renderer of §4.3: it owns the font and
// colors, partitions each screen's panel into its five items, and draws
// text and fills through the core-protocol primitives in internal/x11.
//
// Grounded on the teacher's apps/clock/clock.go, which is the one place in
// the retrieval pack doing UTF-8-aware text layout (StringWidth/RuneWidth
// from mattn/go-runewidth) rather than a naive byte-length measurement.
package panel

import (
	"github.com/jezek/xgb/xproto"
	"github.com/mattn/go-runewidth"

	"github.com/polarcat-fwm/fwm/internal/wm"
	"github.com/polarcat-fwm/fwm/internal/wmlog"
	"github.com/polarcat-fwm/fwm/internal/x11"
)

var log = wmlog.For("panel")

// Colors is the palette the panel paints with. It is fixed when the
// renderer is built; the control-plane "reload-colors" verb (§4.13) does
// not change it.
type Colors struct {
	FG, BG         uint32
	TagFG, TagBG   uint32
	ActiveTagBG    uint32
	DividerFG      uint32
	TitleFG        uint32
}

// Renderer owns the font and GC shared by every screen's panel.
type Renderer struct {
	conn *x11.Conn
	gc   *x11.GC

	fontAscent, fontDescent int16
	colors                  Colors
}

// NewRenderer opens fontName (falling back to "fixed") and computes the
// panel height named in §4.3.
func NewRenderer(conn *x11.Conn, fontName string, colors Colors) (*Renderer, uint16, error) {
	if fontName == "" {
		fontName = "fixed"
	}
	font, err := conn.OpenFont(fontName)
	if err != nil {
		log.Printf("open_font(%s) failed, falling back to fixed: %v", fontName, err)
		font, err = conn.OpenFont("fixed")
		if err != nil {
			return nil, 0, err
		}
	}
	metrics, err := conn.QueryFont(font)
	if err != nil {
		return nil, 0, err
	}
	gc, err := conn.CreateGC(xproto.Drawable(conn.Root), colors.FG, colors.BG, font)
	if err != nil {
		return nil, 0, err
	}
	r := &Renderer{conn: conn, gc: gc, fontAscent: metrics.Ascent, fontDescent: metrics.Descent, colors: colors}
	h := uint16(metrics.Ascent+metrics.Descent) + 2*wm.ScaledItemVMargin()
	if h%2 != 0 {
		h++
	}
	return r, h, nil
}

// DrawText implements draw_text (§4.3): fills the background rect, then
// draws str at the font baseline.
func (r *Renderer) DrawText(win wm.Window, fg, bg uint32, x int16, w uint16, str string) {
	r.conn.FillRect(win, r.gc, bg, x, 0, w, uint16(r.fontAscent+r.fontDescent)+2*wm.ScaledItemVMargin())
	r.conn.SetForeground(r.gc, fg)
	yoff := r.fontAscent + int16(wm.ScaledItemVMargin())
	r.conn.ImageText8(win, r.gc, x, yoff, str)
}

// MeasureText implements measure_text (§4.3): a core QueryTextExtents
// round trip for width, plus the font's fixed ascent+descent for height.
func (r *Renderer) MeasureText(str string) (w, h uint16) {
	width, err := r.conn.TextExtent(r.gc, str)
	if err != nil {
		log.Printf("measure_text(%q): %v", str, err)
		width = uint16(runewidth.StringWidth(str)) * uint16(r.fontAscent/2+1)
	}
	return width, uint16(r.fontAscent + r.fontDescent)
}

// MaxTitleGlyphs implements the title-width probe in §4.3: grow a string
// of 'w' glyphs until it no longer fits in avail pixels, returning the
// largest count that does. 'w' is the widest glyph in most fonts, so this
// is a safe upper bound on any real title's glyph budget.
func (r *Renderer) MaxTitleGlyphs(avail uint16) int {
	n := 0
	for {
		probe := make([]byte, n+1)
		for i := range probe {
			probe[i] = 'w'
		}
		w, _ := r.MeasureText(string(probe))
		if w > avail {
			return n
		}
		n++
		if n > 256 { // defensive cap; no real font makes it this wide
			return n
		}
	}
}

// TruncateTitle shortens title to fit maxGlyphs, counting wide runes as
// their go-runewidth cell width so CJK titles don't overrun a
// Latin-1-sized budget, and appends an ellipsis on overflow (§4.3).
func TruncateTitle(title string, maxGlyphs int) string {
	if maxGlyphs <= 0 {
		return ""
	}
	if runewidth.StringWidth(title) <= maxGlyphs {
		return title
	}
	budget := maxGlyphs - 1 // room for the ellipsis rune
	if budget <= 0 {
		return "…"
	}
	width := 0
	out := make([]rune, 0, len(title))
	for _, r := range title {
		rw := runewidth.RuneWidth(r)
		if width+rw > budget {
			break
		}
		out = append(out, r)
		width += rw
	}
	return string(out) + "…"
}

// LayoutItems partitions the panel into its five x-ranges after the tag
// strip's width is known (§3 "items:[PanelItem;5]", §4.3).
func LayoutItems(scr *wm.Screen, tagsWidth uint16, dockWidth uint16, menuWidth, dividerWidth uint16) {
	x := scr.X
	scr.Panel.Items[wm.ItemMenu] = wm.PanelItem{Kind: wm.ItemMenu, X: x, W: menuWidth}
	x += int16(menuWidth)
	scr.Panel.Items[wm.ItemTags] = wm.PanelItem{Kind: wm.ItemTags, X: x, W: tagsWidth}
	x += int16(tagsWidth)
	scr.Panel.Items[wm.ItemDivider] = wm.PanelItem{Kind: wm.ItemDivider, X: x, W: dividerWidth}
	x += int16(dividerWidth)

	dockX := scr.X + int16(scr.W) - int16(dockWidth)
	titleW := uint16(dockX - x)
	scr.Panel.Items[wm.ItemTitle] = wm.PanelItem{Kind: wm.ItemTitle, X: x, W: titleW}
	scr.Panel.Items[wm.ItemDock] = wm.PanelItem{Kind: wm.ItemDock, X: dockX, W: dockWidth}
}
