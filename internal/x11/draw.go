package x11

import "github.com/jezek/xgb/xproto"

// This file extends the §4.2 wire adapter with the core-protocol drawing
// primitives the panel renderer (§4.3) needs: a graphics context, solid
// fills, and server-side font text so fill_rect/draw_text/measure_text in
// internal/panel stay free of xproto details.

// GC wraps a graphics context id together with the font currently loaded
// into it, since QueryTextExtents needs a Fontable and draw_text always
// wants the panel's one font.
type GC struct {
	ID   xproto.Gcontext
	Font xproto.Font
}

// CreateGC allocates a graphics context for drawable with the given
// foreground/background pixels and font.
func (c *Conn) CreateGC(drawable xproto.Drawable, fg, bg uint32, font xproto.Font) (*GC, error) {
	gid, err := xproto.NewGcontextId(c.X)
	if err != nil {
		return nil, err
	}
	mask := uint32(xproto.GcForeground | xproto.GcBackground | xproto.GcFont)
	err = xproto.CreateGCChecked(c.X, gid, drawable, mask, []uint32{fg, bg, uint32(font)}).Check()
	if err != nil {
		return nil, err
	}
	return &GC{ID: gid, Font: font}, nil
}

// SetForeground/SetBackground change the GC's paint color without a new
// allocation, used when draw_text repaints a background rect before text
// (§4.3).
func (c *Conn) SetForeground(gc *GC, pixel uint32) {
	_ = xproto.ChangeGCChecked(c.X, gc.ID, xproto.GcForeground, []uint32{pixel}).Check()
}

func (c *Conn) SetBackground(gc *GC, pixel uint32) {
	_ = xproto.ChangeGCChecked(c.X, gc.ID, xproto.GcBackground, []uint32{pixel}).Check()
}

// FillRect implements fill_rect (§4.3): a solid fill of rect in color,
// which is first set as the GC foreground.
func (c *Conn) FillRect(win xproto.Window, gc *GC, pixel uint32, x, y int16, w, h uint16) {
	c.SetForeground(gc, pixel)
	rects := []xproto.Rectangle{{X: x, Y: y, Width: w, Height: h}}
	err := xproto.PolyFillRectangleChecked(c.X, xproto.Drawable(win), gc.ID, rects).Check()
	if err != nil {
		log.Printf("fill_rect(win=%d): %v", win, err)
	}
}

// OpenFont loads a core X font by name (e.g. from $FWM_FONT), returning
// its id for use in CreateGC/QueryFont.
func (c *Conn) OpenFont(name string) (xproto.Font, error) {
	fid, err := xproto.NewFontId(c.X)
	if err != nil {
		return 0, err
	}
	err = xproto.OpenFontChecked(c.X, fid, uint16(len(name)), name).Check()
	if err != nil {
		return 0, err
	}
	return fid, nil
}

// FontMetrics is the subset of XQueryFont's reply the panel needs to size
// itself (§4.3 "panel height = font1.ascent + font1.descent + 2*margin").
type FontMetrics struct {
	Ascent, Descent int16
}

func (c *Conn) QueryFont(fid xproto.Font) (FontMetrics, error) {
	reply, err := xproto.QueryFont(c.X, xproto.Fontable(fid)).Reply()
	if err != nil {
		return FontMetrics{}, err
	}
	return FontMetrics{Ascent: reply.FontAscent, Descent: reply.FontDescent}, nil
}

// TextExtent measures str rendered in gc's font using a core
// QueryTextExtents round trip (§4.3 measure_text). Non-Latin-1 runes are
// folded to '?' since core fonts are single-byte; internal/panel only
// calls this for ASCII titles and the synthetic 'w'-string probe.
func (c *Conn) TextExtent(gc *GC, str string) (width uint16, err error) {
	chars := make([]xproto.Char2B, 0, len(str))
	for _, r := range str {
		b := byte('?')
		if r < 256 {
			b = byte(r)
		}
		chars = append(chars, xproto.Char2B{Byte1: 0, Byte2: b})
	}
	reply, err := xproto.QueryTextExtents(c.X, xproto.Fontable(gc.Font), chars).Reply()
	if err != nil {
		return 0, err
	}
	return uint16(reply.OverallWidth), nil
}

// ImageText8 draws Latin-1 text with its own background fill, the
// server-side equivalent of draw_text's "fill background, then draw text"
// two-step (§4.3), done here as a single opaque-stipple request.
func (c *Conn) ImageText8(win xproto.Window, gc *GC, x, y int16, str string) {
	clipped := str
	if len(clipped) > 255 {
		clipped = clipped[:255]
	}
	err := xproto.ImageText8Checked(c.X, byte(len(clipped)), xproto.Drawable(win), gc.ID, x, y, clipped).Check()
	if err != nil {
		log.Printf("image_text8(win=%d): %v", win, err)
	}
}

// CreateSimpleWindow creates a child of parent with the given geometry,
// background pixel and event mask — used for panel/toolbar/toolbox/dock
// proxy windows that the core owns outright.
func (c *Conn) CreateSimpleWindow(parent xproto.Window, x, y int16, w, h, border uint16, bg uint32, eventMask uint32) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(c.X)
	if err != nil {
		return 0, err
	}
	depth := xproto.WindowClassCopyFromParent
	mask := uint32(xproto.CwBackPixel | xproto.CwEventMask | xproto.CwOverrideRedirect)
	values := []uint32{bg, 1, eventMask} // in mask-bit order: BackPixel, OverrideRedirect, EventMask
	err = xproto.CreateWindowChecked(c.X, 0, wid, parent, x, y, w, h, border,
		uint16(depth), 0, mask, values).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}
