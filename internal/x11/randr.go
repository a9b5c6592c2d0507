package x11

import (
	"github.com/jezek/xgb/randr"
)

// Output describes one connected Randr output's current CRTC geometry
// (§4.11 init_outputs).
type Output struct {
	ID       randr.Output
	Name     string
	X, Y     int16
	W, H     uint16
	Crtc     randr.Crtc
	Connected bool
}

// QueryOutputs enumerates the connected outputs and their CRTC geometry. If
// Randr is unavailable or reports nothing, it returns (nil, false) and the
// caller falls back to a single synthetic screen (§4.11 step 3).
func (c *Conn) QueryOutputs() ([]Output, bool) {
	res, err := randr.GetScreenResources(c.X, c.Root).Reply()
	if err != nil || res == nil {
		log.Printf("randr get_screen_resources: %v", err)
		return nil, false
	}

	var outs []Output
	for _, oid := range res.Outputs {
		info, err := randr.GetOutputInfo(c.X, oid, 0).Reply()
		if err != nil || info == nil {
			continue
		}
		if info.Connection != randr.ConnectionConnected || info.Crtc == 0 {
			continue
		}
		crtc, err := randr.GetCrtcInfo(c.X, info.Crtc, 0).Reply()
		if err != nil || crtc == nil {
			continue
		}
		outs = append(outs, Output{
			ID:        oid,
			Name:      string(info.Name),
			X:         crtc.X,
			Y:         crtc.Y,
			W:         crtc.Width,
			H:         crtc.Height,
			Crtc:      info.Crtc,
			Connected: true,
		})
	}
	if len(outs) == 0 {
		return nil, false
	}
	return outs, true
}

// SubscribeScreenChange arranges for SCREEN_CHANGE_NOTIFY events on root
// (§4.1: logged only, re-enumeration requires the explicit
// reinit-outputs control command per the original's behavior).
func (c *Conn) SubscribeScreenChange() {
	err := randr.SelectInputChecked(c.X, c.Root, randr.NotifyMaskScreenChange).Check()
	if err != nil {
		log.Printf("randr select_input: %v", err)
	}
}

// RootGeometry is used to build the single synthetic screen when Randr is
// unavailable (§4.11 step 3).
func (c *Conn) RootGeometry() (w, h uint16) {
	_, _, w, h, ok := c.GetGeometry(c.Root)
	if !ok {
		return 1024, 768
	}
	return w, h
}
