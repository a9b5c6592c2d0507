// Package screens is the Randr manager of §4.11: it turns the X server's
// output topology into wm.Screen entities, re-homing or resizing existing
// screens where a CRTC persists across a change instead of always
// recreating them.
//
// Grounded on the teacher's texel/desktop.go recalculateLayout, which
// likewise reconciles a live set of areas against a changed terminal size
// without tearing down panes that still fit.
package screens

import (
	"github.com/polarcat-fwm/fwm/internal/wm"
	"github.com/polarcat-fwm/fwm/internal/wmlog"
	"github.com/polarcat-fwm/fwm/internal/x11"
)

var log = wmlog.For("screens")

// Manager owns screen identity assignment across Randr changes.
type Manager struct {
	conn     *x11.Conn
	nextID   wm.ScreenID
	byOutput map[uint32]wm.ScreenID
}

func NewManager(conn *x11.Conn) *Manager {
	return &Manager{conn: conn, nextID: 1, byOutput: make(map[uint32]wm.ScreenID)}
}

// Init implements init_outputs (§4.11). panelHeight and gap are subtracted
// from each screen's usable height; onAdd/onResize let the caller
// reinit panels and retrace without this package knowing about those
// subsystems.
func (m *Manager) Init(model *wm.Model, panelTop bool, panelHeight, gap uint16, onAdd, onResize func(*wm.Screen)) {
	outputs, ok := m.conn.QueryOutputs()
	if !ok || len(outputs) == 0 {
		w, h := m.conn.RootGeometry()
		s := m.addOrResize(model, 0, 0, 0, w, h, "root", panelTop, panelHeight, gap, onAdd, onResize)
		model.DefScr = s.ID
		model.CurScr = s.ID
		return
	}

	seen := make(map[uint32]bool, len(outputs))
	for _, o := range outputs {
		id := uint32(o.ID)
		seen[id] = true
		m.addOrResize(model, id, o.X, o.Y, o.W, o.H, o.Name, panelTop, panelHeight, gap, onAdd, onResize)
	}

	// retire screens whose output disappeared
	for output, id := range m.byOutput {
		if !seen[output] {
			model.RemoveScreen(id)
			delete(m.byOutput, output)
		}
	}

	// defscr = screen at x=0
	for _, s := range model.Screens() {
		if s.X == 0 {
			model.DefScr = s.ID
			break
		}
	}
	if model.CurScr == 0 {
		model.CurScr = model.DefScr
	}
}

func (m *Manager) addOrResize(model *wm.Model, output uint32, x, y int16, w, h uint16, name string, panelTop bool, panelHeight, gap uint16, onAdd, onResize func(*wm.Screen)) *wm.Screen {
	if id, ok := m.byOutput[output]; ok {
		if s, ok2 := model.Screen(id); ok2 {
			if s.X == x && s.Y == y && s.W == w && s.H == h {
				s.Name = name
				return s
			}
			s.X, s.Y, s.W, s.H = x, y, w, h
			applyPanelOffset(s, panelTop, panelHeight, gap)
			onResize(s)
			return s
		}
	}

	id := m.nextID
	m.nextID++
	s := &wm.Screen{ID: id, Output: output, Name: name, X: x, Y: y, W: w, H: h, Top: y}
	applyPanelOffset(s, panelTop, panelHeight, gap)
	model.AddScreen(s)
	m.byOutput[output] = id
	onAdd(s)
	return s
}

// applyPanelOffset subtracts the panel height and gap from the usable
// area, per §4.11 step 5.
func applyPanelOffset(s *wm.Screen, panelTop bool, panelHeight, gap uint16) {
	s.Panel.Top = panelTop
	s.Panel.Height = panelHeight
	if panelTop {
		s.Top = s.Y + int16(panelHeight) + int16(gap)
		s.H -= panelHeight + gap
	} else {
		s.Top = s.Y
		s.H -= panelHeight + gap
	}
}
