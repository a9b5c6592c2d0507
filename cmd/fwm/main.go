// Command fwm is the window manager process: it wires the wire adapter,
// data model, layout/focus engine, panel renderer, session persistence,
// keymap, control plane and tray manager together and runs the event
// loop described in spec §4–§7.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jezek/xgb/xproto"

	"github.com/polarcat-fwm/fwm/internal/control"
	"github.com/polarcat-fwm/fwm/internal/eventloop"
	"github.com/polarcat-fwm/fwm/internal/keymap"
	"github.com/polarcat-fwm/fwm/internal/panel"
	"github.com/polarcat-fwm/fwm/internal/screens"
	"github.com/polarcat-fwm/fwm/internal/session"
	"github.com/polarcat-fwm/fwm/internal/spawn"
	"github.com/polarcat-fwm/fwm/internal/tray"
	"github.com/polarcat-fwm/fwm/internal/wm"
	"github.com/polarcat-fwm/fwm/internal/wmlog"
	"github.com/polarcat-fwm/fwm/internal/x11"
)

var log = wmlog.For("main")

func main() {
	if err := run(); err != nil {
		// §7: fatal errors abort with a panic-equivalent message; clients
		// remain visible since AddWindow issued change_save_set(Insert) for
		// each of them.
		fmt.Fprintln(os.Stderr, "fwm: fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := syscall.Setsid(); err != nil {
		return fmt.Errorf("setsid: %w", err)
	}

	home := os.Getenv("FWM_HOME")
	if home == "" {
		home = "."
	}
	if logPath := os.Getenv("FWM_LOG"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err == nil {
			fmt.Fprintf(f, "\n=== fwm session start %s ===\n", time.Now().Format(time.RFC3339))
			os.Stdout = f
			os.Stderr = f
		}
	}

	if scaleStr := os.Getenv("FWM_SCALE"); scaleStr != "" {
		if s, err := strconv.ParseFloat(scaleStr, 64); err == nil && s > 0 {
			wm.Scale = s
		} else {
			log.Printf("FWM_SCALE=%q invalid, using 1.0", scaleStr)
		}
	}

	display := os.Getenv("DISPLAY")
	displayIdx := displaySuffix(display)

	for _, d := range []string{"", ".session", "tmp", "keys", "colors", "screens", "exclusive", "center",
		"top-left", "top-right", "bottom-left", "bottom-right", "popup", "ignore"} {
		_ = os.MkdirAll(filepath.Join(home, d), 0700)
	}

	conn, err := x11.Open(display)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.SubscribeScreenChange()

	model := wm.NewModel()
	classifier := wm.NewClassifier(home)

	journal, err := session.OpenJournal(home)
	if err != nil {
		log.Printf("journal unavailable: %v", err)
		journal = nil
	}
	store, err := session.Open(home, journal)
	if err != nil {
		return err
	}
	dumper, err := session.NewDumper(home)
	if err != nil {
		return err
	}

	colors := loadColors(home)

	admitter := &wm.Admitter{Conn: conn, Classifier: classifier, Session: store, Colors: colors, Rules: wm.LoadClassRules(home)}

	panelTop := fileExists(filepath.Join(home, "panel", "top"))
	fontName := os.Getenv("FWM_FONT")
	renderer, panelHeight, err := panel.NewRenderer(conn, fontName, panel.Colors{
		FG: colors.BorderFG, BG: colors.BorderFG, TitleFG: colors.FocusFG,
	})
	if err != nil {
		return fmt.Errorf("panel renderer: %w", err)
	}

	createPanel := func(s *wm.Screen) {
		y := int16(0)
		if !panelTop {
			y = s.Y + int16(s.H)
		}
		win, err := conn.CreateSimpleWindow(conn.Root, s.X, y, s.W, panelHeight, 0,
			colors.BorderFG, uint32(xproto.EventMaskExposure|xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease))
		if err != nil {
			log.Printf("create panel window for screen %d: %v", s.ID, err)
			return
		}
		s.Panel.Win = win
		s.Panel.Top = panelTop
		s.Panel.Height = panelHeight
		conn.MapWindow(win)
		panel.LayoutItems(s, wm.ScaledWidth(s.W/4), 0, wm.ScaledWidth(24), wm.ScaledWidth(4))
	}

	scrMgr := screens.NewManager(conn)
	scrMgr.Init(model, panelTop, panelHeight, 2, func(s *wm.Screen) {
		model.NewTagFor(s, "*")
		loadScreenTags(home, model, s)
		createPanel(s)
	}, func(s *wm.Screen) {
		panel.LayoutItems(s, wm.ScaledWidth(s.W/4), 0, wm.ScaledWidth(24), wm.ScaledWidth(4))
	})

	var trayMgr *tray.Manager
	if defScr, ok := model.Screen(model.DefScr); ok && defScr.Panel.Win != 0 {
		trayMgr, err = tray.Acquire(conn, conn.ScreenNo, defScr.Panel.Win)
		if err != nil {
			log.Printf("tray acquire: %v", err)
		}
	}

	reaper := spawn.NewReaper()
	shell := "/bin/sh"

	toolbox := wm.NewToolbox(panelHeight)
	toolbar := wm.NewToolbar()

	actions := buildActions(model, conn, colors, admitter, toolbox, toolbar)
	kmReg := keymap.NewRegistry(conn, uint32(conn.Root), actions, shell, home, reaper)
	if err := kmReg.Load(); err != nil {
		log.Printf("keymap load: %v", err)
	}

	if auto := filepath.Join(home, "autostart"); fileExists(auto) {
		reaper.Run(shell, auto)
	}

	fifoPath := filepath.Join(home, fmt.Sprintf(".control:%s", displayIdx))
	fifo, err := control.Open(fifoPath)
	if err != nil {
		return err
	}
	defer fifo.Close()

	handlers := eventloop.Handlers{
		MapRequest: func(win xproto.Window) {
			res := admitter.AddWindow(model, win, 0, nil, screenUnderPointer(conn, model), defScreen(model), nowTS())
			if res.Rejected || res.Ignored {
				return
			}
			if res.Client != nil && res.Tag != nil && res.Scr != nil {
				store.Store(res.Client)
				wm.RaiseClient(conn, colors, model, res.Scr, res.Tag, res.Client, nowTS())
			}
		},
		DestroyNotify: func(win xproto.Window) {
			if c, ok := model.ClientByWindow(win); ok {
				admitter.FreeClient(model, toolbox, c.ID)
			}
		},
		VisibilityOrExpose: func(win xproto.Window) {
			for _, s := range model.Screens() {
				if s.Panel.Win == win {
					redrawPanel(renderer, model, s)
					return
				}
			}
		},
		PropertyNotify: func(ev xproto.PropertyNotifyEvent) {
			name := conn.Atoms.Get("WM_NAME")
			if uint32(ev.Atom) != name {
				return
			}
			if c, ok := model.ClientByWindow(ev.Window); ok {
				if title, ok := conn.GetPropertyString(ev.Window, "WM_NAME"); ok {
					c.Title = title
					if s, ok := model.Screen(c.Scr); ok {
						redrawPanel(renderer, model, s)
					}
				}
			}
		},
		ClientMessage: func(ev xproto.ClientMessageEvent) {
			if trayMgr == nil {
				return
			}
			if win, ok := trayMgr.HandleDockRequest(ev); ok {
				res := admitter.AddWindow(model, win, tray.TrayFlags(), nil, defScreen(model), defScreen(model), nowTS())
				if res.Client != nil {
					store.Store(res.Client)
				}
			}
		},
		KeyPress: func(ev xproto.KeyPressEvent) {
			arg := &wm.Arg{}
			if c, ok := model.ClientByWindow(ev.Event); ok {
				arg.Cli = c.ID
			}
			if s, ok := model.Screen(screenUnderPointer(conn, model).ID); ok {
				model.CurScr = s.ID
			}
			if toolbar.Visible {
				kmReg.DispatchToolbar(uint8(ev.Detail), arg)
				return
			}
			kmReg.Dispatch(ev.State, uint8(ev.Detail), arg)
		},
		Control: control.Handlers{
			ReloadKeys:   func() { _ = kmReg.Load() },
			ReloadColors: func() { colors = loadColors(home) },
			Lock: func() {
				lockCmd := filepath.Join(home, "lock")
				if fileExists(lockCmd) {
					reaper.Run(shell, lockCmd)
				}
			},
			MakeGrid: func() {
				if s, ok := model.Screen(model.CurScr); ok {
					if t, ok := model.Tag(s.CurrentTag); ok {
						wm.MakeGrid(model, s, t, nowTS(), false)
					}
				}
			},
			ListScreens: func() { _ = dumper.DumpScreens(model.Screens()) },
			ListClients: func(all bool) { _ = dumper.DumpClients(model.AllClients(), all) },
			ListTags: func() {
				var tags []*wm.Tag
				for _, s := range model.Screens() {
					for _, id := range s.Tags.Items() {
						if t, ok := model.Tag(id); ok {
							tags = append(tags, t)
						}
					}
				}
				_ = dumper.DumpTags(tags)
			},
			ReinitOutputs: func() {
				scrMgr.Init(model, panelTop, panelHeight, 2, func(s *wm.Screen) {
					model.NewTagFor(s, "*")
					loadScreenTags(home, model, s)
					createPanel(s)
				}, func(s *wm.Screen) {
					panel.LayoutItems(s, wm.ScaledWidth(s.W/4), 0, wm.ScaledWidth(24), wm.ScaledWidth(4))
				})
			},
			RefreshPanel: func(screenID uint8) {
				if s, ok := model.Screen(wm.ScreenID(screenID)); ok {
					panel.LayoutItems(s, wm.ScaledWidth(s.W/4), 0, wm.ScaledWidth(24), wm.ScaledWidth(4))
					redrawPanel(renderer, model, s)
				}
			},
			FocusScreen: func(screenID uint8) {
				s, ok := model.Screen(wm.ScreenID(screenID))
				if !ok {
					return
				}
				model.CurScr = s.ID
				conn.WarpPointer(s.X+int16(s.W)/2, s.Top+int16(s.H)/2)
			},
			FocusTag: func(tagID uint8, win uint32) {
				s, ok := model.Screen(model.CurScr)
				if !ok {
					return
				}
				t, ok := model.Tag(wm.TagID(tagID))
				if !ok {
					return
				}
				old, _ := model.Tag(s.CurrentTag)
				wm.FocusTag(conn, colors, model, s, old, t, nowTS())
				if c, ok := model.ClientByWindow(xproto.Window(win)); ok && t.HasClient(c.ID) {
					wm.RaiseClient(conn, colors, model, s, t, c, nowTS())
				}
			},
			FocusWindow: func(win uint32) {
				c, ok := model.ClientByWindow(xproto.Window(win))
				if !ok {
					return
				}
				s, ok := model.Screen(c.Scr)
				if !ok {
					return
				}
				t, ok := model.Tag(c.Tag)
				if !ok {
					return
				}
				old, _ := model.Tag(s.CurrentTag)
				wm.FocusTag(conn, colors, model, s, old, t, nowTS())
				wm.RaiseClient(conn, colors, model, s, t, c, nowTS())
			},
			UpdateDock: func(pid int32, msg string) {
				for _, c := range model.AllClients() {
					if c.IsDock() && c.PID == pid {
						conn.SendClientMessage(c.Win, conn.Atoms.Get("WM_PROTOCOLS"), dockMessage(msg))
						return
					}
				}
			},
		},
		AfterBatch: func() {
			if !admitter.Rescan {
				return
			}
			admitter.Rescan = false
			rescanTopLevelWindows(conn, model, admitter)
		},
	}

	loop := eventloop.New(conn, fifo, handlers)
	loop.Run()
	return nil
}

func displaySuffix(display string) string {
	i := strings.LastIndex(display, ":")
	if i < 0 {
		return "0"
	}
	rest := display[i+1:]
	if j := strings.IndexAny(rest, ".-"); j >= 0 {
		rest = rest[:j]
	}
	if rest == "" {
		return "0"
	}
	return rest
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadColors(home string) wm.FocusColors {
	read := func(role string, def uint32) uint32 {
		data, err := os.ReadFile(filepath.Join(home, "colors", role))
		if err != nil {
			return def
		}
		v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 0, 32)
		if err != nil {
			return def
		}
		return uint32(v)
	}
	return wm.FocusColors{
		FocusFG:  read("focus_fg", 0xffffff),
		BorderFG: read("border_fg", 0x808080),
		NoticeBG: read("notice_bg", 0xffa500),
		ActiveBG: read("active_bg", 0x4040c0),
		AlertFG:  read("alert_fg", 0xff0000),
	}
}

// loadScreenTags reads screens/<sid>/tags/<tid> directories (§6 filesystem
// layout), creating one Tag per entry instead of the synthetic default.
func loadScreenTags(home string, model *wm.Model, s *wm.Screen) {
	dir := filepath.Join(home, "screens", strconv.Itoa(int(s.ID)), "tags")
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return // keep the synthetic "*" tag created by the caller
	}
	// real tags exist: drop the synthetic default and load the real ones.
	s.Tags = wm.OrderedList[wm.TagID]{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if data, err := os.ReadFile(filepath.Join(dir, name, ".name")); err == nil {
			name = strings.TrimSpace(string(data))
		}
		model.NewTagFor(s, name)
	}
}

func nowTS() uint64 { return uint64(time.Now().UnixMicro()) }

// dockMessage packs the update-dock control verb's message string (already
// truncated to 20 bytes by internal/control) into a ClientMessage data
// payload, four bytes per cardinal, little-endian, so the 20 bytes fill
// all five data words (§4.13 update-dock).
func dockMessage(msg string) [5]uint32 {
	var data [5]uint32
	for i := 0; i < len(msg) && i < 20; i++ {
		data[i/4] |= uint32(msg[i]) << (8 * uint(i%4))
	}
	return data
}

// redrawPanel implements the title item of §4.3's draw_text contract for
// whichever client is front on the screen's current tag, truncating with
// the 'w'-probe algorithm before drawing.
func redrawPanel(r *panel.Renderer, model *wm.Model, s *wm.Screen) {
	if s.Panel.Win == 0 {
		return
	}
	item := s.Panel.Items[wm.ItemTitle]
	title := ""
	if t, ok := model.Tag(s.CurrentTag); ok {
		if c, ok := model.Client(t.Front); ok {
			title = c.Title
		}
	}
	maxGlyphs := r.MaxTitleGlyphs(item.W)
	r.DrawText(s.Panel.Win, 0xffffff, 0x000000, item.X, item.W, panel.TruncateTitle(title, maxGlyphs))
}

func screenUnderPointer(conn *x11.Conn, model *wm.Model) *wm.Screen {
	x, y, _ := conn.QueryPointer(conn.Root)
	for _, s := range model.Screens() {
		if s.Contains(x, y) {
			return s
		}
	}
	return defScreen(model)
}

func defScreen(model *wm.Model) *wm.Screen {
	s, _ := model.Screen(model.DefScr)
	return s
}

func buildActions(model *wm.Model, conn *x11.Conn, colors wm.FocusColors, admitter *wm.Admitter, toolbox *wm.Toolbox, toolbar *wm.Toolbar) keymap.ActionSet {
	place := func(pos wm.WinPos) wm.Action {
		return func(a *wm.Arg) {
			c, ok := model.Client(a.Cli)
			if !ok {
				return
			}
			s, ok := model.Screen(c.Scr)
			if !ok {
				return
			}
			t, ok := model.Tag(c.Tag)
			if !ok {
				return
			}
			repeat := c.Pos == pos
			wm.PlaceWindow(s, t, c, pos, repeat)
			if t.Anchor == c.ID {
				wm.MakeGrid(model, s, t, nowTS(), false)
			}
		}
	}
	withCurrentClient := func(fn func(s *wm.Screen, t *wm.Tag, c *wm.Client)) wm.Action {
		return func(a *wm.Arg) {
			c, found := model.Client(a.Cli)
			if !found {
				s, ok := model.Screen(model.CurScr)
				if !ok {
					return
				}
				t, ok := model.Tag(s.CurrentTag)
				if !ok {
					return
				}
				c, found = model.Client(t.Front)
				if !found {
					return
				}
			}
			s, ok := model.Screen(c.Scr)
			if !ok {
				return
			}
			t, ok := model.Tag(c.Tag)
			if !ok {
				return
			}
			fn(s, t, c)
		}
	}
	return keymap.ActionSet{
		"place-fill":        place(wm.PosFill),
		"place-center":      place(wm.PosCenter),
		"place-topleft":     place(wm.PosTopLeft),
		"place-topright":    place(wm.PosTopRight),
		"place-bottomleft":  place(wm.PosBottomLeft),
		"place-bottomright": place(wm.PosBottomRight),
		"place-leftfill":    place(wm.PosLeftFill),
		"place-rightfill":   place(wm.PosRightFill),
		"place-topfill":     place(wm.PosTopFill),
		"place-bottomfill":  place(wm.PosBottomFill),
		"make-grid": func(a *wm.Arg) {
			if s, ok := model.Screen(model.CurScr); ok {
				if t, ok := model.Tag(s.CurrentTag); ok {
					wm.MakeGrid(model, s, t, nowTS(), a.Data == 1)
				}
			}
		},
		"grow-window": withCurrentClient(func(s *wm.Screen, t *wm.Tag, c *wm.Client) {
			wm.GrowWindow(s, t, c)
		}),
		"flag-window": withCurrentClient(func(s *wm.Screen, t *wm.Tag, c *wm.Client) {
			wm.FlagWindow(s, t, c)
			wm.MakeGrid(model, s, t, nowTS(), false)
		}),
		"close-window": func(a *wm.Arg) {
			if c, ok := model.Client(a.Cli); ok {
				admitter.CloseWindowRequest(model, toolbox, c.Win)
			}
		},
		"next-window": func(a *wm.Arg) { switchWindow(model, conn, a, true) },
		"prev-window": func(a *wm.Arg) { switchWindow(model, conn, a, false) },
		"raise-client": withCurrentClient(func(s *wm.Screen, t *wm.Tag, c *wm.Client) {
			if toolbox.Cli == c.ID && toolbox.Visible {
				toolbox.Visible = false
				return
			}
			wm.RaiseClient(conn, colors, model, s, t, c, nowTS())
		}),
		"retag-next": withCurrentClient(func(s *wm.Screen, t *wm.Tag, c *wm.Client) {
			wm.RetagClient(conn, colors, model, s, c, true, nowTS())
		}),
		"retag-prev": withCurrentClient(func(s *wm.Screen, t *wm.Tag, c *wm.Client) {
			wm.RetagClient(conn, colors, model, s, c, false, nowTS())
		}),
		"walk-tags-next": func(a *wm.Arg) {
			if s, ok := model.Screen(model.CurScr); ok {
				wm.SwitchTag(conn, colors, model, s, true, nowTS())
			}
		},
		"walk-tags-prev": func(a *wm.Arg) {
			if s, ok := model.Screen(model.CurScr); ok {
				wm.SwitchTag(conn, colors, model, s, false, nowTS())
			}
		},
		"show-toolbar": func(a *wm.Arg) {
			if toolbar.Visible {
				toolbar.Hide()
				return
			}
			s, ok := model.Screen(model.CurScr)
			if !ok {
				return
			}
			t, ok := model.Tag(s.CurrentTag)
			if !ok {
				return
			}
			c, ok := model.Client(t.Front)
			if !ok {
				return
			}
			toolbar.AttachTo(c, s, toolbox, t.Anchor == c.ID)
			toolbar.Show()
		},
		"toolbar-left":  func(a *wm.Arg) { toolbar.MoveFocus(false) },
		"toolbar-right": func(a *wm.Arg) { toolbar.MoveFocus(true) },
		"toolbar-hide":  func(a *wm.Arg) { toolbar.Hide() },
		"toolbar-fire": func(a *wm.Arg) {
			kind, ok := toolbar.Fire()
			if !ok {
				return
			}
			fireToolbarItem(model, conn, colors, admitter, toolbox, toolbar, kind)
		},
	}
}

func switchWindow(model *wm.Model, conn *x11.Conn, a *wm.Arg, fwd bool) {
	c, ok := model.Client(a.Cli)
	if !ok {
		return
	}
	t, ok := model.Tag(c.Tag)
	if !ok {
		return
	}
	next := wm.SwitchWindow(model, t, c.ID, fwd, func(*wm.Client) bool { return true })
	if next == nil {
		return
	}
	conn.RaiseWindow(next.Win)
	conn.SetInputFocus(next.Win)
}

// fireToolbarItem maps the currently-focused toolbar entry to the layout/
// focus action it represents (§4.9's toolbar items), grounded on
// original_source/src/fwm.c's toolbar keymap table sharing the same
// place/grow/close actions as the keyboard bindings.
func fireToolbarItem(model *wm.Model, conn *x11.Conn, colors wm.FocusColors, admitter *wm.Admitter, toolbox *wm.Toolbox, toolbar *wm.Toolbar, kind wm.ToolbarItemKind) {
	c, ok := model.Client(toolbar.Cli)
	if !ok {
		toolbar.Hide()
		return
	}
	s, ok := model.Screen(c.Scr)
	if !ok {
		return
	}
	t, ok := model.Tag(c.Tag)
	if !ok {
		return
	}
	switch kind {
	case wm.ToolbarClose:
		admitter.CloseWindowRequest(model, toolbox, c.Win)
	case wm.ToolbarCenter:
		wm.PlaceWindow(s, t, c, wm.PosCenter, c.Pos == wm.PosCenter)
	case wm.ToolbarFlag:
		wm.FlagWindow(s, t, c)
		wm.MakeGrid(model, s, t, nowTS(), false)
	case wm.ToolbarLeft:
		wm.PlaceWindow(s, t, c, wm.PosLeftFill, c.Pos == wm.PosLeftFill)
	case wm.ToolbarRight:
		wm.PlaceWindow(s, t, c, wm.PosRightFill, c.Pos == wm.PosRightFill)
	case wm.ToolbarTop:
		wm.PlaceWindow(s, t, c, wm.PosTopFill, c.Pos == wm.PosTopFill)
	case wm.ToolbarBottom:
		wm.PlaceWindow(s, t, c, wm.PosBottomFill, c.Pos == wm.PosBottomFill)
	case wm.ToolbarExpand:
		wm.PlaceWindow(s, t, c, wm.PosFill, c.Pos == wm.PosFill)
	}
	toolbar.Hide()
}
