package wm

import "testing"

func newTestScreen() *Screen {
	return newScreen(1, 0, "test", 0, 20, 800, 580)
}

func newTestClient(id ClientID) *Client {
	return &Client{ID: id, Div: 1}
}

func TestPlaceWindowFill(t *testing.T) {
	scr := newTestScreen()
	tag := newTag(1, "*")
	cli := newTestClient(1)

	PlaceWindow(scr, tag, cli, PosFill, false)

	if cli.X != scr.X || cli.Y != scr.Top || cli.W != scr.W-2*BorderWidth || cli.H != scr.H-2*BorderWidth {
		t.Fatalf("expected fill geometry to match screen usable rect shrunk by 2*BorderWidth, got %+v", cli.Rect())
	}
	if !cli.Flags.Has(FlagFullscreen) {
		t.Fatal("expected PosFill to set FlagFullscreen")
	}
}

func TestPlaceWindowTopLeftQuarter(t *testing.T) {
	scr := newTestScreen()
	tag := newTag(1, "*")
	cli := newTestClient(1)

	PlaceWindow(scr, tag, cli, PosTopLeft, false)

	if cli.X != scr.X || cli.Y != scr.Top {
		t.Fatalf("expected top-left origin, got (%d,%d)", cli.X, cli.Y)
	}
	if cli.W != scr.W/2 || cli.H != scr.H/2 {
		t.Fatalf("expected quarter-screen size, got %dx%d", cli.W, cli.H)
	}
}

func TestPlaceWindowTopRightQuarter(t *testing.T) {
	scr := newTestScreen()
	tag := newTag(1, "*")
	cli := newTestClient(1)

	PlaceWindow(scr, tag, cli, PosTopRight, false)

	wantX := scr.X + int16(scr.W-scr.W/2)
	if cli.X != wantX {
		t.Fatalf("expected top-right x=%d, got %d", wantX, cli.X)
	}
}

func TestPlaceWindowRepeatRatchetsDiv(t *testing.T) {
	scr := newTestScreen()
	tag := newTag(1, "*")
	cli := newTestClient(1)

	PlaceWindow(scr, tag, cli, PosLeftFill, false)
	if cli.Div != 2 {
		t.Fatalf("expected div reset to 2 on first placement, got %v", cli.Div)
	}
	w1 := cli.W
	PlaceWindow(scr, tag, cli, PosLeftFill, true)
	if cli.Div != 3 {
		t.Fatalf("expected div to ratchet to 3 on repeat, got %v", cli.Div)
	}
	if cli.W == w1 {
		t.Fatal("expected width to change after div ratchet")
	}
}

func TestFlagWindowTogglesAnchor(t *testing.T) {
	scr := newTestScreen()
	tag := newTag(1, "*")
	tag.Space = scr.UsableRect()
	cli := newTestClient(1)

	FlagWindow(scr, tag, cli)
	if tag.Anchor != cli.ID {
		t.Fatal("expected FlagWindow to set the anchor")
	}
	if tag.Space == scr.UsableRect() {
		t.Fatal("expected tag.Space to shrink once an anchor is set")
	}

	FlagWindow(scr, tag, cli)
	if tag.Anchor != noClient {
		t.Fatal("expected second FlagWindow call to clear the anchor")
	}
	if tag.Space != scr.UsableRect() {
		t.Fatal("expected tag.Space to revert to the full usable rect")
	}
}

func TestGrowWindowNoOpWithoutSplitPosition(t *testing.T) {
	scr := newTestScreen()
	tag := newTag(1, "*")
	cli := newTestClient(1)
	cli.lastWinPos = PosCenter

	before := cli.Rect()
	GrowWindow(scr, tag, cli)
	if cli.Rect() != before {
		t.Fatal("expected GrowWindow to no-op when lastWinPos isn't a split placement")
	}
}

func TestMakeGridTwoClientsToggleOrientation(t *testing.T) {
	m := NewModel()
	scr := newTestScreen()
	tag := newTag(1, "*")
	m.AddScreen(scr)
	m.tags[tag.ID] = tag

	c1 := &Client{ID: 1, Tag: tag.ID}
	c2 := &Client{ID: 2, Tag: tag.ID}
	m.clients[1] = c1
	m.clients[2] = c2
	tag.Clients.Append(1)
	tag.Clients.Append(2)

	MakeGrid(m, scr, tag, 100, false)
	firstVertical := tag.GridVertical
	MakeGrid(m, scr, tag, 101, false)
	if tag.GridVertical == firstVertical {
		t.Fatal("expected a second make-grid call to toggle orientation")
	}
	MakeGrid(m, scr, tag, 102, true)
	if tag.GridVertical != !firstVertical {
		t.Fatal("expected suppressToggle to skip the orientation flip")
	}
}

func TestGridDim(t *testing.T) {
	// cols/rows grounded on original_source/src/fwm.c's cell_size: the
	// i*i branch is square (cols==rows==i), the i*(i+1) branch is one
	// column wider than it is tall (cols=i+1, rows=i).
	type dims struct{ cols, rows int }
	cases := map[int]dims{
		1:  {1, 1},
		2:  {2, 1},
		3:  {2, 2},
		4:  {2, 2},
		5:  {3, 2},
		6:  {3, 2},
		7:  {3, 3},
		9:  {3, 3},
		10: {4, 3},
	}
	for n, want := range cases {
		cols, rows := gridDim(n)
		if cols != want.cols || rows != want.rows {
			t.Errorf("gridDim(%d) = (%d,%d), want (%d,%d)", n, cols, rows, want.cols, want.rows)
		}
	}
}
