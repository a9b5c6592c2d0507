package wm

import "testing"

func TestToolboxAttachToPrefersTopRightOnTie(t *testing.T) {
	tb := NewToolbox(24)
	// cli is large enough that all four corners sit clear of any sibling;
	// its only sibling is itself, so every corner is equally unobscured and
	// none wins by elimination, forcing the explicit tie-break.
	cli := &Client{ID: 1, X: 100, Y: 100, W: 200, H: 200, TS: 10}
	siblings := []*Client{cli}

	tb.AttachTo(cli, siblings)

	if !tb.Visible {
		t.Fatal("expected toolbox to become visible")
	}
	if tb.Gravity != GravityTopRight {
		t.Fatalf("expected TopRight to win the no-obstruction tie, got %v", tb.Gravity)
	}
}

func TestToolboxAttachToPicksUnobscuredCorner(t *testing.T) {
	tb := NewToolbox(24)
	cli := &Client{ID: 1, X: 100, Y: 100, W: 200, H: 200, TS: 10}
	// An older sibling covers both top corners, leaving only the bottom
	// ones unobscured; bottom-left wins as the first unobscured candidate
	// since top-right isn't among them to break the tie.
	blocker := &Client{ID: 2, X: 0, Y: 0, W: 400, H: 250, TS: 5}

	tb.AttachTo(cli, []*Client{cli, blocker})

	if tb.Gravity != GravityBottomLeft {
		t.Fatalf("expected BottomLeft once the top corners are obscured, got %v", tb.Gravity)
	}
}

func TestToolboxAttachToSkipsPopupsAndExclusive(t *testing.T) {
	tb := NewToolbox(24)
	popup := &Client{ID: 1, Flags: FlagPopup}
	tb.AttachTo(popup, nil)
	if tb.Visible {
		t.Fatal("expected popups to never attach a toolbox")
	}

	excl := &Client{ID: 2, Flags: FlagExclusive}
	tb.AttachTo(excl, nil)
	if tb.Visible {
		t.Fatal("expected exclusive clients to never attach a toolbox")
	}
}

func TestToolboxDetach(t *testing.T) {
	tb := NewToolbox(24)
	cli := &Client{ID: 1, W: 100, H: 100}
	tb.AttachTo(cli, nil)
	if !tb.Visible {
		t.Fatal("expected toolbox to attach")
	}
	tb.Detach(cli.ID)
	if tb.Visible || tb.Cli != noClient {
		t.Fatal("expected Detach to clear the attachment")
	}
}
