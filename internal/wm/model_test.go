package wm

import "testing"

func TestModelAddScreenAndTag(t *testing.T) {
	m := NewModel()
	scr := newScreen(1, 0, "s0", 0, 0, 800, 600)
	m.AddScreen(scr)

	got, ok := m.Screen(1)
	if !ok || got != scr {
		t.Fatal("expected Screen(1) to return the added screen")
	}

	tag := m.NewTagFor(scr, "work")
	if tag.Name != "work" {
		t.Fatalf("expected tag name 'work', got %q", tag.Name)
	}
	if !scr.Tags.Contains(tag.ID) {
		t.Fatal("expected the new tag to be appended to the screen's tag list")
	}
}

func TestModelClientLifecycle(t *testing.T) {
	m := NewModel()
	scr := newScreen(1, 0, "s0", 0, 0, 800, 600)
	m.AddScreen(scr)

	cli := m.NewClient(0x1234, scr.ID)
	if cli.ID == noClient {
		t.Fatal("expected a non-zero client id")
	}

	got, ok := m.ClientByWindow(0x1234)
	if !ok || got.ID != cli.ID {
		t.Fatal("expected ClientByWindow to resolve the new client")
	}

	tag := m.NewTagFor(scr, "*")
	m.AttachToTag(cli, tag)
	if !tag.HasClient(cli.ID) {
		t.Fatal("expected client to be attached to the tag")
	}
	if cli.Tag != tag.ID {
		t.Fatal("expected client.Tag to be set on attach")
	}

	freed, ok := m.FreeClient(cli.ID)
	if !ok || freed.ID != cli.ID {
		t.Fatal("expected FreeClient to return the freed client")
	}
	if tag.HasClient(cli.ID) {
		t.Fatal("expected client to be detached from the tag after FreeClient")
	}
	if _, ok := m.ClientByWindow(0x1234); ok {
		t.Fatal("expected the window lookup to be gone after FreeClient")
	}
}

func TestModelCheckInvariants(t *testing.T) {
	m := NewModel()
	scr := newScreen(1, 0, "s0", 0, 0, 800, 600)
	m.AddScreen(scr)
	tag := m.NewTagFor(scr, "*")
	cli := m.NewClient(0x1, scr.ID)
	m.AttachToTag(cli, tag)

	if err := m.CheckInvariants(); err != nil {
		t.Fatalf("expected a consistent model to pass invariant checks, got %v", err)
	}
}
