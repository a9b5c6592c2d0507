package wm

import "fmt"

// Model is the arena that owns every Screen, Tag and Client (§9 design
// note: owning slices + id lookups replace the original's intrusive
// doubly-linked lists and container_of). It is the single place that can
// resolve a raw X Window to a ClientID, matching invariant 1 in §3.
type Model struct {
	screens map[ScreenID]*Screen
	clients map[ClientID]*Client
	tags    map[TagID]*Tag

	winToClient map[Window]ClientID
	clientOrder OrderedList[ClientID] // global insertion order, for _NET_CLIENT_LIST

	nextClient ClientID
	nextTag    TagID

	Configs ConfigQueue

	// CurScr is the screen the pointer was last resolved to reside on
	// (§4.1 ENTER_NOTIFY, §4.8 KEY_PRESS).
	CurScr ScreenID
	// DefScr is the screen at x=0 (§4.11 step 4).
	DefScr ScreenID
}

func NewModel() *Model {
	return &Model{
		screens:     make(map[ScreenID]*Screen),
		clients:     make(map[ClientID]*Client),
		tags:        make(map[TagID]*Tag),
		winToClient: make(map[Window]ClientID),
		nextClient:  1, // 0 is noClient
	}
}

// AddScreen registers a new or re-homed screen (§4.11 step 2).
func (m *Model) AddScreen(s *Screen) { m.screens[s.ID] = s }

func (m *Model) Screen(id ScreenID) (*Screen, bool) { s, ok := m.screens[id]; return s, ok }

func (m *Model) Screens() []*Screen {
	out := make([]*Screen, 0, len(m.screens))
	for _, s := range m.screens {
		out = append(out, s)
	}
	return out
}

func (m *Model) RemoveScreen(id ScreenID) { delete(m.screens, id) }

// NewTagFor creates a tag and attaches it to scr's tag list (§3 lifecycle).
func (m *Model) NewTagFor(scr *Screen, name string) *Tag {
	id := m.nextTag
	m.nextTag++
	t := newTag(id, name)
	m.tags[id] = t
	scr.Tags.Append(id)
	if scr.Tags.Len() == 1 {
		scr.CurrentTag = id
	}
	return t
}

func (m *Model) Tag(id TagID) (*Tag, bool) { t, ok := m.tags[id]; return t, ok }

// RemoveTag destroys a tag whose directory vanished, only if it has no
// clients left (§3 lifecycle).
func (m *Model) RemoveTag(scr *Screen, id TagID) bool {
	t, ok := m.tags[id]
	if !ok || t.Clients.Len() != 0 {
		return false
	}
	scr.Tags.Remove(id)
	delete(m.tags, id)
	return true
}

func (m *Model) Client(id ClientID) (*Client, bool) { c, ok := m.clients[id]; return c, ok }

// ClientByWindow resolves a raw X window to its Client, the lookup named
// in invariant 1 (§3) and used by every event handler in §4.1.
func (m *Model) ClientByWindow(win Window) (*Client, bool) {
	id, ok := m.winToClient[win]
	if !ok {
		return nil, false
	}
	c, ok := m.clients[id]
	return c, ok
}

// AllClients returns every client in global insertion order, the basis
// for _NET_CLIENT_LIST (§3, §4.4 step 13).
func (m *Model) AllClients() []*Client {
	out := make([]*Client, 0, m.clientOrder.Len())
	for _, id := range m.clientOrder.Items() {
		if c, ok := m.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// NewClient allocates a Client and indexes it by window, but does not yet
// attach it to any tag or dock (§4.4 step 8); callers finish wiring via
// AttachToTag/AttachToDock.
func (m *Model) NewClient(win Window, scr ScreenID) *Client {
	id := m.nextClient
	m.nextClient++
	c := &Client{ID: id, Win: win, Scr: scr, Div: 1, Pos: PosPreserve}
	m.clients[id] = c
	m.winToClient[win] = id
	m.clientOrder.Append(id)
	return c
}

// AttachToTag places c in t.clients and records the back-reference,
// matching invariant 2 in §3: a client belongs to at most one tag's list.
func (m *Model) AttachToTag(c *Client, t *Tag) {
	m.detachFromContainers(c)
	c.Tag = t.ID
	t.Clients.Append(c.ID)
}

// AttachToDock places c in scr.dock instead of any tag (§3 "dock holds
// Clients that are not in any Tag's client list").
func (m *Model) AttachToDock(c *Client, scr *Screen) {
	m.detachFromContainers(c)
	c.Scr = scr.ID
	c.Flags |= FlagDock
	scr.Dock.Append(c.ID)
}

func (m *Model) detachFromContainers(c *Client) {
	if t, ok := m.tags[c.Tag]; ok {
		t.Clients.Remove(c.ID)
		t.ClearSlotsFor(c.ID)
	}
	if s, ok := m.screens[c.Scr]; ok {
		s.Dock.Remove(c.ID)
	}
}

// FreeClient removes cli from every slot that can reference it and
// deallocates it (§4.4 free_client). Persistence and toolbox detachment
// are the caller's responsibility since Model has no knowledge of those
// subsystems.
func (m *Model) FreeClient(id ClientID) (*Client, bool) {
	c, ok := m.clients[id]
	if !ok {
		return nil, false
	}
	m.detachFromContainers(c)
	delete(m.winToClient, c.Win)
	delete(m.clients, id)
	m.clientOrder.Remove(id)
	return c, true
}

// CheckInvariants is the property used throughout §8: every client is in
// exactly one tag's list, one screen's dock, or neither.
func (m *Model) CheckInvariants() error {
	seen := make(map[ClientID]int, len(m.clients))
	for _, t := range m.tags {
		for _, id := range t.Clients.Items() {
			seen[id]++
		}
	}
	for _, s := range m.screens {
		for _, id := range s.Dock.Items() {
			seen[id]++
		}
	}
	for id, n := range seen {
		if n > 1 {
			return fmt.Errorf("client %d present in %d containers", id, n)
		}
	}
	return nil
}
