// Package session is §4.12: the mandatory flat-file persistence format
// under <home>/.session/, the tab-separated tmp/ dumps used by the
// control plane, and a supplementary sqlite-backed journal (SPEC_FULL §2)
// kept independently for historical/diagnostic queries that the flat
// format was never meant to answer.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/polarcat-fwm/fwm/internal/wm"
	"github.com/polarcat-fwm/fwm/internal/wmlog"
)

var log = wmlog.For("session")

// Store implements wm.SessionStore against <home>/.session/0x<win_hex>
// files: each file is exactly two bytes, [screen_id, tag_id] (§4.12).
type Store struct {
	dir      string
	journal  *Journal // nil if sqlite init failed; persistence still works
}

func Open(home string, journal *Journal) (*Store, error) {
	dir := filepath.Join(home, ".session")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("session: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir, journal: journal}, nil
}

func (s *Store) path(win wm.Window) string {
	return filepath.Join(s.dir, fmt.Sprintf("0x%x", uint32(win)))
}

// Restore reads the persisted (screen,tag) pair for win (§4.12
// restore_window).
func (s *Store) Restore(win wm.Window) (scr wm.ScreenID, tag wm.TagID, ok bool) {
	data, err := os.ReadFile(s.path(win))
	if err != nil || len(data) != 2 {
		return 0, 0, false
	}
	return wm.ScreenID(data[0]), wm.TagID(data[1]), true
}

// Store writes cli's (screen,tag) to its session file, overwriting
// atomically via a temp-file rename so a crash mid-write never leaves a
// truncated file (§4.12 store_client "clean" path, §5 "atomically
// rewritten").
func (s *Store) Store(cli *wm.Client) {
	if cli.IsPopup() {
		return
	}
	path := s.path(cli.Win)
	tmp := path + ".tmp"
	data := []byte{byte(cli.Scr), byte(cli.Tag)}
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		log.Printf("store(win=%#x): %v", cli.Win, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Printf("store(win=%#x) rename: %v", cli.Win, err)
		return
	}
	if s.journal != nil {
		s.journal.RecordPlacement(uint32(cli.Win), uint8(cli.Scr), uint8(cli.Tag))
	}
}

// Remove unlinks win's session file (§4.12 store_client "dirty"/destroy
// path, and free_client's "wipes persisted state").
func (s *Store) Remove(win wm.Window) {
	if err := os.Remove(s.path(win)); err != nil && !os.IsNotExist(err) {
		log.Printf("remove(win=%#x): %v", win, err)
	}
	if s.journal != nil {
		s.journal.RecordRemoval(uint32(win))
	}
}
