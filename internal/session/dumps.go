package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/polarcat-fwm/fwm/internal/wm"
)

// Dumper writes the tab-separated textual dumps under <home>/tmp/ that
// the control plane's list-* verbs produce (§4.12, §4.13), and
// increments the monotonic .seq counter after each write.
type Dumper struct {
	dir string
}

func NewDumper(home string) (*Dumper, error) {
	dir := filepath.Join(home, "tmp")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("session: mkdir %s: %w", dir, err)
	}
	return &Dumper{dir: dir}, nil
}

func (d *Dumper) writeFile(name string, rows [][]string) error {
	path := filepath.Join(d.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, row := range rows {
		if _, err := f.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return d.bumpSeq()
}

func (d *Dumper) bumpSeq() error {
	path := filepath.Join(d.dir, ".seq")
	n := 0
	if data, err := os.ReadFile(path); err == nil {
		n, _ = strconv.Atoi(strings.TrimSpace(string(data)))
	}
	n++
	return os.WriteFile(path, []byte(strconv.Itoa(n)+"\n"), 0600)
}

// DumpScreens writes tmp/screens (§4.13 list-screens).
func (d *Dumper) DumpScreens(screens []*wm.Screen) error {
	rows := make([][]string, 0, len(screens))
	for _, s := range screens {
		rows = append(rows, []string{
			strconv.Itoa(int(s.ID)), s.Name,
			strconv.Itoa(int(s.X)), strconv.Itoa(int(s.Y)),
			strconv.Itoa(int(s.W)), strconv.Itoa(int(s.H)),
			strconv.Itoa(int(s.CurrentTag)),
		})
	}
	return d.writeFile("screens", rows)
}

// DumpTags writes tmp/tags (§4.13 list-tags).
func (d *Dumper) DumpTags(tags []*wm.Tag) error {
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []string{
			strconv.Itoa(int(t.ID)), t.Name, strconv.Itoa(t.Clients.Len()),
		})
	}
	return d.writeFile("tags", rows)
}

// DumpClients writes tmp/clients (§4.13 list-clients / list-clients-all).
// all controls whether dock/tray clients are included.
func (d *Dumper) DumpClients(clients []*wm.Client, all bool) error {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		if !all && (c.IsDock() || c.Flags.Has(wm.FlagTray)) {
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("0x%x", uint32(c.Win)),
			c.Class,
			c.Title,
			strconv.Itoa(int(c.Scr)),
			strconv.Itoa(int(c.Tag)),
			strconv.Itoa(int(c.X)), strconv.Itoa(int(c.Y)),
			strconv.Itoa(int(c.W)), strconv.Itoa(int(c.H)),
		})
	}
	return d.writeFile("clients", rows)
}
