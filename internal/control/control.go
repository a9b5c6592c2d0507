// Package control is the single-shot FIFO control plane of §4.13: one
// textual command per open, dispatched by verb, after which the FIFO is
// unlinked, recreated and reopened.
package control

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/polarcat-fwm/fwm/internal/wmlog"
)

var log = wmlog.For("control")

// Command is one parsed verb + arguments from the FIFO.
type Command struct {
	Verb string
	Args []string
}

// Arg returns the i-th argument or "" if absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// ArgUint parses the i-th argument as an unsigned integer, base 0 so
// "0x..." window ids parse directly (§4.13 focus-tag/focus-window).
func (c Command) ArgUint(i int) (uint64, bool) {
	s := c.Arg(i)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 0, 64)
	return v, err == nil
}

// FIFO owns the control-plane named pipe at <home>/.control:<display>.
type FIFO struct {
	path string
}

// Open creates the FIFO with mode 0600 (§4.13), removing any stale one
// left by a previous crashed instance first.
func Open(path string) (*FIFO, error) {
	f := &FIFO{path: path}
	if err := f.recreate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FIFO) recreate() error {
	_ = os.Remove(f.path)
	if err := unix.Mkfifo(f.path, 0600); err != nil {
		return fmt.Errorf("control: mkfifo %s: %w", f.path, err)
	}
	return nil
}

// OpenReader opens the FIFO O_RDONLY, which blocks until a writer appears
// (itself a suspension point per §5); ReadCommand then reads the line,
// returns the parsed Command and recreates the FIFO for single-shot
// semantics (§4.13 "unlinked, recreated, and re-opened").
//
// OpenReader is exposed separately from ReadCommand so the event dispatcher
// (internal/eventloop) can select on the fd without this package owning
// the event loop itself.
func (f *FIFO) OpenReader() (*os.File, error) {
	file, err := os.OpenFile(f.path, os.O_RDONLY, os.ModeNamedPipe)
	if err != nil {
		return nil, fmt.Errorf("control: open %s: %w", f.path, err)
	}
	return file, nil
}

// ReadCommand reads one newline-terminated line from an already-open
// reader and parses it, then cycles the FIFO.
func (f *FIFO) ReadCommand(file *os.File) (Command, bool) {
	scanner := bufio.NewScanner(file)
	ok := scanner.Scan()
	line := scanner.Text()
	file.Close()
	if err := f.recreate(); err != nil {
		log.Printf("recreate fifo: %v", err)
	}
	if !ok {
		return Command{}, false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Verb: fields[0], Args: fields[1:]}, true
}

// Close removes the FIFO, used at shutdown.
func (f *FIFO) Close() { _ = os.Remove(f.path) }
