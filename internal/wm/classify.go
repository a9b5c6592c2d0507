package wm

import (
	"os"
	"path/filepath"
	"strings"
)

// Classifier resolves the "special flags" of a newly-seen window by testing
// for the existence of a file named after its class (falling back to its
// title) under a fixed set of home-directory subfolders (§4.4 step 4).
// There's no parser or matcher library involved — it's a handful of
// os.Stat calls — so this stays on the standard library; see DESIGN.md.
type Classifier struct {
	base string // e.g. $HOME/.fwm
}

func NewClassifier(base string) *Classifier { return &Classifier{base: base} }

// classifyDirs lists the subfolders tested in §4.4 step 4, in order.
var classifyDirs = []struct {
	dir  string
	flag ClientFlags
}{
	{"ignore", 0}, // handled specially: presence means "reject", no flag
	{"dock", FlagDock},
	{"dock/left", FlagDock | FlagLDock},
	{"dock/anchor-left", FlagDock | FlagLAnchor},
	{"dock/anchor-right", FlagDock | FlagRAnchor},
	{"center", FlagCenter},
	{"top-left", FlagTopLeft},
	{"top-right", FlagTopRight},
	{"bottom-left", FlagBotLeft},
	{"bottom-right", FlagBotRight},
	{"popup", FlagPopup},
}

// Classify returns the accumulated flags for a window identified by class
// (falling back to title), and ignore=true if the window matches the
// ignore/ folder and should be rejected outright (§4.4 step 1/4).
func (c *Classifier) Classify(class, title string) (flags ClientFlags, ignore bool) {
	if c == nil || c.base == "" {
		return 0, false
	}
	name := class
	if name == "" {
		name = title
	}
	if name == "" {
		return 0, false
	}
	if c.exists("ignore", name) {
		return 0, true
	}
	for _, d := range classifyDirs {
		if d.dir == "ignore" {
			continue
		}
		if c.exists(d.dir, name) {
			flags |= d.flag
		}
	}
	return flags, false
}

// Exclusive reports whether name has a marker file under exclusive/,
// meaning any existing client of the same class should be closed before
// this one is admitted (§4.4 step 4).
func (c *Classifier) Exclusive(name string) bool {
	if c == nil || c.base == "" || name == "" {
		return false
	}
	return c.exists("exclusive", name)
}

func (c *Classifier) exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(c.base, dir, name))
	return err == nil
}

// LoadClassRules scans screens/<sid>/tags/<tid>/<class> marker files (§6)
// and builds the class->tag pin table resolveTag consults in step 9. A
// marker file's own name is the WM_CLASS value; the owning tag directory's
// name (or its .name file, if present) is the target tag.
func LoadClassRules(home string) []ClassRule {
	var rules []ClassRule
	screensDir := filepath.Join(home, "screens")
	screens, err := os.ReadDir(screensDir)
	if err != nil {
		return nil
	}
	for _, sd := range screens {
		if !sd.IsDir() {
			continue
		}
		tagsDir := filepath.Join(screensDir, sd.Name(), "tags")
		tags, err := os.ReadDir(tagsDir)
		if err != nil {
			continue
		}
		for _, td := range tags {
			if !td.IsDir() {
				continue
			}
			tagName := td.Name()
			tagDir := filepath.Join(tagsDir, td.Name())
			if data, err := os.ReadFile(filepath.Join(tagDir, ".name")); err == nil {
				tagName = strings.TrimSpace(string(data))
			}
			entries, err := os.ReadDir(tagDir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.IsDir() || e.Name() == ".name" {
					continue
				}
				rules = append(rules, ClassRule{Class: e.Name(), Tag: tagName})
			}
		}
	}
	return rules
}
