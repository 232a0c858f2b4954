package content

import (
	"errors"
	"fmt"
)

var (
	// ErrSectionNotFound is returned when a content source has no entry for a section id
	ErrSectionNotFound = errors.New("section not found")

	// ErrUnknownSection is returned when asking the service about an id it was not built with
	ErrUnknownSection = errors.New("unknown section")
)

// ActionReplay is the control action that returns to the first section
const ActionReplay = "replay"

// Theme holds per-section colours as hex strings
type Theme struct {
	Accent     string `yaml:"accent" json:"accent"`
	Background string `yaml:"background" json:"background"`
}

// Control is an interactive element drawn inside a section
type Control struct {
	Label  string `yaml:"label" json:"label"`
	Action string `yaml:"action" json:"action"`
}

// Section is the display content of one section
type Section struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Subtitle string   `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Body     string   `yaml:"body,omitempty" json:"body,omitempty"`
	Images   []string `yaml:"images,omitempty" json:"images,omitempty"`
	Theme    Theme    `yaml:"theme" json:"theme"`
	Control  *Control `yaml:"control,omitempty" json:"control,omitempty"`
}

// Document is the on-disk content file
type Document struct {
	Sections []Section `yaml:"sections"`
}

// Section returns the section with id
func (d Document) Section(id string) (Section, error) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
}

// Validate checks ids are present and unique
func (d Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Sections))
	for i, s := range d.Sections {
		if s.ID == "" {
			return fmt.Errorf("section %d: missing id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("section %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Status is the load state of one section
type Status uint8

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry is the load state and content of one section
type Entry struct {
	Status  Status
	Section Section
	Err     error // Set when Status == StatusFailed
}

// Snapshot is an immutable view of every section's entry
// A new Snapshot is published on every change; readers never lock
type Snapshot struct {
	Generation int64
	entries    map[string]Entry
}

func newSnapshot(gen int64, size int) *Snapshot {
	return &Snapshot{Generation: gen, entries: make(map[string]Entry, size)}
}

// Entry returns the entry for id; unknown ids read as pending
func (s *Snapshot) Entry(id string) Entry {
	if s == nil {
		return Entry{}
	}
	return s.entries[id]
}

// Loading reports whether any section is still pending
func (s *Snapshot) Loading() bool {
	if s == nil {
		return true
	}
	for _, e := range s.entries {
		if e.Status == StatusPending {
			return true
		}
	}
	return false
}

// with returns a copy of s with id set to e
func (s *Snapshot) with(id string, e Entry) *Snapshot {
	next := newSnapshot(s.Generation, len(s.entries))
	for k, v := range s.entries {
		next.entries[k] = v
	}
	next.entries[id] = e
	return next
}
