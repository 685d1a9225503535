package tui

import (
	"github.com/trungnl/ftptui/pkg/listing"
)

// PaneKind identifies which side of the browser a pane shows.
type PaneKind int

const (
	LocalPane PaneKind = iota
	RemotePane
)

// Pane holds one side's listing plus cursor and scroll state. Loading the
// entries is the browser's job; the pane only knows how to move through them.
type Pane struct {
	Kind    PaneKind
	Path    string
	Entries []listing.Entry
	Cursor  int
	Scroll  int
}

// Selected returns the entry under the cursor.
func (p *Pane) Selected() (listing.Entry, bool) {
	if p.Cursor < 0 || p.Cursor >= len(p.Entries) {
		return listing.Entry{}, false
	}
	return p.Entries[p.Cursor], true
}

func (p *Pane) MoveUp() {
	if p.Cursor > 0 {
		p.Cursor--
	}
}

func (p *Pane) MoveDown() {
	if p.Cursor < len(p.Entries)-1 {
		p.Cursor++
	}
}

func (p *Pane) PageUp(height int) {
	p.Cursor -= height
	if p.Cursor < 0 {
		p.Cursor = 0
	}
}

func (p *Pane) PageDown(height int) {
	p.Cursor += height
	if p.Cursor > len(p.Entries)-1 {
		p.Cursor = len(p.Entries) - 1
	}
	if p.Cursor < 0 {
		p.Cursor = 0
	}
}

func (p *Pane) Home() { p.Cursor = 0 }

func (p *Pane) End() {
	p.Cursor = len(p.Entries) - 1
	if p.Cursor < 0 {
		p.Cursor = 0
	}
}

// EnsureVisible adjusts the scroll window so the cursor stays inside a
// viewport of the given height.
func (p *Pane) EnsureVisible(height int) {
	if height <= 0 {
		return
	}
	if p.Cursor < p.Scroll {
		p.Scroll = p.Cursor
	}
	if p.Cursor >= p.Scroll+height {
		p.Scroll = p.Cursor - height + 1
	}
	if p.Scroll < 0 {
		p.Scroll = 0
	}
}

// SetEntries replaces the listing after a refresh. The cursor is clamped
// rather than reset so a delete keeps the selection near its old position.
func (p *Pane) SetEntries(entries []listing.Entry) {
	p.Entries = entries
	p.Scroll = 0
	if p.Cursor > len(entries)-1 {
		p.Cursor = len(entries) - 1
	}
	if p.Cursor < 0 {
		p.Cursor = 0
	}
}

// Enter resets position after changing into a directory.
func (p *Pane) Enter(path string) {
	p.Path = path
	p.Cursor = 0
	p.Scroll = 0
}
