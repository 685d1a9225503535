package tui

import (
	"testing"

	"github.com/trungnl/ftptui/pkg/listing"
)

func paneWith(n int) *Pane {
	entries := make([]listing.Entry, 0, n)
	entries = append(entries, listing.Parent())
	for i := 1; i < n; i++ {
		entries = append(entries, listing.Entry{Name: string(rune('a' + i))})
	}
	return &Pane{Entries: entries}
}

func TestPaneCursor(t *testing.T) {
	t.Run("Core Functionality: movement clamps at both ends", func(t *testing.T) {
		p := paneWith(3)

		p.MoveUp()
		if p.Cursor != 0 {
			t.Errorf("expected cursor pinned at 0, got %d", p.Cursor)
		}

		for i := 0; i < 10; i++ {
			p.MoveDown()
		}
		if p.Cursor != 2 {
			t.Errorf("expected cursor pinned at last entry, got %d", p.Cursor)
		}
	})

	t.Run("Core Functionality: page and home/end stay in range", func(t *testing.T) {
		p := paneWith(30)

		p.PageDown(10)
		if p.Cursor != 10 {
			t.Errorf("expected cursor 10 after page down, got %d", p.Cursor)
		}
		p.End()
		if p.Cursor != 29 {
			t.Errorf("expected cursor on last entry, got %d", p.Cursor)
		}
		p.PageDown(10)
		if p.Cursor != 29 {
			t.Errorf("expected page down clamped at end, got %d", p.Cursor)
		}
		p.Home()
		if p.Cursor != 0 {
			t.Errorf("expected cursor home, got %d", p.Cursor)
		}
		p.PageUp(10)
		if p.Cursor != 0 {
			t.Errorf("expected page up clamped at start, got %d", p.Cursor)
		}
	})

	t.Run("Edge Case: empty pane reports no selection", func(t *testing.T) {
		p := &Pane{}
		if _, ok := p.Selected(); ok {
			t.Error("expected no selection from an empty pane")
		}
		p.MoveDown()
		p.End()
		if p.Cursor != 0 {
			t.Errorf("expected cursor stuck at 0, got %d", p.Cursor)
		}
	})
}

func TestPaneScroll(t *testing.T) {
	t.Run("Core Functionality: scroll window follows the cursor", func(t *testing.T) {
		p := paneWith(50)
		height := 10

		for i := 0; i < 25; i++ {
			p.MoveDown()
			p.EnsureVisible(height)
		}
		if p.Cursor != 25 {
			t.Fatalf("expected cursor 25, got %d", p.Cursor)
		}
		if p.Scroll != 16 {
			t.Errorf("expected scroll 16 so the cursor is the last visible row, got %d", p.Scroll)
		}

		p.Home()
		p.EnsureVisible(height)
		if p.Scroll != 0 {
			t.Errorf("expected scroll back to 0, got %d", p.Scroll)
		}
	})
}

func TestPaneSetEntries(t *testing.T) {
	t.Run("Core Functionality: refresh clamps cursor instead of resetting", func(t *testing.T) {
		p := paneWith(5)
		p.Cursor = 4

		// One entry was deleted; the cursor lands on the new last entry.
		p.SetEntries(p.Entries[:4])
		if p.Cursor != 3 {
			t.Errorf("expected cursor clamped to 3, got %d", p.Cursor)
		}

		p.Cursor = 2
		p.SetEntries(p.Entries)
		if p.Cursor != 2 {
			t.Errorf("expected cursor untouched when still valid, got %d", p.Cursor)
		}
	})

	t.Run("Core Functionality: entering a directory resets position", func(t *testing.T) {
		p := paneWith(5)
		p.Cursor = 3
		p.Scroll = 2

		p.Enter("/tmp/sub")
		if p.Cursor != 0 || p.Scroll != 0 {
			t.Errorf("expected cursor and scroll reset, got %d/%d", p.Cursor, p.Scroll)
		}
		if p.Path != "/tmp/sub" {
			t.Errorf("expected path updated, got %s", p.Path)
		}
	})
}
