package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModal(t *testing.T) {
	t.Run("Core Functionality: y confirms with the action", func(t *testing.T) {
		m := newConfirmModal(confirmDelete, "Delete 'a.txt'?")

		done, result, _ := m.handleKey(key("y"))
		if !done {
			t.Fatal("expected modal to close on y")
		}
		if !result.confirmed || result.action != confirmDelete {
			t.Errorf("expected confirmed delete, got %+v", result)
		}
	})

	t.Run("Core Functionality: n declines", func(t *testing.T) {
		m := newConfirmModal(confirmUpload, "Upload?")

		done, result, _ := m.handleKey(key("n"))
		if !done {
			t.Fatal("expected modal to close on n")
		}
		if result.confirmed {
			t.Error("expected declined result")
		}
	})

	t.Run("Edge Case: unrelated keys keep the modal open", func(t *testing.T) {
		m := newConfirmModal(confirmDownload, "Download?")

		done, _, _ := m.handleKey(key("x"))
		if done {
			t.Error("expected modal to stay open on an unrelated key")
		}
	})
}

func TestPromptModal(t *testing.T) {
	t.Run("Core Functionality: enter submits the edited prefill", func(t *testing.T) {
		m := newPromptModal(promptRename, "Rename to", "old.txt")

		if got := m.input.Value(); got != "old.txt" {
			t.Fatalf("expected prefill, got %q", got)
		}

		m.handleKey(key("2"))
		done, result, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
		if !done {
			t.Fatal("expected modal to close on enter")
		}
		if !result.submitted || result.purpose != promptRename {
			t.Errorf("expected submitted rename, got %+v", result)
		}
		if result.text != "old.txt2" {
			t.Errorf("expected edited text, got %q", result.text)
		}
	})

	t.Run("Core Functionality: esc cancels without a result", func(t *testing.T) {
		m := newPromptModal(promptSearch, "Search", "")
		m.handleKey(key("abc"))

		done, result, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
		if !done {
			t.Fatal("expected modal to close on esc")
		}
		if result.submitted {
			t.Error("expected no submission after esc")
		}
	})
}
