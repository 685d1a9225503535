package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmAction identifies what a yes answer commits to.
type confirmAction int

const (
	confirmDelete confirmAction = iota
	confirmUpload
	confirmDownload
)

// promptAction identifies what the entered text is for.
type promptAction int

const (
	promptRename promptAction = iota
	promptMkdir
	promptSearch
	promptServer
)

// modal is the single captured sub-state of the browser. While one is open
// all keys route here; nothing else in the model changes until it closes.
type modal struct {
	confirming bool
	action     confirmAction
	question   string

	prompting bool
	purpose   promptAction
	input     textinput.Model
}

func (m *modal) open() bool { return m.confirming || m.prompting }

func newConfirmModal(action confirmAction, question string) *modal {
	return &modal{confirming: true, action: action, question: question}
}

func newPromptModal(purpose promptAction, title, prefill string) *modal {
	ti := textinput.New()
	ti.Placeholder = title
	ti.CharLimit = 156
	ti.Width = 40
	ti.SetValue(prefill)
	ti.CursorEnd()
	ti.Focus()
	return &modal{prompting: true, purpose: purpose, input: ti}
}

// modalResult carries the outcome of a closed modal back to the browser.
type modalResult struct {
	confirmed bool
	action    confirmAction

	submitted bool
	purpose   promptAction
	text      string
}

// handleKey consumes one key press. done is true when the modal closed;
// the result then tells the browser what, if anything, was decided.
func (m *modal) handleKey(msg tea.KeyMsg) (done bool, result modalResult, cmd tea.Cmd) {
	if m.confirming {
		switch msg.String() {
		case "enter", "y", "Y":
			return true, modalResult{confirmed: true, action: m.action}, nil
		case "esc", "n", "N":
			return true, modalResult{}, nil
		}
		return false, modalResult{}, nil
	}

	switch msg.String() {
	case "enter":
		return true, modalResult{submitted: true, purpose: m.purpose, text: m.input.Value()}, nil
	case "esc":
		return true, modalResult{}, nil
	}
	var c tea.Cmd
	m.input, c = m.input.Update(msg)
	return false, modalResult{}, c
}

func (m *modal) view() string {
	if m.confirming {
		style := confirmModalStyle
		if m.action == confirmDelete {
			style = deleteModalStyle
		}
		return style.Render(fmt.Sprintf("%s\n\n(y/enter = yes, n/esc = no)", m.question))
	}

	title := promptTitle(m.purpose)
	return promptModalStyle.Render(fmt.Sprintf("%s\n\n%s", lipgloss.NewStyle().Bold(true).Render(title), m.input.View()))
}

func promptTitle(p promptAction) string {
	switch p {
	case promptRename:
		return "Rename to"
	case promptMkdir:
		return "New folder name"
	case promptSearch:
		return "Search"
	case promptServer:
		return "Server (host:port)"
	}
	return ""
}
