package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/trammel/internal/logging/events"
)

// Confirm holds a destructive command until the user commits to it. The
// command was built when the modal opened, so it applies to the targets the
// question named even if the store moves underneath.
type Confirm struct {
	message string
	cmd     tea.Cmd
}

func (m *Model) openConfirm(message string, cmd tea.Cmd) {
	m.confirm = &Confirm{message: message, cmd: cmd}
	m.mode = ModeConfirm
	events.UI.Modal("confirm")
}

func (m *Model) closeConfirm() {
	m.confirm = nil
	m.mode = ModeNormal
	events.UI.Modal("none")
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		cmd := m.confirm.cmd
		m.closeConfirm()
		return cmd
	case "n", "N", "esc", "q", "ctrl+c":
		m.closeConfirm()
	}
	return nil
}
