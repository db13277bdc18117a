package message

import (
	tea "charm.land/bubbletea/v2"

	nt "sift/entity"
)

// ApplyCmd returns a command to apply a filter snapshot
func ApplyCmd(root *nt.Group) tea.Cmd {
	return func() tea.Msg {
		return ApplyMsg{Root: root}
	}
}

// ErrorCmd returns a command carrying an error
func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
