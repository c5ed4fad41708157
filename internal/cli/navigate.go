package cli

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// formClosedMsg is sent when a row form is submitted or cancelled.
// The appModel handles it atomically: pop the form, then run nextCmd.
type formClosedMsg struct {
	nextCmd tea.Cmd
}

// refreshViewMsg asks every view on the stack to redraw from SharedState.
type refreshViewMsg struct{}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}
