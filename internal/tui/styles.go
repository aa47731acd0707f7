package tui

import "github.com/charmbracelet/lipgloss"

// Shared styles used across xeno's small set of interactive prompts
// (the session picker and the yes/no confirmation dialog). Split out
// from what was the teacher's single large tui.go because xeno only
// needs a sliver of the teacher's workspace-browser chrome.
var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	promptHintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
