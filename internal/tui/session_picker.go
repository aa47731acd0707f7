package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/xenoscopic/xeno/internal/registry"
)

// SessionPickResult holds the outcome of an interactive session pick,
// used by `xeno resume`/`xeno stop` when invoked with no pid and more
// than one live session exists. Grounded on the teacher's repo-select
// picker (internal/tui/repo_select.go), generalized from choosing
// among a workspace's git repos to choosing among live sync sessions.
type SessionPickResult struct {
	Selected registry.Session
	Abort    bool
}

type sessionItem struct {
	session registry.Session
}

func (i sessionItem) Title() string {
	label := i.session.RemotePath
	if i.session.RemoteIsFile {
		label = label + " (file)"
	}
	return fmt.Sprintf("%s  [pid %d]", label, i.session.ProcessID)
}

func (i sessionItem) Description() string {
	status := "synced"
	if i.session.SyncStatus == registry.Unsynced {
		status = "unsynced"
	}
	return fmt.Sprintf("%s@%s  %s  %s", i.session.User, i.session.Host, status, i.session.RepoPath)
}

func (i sessionItem) FilterValue() string {
	return i.session.RemotePath + " " + i.session.Host
}

type sessionPickModel struct {
	list   list.Model
	done   bool
	result SessionPickResult
}

func newSessionPickModel(sessions []registry.Session, title string) sessionPickModel {
	items := make([]list.Item, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, sessionItem{session: s})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("212"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("241"))

	l := list.New(items, delegate, 72, 15)
	l.Title = title
	l.Styles.Title = headerStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return sessionPickModel{list: l}
}

func (m sessionPickModel) Init() tea.Cmd {
	return nil
}

func (m sessionPickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.result.Abort = true
			m.done = true
			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(sessionItem); ok {
				m.result.Selected = item.session
				m.done = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m sessionPickModel) View() string {
	return m.list.View() + "\n" + promptHintStyle.Render("enter: select • /: search • esc: cancel")
}

// RunSessionPick runs the interactive session picker over a set of
// live sessions (as returned by registry.List) and returns the chosen
// one. Rendering goes to stderr so stdout stays reserved for any
// machine-readable output a caller might chain.
func RunSessionPick(sessions []registry.Session, title string) (SessionPickResult, error) {
	if len(sessions) == 0 {
		return SessionPickResult{Abort: true}, fmt.Errorf("no active xeno sessions")
	}

	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))

	m := newSessionPickModel(sessions, title)
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))

	finalModel, err := p.Run()
	if err != nil {
		return SessionPickResult{Abort: true}, err
	}

	return finalModel.(sessionPickModel).result, nil
}
