// Package tui provides the live workspace watch view for loom.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/loom/internal/workspace"
)

// reloadInterval is the fallback poll cadence when filesystem events are
// quiet or unavailable.
const reloadInterval = 2 * time.Second

// entriesMsg carries a fresh workspace listing.
type entriesMsg struct {
	entries []workspace.Entry
}

// fsEventMsg signals a filesystem change under the workspace root.
type fsEventMsg struct{}

// tickMsg drives the periodic fallback reload.
type tickMsg time.Time

// errMsg carries a listing error into the model.
type errMsg struct {
	err error
}

// Model is the bubbletea model for the watch view.
type Model struct {
	store   *workspace.Store
	watcher *fsnotify.Watcher
	spinner spinner.Model
	entries []workspace.Entry
	err     error
	width   int
	quit    bool
}

// NewModel creates a watch model over the given store. The watcher may be
// nil; the view then relies on the periodic reload alone.
func NewModel(store *workspace.Store, watcher *fsnotify.Watcher) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		store:   store,
		watcher: watcher,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.load(), tick()}
	if m.watcher != nil {
		cmds = append(cmds, m.waitForChange())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case "r":
			return m, m.load()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case entriesMsg:
		m.entries = msg.entries
		m.err = nil

	case errMsg:
		m.err = msg.err

	case fsEventMsg:
		return m, tea.Batch(m.load(), m.waitForChange())

	case tickMsg:
		return m, tea.Batch(m.load(), tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quit {
		return ""
	}

	view := titleStyle.Render("loom") + " " + m.spinner.View() + " watching workspaces\n\n"

	if m.err != nil {
		view += errStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}

	if len(m.entries) == 0 {
		view += "No workspaces\n"
	} else {
		view += headerStyle.Render(fmt.Sprintf("  %-20s %-22s %-12s %6s  %s",
			"FEATURE", "PHASE", "STATUS", "ITER", "UPDATED")) + "\n"
		for _, e := range m.entries {
			view += fmt.Sprintf("  %-20s %-22s %-12s %3d/%-2d  %s\n",
				truncate(e.Workspace.FeatureID, 20),
				e.State.Phase,
				renderStatus(e.State.Status),
				e.State.Iteration,
				e.State.MaxIterations,
				e.State.UpdatedAt.Local().Format("15:04:05"))
		}
	}

	view += "\n" + footerStyle.Render("r to refresh | q to quit")
	return view
}

// load returns a command that lists the workspaces.
func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.store.List(nil)
		if err != nil {
			return errMsg{err}
		}
		return entriesMsg{entries}
	}
}

// waitForChange blocks on the next filesystem event. New feature directories
// are added to the watch as they appear; fsnotify does not recurse.
func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if ev.Op.Has(fsnotify.Create) {
					m.watcher.Add(ev.Name)
				}
				return fsEventMsg{}
			case _, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
				// Watch errors are non-fatal; the tick reload covers us.
			}
		}
	}
}

// tick schedules the fallback reload.
func tick() tea.Cmd {
	return tea.Tick(reloadInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// truncate shortens a string to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// Run starts the watch view over the given workspace root and blocks until
// the user quits.
func Run(store *workspace.Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		watcher = nil
	} else {
		defer watcher.Close()
		// Root plus existing feature directories; new ones are added as
		// create events arrive.
		watcher.Add(store.Root())
		if entries, err := store.List(nil); err == nil {
			for _, e := range entries {
				watcher.Add(store.Dir(e.Workspace.FeatureID))
			}
		}
	}

	p := tea.NewProgram(NewModel(store, watcher), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
