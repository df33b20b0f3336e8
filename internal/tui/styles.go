package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/loom/pkg/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyles = map[models.Status]lipgloss.Style{
		models.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		models.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StatusFailed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.StatusPaused:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// renderStatus styles a status value for display.
func renderStatus(s models.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(string(s))
}
