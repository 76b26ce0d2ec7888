package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/autotime/internal/ui"
)

// Style variables for the dashboard, rebuilt from the ui theme by
// initTUIStyles.
var (
	panelStyle       lipgloss.Style
	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	versionStyle     lipgloss.Style
	elapsedStyle     lipgloss.Style
	indexStyle       lipgloss.Style
	commandStyle     lipgloss.Style
	runningLineStyle lipgloss.Style
	doneLineStyle    lipgloss.Style
	failedStyle      lipgloss.Style
	footerKeyStyle   lipgloss.Style
	footerDescStyle  lipgloss.Style
	cpuSparkStyle    lipgloss.Style
	memSparkStyle    lipgloss.Style
	statusDoneStyle  lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme. Run calls it
// again after the theme has been initialised.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	versionStyle = lipgloss.NewStyle().Foreground(t.Dim)
	elapsedStyle = lipgloss.NewStyle().Foreground(t.Accent)
	indexStyle = lipgloss.NewStyle().Foreground(t.Dim)
	commandStyle = lipgloss.NewStyle().Foreground(t.Text).Bold(true)
	runningLineStyle = ui.RunningLineStyle()
	doneLineStyle = ui.DoneLineStyle()
	failedStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
	footerKeyStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	footerDescStyle = lipgloss.NewStyle().Foreground(t.Dim)
	cpuSparkStyle = lipgloss.NewStyle().Foreground(t.Accent)
	memSparkStyle = lipgloss.NewStyle().Foreground(t.Running)
	statusDoneStyle = lipgloss.NewStyle().Foreground(t.Done).Bold(true)
}
