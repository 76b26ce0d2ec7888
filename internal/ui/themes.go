package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is an ANSI palette for line-oriented output.
type Theme struct {
	Name string
	// Prompt colours the REPL prompt.
	Prompt string
	// Accent marks magics and headings.
	Accent string
	// Muted is used for timestamps and hints.
	Muted     string
	Success   string
	Warning   string
	Error     string
	Bold      string
	Underline string
	Reset     string
}

// Theme names accepted by SetTheme.
const (
	ThemeDark   = "dark"
	ThemeLight  = "light"
	ThemeOrange = "orange"
	ThemeNone   = "none"
)

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      ThemeDark,
		Prompt:    "\033[38;5;82m",
		Accent:    "\033[38;5;39m",
		Muted:     "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker tones for light backgrounds.
	LightTheme = Theme{
		Name:      ThemeLight,
		Prompt:    "\033[38;5;28m",
		Accent:    "\033[38;5;27m",
		Muted:     "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// OrangeTheme matches the dashboard palette.
	OrangeTheme = Theme{
		Name:      ThemeOrange,
		Prompt:    "\033[38;5;208m",
		Accent:    "\033[38;5;214m",
		Muted:     "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;214m",
		Error:     "\033[38;5;196m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables every escape sequence.
	NoColorTheme = Theme{Name: ThemeNone}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// TUITheme is the lipgloss palette of the dashboard and the live line.
type TUITheme struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Running lipgloss.TerminalColor
	Done    lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the orange-dominant dashboard palette.
	DarkTUITheme = TUITheme{
		Text:    lipgloss.Color("#E0E0E0"),
		Border:  lipgloss.Color("#FF6600"),
		Accent:  lipgloss.Color("#FF8C00"),
		Running: lipgloss.Color("#FFB347"),
		Done:    lipgloss.Color("#9ece6a"),
		Error:   lipgloss.Color("#FF4444"),
		Dim:     lipgloss.Color("#666666"),
	}

	// NoColorTUITheme renders with the terminal's default colours.
	NoColorTUITheme = TUITheme{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Running: lipgloss.NoColor{},
		Done:    lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
	}
)

// GetCurrentTUITheme returns the lipgloss palette matching the active theme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	if currentTheme.Name == ThemeNone {
		return NoColorTUITheme
	}
	return DarkTUITheme
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name. Unknown names select the dark theme.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case ThemeLight:
		currentTheme = LightTheme
	case ThemeOrange:
		currentTheme = OrangeTheme
	case ThemeNone:
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme picks the startup theme. Colours are off when noColor is set or
// NO_COLOR is present in the environment (https://no-color.org/).
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}

// RunningLineStyle styles the in-progress timer line.
func RunningLineStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetCurrentTUITheme().Running)
}

// DoneLineStyle styles the completed timer line.
func DoneLineStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(GetCurrentTUITheme().Done)
}
