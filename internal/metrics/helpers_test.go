package metrics

import "github.com/charmbracelet/lipgloss"

func lipglossPlain() lipgloss.Style { return lipgloss.NewStyle() }
