package ui

// ColorReset returns the reset sequence of the active theme.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error colour.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the prompt colour.
func ColorGreen() string { return GetCurrentTheme().Prompt }

// ColorYellow returns the warning colour.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorCyan returns the accent colour.
func ColorCyan() string { return GetCurrentTheme().Accent }

// ColorGrey returns the muted colour.
func ColorGrey() string { return GetCurrentTheme().Muted }

// ColorSuccess returns the success colour.
func ColorSuccess() string { return GetCurrentTheme().Success }

// ColorBold returns the bold sequence.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline sequence.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// Paint wraps s in color and a reset. With colours off it returns s.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + ColorReset()
}
