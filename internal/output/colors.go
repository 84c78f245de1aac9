package output

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// ColorScheme holds the colors used by the console renderer. Every
// color is explicitly enabled or disabled so output does not depend on
// the process-global terminal detection done by the color package.
type ColorScheme struct {
	Title     *color.Color
	Dim       *color.Color
	Good      *color.Color
	Warn      *color.Color
	Bad       *color.Color
	Highlight *color.Color
}

func baseScheme() *ColorScheme {
	return &ColorScheme{
		Title:     color.New(color.FgCyan, color.Bold),
		Dim:       color.New(color.Faint),
		Good:      color.New(color.FgGreen),
		Warn:      color.New(color.FgYellow),
		Bad:       color.New(color.FgRed),
		Highlight: color.New(color.FgMagenta, color.Bold),
	}
}

func (s *ColorScheme) each(f func(*color.Color)) {
	f(s.Title)
	f(s.Dim)
	f(s.Good)
	f(s.Warn)
	f(s.Bad)
	f(s.Highlight)
}

// DefaultColorScheme returns the scheme used on capable terminals.
func DefaultColorScheme() *ColorScheme {
	s := baseScheme()
	s.each((*color.Color).EnableColor)
	return s
}

// NoColorScheme returns the scheme with every color disabled, for
// pipes and NO_COLOR environments.
func NoColorScheme() *ColorScheme {
	s := baseScheme()
	s.each((*color.Color).DisableColor)
	return s
}

// SchemeFor picks a scheme for the writer, honoring NO_COLOR and
// FORCE_COLOR.
func SchemeFor(w io.Writer) *ColorScheme {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = checkIsTerminal(f)
	}
	if os.Getenv("FORCE_COLOR") != "" {
		useColor = true
	}
	if os.Getenv("NO_COLOR") != "" {
		useColor = false
	}
	if useColor {
		return DefaultColorScheme()
	}
	return NoColorScheme()
}

func (s *ColorScheme) passIcon() string {
	return s.Good.Sprint("✓")
}

func (s *ColorScheme) failIcon() string {
	return s.Bad.Sprint("✗")
}
