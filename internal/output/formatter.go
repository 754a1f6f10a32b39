package output

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Formatter provides a small interface for colored CLI output, used by the
// commands that own the terminal (init, version). The search command never
// prints to stdout.
type Formatter struct {
	noColor bool

	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	tipStyle     lipgloss.Style
}

// NewFormatter creates a formatter instance
func NewFormatter(noColor bool) *Formatter {
	return &Formatter{
		noColor:      noColor,
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		infoStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		tipStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

func (f *Formatter) render(style lipgloss.Style, prefix, message string) string {
	if f.noColor {
		return prefix + message
	}
	return style.Render(prefix) + message
}

// Success prints a success message
func (f *Formatter) Success(format string, args ...interface{}) {
	fmt.Println(f.render(f.successStyle, "✓ ", fmt.Sprintf(format, args...)))
}

// Error prints an error message to stderr
func (f *Formatter) Error(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, f.render(f.errorStyle, "✗ ", fmt.Sprintf(format, args...)))
}

// Info prints an informational message
func (f *Formatter) Info(format string, args ...interface{}) {
	fmt.Println(f.render(f.infoStyle, "• ", fmt.Sprintf(format, args...)))
}

// Tip prints a usage tip
func (f *Formatter) Tip(format string, args ...interface{}) {
	fmt.Println(f.render(f.tipStyle, "→ ", fmt.Sprintf(format, args...)))
}
