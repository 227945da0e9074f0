package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette(Colors{
	Accent:  "#7D56F4",
	Success: "#04B575",
	Failure: "#FF0000",
	Notice:  "#FFA500",
	Muted:   "#626262",
})

// Colors are the hex colors a [Palette] is built from.
type Colors struct {
	Accent  string
	Success string
	Failure string
	Notice  string
	Muted   string
}

// Palette holds the styles shared by the views.
type Palette struct {
	ok   lipgloss.Style // uploaded files, success notices
	err  lipgloss.Style // rejected batches, failed uploads
	warn lipgloss.Style // in-flight uploads, empty states
	help lipgloss.Style
	tab  lipgloss.Style // active tab
	cell lipgloss.Style
}

func NewPalette(c Colors) *Palette {
	return &Palette{
		ok:   fg(c.Success).Bold(true),
		err:  fg(c.Failure).Bold(true),
		warn: fg(c.Notice),
		help: fg(c.Muted).Italic(true),
		tab:  fg(c.Accent).Bold(true).Underline(true),
		cell: lipgloss.NewStyle().PaddingRight(2),
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
