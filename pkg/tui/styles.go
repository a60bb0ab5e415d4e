// Package tui implements an interactive terminal front end for the
// scripting core: type a goal or script, review the resulting plan and
// keyframe diff, then confirm or discard the apply.
package tui

import "github.com/charmbracelet/lipgloss"

// Object and plan glyphs — convey meaning without relying on color alone.
const (
	GlyphSelected = "▸"
	GlyphObject   = "○"
	GlyphMutate   = "◆"
	GlyphInspect  = "·"
	GlyphApplied  = "✓"
	GlyphBlocked  = "✗"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
	colorWhite  = lipgloss.Color("255")
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorCyan).
	Padding(0, 1)

var clipBadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("0")).
	Background(colorYellow).
	Padding(0, 1)

var (
	objectNormal = lipgloss.NewStyle().
			Foreground(colorWhite)

	objectSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)
)

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)
)

var (
	statusOKStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)

var (
	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	keyBarStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

var confirmBannerStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorYellow).
	Foreground(colorYellow).
	Bold(true).
	Padding(0, 2)
