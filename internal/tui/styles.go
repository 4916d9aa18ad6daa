package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"tickerfeed/internal/domain"
)

var (
	headerBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	usernameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	countStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	positiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	negativeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	neutralStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	tagStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tagFocusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	paneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")) // black on yellow
	paneRowHlStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
)

func sentimentStyle(s domain.Sentiment) lipgloss.Style {
	switch s {
	case domain.SentimentPositive:
		return positiveStyle
	case domain.SentimentNegative:
		return negativeStyle
	default:
		return neutralStyle
	}
}

// padOrTrunc pads s with spaces to width cells, or truncates if longer.
// Escape sequences do not count toward the width.
func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := ansi.StringWidth(s)
	if n > width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-n)
}
