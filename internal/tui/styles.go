package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/campusconnect/internal/form"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	dim    = lipgloss.AdaptiveColor{Light: "240", Dark: "245"}

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)

	labelStyle        = lipgloss.NewStyle()
	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	requiredStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	institutionStyle = lipgloss.NewStyle().
				Foreground(dim).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(dim).
				Padding(0, 1)
)

// inputBorder returns the border around a field, accented when focused.
func inputBorder(focused bool) lipgloss.Style {
	color := lipgloss.TerminalColor(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
	if focused {
		color = accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(color).
		Width(48)
}

// noticeStyle colours a notice by kind: green for success, red otherwise.
func noticeStyle(kind form.NoticeKind) lipgloss.Style {
	if kind == form.NoticeSubmitted {
		return lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
	}
	return lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
}
