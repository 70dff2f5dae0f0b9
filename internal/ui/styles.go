package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/normalize"
)

// categoryColors gives every score card its accent.
var categoryColors = map[model.ScoreCategory]lipgloss.Color{
	model.Relevance:                  lipgloss.Color("#2563eb"),
	model.KeywordOptimization:        lipgloss.Color("#7c3aed"),
	model.FormattingPresentation:     lipgloss.Color("#f59e0b"),
	model.AchievementsQualifications: lipgloss.Color("#10b981"),
	model.BrevityClarity:             lipgloss.Color("#ef4444"),
	model.FinalScore:                 lipgloss.Color("#0ea5e9"),
}

var (
	colorMuted  = lipgloss.Color("#6b7280")
	colorAccent = lipgloss.Color("#6366f1")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle = lipgloss.NewStyle().Bold(true)

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(colorMuted)
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("#ffffff")).Background(colorAccent).Bold(true)

	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#b91c1c")).Padding(0, 1)
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0ea5e9")).Italic(true)
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb")).Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(24)
	finalCardStyle = cardStyle.
			Border(lipgloss.ThickBorder()).
			Bold(true)

	entryStyle         = lipgloss.NewStyle().PaddingLeft(1)
	selectedEntryStyle = entryStyle.Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(colorAccent)
)

var pillBase = lipgloss.NewStyle().Padding(0, 1).Bold(true)

// verdictStyles maps the shared verdict buckets to pill styles.
var verdictStyles = map[normalize.Bucket]lipgloss.Style{
	normalize.Positive: pillBase.Foreground(lipgloss.Color("#065f46")).Background(lipgloss.Color("#d1fae5")),
	normalize.Caution:  pillBase.Foreground(lipgloss.Color("#92400e")).Background(lipgloss.Color("#fef3c7")),
	normalize.Negative: pillBase.Foreground(lipgloss.Color("#991b1b")).Background(lipgloss.Color("#fee2e2")),
	normalize.Info:     pillBase.Foreground(lipgloss.Color("#1e40af")).Background(lipgloss.Color("#dbeafe")),
	normalize.Unstyled: pillBase.Foreground(lipgloss.Color("#374151")).Background(lipgloss.Color("#f3f4f6")),
}

func verdictStyle(b normalize.Bucket) lipgloss.Style {
	if s, ok := verdictStyles[b]; ok {
		return s
	}
	return verdictStyles[normalize.Unstyled]
}

func scoreCardStyle(c model.ScoreCategory, hovered bool) lipgloss.Style {
	style := cardStyle
	if c == model.FinalScore {
		style = finalCardStyle
	}
	color, ok := categoryColors[c]
	if !ok {
		color = colorMuted
	}
	style = style.BorderForeground(color).Foreground(color)
	if hovered {
		style = style.Reverse(true)
	}
	return style
}
