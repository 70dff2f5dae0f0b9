package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/resumeinsight/internal/domain/accordion"
	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/normalize"
)

// ScoreValue returns the displayed value of a category. A nil ScoreValue
// renders the true scores.
type ScoreValue func(model.ScoreCategory) int

// InsightsView is everything needed to render one analysis.
type InsightsView struct {
	Result    normalize.Result
	Values    ScoreValue
	Hovered   model.ScoreCategory
	ReportURL string
	Width     int
}

type section struct {
	title string
	items []string
}

// RenderInsights renders an analysis. Absent fields are omitted.
func RenderInsights(v InsightsView) string {
	data := v.Result.Data
	var b strings.Builder

	if v.Result.HasVerdict {
		b.WriteString(labelStyle.Render("Verdict "))
		b.WriteString(RenderVerdict(v.Result))
		b.WriteString("\n\n")
	}

	if data.HasScores() {
		b.WriteString(RenderScores(data.Scores, v.Values, v.Hovered, v.Width))
		b.WriteString("\n\n")
	}

	if data.Summary != "" {
		b.WriteString(titleStyle.Render("Summary"))
		b.WriteString("\n")
		b.WriteString(wrap(data.Summary, v.Width))
		b.WriteString("\n\n")
	}

	for _, s := range []section{
		{"Technical Skills", data.TechnicalSkills},
		{"Work Experience", data.WorkExperience},
		{"Key Projects", data.KeyProjects},
		{"Academic Achievements", data.AcademicAchievements},
		{"Recommendations", data.Recommendations},
	} {
		if len(s.items) == 0 {
			continue
		}
		b.WriteString(titleStyle.Render(s.title))
		b.WriteString("\n")
		for _, item := range s.items {
			b.WriteString(wrap("• "+item, v.Width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if data.Fallback != "" {
		b.WriteString(mutedStyle.Render(data.Fallback))
		b.WriteString("\n")
		if len(data.TopKeywords) > 0 {
			b.WriteString(labelStyle.Render("Top keywords: "))
			b.WriteString(strings.Join(data.TopKeywords, ", "))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if v.ReportURL != "" {
		b.WriteString(labelStyle.Render("Report "))
		b.WriteString(linkStyle.Render(v.ReportURL))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderVerdict renders the verdict pill in its bucket style.
func RenderVerdict(r normalize.Result) string {
	if !r.HasVerdict {
		return ""
	}
	return verdictStyle(r.Bucket).Render(r.Verdict)
}

// RenderScores lays score cards out in rows that fit width.
func RenderScores(scores model.Scores, values ScoreValue, hovered model.ScoreCategory, width int) string {
	ordered := scores.Ordered()
	if len(ordered) == 0 {
		return ""
	}

	cardWidth := cardStyle.GetWidth() + cardStyle.GetHorizontalBorderSize()
	perRow := 3
	if width > 0 {
		perRow = max(1, width/cardWidth)
	}

	var rows []string
	var row []string
	for _, s := range ordered {
		value := s.Value
		if values != nil {
			value = values(s.Category)
		}
		card := fmt.Sprintf("%s\n%3d / %d", s.Category.Label(), value, model.MaxScore)
		row = append(row, scoreCardStyle(s.Category, s.Category == hovered).Render(card))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// HistoryEntry is one row of the history list.
type HistoryEntry struct {
	Record   model.Record
	Selected bool
	Frame    accordion.Frame
	Insights InsightsView
}

// RenderHistoryEntry renders the entry header and, while it is open, the
// part of its body the accordion frame reveals.
func RenderHistoryEntry(e HistoryEntry) string {
	marker := "▸"
	if e.Frame.Phase == accordion.Expanding || e.Frame.Phase == accordion.Expanded {
		marker = "▾"
	}

	header := fmt.Sprintf("%s %s  %s", marker, labelStyle.Render(displayName(e.Record)), mutedStyle.Render(FormatTime(e.Record.Time)))
	if e.Insights.Result.HasVerdict {
		header += "  " + RenderVerdict(e.Insights.Result)
	}

	style := entryStyle
	if e.Selected {
		style = selectedEntryStyle
	}

	if e.Frame.Height <= 0 {
		return style.Render(header)
	}

	body := RenderInsights(e.Insights)
	lines := strings.Split(body, "\n")
	visible := int(math.Ceil(e.Frame.Height * float64(len(lines))))
	lines = lines[:min(visible, len(lines))]

	// Content that has not faded in yet is dimmed; the rise offset maps to
	// leading blank lines.
	if e.Frame.ContentOpacity < 0.5 {
		for i, line := range lines {
			lines[i] = mutedStyle.Render(line)
		}
	}
	offset := int(math.Round(e.Frame.ContentOffset / accordion.ContentRise))
	for i := 0; i < offset && len(lines) > 0; i++ {
		lines = append([]string{""}, lines[:len(lines)-1]...)
	}

	return style.Render(header + "\n" + strings.Join(lines, "\n"))
}

// FormatTime renders a record time in local time, or "unknown".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func displayName(rec model.Record) string {
	if rec.Filename != "" {
		return rec.Filename
	}
	if rec.DocID != "" {
		return rec.DocID
	}
	return "(untitled)"
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
