package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/resumeinsight/internal/adapters/document"
	service "github.com/okian/resumeinsight/internal/app"
	"github.com/okian/resumeinsight/internal/domain/model"
	"github.com/okian/resumeinsight/internal/domain/normalize"
	"github.com/okian/resumeinsight/internal/domain/types"
	"github.com/okian/resumeinsight/pkg/logger"
)

const (
	defaultTickInterval = 16 * time.Millisecond
	chromeHeight        = 8
	noHover             = -1
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeUpload
)

// Option configures a Model.
type Option func(*Model)

// WithReportURL sets how report links are built.
func WithReportURL(fn func(docID string) string) Option {
	return func(m *Model) {
		m.reportURL = fn
	}
}

// WithOpener sets how upload paths are turned into documents.
func WithOpener(fn func(path string) (*document.Document, error)) Option {
	return func(m *Model) {
		if fn != nil {
			m.opener = fn
		}
	}
}

// WithTickInterval sets the redraw rate while transitions run.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tick = d
		}
	}
}

// Model is the root Bubble Tea model. It drives the controller from key
// input and runs posted completions on the program loop.
type Model struct {
	ctx       context.Context
	svc       *service.Service
	reportURL func(string) string
	opener    func(string) (*document.Document, error)
	tick      time.Duration

	width, height int
	mode          mode
	search        textinput.Model
	path          textinput.Model
	list          viewport.Model
	offsets       []int
	cursor        int
	hover         int
	status        string
	ticking       bool

	logger logger.Logger
}

// New creates the root model for svc.
func New(ctx context.Context, svc *service.Service, opts ...Option) *Model {
	search := textinput.New()
	search.Placeholder = "Search by filename or content"
	search.Prompt = "/ "

	path := textinput.New()
	path.Placeholder = "path/to/resume.pdf"
	path.Prompt = "upload: "

	m := &Model{
		ctx:    ctx,
		svc:    svc,
		opener: func(p string) (*document.Document, error) { return document.Open(p, 0) },
		tick:   defaultTickInterval,
		search: search,
		path:   path,
		list:   viewport.New(80, 20),
		hover:  noHover,
		logger: logger.Get().Named("ui"),
	}
	for _, opt := range opts {
		opt(m)
	}
	svc.SetScroller(m)
	return m
}

// Init mounts the controller on the program loop.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return mountMsg{} }
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.Width = msg.Width
		m.list.Height = max(3, msg.Height-chromeHeight)
	case mountMsg:
		m.svc.Mount(m.ctx)
	case TaskMsg:
		msg.Run(m.ctx)
	case tickMsg:
		m.ticking = false
	case tea.KeyMsg:
		if cmd, quit := m.handleKey(msg); quit {
			return m, tea.Quit
		} else if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	m.layoutHistory()
	if m.svc.Animating() && !m.ticking {
		m.ticking = true
		cmds = append(cmds, tea.Tick(m.tick, func(time.Time) tea.Msg { return tickMsg{} }))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.mode {
	case modeSearch:
		return m.handleInput(msg, &m.search, func(v string) { m.svc.SetQueryText(m.ctx, v) }), false
	case modeUpload:
		return m.handleInput(msg, &m.path, m.upload), false
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.svc.Close()
		return nil, true
	case "1":
		m.setView(types.ViewHome)
	case "2":
		m.setView(types.ViewInsights)
	case "3":
		m.setView(types.ViewHistory)
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.svc.Query().Text)
		return m.search.Focus(), false
	case "u":
		m.mode = modeUpload
		m.path.SetValue("")
		return m.path.Focus(), false
	case "s":
		m.svc.ToggleSortOrder(m.ctx)
	case "r":
		m.svc.Refresh(m.ctx)
	case "x":
		m.status = ""
		m.svc.DismissNotice()
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "enter", " ":
		m.toggle()
	case "]":
		m.moveHover(1)
	case "[":
		m.moveHover(-1)
	case "esc":
		m.clearHover()
	case "pgdown", "pgup":
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return cmd, false
	}
	return nil, false
}

func (m *Model) handleInput(msg tea.KeyMsg, in *textinput.Model, submit func(string)) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeNormal
		in.Blur()
		submit(strings.TrimSpace(in.Value()))
		return nil
	case tea.KeyEsc:
		m.mode = modeNormal
		in.Blur()
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

func (m *Model) setView(v types.View) {
	m.clearHover()
	if err := m.svc.SetView(m.ctx, v); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) upload(path string) {
	if path == "" {
		m.status = service.ErrNoFile.Error()
		return
	}
	doc, err := m.opener(path)
	if err != nil {
		m.status = err.Error()
		m.logger.Warn(m.ctx, "upload pre-flight failed", logger.String("path", path), logger.Error(err))
		return
	}
	m.clearHover()
	if err := m.svc.Upload(m.ctx, doc.Name, doc.Reader()); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *Model) moveCursor(delta int) {
	if m.svc.View().ActiveView != types.ViewHistory {
		return
	}
	n := len(m.svc.History())
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	if m.cursor < len(m.offsets) {
		top := m.offsets[m.cursor]
		if top < m.list.YOffset || top >= m.list.YOffset+m.list.Height {
			m.list.SetYOffset(top)
		}
	}
}

func (m *Model) toggle() {
	if m.svc.View().ActiveView != types.ViewHistory || len(m.svc.History()) == 0 {
		return
	}
	m.clearHover()
	if err := m.svc.Toggle(m.cursor); err != nil {
		m.status = err.Error()
	}
}

// hoverTarget returns the score set that keyboard hover applies to.
func (m *Model) hoverTarget() (service.ScoreScope, model.Scores, bool) {
	switch m.svc.View().ActiveView {
	case types.ViewInsights:
		rec, ok := m.svc.Current()
		if !ok {
			return service.ScoreScope{}, nil, false
		}
		return service.InsightsScope, normalize.Normalize(rec.Insights).Data.Scores, true
	case types.ViewHistory:
		i := m.svc.View().ExpandedIndex
		history := m.svc.History()
		if i == types.NoExpansion || i >= len(history) {
			return service.ScoreScope{}, nil, false
		}
		return service.HistoryScope(i), normalize.Normalize(history[i].Insights).Data.Scores, true
	default:
		return service.ScoreScope{}, nil, false
	}
}

func (m *Model) moveHover(delta int) {
	scope, scores, ok := m.hoverTarget()
	ordered := scores.Ordered()
	if !ok || len(ordered) == 0 {
		return
	}

	next := 0
	if m.hover != noHover {
		m.svc.HoverMetric(scope, ordered[min(m.hover, len(ordered)-1)].Category, false)
		next = (m.hover + delta + len(ordered)) % len(ordered)
	} else if delta < 0 {
		next = len(ordered) - 1
	}
	m.hover = next
	m.svc.HoverMetric(scope, ordered[next].Category, true)
}

func (m *Model) clearHover() {
	if m.hover == noHover {
		return
	}
	if scope, scores, ok := m.hoverTarget(); ok {
		if ordered := scores.Ordered(); m.hover < len(ordered) {
			m.svc.HoverMetric(scope, ordered[m.hover].Category, false)
		}
	}
	m.hover = noHover
}

func (m *Model) hoveredCategory(scores model.Scores) model.ScoreCategory {
	ordered := scores.Ordered()
	if m.hover == noHover || m.hover >= len(ordered) {
		return ""
	}
	return ordered[m.hover].Category
}

// ScrollIntoView brings history entry i to the top of the list.
func (m *Model) ScrollIntoView(i int) {
	if i >= 0 && i < len(m.offsets) {
		m.list.SetYOffset(m.offsets[i])
	}
}

// layoutHistory renders the history list into the viewport, records entry
// offsets and then lets the controller perform a pending scroll.
func (m *Model) layoutHistory() {
	history := m.svc.History()
	if m.cursor >= len(history) {
		m.cursor = max(0, len(history)-1)
	}

	view := m.svc.View()
	m.offsets = m.offsets[:0]
	var b strings.Builder
	line := 0
	for i, rec := range history {
		m.offsets = append(m.offsets, line)
		result := normalize.Normalize(rec.Insights)
		iv := InsightsView{Result: result, Width: max(20, m.width-4)}
		if i == view.ExpandedIndex {
			scope := service.HistoryScope(i)
			iv.Values = func(c model.ScoreCategory) int { return m.svc.ScoreValue(scope, c) }
			iv.Hovered = m.hoveredCategory(result.Data.Scores)
			iv.ReportURL = m.link(rec.DocID)
		}
		entry := RenderHistoryEntry(HistoryEntry{
			Record:   rec,
			Selected: i == m.cursor,
			Frame:    m.svc.EntryFrame(i),
			Insights: iv,
		})
		b.WriteString(entry)
		b.WriteString("\n")
		line += lipgloss.Height(entry)
	}
	if len(history) == 0 {
		b.WriteString(mutedStyle.Render("No uploads found."))
	}

	m.list.SetContent(b.String())
	m.svc.AfterLayout()
}

func (m *Model) link(docID string) string {
	if m.reportURL == nil || docID == "" {
		return ""
	}
	return m.reportURL(docID)
}

// View renders the screen.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if notice := m.svc.Notice(); notice != "" {
		b.WriteString(noticeStyle.Render(notice))
		b.WriteString("\n")
	}
	if progress := m.svc.Progress(); progress != "" {
		b.WriteString(progressStyle.Render(progress))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.svc.View().ActiveView {
	case types.ViewHome:
		b.WriteString(m.renderHome())
	case types.ViewInsights:
		b.WriteString(m.renderInsights())
	case types.ViewHistory:
		b.WriteString(m.renderHistory())
	}

	b.WriteString("\n")
	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View())
	case modeUpload:
		b.WriteString(m.path.View())
	default:
		b.WriteString(mutedStyle.Render("1/2/3 views • u upload • / search • s sort • enter toggle • [ ] scores • r refresh • q quit"))
	}
	return b.String()
}

func (m *Model) renderTabs() string {
	active := m.svc.View().ActiveView
	tabs := make([]string, 0, len(types.Views))
	for i, v := range types.Views {
		label := fmt.Sprintf("%d %s", i+1, strings.ToUpper(v.String()[:1])+v.String()[1:])
		if v == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderHome() string {
	return titleStyle.Render("Resume Insight") + "\n\n" +
		"Upload a resume (PDF or DOCX) to get an AI evaluation of its relevance,\n" +
		"keywords, formatting, achievements and clarity.\n\n" +
		mutedStyle.Render("Press u to upload, 3 to browse past evaluations.")
}

func (m *Model) renderInsights() string {
	rec, ok := m.svc.Current()
	if !ok {
		return titleStyle.Render("No insights yet") + "\n" +
			mutedStyle.Render("Upload a resume to see its analysis here. Press u to start.")
	}
	result := normalize.Normalize(rec.Insights)
	header := labelStyle.Render(displayName(rec)) + "  " + mutedStyle.Render(FormatTime(rec.Time))
	return header + "\n\n" + RenderInsights(InsightsView{
		Result:    result,
		Values:    func(c model.ScoreCategory) int { return m.svc.ScoreValue(service.InsightsScope, c) },
		Hovered:   m.hoveredCategory(result.Data.Scores),
		ReportURL: m.link(rec.DocID),
		Width:     max(20, m.width-2),
	})
}

func (m *Model) renderHistory() string {
	q := m.svc.Query()
	filter := q.Text
	if filter == "" {
		filter = "all"
	}
	header := fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Filter:"), filter,
		labelStyle.Render("Sort:"), q.Sort.String(),
	)
	if m.svc.Loading() {
		header += "   " + progressStyle.Render("loading...")
	}
	return header + "\n" + m.list.View()
}
