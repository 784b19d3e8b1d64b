package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/filter"
	"github.com/vburojevic/logsift/internal/output"
	"github.com/vburojevic/logsift/internal/resultset"
)

var (
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	highlightStyle = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("230")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputWhere
)

// Options configures the browser
type Options struct {
	Title         string
	SeverityField string
	Scale         domain.Scale
	// Refresh re-runs the search; nil disables the r key
	Refresh func() (*resultset.ResultSet, error)
}

// Model represents the TUI state
type Model struct {
	opts        Options
	records     []*domain.Record
	filteredIdx []int
	content     string
	viewport    viewport.Model
	textinput   textinput.Model
	width       int
	height      int
	ready       bool
	mode        inputMode
	searchQuery string
	whereExpr   string
	where       *filter.WhereFilter
	minLevel    *filter.SeverityFilter
	levelName   string
	showDetails bool
	status      string
}

// ResultsMsg carries the outcome of a refresh
type ResultsMsg struct {
	Results *resultset.ResultSet
	Err     error
}

// New creates a new TUI model over rs
func New(rs *resultset.ResultSet, opts Options) Model {
	if opts.SeverityField == "" {
		opts.SeverityField = "severity"
	}
	if len(opts.Scale) == 0 {
		opts.Scale = domain.DefaultScale
	}
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 60

	m := Model{
		opts:      opts,
		textinput: ti,
	}
	m.setRecords(rs)
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != inputNone {
			switch msg.String() {
			case "esc":
				m.mode = inputNone
				m.textinput.Blur()
			case "enter":
				m.commitInput()
			default:
				m.textinput, cmd = m.textinput.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			return m, m.openInput(inputSearch, "text to find", m.searchQuery)
		case "w":
			return m, m.openInput(inputWhere, "severity>=warn AND message~timeout", m.whereExpr)
		case "esc":
			m.searchQuery, m.whereExpr, m.where = "", "", nil
			m.status = ""
			m.updateFilter()
		case "0":
			m.minLevel, m.levelName = nil, ""
			m.updateFilter()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.setMinLevel(int(key[0] - '1'))
		case "d":
			m.showDetails = !m.showDetails
			m.updateFilter()
		case "r":
			if m.opts.Refresh != nil {
				m.status = "refreshing..."
				return m, refreshCmd(m.opts.Refresh)
			}
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
		case "ctrl+d", "pgdown":
			m.viewport.HalfViewDown()
		case "ctrl+u", "pgup":
			m.viewport.HalfViewUp()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := max(m.height-headerHeight-footerHeight, 1)

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.updateFilter()

	case ResultsMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else {
			m.status = ""
			m.setRecords(msg.Results)
		}
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) openInput(mode inputMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.textinput.Placeholder = placeholder
	m.textinput.SetValue(value)
	m.textinput.Focus()
	return textinput.Blink
}

func (m *Model) commitInput() {
	value := strings.TrimSpace(m.textinput.Value())
	mode := m.mode
	m.mode = inputNone
	m.textinput.Blur()

	switch mode {
	case inputSearch:
		m.searchQuery = value
	case inputWhere:
		if value == "" {
			m.whereExpr, m.where = "", nil
			break
		}
		where, err := filter.NewWhereFilter([]string{value}, filter.WhereOptions{SeverityField: m.opts.SeverityField, Scale: m.opts.Scale})
		if err != nil {
			m.status = err.Error()
			return
		}
		m.whereExpr, m.where = value, where
		m.status = ""
	}
	m.updateFilter()
}

func (m *Model) setMinLevel(idx int) {
	if idx >= len(m.opts.Scale) {
		return
	}
	level := m.opts.Scale[idx]
	f, err := filter.NewSeverityFilter(m.opts.SeverityField, m.opts.Scale, level, domain.EqualAndAbove)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.minLevel, m.levelName = f, level
	m.updateFilter()
}

func (m *Model) setRecords(rs *resultset.ResultSet) {
	m.records = rs.Records()
	m.updateFilter()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.renderHeader(), m.viewport.View(), m.renderFooter())
}

func (m *Model) renderHeader() string {
	titleStyle := output.Styles.Title.
		Background(lipgloss.Color("236")).
		Width(m.width)

	title := "logsift"
	if m.opts.Title != "" {
		title += ": " + m.opts.Title
	}

	info := fmt.Sprintf("Shown: %d of %d", len(m.filteredIdx), len(m.records))
	if m.levelName != "" {
		info += fmt.Sprintf(" | Level: %s+", m.levelName)
	}
	if m.whereExpr != "" {
		info += fmt.Sprintf(" | Where: %s", m.whereExpr)
	}
	if m.searchQuery != "" {
		info += fmt.Sprintf(" | Search: %q", m.searchQuery)
	}
	if m.status != "" {
		info += " | " + errorStyle.Render(m.status)
	}

	return titleStyle.Render(title) + "\n" + output.Styles.Help.Width(m.width).Render(info)
}

func (m *Model) renderFooter() string {
	if m.mode != inputNone {
		label := "search: "
		if m.mode == inputWhere {
			label = "where: "
		}
		return label + m.textinput.View()
	}
	help := "q:quit /:search w:where 1-9:min level 0:all d:fields r:refresh esc:clear g/G:top/bottom j/k:scroll"
	return output.Styles.Help.Width(m.width).Render(help)
}

func (m *Model) updateFilter() {
	m.filteredIdx = m.filteredIdx[:0]
	query := strings.ToLower(m.searchQuery)
	var b strings.Builder

	for i, r := range m.records {
		if !m.recordMatches(r, query) {
			continue
		}
		m.filteredIdx = append(m.filteredIdx, i)
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(m.formatRecord(r))
	}

	m.content = b.String()
	if m.ready {
		m.viewport.SetContent(m.content)
	}
}

// recordMatches applies the level, where and text filters to one record
func (m *Model) recordMatches(r *domain.Record, query string) bool {
	if m.minLevel != nil && !m.minLevel.Match(r) {
		return false
	}
	if m.where != nil && !m.where.Match(r) {
		return false
	}
	return query == "" || strings.Contains(strings.ToLower(r.Line), query)
}

func (m *Model) formatRecord(r *domain.Record) string {
	level := r.Value(m.opts.SeverityField)
	style := output.SeverityStyle(level, m.opts.Scale)

	line := r.Line
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i] + " ..."
	}
	maxLen := max(m.width-6, 20)
	if len(line) > maxLen {
		line = line[:maxLen-3] + "..."
	}

	var rendered string
	if m.searchQuery != "" {
		rendered = highlight(line, m.searchQuery)
	} else {
		rendered = style.Render(line)
	}
	out := style.Render(output.SeverityIndicator(level)) + " " + rendered

	if m.showDetails {
		parts := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			parts = append(parts, f.Name+"="+f.Value)
		}
		out += "\n    " + detailStyle.Render(strings.Join(parts, "  "))
	}
	return out
}

func highlight(s, query string) string {
	if query == "" || s == "" {
		return s
	}
	qs := strings.ToLower(query)
	ls := strings.ToLower(s)
	var b strings.Builder
	for {
		idx := strings.Index(ls, qs)
		if idx < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:idx])
		b.WriteString(highlightStyle.Render(s[idx : idx+len(query)]))
		s = s[idx+len(query):]
		ls = ls[idx+len(query):]
	}
	return b.String()
}

// refreshCmd re-runs the search off the update loop
func refreshCmd(refresh func() (*resultset.ResultSet, error)) tea.Cmd {
	return func() tea.Msg {
		rs, err := refresh()
		return ResultsMsg{Results: rs, Err: err}
	}
}
