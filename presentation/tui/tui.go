package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/form"
	"github.com/pyama86/opsboard/domain/listing"
	"github.com/pyama86/opsboard/domain/repository"
	"github.com/pyama86/opsboard/handler"
	"github.com/pyama86/opsboard/presentation/tables"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
)

type refreshedMsg struct {
	err error
}

type submittedMsg struct {
	err error
}

type fieldInput struct {
	spec  form.FieldSpec
	input textinput.Model
}

type model struct {
	ctx     context.Context
	console *handler.Console

	mode    mode
	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	fields  []fieldInput
	focus   int
	pending int
	status  string
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	helpStyle        = lipgloss.NewStyle().Faint(true)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	modalStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var columnWidths = map[entity.Tab][]int{
	entity.TabOperational: {6, 24, 18, 10, 18},
	entity.TabProject:     {6, 28, 18, 10, 18},
}

func Run(ctx context.Context, console *handler.Console) error {
	p := tea.NewProgram(newModel(ctx, console), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func newModel(ctx context.Context, console *handler.Console) model {
	ti := textinput.New()
	ti.Placeholder = "search incidents"
	ti.CharLimit = 128
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		ctx:     ctx,
		console: console,
		table:   table.New(table.WithFocused(true), table.WithHeight(15)),
		search:  ti,
		spinner: sp,
		pending: 1,
	}
	m.syncTable()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.ctx, m.console), m.spinner.Tick)
}

func refreshCmd(ctx context.Context, c *handler.Console) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: c.Refresh(ctx)}
	}
}

func submitCmd(ctx context.Context, c *handler.Console) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: c.Submit(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-10))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case refreshedMsg:
		m.pending = max(0, m.pending-1)
		m.status = refreshStatus(msg.err)
		m.syncTable()
		return m, nil
	case submittedMsg:
		m.pending = max(0, m.pending-1)
		if msg.err != nil {
			if errors.Is(msg.err, repository.ErrNoSession) {
				m.status = "Not logged in. Run `opsboard session set` first."
			} else {
				m.status = "Failed to save incident."
			}
			return m, nil
		}
		m.status = "Incident saved."
		m.mode = modeBrowse
		m.fields = nil
		m.syncTable()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func refreshStatus(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, repository.ErrNoSession):
		return "Not logged in. Run `opsboard session set` first."
	}
	return "Failed to load incidents. Showing last known data."
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab", "shift+tab":
		next := entity.TabProject
		if m.console.Tab() == entity.TabProject {
			next = entity.TabOperational
		}
		return m.selectTab(next)
	case "1":
		return m.selectTab(entity.TabOperational)
	case "2":
		return m.selectTab(entity.TabProject)
	case "/":
		m.mode = modeSearch
		m.search.Focus()
		return m, textinput.Blink
	case "s":
		m.cycleSort()
		return m, nil
	case "o":
		sd := m.console.SortDirective()
		if sd.Order == listing.Asc {
			sd.Order = listing.Desc
		} else {
			sd.Order = listing.Asc
		}
		if err := m.console.SetSort(sd); err != nil {
			m.status = err.Error()
		}
		m.syncTable()
		return m, nil
	case "r":
		m.pending++
		return m, refreshCmd(m.ctx, m.console)
	case "n", "a":
		m.console.OpenCreate()
		m.openForm()
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) selectTab(tab entity.Tab) (tea.Model, tea.Cmd) {
	if err := m.console.SelectTab(tab); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = ""
	m.syncTable()
	m.table.GotoTop()
	return m, nil
}

// cycleSort は 未指定 -> 各項目 -> 未指定 の順に並び替え項目を進める
func (m *model) cycleSort() {
	opts := m.console.SortOptions()
	cur := m.console.SortDirective()
	next := ""
	switch idx := slices.Index(opts, cur.Field); {
	case idx == -1 && len(opts) > 0:
		next = opts[0]
	case idx >= 0 && idx+1 < len(opts):
		next = opts[idx+1]
	}
	if err := m.console.SetSort(listing.SortDirective{Field: next, Order: cur.Order}); err != nil {
		m.status = err.Error()
	}
	m.syncTable()
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.console.SetSearch(m.search.Value())
	m.syncTable()
	return m, cmd
}

func (m *model) openForm() {
	m.mode = modeForm
	m.focus = 0
	schema := m.console.Schema()
	m.fields = make([]fieldInput, 0, len(schema))
	for _, spec := range schema {
		ti := textinput.New()
		ti.Placeholder = spec.Label
		ti.CharLimit = 512
		ti.Width = 48
		if spec.Kind == form.KindDateTime {
			ti.Placeholder = "YYYY-MM-DDTHH:MM"
		}
		m.fields = append(m.fields, fieldInput{spec: spec, input: ti})
	}
	m.focusField()
}

func (m *model) focusField() {
	for i := range m.fields {
		if i == m.focus && m.fields[i].spec.Kind != form.KindEnum {
			m.fields[i].input.Focus()
		} else {
			m.fields[i].input.Blur()
		}
	}
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		m.mode = modeBrowse
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.console.CancelCreate()
		m.mode = modeBrowse
		m.fields = nil
		m.status = ""
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.focus == len(m.fields)-1 {
			return m.submit()
		}
		m.focus++
		m.focusField()
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.fields)
		m.focusField()
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
		m.focusField()
		return m, nil
	}

	f := &m.fields[m.focus]
	if f.spec.Kind == form.KindEnum {
		switch msg.String() {
		case "left", "right", " ":
			m.cycleOption(f, msg.String() == "left")
		}
		return m, nil
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if err := m.console.SetField(f.spec.Name, f.input.Value()); err != nil {
		m.status = err.Error()
		return m, cmd
	}
	if f.spec.Kind == form.KindInteger {
		// 入力時点で数値にしたものを表示に戻す
		v, _ := m.console.Draft().Value(f.spec.Name)
		f.input.SetValue(v)
	}
	return m, cmd
}

func (m *model) cycleOption(f *fieldInput, back bool) {
	options := append([]string{""}, f.spec.EnumValues...)
	cur, _ := m.console.Draft().Value(f.spec.Name)
	idx := max(slices.Index(options, cur), 0)
	if back {
		idx = (idx - 1 + len(options)) % len(options)
	} else {
		idx = (idx + 1) % len(options)
	}
	if err := m.console.SetField(f.spec.Name, options[idx]); err != nil {
		m.status = err.Error()
	}
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if m.console.FormState() != handler.FormOpen {
		return m, nil
	}
	m.pending++
	m.status = "Saving..."
	return m, submitCmd(m.ctx, m.console)
}

func (m *model) syncTable() {
	snap := m.console.Snapshot()
	var rows [][]string
	switch snap.Tab {
	case entity.TabProject:
		rows = tables.ProjectRows(snap.Project)
	default:
		rows = tables.OperationalRows(snap.Operational)
	}

	headers := tables.Headers(snap.Tab)
	widths := columnWidths[snap.Tab]
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(trows)
}

func (m model) View() string {
	snap := m.console.Snapshot()
	var b strings.Builder

	tabs := make([]string, 0, len(entity.Tabs))
	for _, t := range entity.Tabs {
		if t == snap.Tab {
			tabs = append(tabs, activeTabStyle.Render(t.Title()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.Title()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n")
	b.WriteString(helpStyle.Render("tab switch  •  / search  •  s sort  •  o order  •  n new  •  r refresh  •  q quit") + "\n\n")

	if m.mode == modeSearch {
		b.WriteString("Search: " + m.search.View() + "\n")
	} else if snap.Search != "" {
		b.WriteString("Search: " + snap.Search + "\n")
	}
	b.WriteString(sortLine(snap.Sort) + "\n")
	if snap.Loading || m.pending > 0 {
		b.WriteString(m.spinner.View() + " Loading...\n")
	}
	b.WriteString("\n")

	if m.mode == modeForm {
		b.WriteString(m.formView(snap))
	} else if len(m.table.Rows()) == 0 {
		b.WriteString(helpStyle.Render("No incidents found.") + "\n")
	} else {
		b.WriteString(m.table.View() + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + errorStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func sortLine(sd listing.SortDirective) string {
	if sd.Field == "" {
		return "Sort: none"
	}
	return fmt.Sprintf("Sort: %s (%s)", sd.Field, sd.Order)
}

func (m model) formView(snap handler.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New %s incident\n\n", snap.Tab)
	for i, f := range m.fields {
		prefix := "  "
		if i == m.focus {
			prefix = "> "
		}
		var value string
		if f.spec.Kind == form.KindEnum {
			v, _ := snap.Draft.Value(f.spec.Name)
			if f.spec.Name == "severity" {
				v = tables.SeverityBadge(entity.Severity(v))
			} else if v == "" {
				v = "-"
			}
			value = "< " + v + " >"
		} else {
			value = f.input.View()
		}
		fmt.Fprintf(&b, "%s%-16s %s\n", prefix, f.spec.Label, value)
	}
	b.WriteString("\n")
	if snap.FormState == handler.FormSubmitting {
		b.WriteString(m.spinner.View() + " Saving...\n")
	}
	b.WriteString(helpStyle.Render("tab next  •  ←/→ choose  •  ctrl+s save  •  esc cancel"))
	return modalStyle.Render(b.String()) + "\n"
}
