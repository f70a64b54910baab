// Package tui implements the interactive "browse" view: a scrollable list
// of a file's current lines, each annotated with its revision history,
// with a detail pane rendering the selected line's provenance as
// markdown.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"contextpilot/internal/provenance"
	"contextpilot/internal/query"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// lineItem adapts one FileRecord to bubbles/list's Item interface.
type lineItem struct {
	record provenance.FileRecord
}

func (i lineItem) Title() string {
	return fmt.Sprintf("L%-5d %s", i.record.LineNumber, strings.Join(i.record.Revisions, " "))
}

func (i lineItem) Description() string {
	if len(i.record.AuthorNames) == 0 {
		return "(no resolved authors)"
	}
	return strings.Join(i.record.AuthorNames, ", ")
}

func (i lineItem) FilterValue() string {
	return fmt.Sprintf("%d %s", i.record.LineNumber, strings.Join(i.record.Revisions, " "))
}

// Model is the bubbletea model for the browse view.
type Model struct {
	file     string
	list     list.Model
	detail   viewport.Model
	renderer *glamour.TermRenderer
	err      error
}

// NewModel loads file's history for [start,end] via api and returns a
// ready-to-run Model.
func NewModel(ctx context.Context, api *query.API, file string, start, end int) (*Model, error) {
	records, err := api.History(ctx, file, start, end)
	if err != nil {
		return nil, err
	}
	return newModelFromRecords(file, records)
}

// NewModelAll loads file's full current history via api, with no line
// range bound.
func NewModelAll(ctx context.Context, api *query.API, file string) (*Model, error) {
	records, err := api.HistoryAll(ctx, file)
	if err != nil {
		return nil, err
	}
	return newModelFromRecords(file, records)
}

func newModelFromRecords(file string, records []provenance.FileRecord) (*Model, error) {
	items := make([]list.Item, len(records))
	for i, r := range records {
		items[i] = lineItem{record: r}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = file
	l.Styles.Title = titleStyle

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		renderer = nil
	}

	return &Model{
		file:     file,
		list:     l,
		detail:   viewport.New(0, 0),
		renderer: renderer,
	}, nil
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		half := msg.Width / 2
		m.list.SetSize(half, msg.Height-2)
		m.detail.Width = msg.Width - half - 2
		m.detail.Height = msg.Height - 2
		m.detail.SetContent(m.renderDetail())
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.detail.SetContent(m.renderDetail())
	return m, cmd
}

func (m *Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(lineItem)
	if !ok {
		return dimStyle.Render("no line selected")
	}
	r := item.record

	var b strings.Builder
	fmt.Fprintf(&b, "# Line %d\n\n", r.LineNumber)
	fmt.Fprintf(&b, "**Revisions:** %s\n\n", strings.Join(r.Revisions, ", "))
	fmt.Fprintf(&b, "**Authors:** %s\n", strings.Join(r.AuthorNames, ", "))

	if m.renderer == nil {
		return b.String()
	}
	rendered, err := m.renderer.Render(b.String())
	if err != nil {
		return b.String()
	}
	return rendered
}

func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.detail.View())
}

// Run starts the bubbletea program over file's full history and blocks
// until the user quits.
func Run(ctx context.Context, api *query.API, file string) error {
	return run(func() (*Model, error) { return NewModelAll(ctx, api, file) })
}

// RunRange is Run bounded to [start,end].
func RunRange(ctx context.Context, api *query.API, file string, start, end int) error {
	return run(func() (*Model, error) { return NewModel(ctx, api, file, start, end) })
}

func run(load func() (*Model, error)) error {
	m, err := load()
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
</content>
