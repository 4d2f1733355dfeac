// Package tui is the terminal table view: a bubbletea program over the same
// view model as the browser view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/csvtable/internal/apiclient"
	"github.com/JonMunkholm/csvtable/internal/core"
	"github.com/JonMunkholm/csvtable/internal/viewmodel"
)

// TerminalPolicy sizes pages by terminal width in cells.
var TerminalPolicy = viewmodel.PageSizePolicy{Breakpoint: 100, Narrow: 5, Wide: 10}

// Fetcher loads the table. *apiclient.Client implements it.
type Fetcher interface {
	FetchTableData(ctx context.Context) apiclient.Result
}

// fetchedMsg carries a completed fetch.
type fetchedMsg struct {
	result apiclient.Result
}

// Model is the bubbletea model for the table view.
type Model struct {
	ctx    context.Context
	client Fetcher

	state   viewmodel.State
	page    viewmodel.Page
	records []core.Record
	err     string
	loading bool

	table     table.Model
	search    textinput.Model
	searching bool

	width  int
	height int
	styles Styles
}

// New creates a Model fetching through client. ctx bounds every fetch.
func New(ctx context.Context, client Fetcher) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = ""
	ti.CharLimit = 100
	ti.Width = 30

	t := table.New(
		table.WithColumns(columnsFor(0, viewmodel.State{})),
		table.WithFocused(true),
		table.WithHeight(viewmodel.DefaultPageSize),
	)

	m := Model{
		ctx:     ctx,
		client:  client,
		state:   viewmodel.Default(),
		loading: true,
		table:   t,
		search:  ti,
		styles:  DefaultStyles(),
	}
	m.refresh()
	return m
}

// Init starts the first fetch.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		return fetchedMsg{result: client.FetchTableData(ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.state = viewmodel.SetPageSize(m.state, TerminalPolicy.PageSizeForWidth(msg.Width))
		m.table.SetWidth(msg.Width)
		m.refresh()
		return m, nil

	case fetchedMsg:
		m.loading = false
		m.records = msg.result.Data
		m.err = msg.result.Error
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.state.SearchText {
		m.state = viewmodel.SetSearchText(m.state, v)
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "tab":
		m.state = viewmodel.SetSearchColumn(m.state, nextColumn(m.state.SearchColumn))
		m.refresh()
		return m, nil
	case "right", "n":
		m.state = viewmodel.NextPage(m.state, m.page.TotalPages)
		m.refresh()
		return m, nil
	case "left", "p":
		m.state = viewmodel.PrevPage(m.state)
		m.refresh()
		return m, nil
	case "r":
		m.loading = true
		return m, m.fetch()
	case "1", "2", "3", "4", "5":
		m.state = viewmodel.ToggleSort(m.state, core.Columns[key[0]-'1'])
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh derives the page and loads it into the table.
func (m *Model) refresh() {
	m.page = viewmodel.Derive(m.state, m.records)
	m.state.Page = m.page.Current

	rows := make([]table.Row, len(m.page.Rows))
	for i, r := range m.page.Rows {
		rows[i] = table.Row(r.Values())
	}
	m.table.SetColumns(columnsFor(m.width, m.state))
	m.table.SetRows(rows)
	m.table.SetHeight(m.page.PageSize + 1)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

// View renders the view.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("CSV Table"))
	sb.WriteString("\n")

	if m.err != "" {
		sb.WriteString(m.styles.Banner.Render(m.err))
		sb.WriteString("\n")
	}

	box := m.styles.Search
	if m.searching {
		box = m.styles.Focused
	}
	sb.WriteString(box.Render(fmt.Sprintf("%s: %s", m.state.SearchColumn, m.search.View())))
	sb.WriteString("\n")

	sb.WriteString(m.table.View())
	sb.WriteString("\n")

	status := fmt.Sprintf("Page %d of %d  |  %d of %d records", m.page.Current, m.page.TotalPages, m.page.Filtered, m.page.Total)
	if m.loading {
		status += "  |  loading..."
	}
	sb.WriteString(m.styles.Status.Render(status))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("[/] search  [tab] column  [1-5] sort  [←/→ p/n] page  [r] reload  [q] quit"))

	return sb.String()
}

// nextColumn cycles through the columns in header order.
func nextColumn(c core.Column) core.Column {
	for i, col := range core.Columns {
		if col == c {
			return core.Columns[(i+1)%len(core.Columns)]
		}
	}
	return core.Columns[0]
}

// columnsFor sizes the table columns for the terminal width and marks the
// sort column with its direction.
func columnsFor(width int, s viewmodel.State) []table.Column {
	widths := map[core.Column]int{
		core.ColumnID:    6,
		core.ColumnName:  20,
		core.ColumnEmail: 30,
		core.ColumnAge:   5,
		core.ColumnCity:  16,
	}
	if width > 0 && width < TerminalPolicy.Breakpoint {
		widths[core.ColumnName] = 14
		widths[core.ColumnEmail] = 20
		widths[core.ColumnCity] = 10
	}

	cols := make([]table.Column, len(core.Columns))
	for i, c := range core.Columns {
		title := fmt.Sprintf("%d %s", i+1, c)
		if s.SortColumn == c {
			if s.Ascending {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		cols[i] = table.Column{Title: title, Width: widths[c]}
	}
	return cols
}
