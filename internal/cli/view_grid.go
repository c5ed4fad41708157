package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/objetivos/internal/cli/formatter"
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/reconcile"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// areasLoadedMsg carries the result of reading the table, plus any notices
// to show once it is displayed.
type areasLoadedMsg struct {
	snap    *domain.Snapshot
	err     error
	notices []string
}

// areasSavedMsg carries the outcome of a save action.
type areasSavedMsg struct {
	res *reconcile.Result
	err error
}

// gridNoticeMsg adds a transient line under the grid.
type gridNoticeMsg struct {
	text string
}

// gridView shows every row of the table and stages edits until saved.
type gridView struct {
	state   *SharedState
	table   table.Model
	loading bool
	err     error
	notices []string
}

func newGridView(state *SharedState) *gridView {
	t := table.New(table.WithFocused(true))
	t.SetStyles(gridStyles())
	return &gridView{state: state, table: t, loading: true}
}

func gridStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Foreground(formatter.ColorHeader).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(formatter.ColorDim).
		BorderBottom(true)
	s.Cell = s.Cell.Foreground(formatter.ColorFg)
	s.Selected = s.Selected.
		Foreground(formatter.ColorFg).
		Background(lipgloss.Color("#504945")).
		Bold(false)
	return s
}

func (v *gridView) ID() ViewID    { return ViewGrid }
func (v *gridView) Title() string { return "Áreas e Objetivos" }

func (v *gridView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "editar")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "salvar")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recarregar")),
	}
}

func (v *gridView) Init() tea.Cmd {
	return v.load(nil)
}

// load reads the table and hands notices through to the loaded message.
func (v *gridView) load(notices []string) tea.Cmd {
	app := v.state.App
	return func() tea.Msg {
		snap, err := app.Areas.Load(context.Background())
		return areasLoadedMsg{snap: snap, err: err, notices: notices}
	}
}

// save writes every pending edit. Nothing is sent before the first load.
func (v *gridView) save() tea.Cmd {
	app := v.state.App
	original, edited := v.state.Original, v.state.Edited
	if original == nil {
		return nil
	}
	return func() tea.Msg {
		res, err := app.Areas.Save(context.Background(), original, edited)
		return areasSavedMsg{res: res, err: err}
	}
}

func (v *gridView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case areasLoadedMsg:
		v.loading = false
		v.notices = msg.notices
		if msg.err != nil {
			v.err = msg.err
			v.state.SetSnapshot(nil)
			v.rebuild()
			return v, nil
		}
		v.err = nil
		v.state.SetSnapshot(msg.snap)
		v.rebuild()
		return v, nil

	case areasSavedMsg:
		if msg.err != nil {
			v.notices = []string{formatter.StyleRed.Render(msg.err.Error())}
			return v, nil
		}
		// A save always reloads, like a fresh page, so the grid shows what
		// the database now holds.
		v.loading = true
		return v, v.load(resultNotices(msg.res))

	case gridNoticeMsg:
		v.notices = append(v.notices, msg.text)
		return v, nil

	case refreshViewMsg:
		v.rebuild()
		return v, nil

	case tea.WindowSizeMsg:
		v.resize()
		return v, nil

	case tea.KeyMsg:
		if v.loading {
			return v, nil
		}
		switch msg.String() {
		case "enter", "e":
			if row, ok := v.selectedRow(); ok {
				return v, v.editRow(row)
			}
			return v, nil
		case "s":
			v.notices = nil
			return v, v.save()
		case "r":
			v.loading = true
			v.notices = nil
			return v, v.load(nil)
		}
		var cmd tea.Cmd
		v.table, cmd = v.table.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *gridView) selectedRow() (domain.Row, bool) {
	snap := v.state.Edited
	if snap.Empty() {
		return domain.Row{}, false
	}
	i := v.table.Cursor()
	if i < 0 || i >= len(snap.Rows) {
		return domain.Row{}, false
	}
	return snap.Rows[i], true
}

// editRow opens the row form. Submitted values land in the edited snapshot;
// nothing is written until the next save.
func (v *gridView) editRow(row domain.Row) tea.Cmd {
	return pushView(newRowFormView(v.state, row))
}

// rebuild refreshes columns and rows from the edited snapshot. Cells that
// differ from the loaded value are marked with an asterisk.
func (v *gridView) rebuild() {
	snap := v.state.Edited
	v.table.SetRows(nil)
	if snap.Empty() {
		v.table.SetColumns(nil)
		return
	}

	widths := make([]int, len(snap.Columns))
	titles := make([]string, len(snap.Columns))
	for i, c := range snap.Columns {
		titles[i] = formatter.ColumnTitle(c)
		widths[i] = lipgloss.Width(titles[i])
	}

	original := v.state.Original.Index()
	rows := make([]table.Row, len(snap.Rows))
	for r, row := range snap.Rows {
		cells := make(table.Row, len(snap.Columns))
		for i, c := range snap.Columns {
			cell := formatter.CellText(row, c)
			if f := domain.Field(c); f.Valid() && !domain.ValuesEqual(original[row.ID].Get(c), row.Get(c)) {
				// Cut before marking so the asterisk survives the column cap.
				cell = formatter.Truncate(cell, formatter.MaxCellWidth-2) + " *"
			}
			cells[i] = cell
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
		rows[r] = cells
	}

	cols := make([]table.Column, len(snap.Columns))
	for i := range snap.Columns {
		cols[i] = table.Column{Title: titles[i], Width: min(widths[i], formatter.MaxCellWidth)}
	}
	v.table.SetColumns(cols)
	v.table.SetRows(rows)
	v.resize()
}

func (v *gridView) resize() {
	// Section title, pending line and up to two notices sit around the table.
	h := v.state.ContentHeight() - 6
	if h < 3 {
		h = 3
	}
	v.table.SetHeight(h)
	if v.state.Width > 0 {
		v.table.SetWidth(v.state.Width)
	}
}

func (v *gridView) View() string {
	var b strings.Builder
	switch {
	case v.loading && v.state.Original == nil && v.err == nil:
		b.WriteString("\n  " + formatter.Dim("Carregando..."))
	case v.err != nil:
		b.WriteString("\n  " + formatter.LoadErrorMessage(v.err))
	case v.state.Edited.Empty():
		b.WriteString("\n  " + formatter.EmptyTableMessage())
	default:
		b.WriteString(formatter.Bold("Editar informações"))
		b.WriteString("\n")
		b.WriteString(v.table.View())
		b.WriteString("\n")
		if n := len(v.state.PendingChanges()); n > 0 {
			b.WriteString(formatter.StyleYellow.Render(fmt.Sprintf("%d alteração(ões) pendente(s)", n)))
		} else {
			b.WriteString(formatter.Dim("Sem alterações pendentes"))
		}
	}
	for _, n := range v.notices {
		b.WriteString("\n")
		b.WriteString(n)
	}
	return b.String()
}

// resultNotices turns a save result into grid notice lines.
func resultNotices(res *reconcile.Result) []string {
	out := strings.TrimRight(formatter.FormatResult(res), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
