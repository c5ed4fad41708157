package cli

import (
	"fmt"

	"github.com/alexanderramin/objetivos/internal/cli/formatter"
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// objetivosHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func objetivosHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// rowInputs holds the form-bound text of one row's watched fields.
// shown is the text each widget holds when left untouched.
type rowInputs struct {
	id      int64
	initial map[domain.Field]string
	shown   map[domain.Field]string
	values  map[domain.Field]*string
}

func newRowInputs(row domain.Row) *rowInputs {
	in := &rowInputs{
		id:      row.ID,
		initial: make(map[domain.Field]string),
		shown:   make(map[domain.Field]string),
		values:  make(map[domain.Field]*string),
	}
	for _, f := range domain.WatchedFields() {
		s := domain.FormatValue(row.Get(string(f)))
		in.initial[f] = s
		in.shown[f] = widgetText(f, s)
		in.values[f] = &s
	}
	return in
}

// rowEditForm builds one page with an input per watched field, prefilled
// with the row's current values.
func rowEditForm(in *rowInputs) *huh.Form {
	fields := make([]huh.Field, 0, len(in.values))
	for _, f := range domain.WatchedFields() {
		switch f.Kind() {
		case domain.KindDate:
			fields = append(fields, dateInput(f.Label(), in.initial[f], in.values[f]))
		default:
			fields = append(fields, textInput(f.Label(), in.values[f]))
		}
	}
	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithTheme(objetivosHuhTheme()).WithShowHelp(false)
}

// apply stages the submitted text into snap. Text the user left alone keeps
// the loaded value, even when the widget rewrote it.
func (in *rowInputs) apply(snap *domain.Snapshot) error {
	for _, f := range domain.WatchedFields() {
		v := *in.values[f]
		if v == in.shown[f] {
			continue
		}
		if err := snap.ApplyInput(in.id, f, v); err != nil {
			return err
		}
	}
	return nil
}

// rowFormView edits one row on top of the grid. Submitting stages the
// values into the edited snapshot; Esc leaves it untouched. Either way the
// view closes with a formClosedMsg.
type rowFormView struct {
	state *SharedState
	in    *rowInputs
	form  *huh.Form
}

func newRowFormView(state *SharedState, row domain.Row) *rowFormView {
	in := newRowInputs(row)
	return &rowFormView{state: state, in: in, form: rowEditForm(in)}
}

func (v *rowFormView) ID() ViewID    { return ViewForm }
func (v *rowFormView) Title() string { return fmt.Sprintf("Linha %d", v.in.id) }

func (v *rowFormView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "próximo")),
		key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "nova linha")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	}
}

func (v *rowFormView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *rowFormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return v, closeForm(nil)
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	switch v.form.State {
	case huh.StateCompleted:
		// Staged before the pop so the refresh that follows sees it.
		return v, closeForm(v.submit())
	case huh.StateAborted:
		return v, closeForm(nil)
	}
	return v, cmd
}

// submit stages the form into the edited snapshot. A value that does not
// parse becomes a grid notice and nothing from the row is kept.
func (v *rowFormView) submit() tea.Cmd {
	edited := v.state.Edited.Clone()
	if err := v.in.apply(edited); err != nil {
		text := formatter.StyleRed.Render(err.Error())
		return func() tea.Msg { return gridNoticeMsg{text: text} }
	}
	v.state.Edited = edited
	return nil
}

func (v *rowFormView) View() string {
	return v.form.View()
}

func closeForm(next tea.Cmd) tea.Cmd {
	return func() tea.Msg { return formClosedMsg{nextCmd: next} }
}
