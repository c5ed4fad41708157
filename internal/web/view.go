package web

import (
	"fmt"
	"time"

	"github.com/alexanderramin/objetivos/internal/domain"
)

type noticeKind string

const (
	noticeSuccess noticeKind = "success"
	noticeInfo    noticeKind = "info"
	noticeWarning noticeKind = "warning"
	noticeError   noticeKind = "error"
)

type notice struct {
	Kind noticeKind
	Text string
}

type columnView struct {
	Name     string
	Label    string
	Editable bool
}

// cellView is one grid cell. Multiline cells render as a textarea, which
// keeps line breaks.
type cellView struct {
	Input     string
	Value     string
	Type      string
	Editable  bool
	Multiline bool
	Invalid   bool
}

type rowView struct {
	ID    int64
	Cells []cellView
}

type pageData struct {
	Token   string
	Columns []columnView
	Rows    []rowView
	Notices []notice
}

// inputName is the form key for one editable cell.
func inputName(id int64, f domain.Field) string {
	return fmt.Sprintf("r%d.%s", id, f)
}

// buildPage renders snap as a grid. overrides holds raw text the user typed
// that could not be applied, keyed by input name.
func buildPage(snap *domain.Snapshot, token string, overrides map[string]string, notices []notice) pageData {
	page := pageData{Token: token, Notices: notices}
	for _, c := range snap.Columns {
		f := domain.Field(c)
		col := columnView{Name: c, Label: c, Editable: f.Valid()}
		if col.Editable {
			col.Label = f.Label()
		}
		page.Columns = append(page.Columns, col)
	}

	for _, r := range snap.Rows {
		rv := rowView{ID: r.ID}
		for _, col := range page.Columns {
			value := domain.FormatValue(r.Get(col.Name))
			if !col.Editable {
				rv.Cells = append(rv.Cells, cellView{Value: value})
				continue
			}
			f := domain.Field(col.Name)
			cell := cellView{Input: inputName(r.ID, f), Value: value, Type: "text", Editable: true}
			if raw, ok := overrides[cell.Input]; ok {
				cell.Value = raw
				cell.Invalid = true
			}
			switch {
			case f.Kind() == domain.KindText:
				cell.Multiline = true
			case isDateText(cell.Value):
				cell.Type = "date"
			}
			rv.Cells = append(rv.Cells, cell)
		}
		page.Rows = append(page.Rows, rv)
	}
	return page
}

// isDateText reports whether v fits a date input. Legacy values that do not
// parse stay in a text input so an untouched save does not clear them.
func isDateText(v string) bool {
	if v == "" {
		return true
	}
	_, err := time.Parse(domain.DateLayout, v)
	return err == nil
}

func savedNotice(n int) notice {
	return notice{Kind: noticeSuccess, Text: fmt.Sprintf("✅ %d alteração(ões) salva(s)!", n)}
}
