package domain

import "fmt"

// TableName is the single table this application edits.
const TableName = "areas_objetivos"

// IDColumn is the primary key column of TableName.
const IDColumn = "id"

// Field names a column that may be edited and persisted.
type Field string

const (
	FieldResponsavel   Field = "responsavel"
	FieldObjetivo      Field = "objetivo"
	FieldPeriodoInicio Field = "periodo_inicio"
	FieldPeriodoFim    Field = "periodo_fim"
)

// FieldKind is the value type a watched field holds.
type FieldKind string

const (
	KindText FieldKind = "text"
	KindDate FieldKind = "date"
)

// DateLayout is the calendar date format used for input and display.
const DateLayout = "2006-01-02"

var watchedFields = []Field{
	FieldResponsavel,
	FieldObjetivo,
	FieldPeriodoInicio,
	FieldPeriodoFim,
}

var fieldKinds = map[Field]FieldKind{
	FieldResponsavel:   KindText,
	FieldObjetivo:      KindText,
	FieldPeriodoInicio: KindDate,
	FieldPeriodoFim:    KindDate,
}

var fieldLabels = map[Field]string{
	FieldResponsavel:   "Responsável",
	FieldObjetivo:      "Objetivo",
	FieldPeriodoInicio: "Período Início",
	FieldPeriodoFim:    "Período Fim",
}

// WatchedFields returns the editable fields in display order.
// The returned slice is a copy.
func WatchedFields() []Field {
	out := make([]Field, len(watchedFields))
	copy(out, watchedFields)
	return out
}

// ParseField resolves a column name against the allow-list.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if !f.Valid() {
		return "", fmt.Errorf("field %q: %w", name, ErrFieldNotEditable)
	}
	return f, nil
}

// Valid reports whether f is one of the watched fields.
func (f Field) Valid() bool {
	_, ok := fieldKinds[f]
	return ok
}

// Kind returns the value kind of f. Unknown fields are treated as text.
func (f Field) Kind() FieldKind {
	if k, ok := fieldKinds[f]; ok {
		return k
	}
	return KindText
}

// Label returns the column heading shown in the grid.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

func (f Field) String() string { return string(f) }
