package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/reconcile"
)

// ColumnTitle is the display header for a table column.
func ColumnTitle(column string) string {
	if f := domain.Field(column); f.Valid() {
		return f.Label()
	}
	return column
}

// FormatSnapshot renders every row of snap as an aligned table.
func FormatSnapshot(snap *domain.Snapshot) string {
	var b strings.Builder
	b.WriteString(Header("Áreas e Objetivos"))
	b.WriteString("\n")
	b.WriteString(RenderSnapshot(snap))
	b.WriteString(Dim(fmt.Sprintf("%d linha(s)", len(snap.Rows))))
	b.WriteString("\n")
	return b.String()
}

// SavedMessage is the confirmation shown after n fields were written.
func SavedMessage(n int) string {
	return fmt.Sprintf("✅ %d alteração(ões) salva(s)!", n)
}

// NoChangesMessage is shown when a save found nothing to write.
func NoChangesMessage() string {
	return "Nenhuma modificação detectada."
}

// EmptyTableMessage is shown when the table has no rows or does not exist.
func EmptyTableMessage() string {
	return StyleYellow.Render(fmt.Sprintf("Não há dados ou a tabela '%s' não existe nesse banco.", domain.TableName))
}

// LoadErrorMessage describes a failed load.
func LoadErrorMessage(err error) string {
	return StyleRed.Render(fmt.Sprintf("Erro ao carregar dados da tabela '%s': %v", domain.TableName, err))
}

// FailureMessage describes one field that could not be saved.
func FailureMessage(fe reconcile.FieldError) string {
	return fmt.Sprintf("Falha ao salvar %s (id %d): %v", fe.Change.Field.Label(), fe.Change.ID, fe.Err)
}

// FormatResult summarizes a save action, one line per message.
func FormatResult(res *reconcile.Result) string {
	var b strings.Builder
	switch {
	case res.PersistedCount() > 0:
		b.WriteString(StyleGreen.Render(SavedMessage(res.PersistedCount())))
		b.WriteString("\n")
	case len(res.Failed) == 0:
		b.WriteString(Dim(NoChangesMessage()))
		b.WriteString("\n")
	}
	for _, fe := range res.Failed {
		b.WriteString(StyleRed.Render(FailureMessage(fe)))
		b.WriteString("\n")
	}
	return b.String()
}
