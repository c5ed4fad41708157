package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/objetivos/internal/db"
	"github.com/alexanderramin/objetivos/internal/domain"
)

const selectAllAreas = `SELECT * FROM areas_objetivos ORDER BY id`

// updateStatements is the only source of UPDATE text. Column names are
// literals; the value and id are always bound parameters.
var updateStatements = map[db.Dialect]map[domain.Field]string{
	db.DialectPostgres: {
		domain.FieldResponsavel:   `UPDATE areas_objetivos SET responsavel = $1 WHERE id = $2`,
		domain.FieldObjetivo:      `UPDATE areas_objetivos SET objetivo = $1 WHERE id = $2`,
		domain.FieldPeriodoInicio: `UPDATE areas_objetivos SET periodo_inicio = $1 WHERE id = $2`,
		domain.FieldPeriodoFim:    `UPDATE areas_objetivos SET periodo_fim = $1 WHERE id = $2`,
	},
	db.DialectSQLite: {
		domain.FieldResponsavel:   `UPDATE areas_objetivos SET responsavel = ? WHERE id = ?`,
		domain.FieldObjetivo:      `UPDATE areas_objetivos SET objetivo = ? WHERE id = ?`,
		domain.FieldPeriodoInicio: `UPDATE areas_objetivos SET periodo_inicio = ? WHERE id = ?`,
		domain.FieldPeriodoFim:    `UPDATE areas_objetivos SET periodo_fim = ? WHERE id = ?`,
	},
}

// SQLAreaRepo implements AreaRepo over database/sql.
type SQLAreaRepo struct {
	db      db.DBTX
	dialect db.Dialect
}

// NewSQLAreaRepo creates a repository bound to conn, which may be the pool or
// a transaction.
func NewSQLAreaRepo(conn db.DBTX, dialect db.Dialect) *SQLAreaRepo {
	return &SQLAreaRepo{db: conn, dialect: dialect}
}

func (r *SQLAreaRepo) List(ctx context.Context) (*domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, selectAllAreas)
	if err != nil {
		return nil, classifyLoadError(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, classifyLoadError(err)
	}
	idIdx := -1
	for i, c := range columns {
		if c == domain.IDColumn {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%s has no %q column: %w", domain.TableName, domain.IDColumn, domain.ErrQueryFailed)
	}

	snap := &domain.Snapshot{Columns: columns}
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w: %w", domain.TableName, domain.ErrQueryFailed, err)
		}

		id, err := rowID(cells[idIdx])
		if err != nil {
			return nil, fmt.Errorf("reading %s id: %w: %w", domain.TableName, domain.ErrQueryFailed, err)
		}
		values := make(map[string]any, len(columns))
		for i, c := range columns {
			values[c] = normalizeCell(c, cells[i])
		}
		snap.Rows = append(snap.Rows, domain.Row{ID: id, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, classifyLoadError(err)
	}

	snap.EnsureColumns()
	return snap, nil
}

func (r *SQLAreaRepo) UpdateField(ctx context.Context, id int64, f domain.Field, value any) error {
	stmt, ok := updateStatements[r.dialect][f]
	if !ok {
		return fmt.Errorf("field %q: %w", f, domain.ErrFieldNotEditable)
	}

	res, err := r.db.ExecContext(ctx, stmt, bindValue(r.dialect, f, value), id)
	if err != nil {
		return fmt.Errorf("updating %s of row %d: %w: %w", f, id, domain.ErrUpdateFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s of row %d: %w: %w", f, id, domain.ErrUpdateFailed, err)
	}
	if n == 0 {
		return fmt.Errorf("updating %s of row %d: %w: %w", f, id, domain.ErrUpdateFailed, domain.ErrRowNotFound)
	}
	return nil
}
