package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/objetivos/internal/db"
	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUndefinedTable = "42P01"

// classifyLoadError maps a driver error to ConnectionFailed or QueryFailed.
func classifyLoadError(err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("loading %s: %w: %w", domain.TableName, domain.ErrConnectionFailed, err)
	}
	if isMissingTable(err) {
		return fmt.Errorf("table %s does not exist: %w: %w", domain.TableName, domain.ErrQueryFailed, err)
	}
	return fmt.Errorf("loading %s: %w: %w", domain.TableName, domain.ErrQueryFailed, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception.
		return strings.HasPrefix(pgErr.Code, "08")
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	return strings.Contains(err.Error(), "no such table")
}

// normalizeCell converts driver representations into the values the
// reconciler compares: text as string and watched date columns as UTC dates.
func normalizeCell(column string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if f := domain.Field(column); f.Valid() && f.Kind() == domain.KindDate {
		return domain.NormalizeDate(v)
	}
	return v
}

// rowID extracts the integer primary key from a scanned id cell.
func rowID(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case int:
		return int64(x), nil
	case float64:
		if x == math.Trunc(x) {
			return int64(x), nil
		}
	case string:
		return strconv.ParseInt(x, 10, 64)
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	}
	return 0, fmt.Errorf("unsupported id value %v (%T)", v, v)
}

// bindValue prepares a canonical value for the driver. SQLite has no native
// date type, so dates are stored as YYYY-MM-DD text there.
func bindValue(dialect db.Dialect, f domain.Field, v any) any {
	cv, ok := domain.Canonical(v)
	if !ok {
		return nil
	}
	if t, isTime := cv.(time.Time); isTime && f.Kind() == domain.KindDate && dialect == db.DialectSQLite {
		return t.Format(domain.DateLayout)
	}
	return cv
}
