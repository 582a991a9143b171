package repository

import (
	"context"
	"database/sql"

	"learn-persona/internal/config"

	"github.com/jmoiron/sqlx"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
// Queries are written with ? placeholders and passed through Rebind, so the
// same SQL runs on sqlite3, postgres and oracle.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	Rebind(query string) string
	DriverName() string
}

// personaPattern matches a persona key inside a JSON array column.
func personaPattern(key string) string {
	return `%"` + key + `"%`
}

// lockClause is appended to a row read that precedes a write in the same
// transaction. SQLite serializes writers on its single connection instead.
func lockClause(exec DBTX) string {
	switch exec.DriverName() {
	case config.DriverPostgres, config.DriverOracle:
		return " FOR UPDATE"
	default:
		return ""
	}
}

func requireOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
