// Package store is the sqlite persistence layer behind the archive
// collaborator interfaces and the HTTP controllers.
package store

import (
	"context"
	"database/sql"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/geosurvey/geosurvey/archive"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type Store struct {
	db *sql.DB
	q  querier
}

func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// InTransaction runs fn against a transaction-backed view of the store.
// Nested calls reuse the surrounding transaction.
func (s *Store) InTransaction(ctx context.Context, fn func(archive.Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func marshalColumn(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	content, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, errors.Wrap(err, "marshal column")
	}
	return sql.NullString{String: string(content), Valid: true}, nil
}

func unmarshalColumn(column sql.NullString, v any) error {
	if !column.Valid || column.String == "" {
		return nil
	}
	return errors.Wrap(json.Unmarshal([]byte(column.String), v), "unmarshal column")
}
