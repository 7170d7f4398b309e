package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	dialectPostgres     = "postgres"
	uniqueViolationCode = "23505"
	logMsgSQLExecuted   = "executed sql"
	logAttrQuery        = "query"
	logAttrDurationMS   = "duration_ms"
	logAttrTable        = "table"
)

// Logger receives the SQL executed by PostgresStore. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// PostgresStore persists one catalog in its own table. SQL is built with goqu
// and executed through sqlx, which scans rows into T via its db tags.
type PostgresStore[T Record[T]] struct {
	db     *sqlx.DB
	schema *Schema[T]
	logger Logger
}

// NewPostgresStore returns a store for schema over db. logger may be nil.
func NewPostgresStore[T Record[T]](db *sqlx.DB, schema *Schema[T], logger Logger) *PostgresStore[T] {
	return &PostgresStore[T]{db: db, schema: schema, logger: logger}
}

// EnsureSchema creates the catalog tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, ddl := range []string{MineralSchema.CreateTable, GameSchema.CreateTable} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore[T]) dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

func (s *PostgresStore[T]) columns() []any {
	cols := make([]any, len(s.schema.Fields))
	for i, f := range s.schema.Fields {
		cols[i] = f.Name
	}
	return cols
}

func (s *PostgresStore[T]) row(r T) goqu.Record {
	rec := goqu.Record{}
	for _, f := range s.schema.Fields {
		rec[f.Name] = f.Value(r)
	}
	return rec
}

// SelectQuery renders p as a prepared SELECT statement. The stages are
// appended in pipeline order; goqu ANDs successive Where calls.
func (s *PostgresStore[T]) SelectQuery(p Plan[T]) (string, []any, error) {
	ds := s.dialect().From(s.schema.Table).Select(s.columns()...).Prepared(true)

	if p.Search != "" {
		pattern := "%" + escapeLike(p.Search) + "%"
		ors := make([]exp.Expression, 0, len(p.Searchable))
		for _, f := range p.Searchable {
			ors = append(ors, goqu.Cast(goqu.C(f.Name), "TEXT").ILike(pattern))
		}
		ds = ds.Where(goqu.Or(ors...))
	}

	for _, c := range p.Conditions {
		ds = ds.Where(goqu.C(c.Field.Name).Eq(c.Value))
	}

	var order []exp.OrderedExpression
	if p.SortBy != nil {
		if p.Descending {
			order = append(order, goqu.I(p.SortBy.Name).Desc())
		} else {
			order = append(order, goqu.I(p.SortBy.Name).Asc())
		}
	}
	order = append(order, goqu.I(p.Key.Name).Asc())
	ds = ds.Order(order...)

	if p.Limit > 0 {
		ds = ds.Limit(uint(p.Limit)).Offset(uint(p.Offset))
	}

	return ds.ToSQL()
}

func (s *PostgresStore[T]) List(ctx context.Context, p Plan[T]) ([]T, error) {
	query, args, err := s.SelectQuery(p)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	records := []T{}
	start := time.Now()
	err = s.db.SelectContext(ctx, &records, query, args...)
	s.logQuery(query, time.Since(start))
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *PostgresStore[T]) Get(ctx context.Context, id string) (T, error) {
	var r T
	query, args, err := s.dialect().From(s.schema.Table).
		Select(s.columns()...).
		Where(goqu.C(s.schema.Key).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return r, fmt.Errorf("build select: %w", err)
	}

	err = s.db.GetContext(ctx, &r, query, args...)
	s.logQuery(query, 0)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, ErrRecordNotFound
		}
		return r, err
	}
	return r, nil
}

// Insert checks for an existing row and inserts inside one transaction. A
// concurrent insert that wins the race still surfaces as ErrDuplicateRecord
// through the primary key constraint.
func (s *PostgresStore[T]) Insert(ctx context.Context, r T) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := s.exists(ctx, tx, r.Identifier(), false)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateRecord
		}

		query, args, err := s.dialect().Insert(s.schema.Table).Rows(s.row(r)).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		_, err = tx.ExecContext(ctx, query, args...)
		s.logQuery(query, 0)
		return mapWriteError(err)
	})
}

// Update locks the existing row, then overwrites every column.
func (s *PostgresStore[T]) Update(ctx context.Context, r T) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := s.exists(ctx, tx, r.Identifier(), true)
		if err != nil {
			return err
		}
		if !exists {
			return ErrRecordNotFound
		}

		query, args, err := s.dialect().Update(s.schema.Table).
			Set(s.row(r)).
			Where(goqu.C(s.schema.Key).Eq(r.Identifier())).
			Prepared(true).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		_, err = tx.ExecContext(ctx, query, args...)
		s.logQuery(query, 0)
		return mapWriteError(err)
	})
}

func (s *PostgresStore[T]) Delete(ctx context.Context, id string) error {
	query, args, err := s.dialect().Delete(s.schema.Table).
		Where(goqu.C(s.schema.Key).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	s.logQuery(query, 0)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostgresStore[T]) exists(ctx context.Context, tx *sqlx.Tx, id string, lock bool) (bool, error) {
	ds := s.dialect().From(s.schema.Table).
		Select(goqu.C(s.schema.Key)).
		Where(goqu.C(s.schema.Key).Eq(id)).
		Prepared(true)
	if lock {
		ds = ds.ForUpdate(exp.Wait)
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return false, fmt.Errorf("build select: %w", err)
	}

	var found string
	err = tx.GetContext(ctx, &found, query, args...)
	s.logQuery(query, 0)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// withTx runs fn in a transaction. The deferred Rollback releases the
// connection on every path; after a successful Commit it is a no-op.
func (s *PostgresStore[T]) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore[T]) logQuery(query string, d time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted,
			logAttrTable, s.schema.Table,
			logAttrQuery, query,
			logAttrDurationMS, float64(d.Microseconds())/1000)
	}
}

func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return ErrDuplicateRecord
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters in term match literally under
// PostgreSQL's default backslash escape.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
