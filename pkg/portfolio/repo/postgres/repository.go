package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements portfolio.Repository using PostgreSQL, one table per
// collection.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// handlePostgresError maps driver failures onto the portfolio error kinds.
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "singleton") {
				return fmt.Errorf("%w: settings row already exists", portfolio.ErrConflict)
			}
			return fmt.Errorf("%w: duplicate entry", portfolio.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced record not found", portfolio.ErrConflict)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: required field %s is missing", portfolio.ErrInvalidRecord, pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("%w: table does not exist - database migration required", portfolio.ErrTransport)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return portfolio.ErrNotFound
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	// Anything without a server error code failed on the way to the server.
	return fmt.Errorf("%w: %s: %v", portfolio.ErrTransport, operation, err)
}

func selectList(cd codec) string {
	return "id, " + strings.Join(cd.columns, ", ") + ", " + cd.stamp
}

func orderBy(cd codec, descending bool) string {
	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	if !cd.ordered {
		return fmt.Sprintf(" ORDER BY %s %s, id %s", cd.stamp, dir, dir)
	}
	return fmt.Sprintf(" ORDER BY order_index %s, created_at %s, id %s", dir, dir, dir)
}

func (r *Repository) List(ctx context.Context, c portfolio.Collection, q portfolio.Query) ([]portfolio.Record, error) {
	cd, err := codecFor(c)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + selectList(cd) + " FROM " + cd.table
	if q.ActiveOnly && cd.ordered {
		query += " WHERE is_active"
	}
	query += orderBy(cd, q.Descending)

	var args []interface{}
	if q.Limit > 0 {
		query += " LIMIT $1"
		args = append(args, q.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list "+cd.table, err)
	}
	defer rows.Close()

	var out []portfolio.Record
	for rows.Next() {
		rec, err := r.scan(c, cd, rows)
		if err != nil {
			return nil, r.handlePostgresError("scan "+cd.table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list "+cd.table, err)
	}
	return out, nil
}

func (r *Repository) scan(c portfolio.Collection, cd codec, row pgx.Row) (portfolio.Record, error) {
	rec, err := portfolio.NewRecord(c)
	if err != nil {
		return nil, err
	}
	var (
		id    uuid.UUID
		stamp time.Time
	)
	if err := row.Scan(dest(cd, rec, &id, &stamp)...); err != nil {
		return nil, err
	}
	rec.SetRecordID(id)
	rec.Touch(stamp.UTC())
	return rec, nil
}

func (r *Repository) Get(ctx context.Context, c portfolio.Collection, id uuid.UUID) (portfolio.Record, error) {
	cd, err := codecFor(c)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + selectList(cd) + " FROM " + cd.table + " WHERE id = $1"

	rec, err := r.scan(c, cd, r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get "+cd.table, err)
	}
	return rec, nil
}

// Insert lets the database assign id and timestamp and copies them back
// into rec.
func (r *Repository) Insert(ctx context.Context, rec portfolio.Record) error {
	cd, err := codecFor(rec.Collection())
	if err != nil {
		return err
	}

	placeholders := make([]string, len(cd.columns))
	for i := range cd.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id, %s",
		cd.table, strings.Join(cd.columns, ", "), strings.Join(placeholders, ", "), cd.stamp)

	var (
		id    uuid.UUID
		stamp time.Time
	)
	if err := r.db.QueryRow(ctx, query, cd.fields(rec)...).Scan(&id, &stamp); err != nil {
		return r.handlePostgresError("insert "+cd.table, err)
	}
	rec.SetRecordID(id)
	rec.Touch(stamp.UTC())
	return nil
}

func (r *Repository) Update(ctx context.Context, rec portfolio.Record) error {
	cd, err := codecFor(rec.Collection())
	if err != nil {
		return err
	}

	sets := make([]string, len(cd.columns))
	for i, col := range cd.columns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}
	if !cd.ordered {
		sets = append(sets, cd.stamp+" = now()")
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 RETURNING %s",
		cd.table, strings.Join(sets, ", "), cd.stamp)

	args := append([]interface{}{rec.RecordID()}, cd.fields(rec)...)
	var stamp time.Time
	if err := r.db.QueryRow(ctx, query, args...).Scan(&stamp); err != nil {
		return r.handlePostgresError("update "+cd.table, err)
	}
	rec.Touch(stamp.UTC())
	return nil
}

func (r *Repository) Delete(ctx context.Context, c portfolio.Collection, id uuid.UUID) error {
	cd, err := codecFor(c)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, "DELETE FROM "+cd.table+" WHERE id = $1", id)
	if err != nil {
		return r.handlePostgresError("delete "+cd.table, err)
	}
	if tag.RowsAffected() == 0 {
		return portfolio.ErrNotFound
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if p, ok := r.db.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return r.handlePostgresError("ping", err)
		}
		return nil
	}
	var one int
	if err := r.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return r.handlePostgresError("ping", err)
	}
	return nil
}
