package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("record not found")
)

// ResourceRepository provides CRUD operations for one resource kind.
type ResourceRepository[T, F any] struct {
	db   *DB
	kind Kind[T, F]

	insertSQL string
	listSQL   string
	getSQL    string
	updateSQL string
	deleteSQL string
}

// NewResourceRepository builds the statements for kind once.
func NewResourceRepository[T, F any](db *DB, kind Kind[T, F]) *ResourceRepository[T, F] {
	cols := strings.Join(kind.Columns, ", ")
	returning := "id, " + cols

	inserts := make([]string, len(kind.Columns))
	sets := make([]string, len(kind.Columns))
	for i, c := range kind.Columns {
		inserts[i] = fmt.Sprintf("COALESCE($%d, '')", i+2)
		sets[i] = fmt.Sprintf("%s = COALESCE($%d, %s)", c, i+2, c)
	}

	return &ResourceRepository[T, F]{
		db:   db,
		kind: kind,
		insertSQL: fmt.Sprintf("INSERT INTO %s (id, %s) VALUES ($1, %s) RETURNING %s",
			kind.Table, cols, strings.Join(inserts, ", "), returning),
		listSQL: fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at, id",
			returning, kind.Table),
		getSQL: fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
			returning, kind.Table),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE id = $1 RETURNING %s",
			kind.Table, strings.Join(sets, ", "), returning),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE id = $1", kind.Table),
	}
}

// Create inserts a record with the given id. Unsupplied fields are stored empty.
func (r *ResourceRepository[T, F]) Create(ctx context.Context, id string, fields F) (*T, error) {
	rec := new(T)
	if err := r.db.Pool.QueryRow(ctx, r.insertSQL, r.args(id, fields)...).Scan(r.kind.scanTargets(rec)...); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.kind.Label, err)
	}
	return rec, nil
}

// List returns every record in insertion order.
func (r *ResourceRepository[T, F]) List(ctx context.Context) ([]T, error) {
	rows, err := r.db.Pool.Query(ctx, r.listSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.kind.Table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var rec T
		if err := rows.Scan(r.kind.scanTargets(&rec)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.kind.Label, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get retrieves a record by id.
func (r *ResourceRepository[T, F]) Get(ctx context.Context, id string) (*T, error) {
	rec := new(T)
	err := r.db.Pool.QueryRow(ctx, r.getSQL, id).Scan(r.kind.scanTargets(rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", r.kind.Label, err)
	}
	return rec, nil
}

// Update overwrites the supplied fields in a single statement and returns
// the updated record. Unsupplied fields keep their stored value.
func (r *ResourceRepository[T, F]) Update(ctx context.Context, id string, fields F) (*T, error) {
	rec := new(T)
	err := r.db.Pool.QueryRow(ctx, r.updateSQL, r.args(id, fields)...).Scan(r.kind.scanTargets(rec)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.kind.Label, err)
	}
	return rec, nil
}

// Delete removes a record by id.
func (r *ResourceRepository[T, F]) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, r.deleteSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.kind.Label, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ResourceRepository[T, F]) args(id string, fields F) []any {
	values := r.kind.Values(fields)
	out := make([]any, 0, len(values)+1)
	out = append(out, id)
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
