package masterdata

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"hrms-backend/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, k Kind, includeInactive bool) ([]Item, error)
	Get(ctx context.Context, k Kind, id string) (*Item, error)
	Insert(ctx context.Context, k Kind, it *Item) error
	Update(ctx context.Context, k Kind, it *Item) error
	Disable(ctx context.Context, k Kind, id string, at time.Time) error
	// StagingPositions: employees_staging.position の非 NULL 値
	StagingPositions(ctx context.Context) ([]string, error)
}

type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}

type sqlTransactor struct{ db *sql.DB }

func NewTransactor(d *sql.DB) Transactor { return sqlTransactor{db: d} }

func (t sqlTransactor) InTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	return db.RunInTx(ctx, t.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, NewStore(tx))
	})
}

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

// 種類ごとに存在しない列は NULL で埋めて同じ形で読む
func selectCols(k Kind) string {
	desc, dept := "NULL", "NULL"
	if k.HasDescription {
		desc = "description"
	}
	if k.HasDepartment {
		dept = "department_id"
	}
	return strings.Join([]string{"id", k.NameCol, "code", desc, dept, "is_active", "created_by", "created_at", "updated_at"}, ", ")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*Item, error) {
	var (
		it                          Item
		code, desc, dept, createdBy sql.NullString
	)
	if err := row.Scan(&it.ID, &it.Name, &code, &desc, &dept, &it.IsActive, &createdBy, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.Code, it.Description, it.DepartmentID, it.CreatedBy = code.String, desc.String, dept.String, createdBy.String
	return &it, nil
}

// GET /<kind>?all=1
func (s *Store) List(ctx context.Context, k Kind, includeInactive bool) ([]Item, error) {
	q := "SELECT " + selectCols(k) + " FROM " + k.Table
	if !includeInactive {
		q += " WHERE is_active = 1"
	}
	q += " ORDER BY " + k.NameCol + ", id"

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]Item, 0, 16)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) Get(ctx context.Context, k Kind, id string) (*Item, error) {
	return scanItem(s.db.QueryRowContext(ctx, "SELECT "+selectCols(k)+" FROM "+k.Table+" WHERE id = ?", id))
}

func (s *Store) Insert(ctx context.Context, k Kind, it *Item) error {
	cols := []string{"id", k.NameCol, "code", "is_active", "created_by", "created_at", "updated_at"}
	args := []any{it.ID, it.Name, nullIfEmpty(it.Code), it.IsActive, nullIfEmpty(it.CreatedBy), it.CreatedAt, it.UpdatedAt}
	if k.HasDescription {
		cols = append(cols, "description")
		args = append(args, nullIfEmpty(it.Description))
	}
	if k.HasDepartment {
		cols = append(cols, "department_id")
		args = append(args, nullIfEmpty(it.DepartmentID))
	}
	q := "INSERT INTO " + k.Table + " (" + strings.Join(cols, ", ") + ") VALUES (?" + strings.Repeat(", ?", len(cols)-1) + ")"
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) Update(ctx context.Context, k Kind, it *Item) error {
	sets := []string{k.NameCol + " = ?", "code = ?", "is_active = ?", "updated_at = ?"}
	args := []any{it.Name, nullIfEmpty(it.Code), it.IsActive, it.UpdatedAt}
	if k.HasDescription {
		sets = append(sets, "description = ?")
		args = append(args, nullIfEmpty(it.Description))
	}
	if k.HasDepartment {
		sets = append(sets, "department_id = ?")
		args = append(args, nullIfEmpty(it.DepartmentID))
	}
	args = append(args, it.ID)
	_, err := s.db.ExecContext(ctx, "UPDATE "+k.Table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return err
}

// DELETE: is_active=0 にする。存在確認は呼び出し側で済ませる
func (s *Store) Disable(ctx context.Context, k Kind, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE "+k.Table+" SET is_active = 0, updated_at = ? WHERE id = ?", at, id)
	return err
}

func (s *Store) StagingPositions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT position FROM employees_staging WHERE position IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
