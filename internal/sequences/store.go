package sequences

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hrms-backend/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context) ([]Sequence, error)
	GetByKey(ctx context.Context, key string) (*Sequence, error)
	// LockByKey は発番用に行ロックを取る
	LockByKey(ctx context.Context, key string) (*Sequence, error)
	Insert(ctx context.Context, s *Sequence) error
	Update(ctx context.Context, s *Sequence) error
	SetNext(ctx context.Context, id string, next int64, at time.Time) error
	Values(ctx context.Context, target string) ([]string, error)
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

const seqCols = `id, ` + "`key`" + `, description, prefix, separator_str, padding, suffix, next_number,
target_table, target_column, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSeq(row scanner) (*Sequence, error) {
	var (
		s                   Sequence
		desc, table, column sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Key, &desc, &s.Prefix, &s.Separator, &s.Padding, &s.Suffix, &s.NextNumber,
		&table, &column, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Description, s.TargetTable, s.TargetColumn = desc.String, table.String, column.String
	return &s, nil
}

func (s *Store) List(ctx context.Context) ([]Sequence, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+seqCols+" FROM id_sequences ORDER BY `key`")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Sequence, 0)
	for rows.Next() {
		seq, err := scanSeq(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *seq)
	}
	return out, rows.Err()
}

func (s *Store) GetByKey(ctx context.Context, key string) (*Sequence, error) {
	return scanSeq(s.db.QueryRowContext(ctx, "SELECT "+seqCols+" FROM id_sequences WHERE `key` = ?", key))
}

func (s *Store) LockByKey(ctx context.Context, key string) (*Sequence, error) {
	return scanSeq(s.db.QueryRowContext(ctx, "SELECT "+seqCols+" FROM id_sequences WHERE `key` = ? FOR UPDATE", key))
}

func (s *Store) Insert(ctx context.Context, q *Sequence) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO id_sequences (id, `+"`key`"+`, description, prefix, separator_str, padding, suffix, next_number,
 target_table, target_column, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Key, nullIfEmpty(q.Description), q.Prefix, q.Separator, q.Padding, q.Suffix, q.NextNumber,
		nullIfEmpty(q.TargetTable), nullIfEmpty(q.TargetColumn), q.IsActive, q.CreatedAt, q.UpdatedAt)
	return err
}

func (s *Store) Update(ctx context.Context, q *Sequence) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE id_sequences SET description = ?, prefix = ?, separator_str = ?, padding = ?, suffix = ?, next_number = ?,
 target_table = ?, target_column = ?, is_active = ?, updated_at = ?
WHERE id = ?`,
		nullIfEmpty(q.Description), q.Prefix, q.Separator, q.Padding, q.Suffix, q.NextNumber,
		nullIfEmpty(q.TargetTable), nullIfEmpty(q.TargetColumn), q.IsActive, q.UpdatedAt, q.ID)
	return err
}

func (s *Store) SetNext(ctx context.Context, id string, next int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE id_sequences SET next_number = ?, updated_at = ? WHERE id = ?", next, at, id)
	return err
}

// Values は検証対象列の値を返す。target は許可リストにあるものだけ
func (s *Store) Values(ctx context.Context, target string) ([]string, error) {
	q, ok := targets[target]
	if !ok {
		return nil, fmt.Errorf("unsupported target %q", target)
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0, 256)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
