package audit

import (
	"bytes"
	"context"
	"database/sql"

	"hrms-backend/internal/platform/db"
)

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter, p Page) ([]Entry, int64, error)
}

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

func (s *Store) Insert(ctx context.Context, e *Entry) error {
	const q = `
INSERT INTO audit_logs (id, actor, action, table_name, record_id, old_values, new_values, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, e.ID, e.Actor, e.Action, e.TableName, e.RecordID,
		rawOrNil(e.OldValues), rawOrNil(e.NewValues), e.CreatedAt)
	return err
}

func rawOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func (s *Store) List(ctx context.Context, f Filter, p Page) ([]Entry, int64, error) {
	var where bytes.Buffer
	args := []any{}
	where.WriteString(" WHERE 1=1")
	if f.TableName != "" {
		where.WriteString(" AND table_name = ?")
		args = append(args, f.TableName)
	}
	if f.RecordID != "" {
		where.WriteString(" AND record_id = ?")
		args = append(args, f.RecordID)
	}
	if f.Actor != "" {
		where.WriteString(" AND actor = ?")
		args = append(args, f.Actor)
	}
	if f.Action != "" {
		where.WriteString(" AND action = ?")
		args = append(args, f.Action)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT id, actor, action, table_name, record_id, old_values, new_values, created_at FROM audit_logs` +
		where.String() + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, q, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var oldV, newV sql.NullString
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.TableName, &e.RecordID, &oldV, &newV, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		if oldV.Valid {
			e.OldValues = []byte(oldV.String)
		}
		if newV.Valid {
			e.NewValues = []byte(newV.String)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}
