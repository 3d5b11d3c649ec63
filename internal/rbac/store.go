package rbac

import (
	"context"

	"hrms-backend/internal/platform/db"
)

type Grant struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
}

type Repository interface {
	LoadAll(ctx context.Context) ([]Grant, error)
	Add(ctx context.Context, g Grant) error
	Remove(ctx context.Context, g Grant) error
}

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

func (s *Store) LoadAll(ctx context.Context) ([]Grant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role, permission FROM role_permissions ORDER BY role, permission`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Grant, 0)
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.Role, &g.Permission); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) Add(ctx context.Context, g Grant) error {
	_, err := s.db.ExecContext(ctx, `INSERT IGNORE INTO role_permissions (role, permission) VALUES (?, ?)`, g.Role, g.Permission)
	return err
}

func (s *Store) Remove(ctx context.Context, g Grant) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM role_permissions WHERE role = ? AND permission = ?`, g.Role, g.Permission)
	return err
}
