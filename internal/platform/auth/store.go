package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Account struct {
	ID           string    `json:"id"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	DisplayName  string    `json:"display_name"`
	IsDisabled   bool      `json:"is_disabled"`
	CreatedAt    time.Time `json:"created_at"`
}

type AccountStore interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) (int64, error)
	UpdateRole(ctx context.Context, id, role string) (int64, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

// profiles と user_roles を結合してアカウントを返す。無ければ nil
func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `
SELECT p.id, p.password_hash, COALESCE(ur.role, 'employee'), p.display_name, p.is_disabled, p.created_at
FROM profiles p
LEFT JOIN user_roles ur ON ur.user_id = p.id
WHERE p.id = ?
LIMIT 1
`
	var a Account
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID,
		&a.PasswordHash,
		&a.Role,
		&a.DisplayName,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.IsDisabled = isDisabledInt != 0
	return &a, nil
}

func (s *Store) List(ctx context.Context) ([]Account, error) {
	const q = `
SELECT p.id, COALESCE(ur.role, 'employee'), p.display_name, p.is_disabled, p.created_at
FROM profiles p
LEFT JOIN user_roles ur ON ur.user_id = p.id
ORDER BY p.created_at
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Account, 0)
	for rows.Next() {
		var a Account
		var dis int
		if err := rows.Scan(&a.ID, &a.Role, &a.DisplayName, &dis, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.IsDisabled = dis != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO profiles (id, password_hash, display_name, is_disabled, created_at)
VALUES (?, ?, ?, 0, NOW(6))`, a.ID, a.PasswordHash, a.DisplayName); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES (?, ?)`, a.ID, a.Role); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	// user_roles は ON DELETE CASCADE
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateRole(ctx context.Context, id, role string) (int64, error) {
	const q = `
INSERT INTO user_roles (user_id, role) VALUES (?, ?)
ON DUPLICATE KEY UPDATE role = VALUES(role)
`
	res, err := s.db.ExecContext(ctx, q, id, role)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) SetDisabled(ctx context.Context, id string, disabled bool) (int64, error) {
	v := 0
	if disabled {
		v = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE profiles SET is_disabled = ? WHERE id = ?`, v, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
