package rawattendance

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"time"

	"hrms-backend/internal/platform/db"
	"hrms-backend/internal/staging"
)

type Repository interface {
	InsertEvents(ctx context.Context, evs []Event) (int, error)
	List(ctx context.Context, f Filter) ([]Event, int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	UpdateEmployeeIDByUser(ctx context.Context, userID, employeeID string, at time.Time) (int64, error)
	SetMatch(ctx context.Context, id, status, employeeUUID string, at time.Time) error
	ListUnprocessed(ctx context.Context, from, to time.Time) ([]Event, error)
	MarkProcessed(ctx context.Context, ids []string, status string, at time.Time) (int64, error)
	Counts(ctx context.Context, from, to *time.Time) (total, processed int64, err error)
	Recent(ctx context.Context, limit int) ([]Activity, error)

	ListMappings(ctx context.Context) ([]Mapping, error)
	InsertMapping(ctx context.Context, m *Mapping) error
	DeleteMapping(ctx context.Context, id string) error

	ListTerminals(ctx context.Context) ([]Terminal, error)
	GetTerminal(ctx context.Context, id string) (*Terminal, error)
	InsertTerminal(ctx context.Context, t *Terminal) error
	UpdateTerminal(ctx context.Context, t *Terminal) error
	DeleteTerminal(ctx context.Context, id string) error
}

// Transactor: 複数行の付け替えを 1 トランザクションで行う
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

const eventCols = `id, user_id, employee_id, COALESCE(employee_uuid, ''), name, clocking_time,
COALESCE(terminal_description, ''), processed, COALESCE(match_status, ''), created_at, updated_at`

func scanEvents(rows *sql.Rows) ([]Event, error) {
	defer rows.Close()
	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.EmployeeID, &e.EmployeeUUID, &e.Name, &e.ClockingTime,
			&e.Terminal, &e.Processed, &e.MatchStatus, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return "?" + strings.Repeat(", ?", n-1)
}

const insertChunk = 500

// InsertEvents は複数行 INSERT を insertChunk 件ずつ発行する
func (s *Store) InsertEvents(ctx context.Context, evs []Event) (int, error) {
	n := 0
	for start := 0; start < len(evs); start += insertChunk {
		end := min(start+insertChunk, len(evs))
		var buf bytes.Buffer
		buf.WriteString(`INSERT INTO raw_attendance_data
(id, user_id, employee_id, name, clocking_time, terminal_description, processed, created_at, updated_at) VALUES `)
		args := make([]any, 0, (end-start)*9)
		for i, e := range evs[start:end] {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString("(" + placeholders(9) + ")")
			args = append(args, e.ID, e.UserID, e.EmployeeID, e.Name, e.ClockingTime.UTC(),
				nullIfEmpty(e.Terminal), e.Processed, e.CreatedAt, e.UpdatedAt)
		}
		if _, err := s.db.ExecContext(ctx, buf.String(), args...); err != nil {
			return n, err
		}
		n += end - start
	}
	return n, nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]Event, int64, error) {
	var (
		where  bytes.Buffer
		args   []any
		wheres []string
	)
	if f.Processed != nil {
		wheres = append(wheres, "processed = ?")
		args = append(args, *f.Processed)
	}
	if f.From != nil {
		wheres = append(wheres, "clocking_time >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		wheres = append(wheres, "clocking_time <= ?")
		args = append(args, f.To.UTC())
	}
	if f.UserID != "" {
		wheres = append(wheres, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.EmployeeID != "" {
		wheres = append(wheres, "employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.MatchStatus != "" {
		wheres = append(wheres, "match_status = ?")
		args = append(args, f.MatchStatus)
	}
	if len(wheres) > 0 {
		where.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM raw_attendance_data"+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := "SELECT " + eventCols + " FROM raw_attendance_data" + where.String() +
		" ORDER BY created_at DESC, clocking_time DESC, id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	evs, err := scanEvents(rows)
	return evs, total, err
}

func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM raw_attendance_data`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) UpdateEmployeeIDByUser(ctx context.Context, userID, employeeID string, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE raw_attendance_data
SET employee_id = ?, employee_uuid = NULL, match_status = NULL, updated_at = ?
WHERE user_id = ?`, employeeID, at, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) SetMatch(ctx context.Context, id, status, employeeUUID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE raw_attendance_data SET match_status = ?, employee_uuid = ?, updated_at = ? WHERE id = ?`,
		nullIfEmpty(status), nullIfEmpty(employeeUUID), at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListUnprocessed: [from, to) の未処理打刻を時刻順に返す
func (s *Store) ListUnprocessed(ctx context.Context, from, to time.Time) ([]Event, error) {
	q := "SELECT " + eventCols + ` FROM raw_attendance_data
WHERE processed = FALSE AND clocking_time >= ? AND clocking_time < ?
ORDER BY clocking_time, id`
	rows, err := s.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// MarkProcessed は ids を処理済みにし、status が空でなければ match_status も更新する
func (s *Store) MarkProcessed(ctx context.Context, ids []string, status string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var total int64
	for start := 0; start < len(ids); start += insertChunk {
		end := min(start+insertChunk, len(ids))
		args := []any{nullIfEmpty(status), at}
		for _, id := range ids[start:end] {
			args = append(args, id)
		}
		q := `UPDATE raw_attendance_data
SET processed = TRUE, match_status = COALESCE(?, match_status), updated_at = ?
WHERE id IN (` + placeholders(end-start) + `)`
		res, err := s.db.ExecContext(ctx, q, args...)
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

func (s *Store) Counts(ctx context.Context, from, to *time.Time) (int64, int64, error) {
	var where bytes.Buffer
	args := []any{}
	where.WriteString(" WHERE 1 = 1")
	if from != nil {
		where.WriteString(" AND clocking_time >= ?")
		args = append(args, from.UTC())
	}
	if to != nil {
		where.WriteString(" AND clocking_time <= ?")
		args = append(args, to.UTC())
	}
	var total, processed int64
	q := "SELECT COUNT(*), COALESCE(SUM(processed = TRUE), 0) FROM raw_attendance_data" + where.String()
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&total, &processed); err != nil {
		return 0, 0, err
	}
	return total, processed, nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT created_at, processed, employee_id FROM raw_attendance_data
ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Activity, 0, limit)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.CreatedAt, &a.Processed, &a.EmployeeID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ===== staging.RawSource =====

func (s *Store) ListRawIdentities(ctx context.Context) ([]staging.RawIdentity, error) {
	return s.pairs(ctx, `SELECT DISTINCT user_id, employee_id FROM raw_attendance_data`)
}

func (s *Store) ListMappingPairs(ctx context.Context) ([]staging.RawIdentity, error) {
	return s.pairs(ctx, `SELECT user_id, employee_id FROM user_id_mapping ORDER BY created_at, id`)
}

func (s *Store) pairs(ctx context.Context, q string) ([]staging.RawIdentity, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]staging.RawIdentity, 0)
	for rows.Next() {
		var p staging.RawIdentity
		if err := rows.Scan(&p.UserID, &p.EmployeeID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ===== user_id_mapping =====

func (s *Store) ListMappings(ctx context.Context) ([]Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT m.id, m.user_id, m.employee_id, COALESCE(e.english_name, ''), m.created_at, m.updated_at
FROM user_id_mapping m
LEFT JOIN employees e ON e.employee_id = m.employee_id AND e.deleted_at IS NULL
ORDER BY m.created_at DESC, m.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Mapping, 0)
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ID, &m.UserID, &m.EmployeeID, &m.EmployeeName, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) InsertMapping(ctx context.Context, m *Mapping) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_id_mapping (id, user_id, employee_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.EmployeeID, m.CreatedAt, m.UpdatedAt)
	return err
}

func (s *Store) DeleteMapping(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "user_id_mapping", id)
}

// ===== terminals =====

const terminalCols = `id, terminal_uid, terminal_name, COALESCE(location, ''), COALESCE(connection_method, ''),
COALESCE(site_admin_name, ''), is_active, created_at, updated_at`

func scanTerminal(row interface{ Scan(...any) error }) (*Terminal, error) {
	var t Terminal
	if err := row.Scan(&t.ID, &t.TerminalUID, &t.TerminalName, &t.Location, &t.ConnectionMethod,
		&t.SiteAdminName, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTerminals(ctx context.Context) ([]Terminal, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+terminalCols+" FROM terminals ORDER BY terminal_name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Terminal, 0)
	for rows.Next() {
		t, err := scanTerminal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) GetTerminal(ctx context.Context, id string) (*Terminal, error) {
	return scanTerminal(s.db.QueryRowContext(ctx, "SELECT "+terminalCols+" FROM terminals WHERE id = ?", id))
}

func (s *Store) InsertTerminal(ctx context.Context, t *Terminal) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO terminals (id, terminal_uid, terminal_name, location, connection_method, site_admin_name, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TerminalUID, t.TerminalName, nullIfEmpty(t.Location), nullIfEmpty(t.ConnectionMethod),
		nullIfEmpty(t.SiteAdminName), t.IsActive, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *Store) UpdateTerminal(ctx context.Context, t *Terminal) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE terminals
SET terminal_name = ?, location = ?, connection_method = ?, site_admin_name = ?, is_active = ?, updated_at = ?
WHERE id = ?`,
		t.TerminalName, nullIfEmpty(t.Location), nullIfEmpty(t.ConnectionMethod), nullIfEmpty(t.SiteAdminName),
		t.IsActive, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteTerminal(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "terminals", id)
}

func deleteByID(ctx context.Context, d db.DBTX, table, id string) error {
	res, err := d.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
