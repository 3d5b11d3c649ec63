package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hrms-backend/internal/platform/db"
	"hrms-backend/internal/rawattendance"
)

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Record, int64, error)
	Get(ctx context.Context, id string) (*Record, error)
	// FindByDay: 該当なしは nil, nil
	FindByDay(ctx context.Context, employeeID, date string) (*Record, error)
	Upsert(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id string) error
	Range(ctx context.Context, from, to string) ([]Record, error)
	SetApproval(ctx context.Context, ids []string, status string, at time.Time) (int64, error)
	CountActiveEmployees(ctx context.Context) (int64, error)

	ListRules(ctx context.Context, activeOnly bool) ([]Rule, error)
	GetRule(ctx context.Context, id string) (*Rule, error)
	InsertRule(ctx context.Context, r *Rule) error
	UpdateRule(ctx context.Context, r *Rule) error
	DeleteRule(ctx context.Context, id string) error
}

// RawEvents: 生打刻側の操作（*rawattendance.Store が満たす）
type RawEvents interface {
	ListUnprocessed(ctx context.Context, from, to time.Time) ([]rawattendance.Event, error)
	MarkProcessed(ctx context.Context, ids []string, status string, at time.Time) (int64, error)
	SetMatch(ctx context.Context, id, status, employeeUUID string, at time.Time) error
}

// Transactor: 勤怠の upsert と生打刻の処理済み化を 1 トランザクションで行う
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, r Repository, raw RawEvents) error) error
}

type sqlTransactor struct{ db *sql.DB }

func NewTransactor(d *sql.DB) Transactor { return sqlTransactor{db: d} }

func (t sqlTransactor) InTx(ctx context.Context, fn func(ctx context.Context, r Repository, raw RawEvents) error) error {
	return db.RunInTx(ctx, t.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, NewStore(tx), rawattendance.NewStore(tx))
	})
}

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

const recordCols = `r.id, r.employee_id, e.employee_id, e.english_name, DATE_FORMAT(r.date, '%Y-%m-%d'),
r.clock_in, r.clock_out, r.in_terminal_id, r.out_terminal_id, r.punch_count, r.total_hours, r.status,
r.approval_status, r.is_confirmed, r.source_type, r.notes, r.raw_ids, r.created_at, r.updated_at`

const recordFrom = ` FROM attendance_records r LEFT JOIN employees e ON e.id = r.employee_id`

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	var r recordRow
	if err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeCode, &r.EmployeeName, &r.Date,
		&r.ClockIn, &r.ClockOut, &r.InTerminal, &r.OutTerminal, &r.PunchCount, &r.TotalHours, &r.Status,
		&r.ApprovalStatus, &r.IsConfirmed, &r.SourceType, &r.Notes, &r.RawIDs, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()
	out := make([]Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// List: 条件に応じて動的WHERE + ORDER + LIMIT/OFFSET
func (s *Store) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)
	if q.EmployeeID != "" {
		wheres = append(wheres, "r.employee_id = ?")
		args = append(args, q.EmployeeID)
	}
	if q.Status != "" {
		wheres = append(wheres, "r.status = ?")
		args = append(args, q.Status)
	}
	if q.From != "" {
		wheres = append(wheres, "r.date >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		wheres = append(wheres, "r.date <= ?")
		args = append(args, q.To)
	}
	where := ""
	if len(wheres) > 0 {
		where = " WHERE " + strings.Join(wheres, " AND ")
	}

	buf.WriteString("SELECT " + recordCols + recordFrom + where)
	switch q.Sort {
	case SortDateAsc:
		buf.WriteString(" ORDER BY r.date ASC, r.clock_in ASC, r.id ASC")
	case SortClockInAsc:
		buf.WriteString(" ORDER BY r.clock_in ASC, r.id ASC")
	case SortClockInDesc:
		buf.WriteString(" ORDER BY r.clock_in DESC, r.id DESC")
	default:
		buf.WriteString(" ORDER BY r.date DESC, r.clock_in ASC, r.id ASC")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(q.Offset, 0)))

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_records r"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx, "SELECT "+recordCols+recordFrom+" WHERE r.id = ?", id))
}

func (s *Store) FindByDay(ctx context.Context, employeeID, date string) (*Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx,
		"SELECT "+recordCols+recordFrom+" WHERE r.employee_id = ? AND r.date = ? FOR UPDATE", employeeID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// Upsert: employee_id + date（UNIQUE）でINSERTまたはUPDATE。既存行の id は変えない
func (s *Store) Upsert(ctx context.Context, r *Record) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO attendance_records
  (id, employee_id, date, clock_in, clock_out, in_terminal_id, out_terminal_id, punch_count, total_hours,
   status, approval_status, is_confirmed, source_type, notes, raw_ids, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  clock_in        = VALUES(clock_in),
  clock_out       = VALUES(clock_out),
  in_terminal_id  = VALUES(in_terminal_id),
  out_terminal_id = VALUES(out_terminal_id),
  punch_count     = VALUES(punch_count),
  total_hours     = VALUES(total_hours),
  status          = VALUES(status),
  raw_ids         = VALUES(raw_ids),
  updated_at      = VALUES(updated_at)`,
		r.ID, r.EmployeeID, r.Date, timeOrNil(r.ClockIn), timeOrNil(r.ClockOut), nullIfEmpty(r.InTerminal),
		nullIfEmpty(r.OutTerminal), r.PunchCount, floatOrNil(r.TotalHours), r.Status, r.ApprovalStatus,
		r.IsConfirmed, r.SourceType, nullIfEmpty(r.Notes), idsOrNil(r.RawIDs), r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *Store) Update(ctx context.Context, r *Record) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE attendance_records
SET clock_in = ?, clock_out = ?, in_terminal_id = ?, out_terminal_id = ?, punch_count = ?, total_hours = ?,
    status = ?, approval_status = ?, is_confirmed = ?, notes = ?, updated_at = ?
WHERE id = ?`,
		timeOrNil(r.ClockIn), timeOrNil(r.ClockOut), nullIfEmpty(r.InTerminal), nullIfEmpty(r.OutTerminal),
		r.PunchCount, floatOrNil(r.TotalHours), r.Status, r.ApprovalStatus, r.IsConfirmed, nullIfEmpty(r.Notes),
		r.UpdatedAt, r.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "attendance_records", id)
}

// Range: from..to（両端含む）の全記録
func (s *Store) Range(ctx context.Context, from, to string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+recordCols+recordFrom+`
WHERE r.date BETWEEN ? AND ? ORDER BY r.date, e.employee_id, r.id`, from, to)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows)
}

func (s *Store) SetApproval(ctx context.Context, ids []string, status string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := []any{status, at}
	for _, id := range ids {
		args = append(args, id)
	}
	q := `UPDATE attendance_records SET approval_status = ?, updated_at = ?
WHERE is_confirmed = FALSE AND id IN (?` + strings.Repeat(", ?", len(ids)-1) + ")"
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) CountActiveEmployees(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM employees WHERE status = 'active' AND deleted_at IS NULL").Scan(&n)
	return n, err
}

// ===== business rules =====

const ruleCols = `id, rule_type, name, parameters, is_active, DATE_FORMAT(effective_from, '%Y-%m-%d'),
DATE_FORMAT(effective_to, '%Y-%m-%d'), COALESCE(created_by, ''), created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }) (*Rule, error) {
	var (
		r      Rule
		params []byte
		to     sql.NullString
	)
	if err := row.Scan(&r.ID, &r.RuleType, &r.Name, &params, &r.IsActive, &r.EffectiveFrom, &to,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if len(params) > 0 {
		r.Parameters = params
	}
	if to.Valid {
		r.EffectiveTo = &to.String
	}
	return &r, nil
}

func (s *Store) ListRules(ctx context.Context, activeOnly bool) ([]Rule, error) {
	q := "SELECT " + ruleCols + " FROM attendance_business_rules"
	if activeOnly {
		q += " WHERE is_active = TRUE"
	}
	rows, err := s.db.QueryContext(ctx, q+" ORDER BY rule_type, effective_from DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Rule, 0)
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) GetRule(ctx context.Context, id string) (*Rule, error) {
	return scanRule(s.db.QueryRowContext(ctx, "SELECT "+ruleCols+" FROM attendance_business_rules WHERE id = ?", id))
}

func (s *Store) InsertRule(ctx context.Context, r *Rule) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO attendance_business_rules
  (id, rule_type, name, parameters, is_active, effective_from, effective_to, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RuleType, r.Name, jsonOrNil(r.Parameters), r.IsActive, r.EffectiveFrom, strOrNil(r.EffectiveTo),
		nullIfEmpty(r.CreatedBy), r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *Store) UpdateRule(ctx context.Context, r *Rule) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE attendance_business_rules
SET rule_type = ?, name = ?, parameters = ?, is_active = ?, effective_from = ?, effective_to = ?, updated_at = ?
WHERE id = ?`,
		r.RuleType, r.Name, jsonOrNil(r.Parameters), r.IsActive, r.EffectiveFrom, strOrNil(r.EffectiveTo),
		r.UpdatedAt, r.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	return deleteByID(ctx, s.db, "attendance_business_rules", id)
}

// ===== helpers =====

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

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return nullIfEmpty(*s)
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func idsOrNil(ids []string) any {
	if len(ids) == 0 {
		return nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil
	}
	return string(b)
}

func jsonOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
