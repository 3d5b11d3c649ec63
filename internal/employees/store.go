package employees

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hrms-backend/internal/identity"
	"hrms-backend/internal/platform/db"
)

type Repository interface {
	ListBasic(ctx context.Context) ([]Basic, error)
	ListPage(ctx context.Context, q ListQuery) ([]Employee, int64, error)
	Stats(ctx context.Context) (*Stats, error)
	Get(ctx context.Context, id string) (*Employee, error)
	// GetByEmployeeID は大文字小文字を区別しない。無ければ nil, nil
	GetByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	Insert(ctx context.Context, e *Employee) error
	UpdateFields(ctx context.Context, id string, set map[string]any, at time.Time) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	CountAttendance(ctx context.Context, employeeID string) (int64, error)
	FindByEmployeeIDs(ctx context.Context, employeeIDs []string) ([]Basic, error)
	Candidates(ctx context.Context) ([]identity.Candidate, error)
}

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

func selectColumns() []string {
	cols := []string{"id", "employee_id"}
	for _, f := range Fields {
		cols = append(cols, f.Name)
	}
	return append(cols, "is_deletable", "created_at", "updated_at")
}

var employeeCols = strings.Join(selectColumns(), ", ")

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (*Employee, error) {
	var e Employee
	texts := make([]sql.NullString, len(Fields))
	dates := make([]sql.NullTime, len(Fields))

	dest := []any{&e.ID, &e.EmployeeID}
	for i, f := range Fields {
		if f.Kind == KindDate {
			dest = append(dest, &dates[i])
		} else {
			dest = append(dest, &texts[i])
		}
	}
	var deletable int
	dest = append(dest, &deletable, &e.CreatedAt, &e.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	for i, f := range Fields {
		p := e.Ptr(f.Name)
		if f.Kind == KindDate {
			if dates[i].Valid {
				*p = dates[i].Time.Format(dateLayout)
			}
		} else if texts[i].Valid {
			*p = texts[i].String
		}
	}
	e.IsDeletable = deletable != 0
	return &e, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) ListBasic(ctx context.Context) ([]Basic, error) {
	const q = `
SELECT id, employee_id, english_name, COALESCE(arabic_name, ''), COALESCE(position, ''), COALESCE(department, ''), status
FROM employees
WHERE deleted_at IS NULL
ORDER BY employee_id`
	return s.queryBasic(ctx, q)
}

func (s *Store) queryBasic(ctx context.Context, q string, args ...any) ([]Basic, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Basic, 0)
	for rows.Next() {
		var b Basic
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.EnglishName, &b.ArabicName, &b.Position, &b.Department, &b.Status); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ListPage(ctx context.Context, q ListQuery) ([]Employee, int64, error) {
	var where bytes.Buffer
	args := []any{}
	where.WriteString(" WHERE deleted_at IS NULL")

	if q.Search != "" {
		where.WriteString(" AND (employee_id LIKE ? OR english_name LIKE ? OR arabic_name LIKE ? OR position LIKE ?)")
		like := "%" + q.Search + "%"
		args = append(args, like, like, like, like)
	}
	if q.StatusFilter != "" && q.StatusFilter != "all" {
		where.WriteString(" AND status = ?")
		args = append(args, q.StatusFilter)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees"+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortable[q.SortField]
	if !ok {
		col = "employee_id"
	}
	dir := "ASC"
	if strings.EqualFold(q.SortDirection, "desc") {
		dir = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM employees%s ORDER BY %s %s, id LIMIT ? OFFSET ?", employeeCols, where.String(), col, dir)
	rows, err := s.db.QueryContext(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Employee, 0, q.Limit)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	const q = `
SELECT
  COUNT(*),
  COALESCE(SUM(status = 'active'), 0),
  COALESCE(SUM(status = 'inactive'), 0),
  COALESCE(SUM(status = 'pending'), 0)
FROM employees
WHERE deleted_at IS NULL`
	var st Stats
	if err := s.db.QueryRowContext(ctx, q).Scan(&st.Total, &st.Active, &st.Inactive, &st.Pending); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Employee, error) {
	q := "SELECT " + employeeCols + " FROM employees WHERE id = ? AND deleted_at IS NULL"
	return scanEmployee(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) GetByEmployeeID(ctx context.Context, employeeID string) (*Employee, error) {
	q := "SELECT " + employeeCols + " FROM employees WHERE LOWER(employee_id) = LOWER(?) AND deleted_at IS NULL LIMIT 1"
	e, err := scanEmployee(s.db.QueryRowContext(ctx, q, employeeID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (s *Store) Insert(ctx context.Context, e *Employee) error {
	cols := []string{"id", "employee_id"}
	args := []any{e.ID, e.EmployeeID}
	for _, f := range Fields {
		cols = append(cols, f.Name)
		args = append(args, nullIfEmpty(*e.Ptr(f.Name)))
	}
	deletable := 0
	if e.IsDeletable {
		deletable = 1
	}
	cols = append(cols, "is_deletable", "created_at", "updated_at")
	args = append(args, deletable, e.CreatedAt, e.UpdatedAt)

	q := fmt.Sprintf("INSERT INTO employees (%s) VALUES (?%s)",
		strings.Join(cols, ", "), strings.Repeat(", ?", len(cols)-1))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// UpdateFields: set のキーは呼び出し側で Fields に照合済みであること
func (s *Store) UpdateFields(ctx context.Context, id string, set map[string]any, at time.Time) error {
	sets := []string{}
	args := []any{}
	for _, f := range Fields {
		v, ok := set[f.Name]
		if !ok {
			continue
		}
		sets = append(sets, f.Name+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, at, id)

	q := fmt.Sprintf("UPDATE employees SET %s WHERE id = ? AND deleted_at IS NULL", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE employees SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, at, at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CountAttendance(ctx context.Context, employeeID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records WHERE employee_id = ?`, employeeID).Scan(&n)
	return n, err
}

func (s *Store) FindByEmployeeIDs(ctx context.Context, employeeIDs []string) ([]Basic, error) {
	if len(employeeIDs) == 0 {
		return []Basic{}, nil
	}
	args := make([]any, len(employeeIDs))
	for i, id := range employeeIDs {
		args[i] = id
	}
	q := `
SELECT id, employee_id, english_name, COALESCE(arabic_name, ''), COALESCE(position, ''), COALESCE(department, ''), status
FROM employees
WHERE deleted_at IS NULL AND employee_id IN (?` + strings.Repeat(", ?", len(args)-1) + `)`
	return s.queryBasic(ctx, q, args...)
}

func (s *Store) Candidates(ctx context.Context) ([]identity.Candidate, error) {
	const q = `
SELECT id, employee_id, english_name, COALESCE(arabic_name, '')
FROM employees
WHERE deleted_at IS NULL
ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]identity.Candidate, 0)
	for rows.Next() {
		var c identity.Candidate
		if err := rows.Scan(&c.ID, &c.EmployeeID, &c.EnglishName, &c.ArabicName); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
