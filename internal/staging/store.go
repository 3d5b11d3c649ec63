package staging

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hrms-backend/internal/employees"
	"hrms-backend/internal/platform/db"
)

type Repository interface {
	BulkCreate(ctx context.Context, recs []Record) (int, error)
	List(ctx context.Context, q ListQuery) ([]Record, int64, error)
	ListAll(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, id string, fields map[string]string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// EmployeeWriter: 昇格に必要な employees 側の操作
type EmployeeWriter interface {
	GetByEmployeeID(ctx context.Context, employeeID string) (*employees.Employee, error)
	Insert(ctx context.Context, e *employees.Employee) error
}

// RawSource: 一括昇格で参照する生打刻と user_id マッピング
type RawSource interface {
	ListRawIdentities(ctx context.Context) ([]RawIdentity, error)
	ListMappingPairs(ctx context.Context) ([]RawIdentity, error)
}

type Repos struct {
	Staging   Repository
	Employees EmployeeWriter
}

// Transactor は staging と employees を同一トランザクションで扱う
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

type sqlTransactor struct{ db *sql.DB }

func NewTransactor(d *sql.DB) Transactor { return sqlTransactor{db: d} }

func (t sqlTransactor) InTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return db.RunInTx(ctx, t.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, Repos{Staging: NewStore(tx), Employees: employees.NewStore(tx)})
	})
}

type Store struct{ db db.DBTX }

func NewStore(d db.DBTX) *Store { return &Store{db: d} }

func columns() []string {
	cols := []string{"id", "employee_id"}
	for _, f := range employees.Fields {
		cols = append(cols, f.Name)
	}
	return append(cols, "created_at", "updated_at")
}

var stagingCols = strings.Join(columns(), ", ")

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	r := Record{Fields: map[string]string{}}
	vals := make([]sql.NullString, len(employees.Fields))
	var empID sql.NullString
	dest := []any{&r.ID, &empID}
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	dest = append(dest, &r.CreatedAt, &r.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	r.EmployeeID = empID.String
	for i, f := range employees.Fields {
		if vals[i].Valid && vals[i].String != "" {
			r.Fields[f.Name] = vals[i].String
		}
	}
	return &r, nil
}

func (s *Store) BulkCreate(ctx context.Context, recs []Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	cols := columns()
	ph := "(?" + strings.Repeat(", ?", len(cols)-1) + ")"

	var q bytes.Buffer
	fmt.Fprintf(&q, "INSERT INTO employees_staging (%s) VALUES ", strings.Join(cols, ", "))
	args := make([]any, 0, len(recs)*len(cols))
	for i, r := range recs {
		if i > 0 {
			q.WriteString(", ")
		}
		q.WriteString(ph)
		args = append(args, r.ID, nullable(r.EmployeeID))
		for _, f := range employees.Fields {
			args = append(args, nullable(r.Fields[f.Name]))
		}
		args = append(args, r.CreatedAt, r.UpdatedAt)
	}
	res, err := s.db.ExecContext(ctx, q.String(), args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	var where bytes.Buffer
	args := []any{}
	where.WriteString(" WHERE 1=1")
	if q.Search != "" {
		where.WriteString(" AND (employee_id LIKE ? OR english_name LIKE ? OR arabic_name LIKE ?)")
		like := "%" + q.Search + "%"
		args = append(args, like, like, like)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees_staging"+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + stagingCols + " FROM employees_staging" + where.String() + " ORDER BY created_at, id LIMIT ? OFFSET ?"
	out, err := s.query(ctx, query, append(args, q.Limit, q.Offset)...)
	return out, total, err
}

func (s *Store) ListAll(ctx context.Context) ([]Record, error) {
	return s.query(ctx, "SELECT "+stagingCols+" FROM employees_staging ORDER BY created_at, id")
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
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

func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx, "SELECT "+stagingCols+" FROM employees_staging WHERE id = ?", id))
}

func (s *Store) Update(ctx context.Context, id string, fields map[string]string, at time.Time) error {
	sets := []string{}
	args := []any{}
	if v, ok := fields["employee_id"]; ok {
		sets = append(sets, "employee_id = ?")
		args = append(args, nullable(v))
	}
	for _, f := range employees.Fields {
		if v, ok := fields[f.Name]; ok {
			sets = append(sets, f.Name+" = ?")
			args = append(args, nullable(v))
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, at, id)

	res, err := s.db.ExecContext(ctx, "UPDATE employees_staging SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM employees_staging WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
