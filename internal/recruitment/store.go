package recruitment

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"time"

	"hrms-backend/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Request, int64, error)
	Get(ctx context.Context, id string) (*Request, error)
	// GetForUpdate は遷移用に行ロックを取る
	GetForUpdate(ctx context.Context, id string) (*Request, error)
	Insert(ctx context.Context, r *Request) error
	Update(ctx context.Context, r *Request) error
	Delete(ctx context.Context, id string) error

	InsertActivity(ctx context.Context, a *Activity) error
	ListActivities(ctx context.Context, requestID string) ([]Activity, error)

	InsertCandidate(ctx context.Context, c *Candidate) error
	GetCandidate(ctx context.Context, id string) (*Candidate, error)
	ListCandidates(ctx context.Context, requestID string) ([]Candidate, error)
	SetCandidateStatus(ctx context.Context, id, status string, at time.Time) error

	InsertAssessment(ctx context.Context, a *Assessment) error
	ListAssessments(ctx context.Context, requestID string) ([]Assessment, error)

	InsertHiring(ctx context.Context, h *HiringRequest) error
	ListHiring(ctx context.Context, requestID string) ([]HiringRequest, error)
}

// Transactor: 依頼の更新と活動ログを 1 トランザクションで書く
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

const requestCols = `id, requested_by, position_title, department, cost_center, job_description,
required_qualifications, preferred_qualifications, salary_range_min, salary_range_max, vacancies,
DATE_FORMAT(expected_start_date, '%Y-%m-%d'), justification, headcount_increase, replacement_for, status,
submitted_at, hiring_manager_id, hiring_manager_approved_at, hiring_manager_comments, recruiter_id,
recruiter_assigned_at, recruitment_manager_id, recruitment_manager_approved_at, final_salary,
contract_details, hired_employee_id, hired_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*Request, error) {
	var r requestRow
	if err := row.Scan(&r.ID, &r.RequestedBy, &r.PositionTitle, &r.Department, &r.CostCenter, &r.JobDescription,
		&r.RequiredQual, &r.PreferredQual, &r.SalaryMin, &r.SalaryMax, &r.Vacancies,
		&r.ExpectedStart, &r.Justification, &r.HeadcountIncrease, &r.ReplacementFor, &r.Status,
		&r.SubmittedAt, &r.HMID, &r.HMApprovedAt, &r.HMComments, &r.RecruiterID,
		&r.RecruiterAssignedAt, &r.RMID, &r.RMApprovedAt, &r.FinalSalary,
		&r.ContractDetails, &r.HiredEmployeeID, &r.HiredAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]Request, int64, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)
	if q.Status != "" {
		wheres = append(wheres, "status = ?")
		args = append(args, q.Status)
	}
	if q.Department != "" {
		wheres = append(wheres, "department = ?")
		args = append(args, q.Department)
	}
	if q.RequestedBy != "" {
		wheres = append(wheres, "requested_by = ?")
		args = append(args, q.RequestedBy)
	}
	where := ""
	if len(wheres) > 0 {
		where = " WHERE " + strings.Join(wheres, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recruitment_requests"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	buf.WriteString("SELECT " + requestCols + " FROM recruitment_requests" + where)
	buf.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]Request, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (*Request, error) {
	return scanRequest(s.db.QueryRowContext(ctx, "SELECT "+requestCols+" FROM recruitment_requests WHERE id = ?", id))
}

func (s *Store) GetForUpdate(ctx context.Context, id string) (*Request, error) {
	return scanRequest(s.db.QueryRowContext(ctx, "SELECT "+requestCols+" FROM recruitment_requests WHERE id = ? FOR UPDATE", id))
}

func (s *Store) Insert(ctx context.Context, r *Request) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO recruitment_requests (id, requested_by, position_title, department, cost_center, job_description,
 required_qualifications, preferred_qualifications, salary_range_min, salary_range_max, vacancies,
 expected_start_date, justification, headcount_increase, replacement_for, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequestedBy, r.PositionTitle, r.Department, r.CostCenter, nullIfEmpty(r.JobDescription),
		nullIfEmpty(r.RequiredQualifications), nullIfEmpty(r.PreferredQualifications), floatOrNil(r.SalaryRangeMin),
		floatOrNil(r.SalaryRangeMax), r.Vacancies, strOrNil(r.ExpectedStartDate), nullIfEmpty(r.Justification),
		r.HeadcountIncrease, nullIfEmpty(r.ReplacementFor), r.Status, r.CreatedAt, r.UpdatedAt)
	return err
}

// Update は可変列をすべて書き戻す。存在確認は呼び出し側（GetForUpdate）で済ませる
func (s *Store) Update(ctx context.Context, r *Request) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE recruitment_requests SET position_title = ?, department = ?, cost_center = ?, job_description = ?,
 required_qualifications = ?, preferred_qualifications = ?, salary_range_min = ?, salary_range_max = ?,
 vacancies = ?, expected_start_date = ?, justification = ?, headcount_increase = ?, replacement_for = ?,
 status = ?, submitted_at = ?, hiring_manager_id = ?, hiring_manager_approved_at = ?, hiring_manager_comments = ?,
 recruiter_id = ?, recruiter_assigned_at = ?, recruitment_manager_id = ?, recruitment_manager_approved_at = ?,
 final_salary = ?, contract_details = ?, hired_employee_id = ?, hired_at = ?, updated_at = ?
WHERE id = ?`,
		r.PositionTitle, r.Department, r.CostCenter, nullIfEmpty(r.JobDescription),
		nullIfEmpty(r.RequiredQualifications), nullIfEmpty(r.PreferredQualifications), floatOrNil(r.SalaryRangeMin),
		floatOrNil(r.SalaryRangeMax), r.Vacancies, strOrNil(r.ExpectedStartDate), nullIfEmpty(r.Justification),
		r.HeadcountIncrease, nullIfEmpty(r.ReplacementFor),
		r.Status, timeOrNil(r.SubmittedAt), nullIfEmpty(r.HiringManagerID), timeOrNil(r.HiringManagerApprovedAt),
		nullIfEmpty(r.HiringManagerComments), nullIfEmpty(r.RecruiterID), timeOrNil(r.RecruiterAssignedAt),
		nullIfEmpty(r.RecruitmentManagerID), timeOrNil(r.RecruitmentManagerApprovedAt), floatOrNil(r.FinalSalary),
		nullIfEmpty(r.ContractDetails), nullIfEmpty(r.HiredEmployeeID), timeOrNil(r.HiredAt), r.UpdatedAt, r.ID)
	return err
}

// Delete は子テーブルごと消す（FK は ON DELETE CASCADE）
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recruitment_requests WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (s *Store) InsertActivity(ctx context.Context, a *Activity) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO recruitment_activities (id, recruitment_request_id, activity_type, activity_details,
 previous_status, new_status, performed_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RequestID, a.ActivityType, nullIfEmpty(a.Details), nullIfEmpty(a.PreviousStatus),
		nullIfEmpty(a.NewStatus), a.PerformedBy, a.CreatedAt)
	return err
}

func (s *Store) ListActivities(ctx context.Context, requestID string) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, recruitment_request_id, activity_type, activity_details, previous_status, new_status, performed_by, created_at
FROM recruitment_activities WHERE recruitment_request_id = ? ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Activity, 0)
	for rows.Next() {
		var (
			a                 Activity
			details, prv, nxt sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.RequestID, &a.ActivityType, &details, &prv, &nxt, &a.PerformedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Details, a.PreviousStatus, a.NewStatus = details.String, prv.String, nxt.String
		out = append(out, a)
	}
	return out, rows.Err()
}

const candidateCols = `id, request_id, full_name, email, phone, notes, status, created_by, created_at, updated_at`

func scanCandidate(row scanner) (*Candidate, error) {
	var (
		c                          Candidate
		email, phone, notes, actor sql.NullString
	)
	if err := row.Scan(&c.ID, &c.RequestID, &c.FullName, &email, &phone, &notes, &c.Status, &actor, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Email, c.Phone, c.Notes, c.CreatedBy = email.String, phone.String, notes.String, actor.String
	return &c, nil
}

func (s *Store) InsertCandidate(ctx context.Context, c *Candidate) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO recruitment_candidates (id, request_id, full_name, email, phone, notes, status, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RequestID, c.FullName, nullIfEmpty(c.Email), nullIfEmpty(c.Phone), nullIfEmpty(c.Notes),
		c.Status, nullIfEmpty(c.CreatedBy), c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *Store) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	return scanCandidate(s.db.QueryRowContext(ctx, "SELECT "+candidateCols+" FROM recruitment_candidates WHERE id = ?", id))
}

func (s *Store) ListCandidates(ctx context.Context, requestID string) ([]Candidate, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+candidateCols+" FROM recruitment_candidates WHERE request_id = ? ORDER BY created_at, id", requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) SetCandidateStatus(ctx context.Context, id, status string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE recruitment_candidates SET status = ?, updated_at = ? WHERE id = ?", status, at, id)
	return err
}

func (s *Store) InsertAssessment(ctx context.Context, a *Assessment) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO interview_assessments (id, recruitment_request_id, interviewer_id, candidate_id, candidate_name,
 candidate_email, candidate_phone, interview_date, technical_skills_score, communication_score, experience_score,
 cultural_fit_score, overall_score, additional_comments, recommendation, decision, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RequestID, a.InterviewerID, nullIfEmpty(a.CandidateID), a.CandidateName,
		nullIfEmpty(a.CandidateEmail), nullIfEmpty(a.CandidatePhone), strOrNil(a.InterviewDate),
		intOrNil(a.TechnicalScore), intOrNil(a.CommunicationScore), intOrNil(a.ExperienceScore),
		intOrNil(a.CulturalFitScore), floatOrNil(a.OverallScore), nullIfEmpty(a.Notes),
		nullIfEmpty(a.Recommendation), nullIfEmpty(a.Decision), a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *Store) ListAssessments(ctx context.Context, requestID string) ([]Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, recruitment_request_id, interviewer_id, candidate_id, candidate_name, candidate_email, candidate_phone,
 DATE_FORMAT(interview_date, '%Y-%m-%d'), technical_skills_score, communication_score, experience_score,
 cultural_fit_score, overall_score, additional_comments, recommendation, decision, created_at, updated_at
FROM interview_assessments WHERE recruitment_request_id = ? ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Assessment, 0)
	for rows.Next() {
		var (
			a                        Assessment
			cand, email, phone, date sql.NullString
			notes, rec, decision     sql.NullString
			tech, comm, exp, fit     sql.NullInt64
			overall                  sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.RequestID, &a.InterviewerID, &cand, &a.CandidateName, &email, &phone,
			&date, &tech, &comm, &exp, &fit, &overall, &notes, &rec, &decision, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.CandidateID, a.CandidateEmail, a.CandidatePhone = cand.String, email.String, phone.String
		a.InterviewDate = strPtr(date)
		a.TechnicalScore, a.CommunicationScore = intPtr(tech), intPtr(comm)
		a.ExperienceScore, a.CulturalFitScore = intPtr(exp), intPtr(fit)
		a.OverallScore = floatPtr(overall)
		a.Notes, a.Recommendation, a.Decision = notes.String, rec.String, decision.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) InsertHiring(ctx context.Context, h *HiringRequest) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO hiring_requests (id, recruitment_request_id, candidate_id, proposed_salary, proposed_start_date,
 justification, contract_details, status, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.RequestID, h.CandidateID, floatOrNil(h.ProposedSalary), strOrNil(h.ProposedStartDate),
		nullIfEmpty(h.Justification), nullIfEmpty(h.ContractDetails), h.Status, h.CreatedBy, h.CreatedAt, h.UpdatedAt)
	return err
}

func (s *Store) ListHiring(ctx context.Context, requestID string) ([]HiringRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, recruitment_request_id, candidate_id, proposed_salary, DATE_FORMAT(proposed_start_date, '%Y-%m-%d'),
 justification, contract_details, status, created_by, created_at, updated_at
FROM hiring_requests WHERE recruitment_request_id = ? ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]HiringRequest, 0)
	for rows.Next() {
		var (
			h                     HiringRequest
			salary                sql.NullFloat64
			start, just, contract sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.RequestID, &h.CandidateID, &salary, &start, &just, &contract,
			&h.Status, &h.CreatedBy, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		h.ProposedSalary, h.ProposedStartDate = floatPtr(salary), strPtr(start)
		h.Justification, h.ContractDetails = just.String, contract.String
		out = append(out, h)
	}
	return out, rows.Err()
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
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
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
