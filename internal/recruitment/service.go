package recruitment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
)

const table = "recruitment_requests"

// 遷移名（URL の末尾にもそのまま使う）
const (
	ActionSubmit            = "submit"
	ActionHMApprove         = "hm-approve"
	ActionHMReject          = "hm-reject"
	ActionAssignRecruiter   = "assign-recruiter"
	ActionStart             = "start"
	ActionRequestRMApproval = "request-rm-approval"
	ActionRMApprove         = "rm-approve"
	ActionReject            = "reject"
	ActionHire              = "hire"
	ActionSetStatus         = "status"
)

// 承認系の遷移は recruitment.approve が必要
var approvalActions = map[string]bool{
	ActionHMApprove: true, ActionHMReject: true, ActionRMApprove: true, ActionReject: true,
}

// 内容を編集できるステータス
var editable = map[string]bool{StatusDraft: true, StatusRejectedByHiringManager: true}

type Deps struct {
	Repo      Repository
	Tx        Transactor
	Clock     ids.Clock
	IDs       ids.IDGen
	Audit     audit.Recorder
	Publisher realtime.Publisher
}

type Service struct {
	repo  Repository
	tx    Transactor
	clock ids.Clock
	id    ids.IDGen
	audit audit.Recorder
	pub   realtime.Publisher
}

func NewService(d Deps) *Service {
	return &Service{repo: d.Repo, tx: d.Tx, clock: d.Clock, id: d.IDs, audit: d.Audit, pub: d.Publisher}
}

func (s *Service) publish(op realtime.Op, r *Request, old *Request) {
	ev := realtime.Event{Table: table, Op: op, UpdatedAt: s.clock.Now()}
	if r != nil {
		ev.RecordID, ev.Row, ev.UpdatedAt = r.ID, r, r.UpdatedAt
	}
	if old != nil {
		ev.Old = old
		if ev.RecordID == "" {
			ev.RecordID = old.ID
		}
	}
	s.pub.Publish(ev)
}

func (s *Service) activity(ctx context.Context, repo Repository, actor, requestID, typ, details, prev, next string, at time.Time) error {
	id, err := s.id.New()
	if err != nil {
		return apperr.Internal("failed to generate id")
	}
	return repo.InsertActivity(ctx, &Activity{
		ID: id, RequestID: requestID, ActivityType: typ, Details: details,
		PreviousStatus: prev, NewStatus: next, PerformedBy: actor, CreatedAt: at,
	})
}

// ===== requests =====

func (s *Service) List(ctx context.Context, q ListQuery) ([]Request, int64, error) {
	if q.Status != "" && !ValidStatus(q.Status) {
		return nil, 0, apperr.Invalid("unknown recruitment status: " + q.Status)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	out, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Classify(err)
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return r, nil
}

// Detail は依頼と活動履歴・候補者・面接評価・雇用申請をまとめて返す
func (s *Service) Detail(ctx context.Context, id string) (*Detail, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Request: r}
	if d.Activities, err = s.repo.ListActivities(ctx, id); err != nil {
		return nil, apperr.Classify(err)
	}
	if d.Candidates, err = s.repo.ListCandidates(ctx, id); err != nil {
		return nil, apperr.Classify(err)
	}
	if d.Assessments, err = s.repo.ListAssessments(ctx, id); err != nil {
		return nil, apperr.Classify(err)
	}
	if d.Hiring, err = s.repo.ListHiring(ctx, id); err != nil {
		return nil, apperr.Classify(err)
	}
	return d, nil
}

// apply は入力のうち非 nil の項目だけを r に反映し、結果を検証する
func apply(r *Request, in RequestInput) []employees.FieldError {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = employees.Sanitize(*v)
		}
	}
	set(&r.PositionTitle, in.PositionTitle)
	set(&r.Department, in.Department)
	set(&r.CostCenter, in.CostCenter)
	set(&r.JobDescription, in.JobDescription)
	set(&r.RequiredQualifications, in.RequiredQualifications)
	set(&r.PreferredQualifications, in.PreferredQualifications)
	set(&r.Justification, in.Justification)
	set(&r.ReplacementFor, in.ReplacementFor)
	if in.SalaryRangeMin != nil {
		r.SalaryRangeMin = in.SalaryRangeMin
	}
	if in.SalaryRangeMax != nil {
		r.SalaryRangeMax = in.SalaryRangeMax
	}
	if in.Vacancies != nil {
		r.Vacancies = *in.Vacancies
	}
	if in.HeadcountIncrease != nil {
		r.HeadcountIncrease = *in.HeadcountIncrease
	}

	var errs []employees.FieldError
	if in.ExpectedStartDate != nil {
		d, ok := employees.NormalizeDate(*in.ExpectedStartDate)
		switch {
		case !ok:
			errs = append(errs, employees.FieldError{Field: "expected_start_date", Message: apperr.MsgInvalidDate})
		case d == "":
			r.ExpectedStartDate = nil
		default:
			r.ExpectedStartDate = &d
		}
	}
	required := []struct{ field, v string }{
		{"position_title", r.PositionTitle},
		{"department", r.Department},
		{"cost_center", r.CostCenter},
	}
	for _, f := range required {
		if f.v == "" {
			errs = append(errs, employees.FieldError{Field: f.field, Message: f.field + " is required"})
		}
	}
	if r.Vacancies < 1 {
		errs = append(errs, employees.FieldError{Field: "vacancies", Message: "vacancies must be at least 1"})
	}
	for _, f := range []struct {
		field string
		v     *float64
	}{{"salary_range_min", r.SalaryRangeMin}, {"salary_range_max", r.SalaryRangeMax}} {
		if f.v != nil && *f.v < 0 {
			errs = append(errs, employees.FieldError{Field: f.field, Message: f.field + " must not be negative"})
		}
	}
	if r.SalaryRangeMin != nil && r.SalaryRangeMax != nil && *r.SalaryRangeMin > *r.SalaryRangeMax {
		errs = append(errs, employees.FieldError{Field: "salary_range_max", Message: "salary_range_max must be greater than or equal to salary_range_min"})
	}
	return errs
}

// Create は下書き状態の採用依頼を作る
func (s *Service) Create(ctx context.Context, actor string, in RequestInput) (*Request, error) {
	now := s.clock.Now()
	r := &Request{RequestedBy: actor, Vacancies: 1, Status: StatusDraft, CreatedAt: now, UpdatedAt: now}
	if errs := apply(r, in); len(errs) > 0 {
		return nil, apperr.InvalidWith("invalid recruitment request", errs)
	}
	id, err := s.id.New()
	if err != nil {
		return nil, apperr.Internal("failed to generate id")
	}
	r.ID = id

	err = s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Insert(ctx, r); err != nil {
			return err
		}
		return s.activity(ctx, repo, actor, r.ID, ActivityCreated, "Recruitment request created", "", StatusDraft, now)
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, table, r.ID, nil, r)
	s.publish(realtime.OpInsert, r, nil)
	return r, nil
}

// Update は内容のみ更新する（ステータスは遷移で変える）
func (s *Service) Update(ctx context.Context, actor, id string, in RequestInput) (*Request, error) {
	var before, after *Request
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		cur, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !editable[cur.Status] {
			return apperr.Conflict("request cannot be edited in status " + cur.Status)
		}
		prev := *cur
		if errs := apply(cur, in); len(errs) > 0 {
			return apperr.InvalidWith("invalid recruitment request", errs)
		}
		cur.UpdatedAt = s.clock.Now()
		if err := repo.Update(ctx, cur); err != nil {
			return err
		}
		before, after = &prev, cur
		return nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, id, before, after)
	s.publish(realtime.OpUpdate, after, before)
	return after, nil
}

// Delete は下書きのみ削除できる
func (s *Service) Delete(ctx context.Context, actor, id string) error {
	var old *Request
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		cur, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != StatusDraft {
			return apperr.Conflict("only draft requests can be deleted")
		}
		old = cur
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, table, id, old, nil)
	s.publish(realtime.OpDelete, nil, old)
	return nil
}

// ===== transitions =====

// step は 1 回の遷移。r を書き換え、活動ログの種別と本文を返す
type step func(r *Request, in TransitionInput, actor string, now time.Time) (typ, details string, err error)

var steps = map[string]step{
	ActionSubmit: func(r *Request, _ TransitionInput, _ string, now time.Time) (string, string, error) {
		r.Status, r.SubmittedAt = StatusPendingHiringManager, &now
		return ActivitySubmitted, "Request submitted for hiring manager approval", nil
	},
	ActionHMApprove: func(r *Request, in TransitionInput, actor string, now time.Time) (string, string, error) {
		r.Status, r.HiringManagerID, r.HiringManagerApprovedAt = StatusApprovedByHiringManager, actor, &now
		r.HiringManagerComments = employees.Sanitize(in.Comments)
		return ActivityHMApproved, "Approved by hiring manager", nil
	},
	ActionHMReject: func(r *Request, in TransitionInput, actor string, _ time.Time) (string, string, error) {
		r.Status, r.HiringManagerID = StatusRejectedByHiringManager, actor
		r.HiringManagerComments = employees.Sanitize(in.Comments)
		return ActivityHMRejected, "Rejected by hiring manager", nil
	},
	ActionAssignRecruiter: func(r *Request, in TransitionInput, _ string, now time.Time) (string, string, error) {
		rid := strings.TrimSpace(in.RecruiterID)
		if rid == "" {
			return "", "", apperr.Invalid("recruiter_id is required")
		}
		r.Status, r.RecruiterID, r.RecruiterAssignedAt = StatusPendingRecruiter, rid, &now
		return ActivityRecruiterAssign, "Recruiter assigned", nil
	},
	ActionStart: func(r *Request, _ TransitionInput, _ string, _ time.Time) (string, string, error) {
		r.Status = StatusInRecruitmentProcess
		return ActivityStarted, "Recruitment process started", nil
	},
	ActionRequestRMApproval: func(r *Request, _ TransitionInput, _ string, _ time.Time) (string, string, error) {
		r.Status = StatusPendingRecruitmentManager
		return ActivityRMRequested, "Requested approval from Recruitment Manager", nil
	},
	ActionRMApprove: func(r *Request, in TransitionInput, actor string, now time.Time) (string, string, error) {
		if in.FinalSalary != nil && *in.FinalSalary < 0 {
			return "", "", apperr.Invalid("final_salary must not be negative")
		}
		r.Status, r.RecruitmentManagerID, r.RecruitmentManagerApprovedAt = StatusContractGenerated, actor, &now
		if in.FinalSalary != nil {
			r.FinalSalary = in.FinalSalary
		}
		if c := employees.Sanitize(in.ContractDetails); c != "" {
			r.ContractDetails = c
		}
		return ActivityRMApproved, "Recruitment Manager approved and contract generated", nil
	},
	ActionReject: func(r *Request, in TransitionInput, _ string, _ time.Time) (string, string, error) {
		r.Status = StatusRejected
		if reason := employees.Sanitize(in.Reason); reason != "" {
			return ActivityRejected, "Rejected: " + reason, nil
		}
		return ActivityRejected, "Request rejected", nil
	},
	ActionHire: func(r *Request, in TransitionInput, _ string, now time.Time) (string, string, error) {
		r.Status, r.HiredAt = StatusHired, &now
		if e := strings.TrimSpace(in.HiredEmployeeID); e != "" {
			r.HiredEmployeeID = e
		}
		return ActivityHired, "Candidate hired", nil
	},
	ActionSetStatus: func(r *Request, in TransitionInput, _ string, _ time.Time) (string, string, error) {
		if !ValidStatus(in.Status) {
			return "", "", apperr.Invalid("unknown recruitment status: " + in.Status)
		}
		prev := r.Status
		r.Status = in.Status
		return ActivityStatusChanged, fmt.Sprintf("Status changed from %s to %s", prev, in.Status), nil
	},
}

// Actions は登録済みの遷移名を返す（ルーティング用）
func Actions() []string {
	out := make([]string, 0, len(steps))
	for k := range steps {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func RequiresApproval(action string) bool { return approvalActions[action] }

// Transition はステータスを変更し、同じトランザクションで活動ログを残す。
// 遷移元のステータスは検査しない
func (s *Service) Transition(ctx context.Context, actor, id, action string, in TransitionInput) (*Request, error) {
	fn, ok := steps[action]
	if !ok {
		return nil, apperr.Invalid("unknown transition: " + action)
	}
	var before, after *Request
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		cur, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		prev := *cur
		now := s.clock.Now()
		typ, details, err := fn(cur, in, actor, now)
		if err != nil {
			return err
		}
		cur.UpdatedAt = now
		if err := repo.Update(ctx, cur); err != nil {
			return err
		}
		if err := s.activity(ctx, repo, actor, id, typ, details, prev.Status, cur.Status, now); err != nil {
			return err
		}
		before, after = &prev, cur
		return nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, id, before, after)
	s.publish(realtime.OpUpdate, after, before)
	return after, nil
}

func (s *Service) Activities(ctx context.Context, requestID string) ([]Activity, error) {
	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListActivities(ctx, requestID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return out, nil
}

// ===== candidates =====

func (s *Service) AddCandidate(ctx context.Context, actor, requestID string, in CandidateInput) (*Candidate, error) {
	c := &Candidate{
		RequestID: requestID,
		FullName:  employees.Sanitize(in.FullName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Notes:     employees.Sanitize(in.Notes),
		Status:    CandidateCreated,
		CreatedBy: actor,
	}
	var errs []employees.FieldError
	if c.FullName == "" {
		errs = append(errs, employees.FieldError{Field: "full_name", Message: "full_name is required"})
	}
	if c.Email != "" && !employees.ValidEmail(c.Email) {
		errs = append(errs, employees.FieldError{Field: "email", Message: "email format is invalid"})
	}
	if c.Phone != "" && !employees.ValidPhone(c.Phone) {
		errs = append(errs, employees.FieldError{Field: "phone", Message: "phone format is invalid"})
	}
	if len(errs) > 0 {
		return nil, apperr.InvalidWith("invalid candidate", errs)
	}
	id, err := s.id.New()
	if err != nil {
		return nil, apperr.Internal("failed to generate id")
	}
	now := s.clock.Now()
	c.ID, c.CreatedAt, c.UpdatedAt = id, now, now

	err = s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		r, err := repo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if err := repo.InsertCandidate(ctx, c); err != nil {
			return err
		}
		return s.activity(ctx, repo, actor, requestID, ActivityCandidateCreated, "Candidate added: "+c.FullName, r.Status, r.Status, now)
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "recruitment_candidates", c.ID, nil, c)
	return c, nil
}

func (s *Service) Candidates(ctx context.Context, requestID string) ([]Candidate, error) {
	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListCandidates(ctx, requestID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return out, nil
}

func (s *Service) SetCandidateStatus(ctx context.Context, actor, candidateID, status string) (*Candidate, error) {
	if _, ok := candidateStatuses[status]; !ok {
		return nil, apperr.Invalid("status must be one of created, interview_pending, interview_completed, accepted, rejected")
	}
	c, err := s.repo.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	prev := *c
	c.Status, c.UpdatedAt = status, s.clock.Now()
	if err := s.repo.SetCandidateStatus(ctx, c.ID, status, c.UpdatedAt); err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "recruitment_candidates", c.ID, prev, c)
	return c, nil
}

// ===== assessments =====

// OverallScore は与えられた評点の平均（小数 1 桁）。評点がなければ nil
func OverallScore(scores ...*int) *float64 {
	var sum, n int
	for _, v := range scores {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := math.Round(float64(sum)/float64(n)*10) / 10
	return &avg
}

func (s *Service) CreateAssessment(ctx context.Context, actor, requestID string, in AssessmentInput) (*Assessment, error) {
	a := &Assessment{
		RequestID:          requestID,
		InterviewerID:      actor,
		CandidateID:        strings.TrimSpace(in.CandidateID),
		CandidateName:      employees.Sanitize(in.CandidateName),
		CandidateEmail:     strings.TrimSpace(in.CandidateEmail),
		CandidatePhone:     strings.TrimSpace(in.CandidatePhone),
		TechnicalScore:     in.TechnicalScore,
		CommunicationScore: in.CommunicationScore,
		ExperienceScore:    in.ExperienceScore,
		CulturalFitScore:   in.CulturalFitScore,
		OverallScore:       in.OverallScore,
		Notes:              employees.Sanitize(in.Notes),
		Recommendation:     employees.Sanitize(in.Recommendation),
		Decision:           strings.TrimSpace(in.Decision),
	}
	var errs []employees.FieldError
	for _, f := range []struct {
		field string
		v     *int
	}{
		{"technical_skills_score", a.TechnicalScore},
		{"communication_score", a.CommunicationScore},
		{"experience_score", a.ExperienceScore},
		{"cultural_fit_score", a.CulturalFitScore},
	} {
		if f.v != nil && (*f.v < minScore || *f.v > maxScore) {
			errs = append(errs, employees.FieldError{Field: f.field, Message: f.field + " must be between 1 and 10"})
		}
	}
	if a.OverallScore != nil && (*a.OverallScore < minScore || *a.OverallScore > maxScore) {
		errs = append(errs, employees.FieldError{Field: "overall_score", Message: "overall_score must be between 1 and 10"})
	}
	if a.Decision != "" && a.Decision != DecisionAccepted && a.Decision != DecisionRejected {
		errs = append(errs, employees.FieldError{Field: "decision", Message: "decision must be accepted or rejected"})
	}
	if in.InterviewDate != nil {
		d, ok := employees.NormalizeDate(*in.InterviewDate)
		if !ok {
			errs = append(errs, employees.FieldError{Field: "interview_date", Message: apperr.MsgInvalidDate})
		} else if d != "" {
			a.InterviewDate = &d
		}
	}
	if a.CandidateID == "" && a.CandidateName == "" {
		errs = append(errs, employees.FieldError{Field: "candidate_name", Message: "candidate_name is required"})
	}
	if len(errs) > 0 {
		return nil, apperr.InvalidWith("invalid interview assessment", errs)
	}
	if a.OverallScore == nil {
		a.OverallScore = OverallScore(a.TechnicalScore, a.CommunicationScore, a.ExperienceScore, a.CulturalFitScore)
	}
	id, err := s.id.New()
	if err != nil {
		return nil, apperr.Internal("failed to generate id")
	}
	now := s.clock.Now()
	a.ID, a.CreatedAt, a.UpdatedAt = id, now, now

	err = s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		r, err := repo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if a.CandidateID != "" {
			c, err := repo.GetCandidate(ctx, a.CandidateID)
			if err != nil {
				if apperr.Is(apperr.Classify(err), apperr.CodeNotFound) {
					return apperr.Invalid("candidate not found: " + a.CandidateID)
				}
				return err
			}
			if c.RequestID != requestID {
				return apperr.Invalid("candidate does not belong to this request")
			}
			if a.CandidateName == "" {
				a.CandidateName = c.FullName
			}
			if a.CandidateEmail == "" {
				a.CandidateEmail = c.Email
			}
			if a.CandidatePhone == "" {
				a.CandidatePhone = c.Phone
			}
			next := CandidateInterviewCompleted
			switch a.Decision {
			case DecisionAccepted:
				next = CandidateAccepted
			case DecisionRejected:
				next = CandidateRejected
			}
			if err := repo.SetCandidateStatus(ctx, c.ID, next, now); err != nil {
				return err
			}
		}
		if err := repo.InsertAssessment(ctx, a); err != nil {
			return err
		}
		return s.activity(ctx, repo, actor, requestID, ActivityAssessment,
			"Interview assessment created for "+a.CandidateName, r.Status, r.Status, now)
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "interview_assessments", a.ID, nil, a)
	return a, nil
}

func (s *Service) Assessments(ctx context.Context, requestID string) ([]Assessment, error) {
	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListAssessments(ctx, requestID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return out, nil
}

// ===== hiring requests =====

// CreateHiringRequest は候補者ごとに雇用申請を作り、依頼を hiring_request に進める
func (s *Service) CreateHiringRequest(ctx context.Context, actor, requestID string, in HiringInput) ([]HiringRequest, error) {
	seen := map[string]bool{}
	var cands []string
	for _, id := range in.CandidateIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		cands = append(cands, id)
	}
	if len(cands) == 0 {
		return nil, apperr.Invalid("at least one candidate is required")
	}
	if in.ProposedSalary != nil && *in.ProposedSalary < 0 {
		return nil, apperr.Invalid("proposed_salary must not be negative")
	}
	var start *string
	if in.ProposedStartDate != nil {
		d, ok := employees.NormalizeDate(*in.ProposedStartDate)
		if !ok {
			return nil, apperr.Invalid(apperr.MsgInvalidDate)
		}
		if d != "" {
			start = &d
		}
	}

	var (
		out           []HiringRequest
		before, after *Request
	)
	err := s.tx.InTx(ctx, func(ctx context.Context, repo Repository) error {
		r, err := repo.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		prev := *r
		now := s.clock.Now()
		for _, cid := range cands {
			c, err := repo.GetCandidate(ctx, cid)
			if err != nil {
				if apperr.Is(apperr.Classify(err), apperr.CodeNotFound) {
					return apperr.Invalid("candidate not found: " + cid)
				}
				return err
			}
			if c.RequestID != requestID {
				return apperr.Invalid("candidate does not belong to this request: " + cid)
			}
			id, err := s.id.New()
			if err != nil {
				return apperr.Internal("failed to generate id")
			}
			h := HiringRequest{
				ID:                id,
				RequestID:         requestID,
				CandidateID:       cid,
				ProposedSalary:    in.ProposedSalary,
				ProposedStartDate: start,
				Justification:     employees.Sanitize(in.Justification),
				ContractDetails:   employees.Sanitize(in.ContractDetails),
				Status:            HiringPendingRMApproval,
				CreatedBy:         actor,
				CreatedAt:         now,
				UpdatedAt:         now,
			}
			if err := repo.InsertHiring(ctx, &h); err != nil {
				return err
			}
			out = append(out, h)
		}
		r.Status, r.UpdatedAt = StatusHiringRequest, now
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		details := fmt.Sprintf("Hiring request created for %d candidate(s)", len(out))
		if err := s.activity(ctx, repo, actor, requestID, ActivityHiringRequest, details, prev.Status, r.Status, now); err != nil {
			return err
		}
		before, after = &prev, r
		return nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "hiring_requests", requestID, nil, out)
	s.publish(realtime.OpUpdate, after, before)
	return out, nil
}

func (s *Service) HiringRequests(ctx context.Context, requestID string) ([]HiringRequest, error) {
	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListHiring(ctx, requestID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return out, nil
}
