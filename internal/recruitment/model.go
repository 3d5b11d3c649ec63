package recruitment

import (
	"database/sql"
	"time"
)

// 採用依頼のステータス
const (
	StatusDraft                     = "draft"
	StatusPendingHiringManager      = "pending_hiring_manager"
	StatusApprovedByHiringManager   = "approved_by_hiring_manager"
	StatusRejectedByHiringManager   = "rejected_by_hiring_manager"
	StatusPendingRecruiter          = "pending_recruiter"
	StatusInRecruitmentProcess      = "in_recruitment_process"
	StatusPendingRecruitmentManager = "pending_recruitment_manager"
	StatusContractGenerated         = "contract_generated"
	StatusHired                     = "hired"
	StatusRejected                  = "rejected"
	StatusHiringRequest             = "hiring_request"
)

// 既存データに残っている旧ステータスも受け付ける
var statuses = map[string]struct{}{
	StatusDraft: {}, StatusPendingHiringManager: {}, StatusApprovedByHiringManager: {},
	StatusRejectedByHiringManager: {}, StatusPendingRecruiter: {}, StatusInRecruitmentProcess: {},
	StatusPendingRecruitmentManager: {}, StatusContractGenerated: {}, StatusHired: {}, StatusRejected: {},
	StatusHiringRequest: {},
	"approved_by_hm":    {}, "candidates_created": {}, "pending_interview_assessment": {},
	"recruiter_assigned": {}, "pending_hr_manager": {}, "pending_projects_director": {}, "pending_payroll": {},
}

func ValidStatus(s string) bool {
	_, ok := statuses[s]
	return ok
}

// 候補者ステータス
const (
	CandidateCreated            = "created"
	CandidateInterviewPending   = "interview_pending"
	CandidateInterviewCompleted = "interview_completed"
	CandidateAccepted           = "accepted"
	CandidateRejected           = "rejected"
)

var candidateStatuses = map[string]struct{}{
	CandidateCreated: {}, CandidateInterviewPending: {}, CandidateInterviewCompleted: {},
	CandidateAccepted: {}, CandidateRejected: {},
}

const (
	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

const HiringPendingRMApproval = "pending_rm_approval"

// 活動ログの種別
const (
	ActivityCreated          = "request_created"
	ActivityStatusChanged    = "status_changed"
	ActivitySubmitted        = "submitted"
	ActivityHMApproved       = "hm_approved"
	ActivityHMRejected       = "hm_rejected"
	ActivityRecruiterAssign  = "recruiter_assigned"
	ActivityStarted          = "recruitment_started"
	ActivityRMRequested      = "rm_approval_requested"
	ActivityRMApproved       = "rm_approved"
	ActivityRejected         = "request_rejected"
	ActivityHired            = "hired"
	ActivityHiringRequest    = "hiring_request_created"
	ActivityCandidateCreated = "candidate_created"
	ActivityAssessment       = "assessment_created"
)

type Request struct {
	ID                           string     `json:"id"`
	RequestedBy                  string     `json:"requested_by"`
	PositionTitle                string     `json:"position_title"`
	Department                   string     `json:"department"`
	CostCenter                   string     `json:"cost_center"`
	JobDescription               string     `json:"job_description,omitempty"`
	RequiredQualifications       string     `json:"required_qualifications,omitempty"`
	PreferredQualifications      string     `json:"preferred_qualifications,omitempty"`
	SalaryRangeMin               *float64   `json:"salary_range_min,omitempty"`
	SalaryRangeMax               *float64   `json:"salary_range_max,omitempty"`
	Vacancies                    int        `json:"vacancies"`
	ExpectedStartDate            *string    `json:"expected_start_date,omitempty"`
	Justification                string     `json:"justification,omitempty"`
	HeadcountIncrease            bool       `json:"headcount_increase"`
	ReplacementFor               string     `json:"replacement_for,omitempty"`
	Status                       string     `json:"status"`
	SubmittedAt                  *time.Time `json:"submitted_at,omitempty"`
	HiringManagerID              string     `json:"hiring_manager_id,omitempty"`
	HiringManagerApprovedAt      *time.Time `json:"hiring_manager_approved_at,omitempty"`
	HiringManagerComments        string     `json:"hiring_manager_comments,omitempty"`
	RecruiterID                  string     `json:"recruiter_id,omitempty"`
	RecruiterAssignedAt          *time.Time `json:"recruiter_assigned_at,omitempty"`
	RecruitmentManagerID         string     `json:"recruitment_manager_id,omitempty"`
	RecruitmentManagerApprovedAt *time.Time `json:"recruitment_manager_approved_at,omitempty"`
	FinalSalary                  *float64   `json:"final_salary,omitempty"`
	ContractDetails              string     `json:"contract_details,omitempty"`
	HiredEmployeeID              string     `json:"hired_employee_id,omitempty"`
	HiredAt                      *time.Time `json:"hired_at,omitempty"`
	CreatedAt                    time.Time  `json:"created_at"`
	UpdatedAt                    time.Time  `json:"updated_at"`
}

type Activity struct {
	ID             string    `json:"id"`
	RequestID      string    `json:"recruitment_request_id"`
	ActivityType   string    `json:"activity_type"`
	Details        string    `json:"activity_details,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status,omitempty"`
	PerformedBy    string    `json:"performed_by"`
	CreatedAt      time.Time `json:"created_at"`
}

type Candidate struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Assessment struct {
	ID                 string    `json:"id"`
	RequestID          string    `json:"recruitment_request_id"`
	InterviewerID      string    `json:"interviewer_id"`
	CandidateID        string    `json:"candidate_id,omitempty"`
	CandidateName      string    `json:"candidate_name"`
	CandidateEmail     string    `json:"candidate_email,omitempty"`
	CandidatePhone     string    `json:"candidate_phone,omitempty"`
	InterviewDate      *string   `json:"interview_date,omitempty"`
	TechnicalScore     *int      `json:"technical_skills_score,omitempty"`
	CommunicationScore *int      `json:"communication_score,omitempty"`
	ExperienceScore    *int      `json:"experience_score,omitempty"`
	CulturalFitScore   *int      `json:"cultural_fit_score,omitempty"`
	OverallScore       *float64  `json:"overall_score,omitempty"`
	Notes              string    `json:"additional_comments,omitempty"`
	Recommendation     string    `json:"recommendation,omitempty"`
	Decision           string    `json:"decision,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type HiringRequest struct {
	ID                string    `json:"id"`
	RequestID         string    `json:"recruitment_request_id"`
	CandidateID       string    `json:"candidate_id"`
	ProposedSalary    *float64  `json:"proposed_salary,omitempty"`
	ProposedStartDate *string   `json:"proposed_start_date,omitempty"`
	Justification     string    `json:"justification,omitempty"`
	ContractDetails   string    `json:"contract_details,omitempty"`
	Status            string    `json:"status"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DB 読み出し用（NULL 許容列）
type requestRow struct {
	ID, RequestedBy, PositionTitle, Department, CostCenter string
	JobDescription, RequiredQual, PreferredQual            sql.NullString
	SalaryMin, SalaryMax                                   sql.NullFloat64
	Vacancies                                              sql.NullInt64
	ExpectedStart, Justification                           sql.NullString
	HeadcountIncrease                                      sql.NullBool
	ReplacementFor                                         sql.NullString
	Status                                                 string
	SubmittedAt                                            sql.NullTime
	HMID                                                   sql.NullString
	HMApprovedAt                                           sql.NullTime
	HMComments, RecruiterID                                sql.NullString
	RecruiterAssignedAt                                    sql.NullTime
	RMID                                                   sql.NullString
	RMApprovedAt                                           sql.NullTime
	FinalSalary                                            sql.NullFloat64
	ContractDetails, HiredEmployeeID                       sql.NullString
	HiredAt                                                sql.NullTime
	CreatedAt, UpdatedAt                                   time.Time
}

func (r requestRow) toModel() Request {
	v := int(r.Vacancies.Int64)
	if !r.Vacancies.Valid {
		v = 1
	}
	return Request{
		ID:                           r.ID,
		RequestedBy:                  r.RequestedBy,
		PositionTitle:                r.PositionTitle,
		Department:                   r.Department,
		CostCenter:                   r.CostCenter,
		JobDescription:               r.JobDescription.String,
		RequiredQualifications:       r.RequiredQual.String,
		PreferredQualifications:      r.PreferredQual.String,
		SalaryRangeMin:               floatPtr(r.SalaryMin),
		SalaryRangeMax:               floatPtr(r.SalaryMax),
		Vacancies:                    v,
		ExpectedStartDate:            strPtr(r.ExpectedStart),
		Justification:                r.Justification.String,
		HeadcountIncrease:            r.HeadcountIncrease.Bool,
		ReplacementFor:               r.ReplacementFor.String,
		Status:                       r.Status,
		SubmittedAt:                  timePtr(r.SubmittedAt),
		HiringManagerID:              r.HMID.String,
		HiringManagerApprovedAt:      timePtr(r.HMApprovedAt),
		HiringManagerComments:        r.HMComments.String,
		RecruiterID:                  r.RecruiterID.String,
		RecruiterAssignedAt:          timePtr(r.RecruiterAssignedAt),
		RecruitmentManagerID:         r.RMID.String,
		RecruitmentManagerApprovedAt: timePtr(r.RMApprovedAt),
		FinalSalary:                  floatPtr(r.FinalSalary),
		ContractDetails:              r.ContractDetails.String,
		HiredEmployeeID:              r.HiredEmployeeID.String,
		HiredAt:                      timePtr(r.HiredAt),
		CreatedAt:                    r.CreatedAt,
		UpdatedAt:                    r.UpdatedAt,
	}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time
	return &v
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
