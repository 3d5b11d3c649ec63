package recruitment

const (
	DateLayout       = "2006-01-02"
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	minScore         = 1
	maxScore         = 10
)

// RequestInput は作成と更新で共用する。更新では nil のフィールドを変更しない
type RequestInput struct {
	PositionTitle           *string  `json:"position_title"`
	Department              *string  `json:"department"`
	CostCenter              *string  `json:"cost_center"`
	JobDescription          *string  `json:"job_description"`
	RequiredQualifications  *string  `json:"required_qualifications"`
	PreferredQualifications *string  `json:"preferred_qualifications"`
	SalaryRangeMin          *float64 `json:"salary_range_min"`
	SalaryRangeMax          *float64 `json:"salary_range_max"`
	Vacancies               *int     `json:"vacancies"`
	ExpectedStartDate       *string  `json:"expected_start_date"`
	Justification           *string  `json:"justification"`
	HeadcountIncrease       *bool    `json:"headcount_increase"`
	ReplacementFor          *string  `json:"replacement_for"`
}

// TransitionInput: 各遷移で使う付随情報（遷移ごとに必要な項目だけ読む）
type TransitionInput struct {
	Status          string   `json:"status"`
	Comments        string   `json:"comments"`
	Reason          string   `json:"reason"`
	RecruiterID     string   `json:"recruiter_id"`
	FinalSalary     *float64 `json:"final_salary"`
	ContractDetails string   `json:"contract_details"`
	HiredEmployeeID string   `json:"hired_employee_id"`
}

type ListQuery struct {
	Status      string
	Department  string
	RequestedBy string
	Limit       int
	Offset      int
}

type CandidateInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
}

type AssessmentInput struct {
	CandidateID        string   `json:"candidate_id"`
	CandidateName      string   `json:"candidate_name"`
	CandidateEmail     string   `json:"candidate_email"`
	CandidatePhone     string   `json:"candidate_phone"`
	InterviewDate      *string  `json:"interview_date"`
	TechnicalScore     *int     `json:"technical_skills_score"`
	CommunicationScore *int     `json:"communication_score"`
	ExperienceScore    *int     `json:"experience_score"`
	CulturalFitScore   *int     `json:"cultural_fit_score"`
	OverallScore       *float64 `json:"overall_score"`
	Notes              string   `json:"additional_comments"`
	Recommendation     string   `json:"recommendation"`
	Decision           string   `json:"decision"`
}

type HiringInput struct {
	CandidateIDs      []string `json:"candidate_ids"`
	ProposedSalary    *float64 `json:"proposed_salary"`
	ProposedStartDate *string  `json:"proposed_start_date"`
	Justification     string   `json:"justification"`
	ContractDetails   string   `json:"contract_details"`
}

// Detail は依頼 1 件と関連データ
type Detail struct {
	Request     *Request        `json:"request"`
	Activities  []Activity      `json:"activities"`
	Candidates  []Candidate     `json:"candidates"`
	Assessments []Assessment    `json:"assessments"`
	Hiring      []HiringRequest `json:"hiring_requests"`
}
