package recruitment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func strp(s string) *string     { return &s }
func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(Deps{
		Repo:      repo,
		Tx:        memTx{repo: repo},
		Clock:     ids.FixedClock{T: testNow},
		IDs:       ids.NewULIDGen(),
		Audit:     audit.Nop{},
		Publisher: realtime.Nop{},
	})
	return svc, repo
}

func validInput() RequestInput {
	return RequestInput{
		PositionTitle:  strp("Site Engineer"),
		Department:     strp("Projects"),
		CostCenter:     strp("CC-100"),
		SalaryRangeMin: floatp(4000),
		SalaryRangeMax: floatp(6000),
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var api *apperr.APIError
	require.True(t, errors.As(err, &api))
	errs, ok := api.Details.([]employees.FieldError)
	require.True(t, ok)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestCreateStartsAsDraft(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	r, err := svc.Create(ctx, "u-req", validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, r.Status)
	assert.Equal(t, "u-req", r.RequestedBy)
	assert.Equal(t, 1, r.Vacancies)

	acts, err := svc.Activities(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, ActivityCreated, acts[0].ActivityType)
	assert.Equal(t, StatusDraft, acts[0].NewStatus)
	assert.Len(t, repo.reqs, 1)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	in := RequestInput{
		PositionTitle:     strp("  "),
		SalaryRangeMin:    floatp(9000),
		SalaryRangeMax:    floatp(100),
		Vacancies:         intp(0),
		ExpectedStartDate: strp("not-a-date"),
	}
	_, err := svc.Create(context.Background(), "u", in)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	assert.ElementsMatch(t,
		[]string{"expected_start_date", "position_title", "department", "cost_center", "vacancies", "salary_range_max"},
		fieldNames(t, err))
}

func TestFullPipeline(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	r, err := svc.Create(ctx, "u-req", validInput())
	require.NoError(t, err)

	steps := []struct {
		action string
		in     TransitionInput
		want   string
	}{
		{ActionSubmit, TransitionInput{}, StatusPendingHiringManager},
		{ActionHMApprove, TransitionInput{Comments: "ok"}, StatusApprovedByHiringManager},
		{ActionAssignRecruiter, TransitionInput{RecruiterID: "u-rec"}, StatusPendingRecruiter},
		{ActionStart, TransitionInput{}, StatusInRecruitmentProcess},
		{ActionRequestRMApproval, TransitionInput{}, StatusPendingRecruitmentManager},
		{ActionRMApprove, TransitionInput{FinalSalary: floatp(5500), ContractDetails: "2 years"}, StatusContractGenerated},
		{ActionHire, TransitionInput{HiredEmployeeID: "E-0100"}, StatusHired},
	}
	prev := StatusDraft
	for _, st := range steps {
		got, err := svc.Transition(ctx, "u-mgr", r.ID, st.action, st.in)
		require.NoError(t, err, st.action)
		assert.Equal(t, st.want, got.Status, st.action)

		acts, err := svc.Activities(ctx, r.ID)
		require.NoError(t, err)
		last := acts[len(acts)-1]
		assert.Equal(t, prev, last.PreviousStatus, st.action)
		assert.Equal(t, st.want, last.NewStatus, st.action)
		assert.Equal(t, "u-mgr", last.PerformedBy)
		prev = st.want
	}

	final, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, final.SubmittedAt)
	require.NotNil(t, final.HiringManagerApprovedAt)
	assert.Equal(t, "ok", final.HiringManagerComments)
	assert.Equal(t, "u-rec", final.RecruiterID)
	assert.Equal(t, "u-mgr", final.RecruitmentManagerID)
	require.NotNil(t, final.FinalSalary)
	assert.Equal(t, 5500.0, *final.FinalSalary)
	assert.Equal(t, "E-0100", final.HiredEmployeeID)
	require.NotNil(t, final.HiredAt)
	assert.True(t, final.HiredAt.Equal(testNow))
}

func TestTransitionRules(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	r, err := svc.Create(ctx, "u", validInput())
	require.NoError(t, err)

	t.Run("unknown action", func(t *testing.T) {
		_, err := svc.Transition(ctx, "u", r.ID, "teleport", TransitionInput{})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	})
	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.Transition(ctx, "u", r.ID, ActionSetStatus, TransitionInput{Status: "archived"})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	})
	t.Run("recruiter required", func(t *testing.T) {
		_, err := svc.Transition(ctx, "u", r.ID, ActionAssignRecruiter, TransitionInput{})
		assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	})
	t.Run("missing request", func(t *testing.T) {
		_, err := svc.Transition(ctx, "u", "nope", ActionSubmit, TransitionInput{})
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})
	t.Run("graph not enforced", func(t *testing.T) {
		got, err := svc.Transition(ctx, "u", r.ID, ActionHire, TransitionInput{})
		require.NoError(t, err)
		assert.Equal(t, StatusHired, got.Status)
	})
	t.Run("reject from any status with reason", func(t *testing.T) {
		got, err := svc.Transition(ctx, "u", r.ID, ActionReject, TransitionInput{Reason: "budget"})
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, got.Status)
		acts, _ := svc.Activities(ctx, r.ID)
		last := acts[len(acts)-1]
		assert.Equal(t, "Rejected: budget", last.Details)
		assert.Equal(t, StatusHired, last.PreviousStatus)
	})
	t.Run("explicit status change", func(t *testing.T) {
		got, err := svc.Transition(ctx, "u", r.ID, ActionSetStatus, TransitionInput{Status: StatusDraft})
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, got.Status)
		acts, _ := svc.Activities(ctx, r.ID)
		assert.Equal(t, "Status changed from rejected to draft", acts[len(acts)-1].Details)
	})
}

func TestActionsPermissions(t *testing.T) {
	assert.Contains(t, Actions(), ActionSubmit)
	assert.Contains(t, Actions(), ActionSetStatus)
	assert.True(t, RequiresApproval(ActionHMApprove))
	assert.True(t, RequiresApproval(ActionRMApprove))
	assert.False(t, RequiresApproval(ActionSubmit))
}

func TestUpdateAndDeleteOnlyInEditableStatus(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	r, err := svc.Create(ctx, "u", validInput())
	require.NoError(t, err)

	got, err := svc.Update(ctx, "u", r.ID, RequestInput{Vacancies: intp(3), JobDescription: strp("<script>x</script>Build things")})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Vacancies)
	assert.Equal(t, "Build things", got.JobDescription)
	assert.Equal(t, "Site Engineer", got.PositionTitle)

	_, err = svc.Update(ctx, "u", r.ID, RequestInput{SalaryRangeMax: floatp(10)})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	assert.Equal(t, 6000.0, *repo.reqs[r.ID].SalaryRangeMax)

	_, err = svc.Transition(ctx, "u", r.ID, ActionSubmit, TransitionInput{})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u", r.ID, RequestInput{Vacancies: intp(2)})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	err = svc.Delete(ctx, "u", r.ID)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = svc.Transition(ctx, "hm", r.ID, ActionHMReject, TransitionInput{Comments: "rework"})
	require.NoError(t, err)
	got, err = svc.Update(ctx, "u", r.ID, RequestInput{Vacancies: intp(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Vacancies)

	d, err := svc.Create(ctx, "u", validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "u", d.ID))
	_, err = svc.Get(ctx, d.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	a, err := svc.Create(ctx, "u1", validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", validInput())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, "u1", a.ID, ActionSubmit, TransitionInput{})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, ListQuery{Status: StatusPendingHiringManager})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a.ID, items[0].ID)

	_, total, err = svc.List(ctx, ListQuery{RequestedBy: "u2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, _, err = svc.List(ctx, ListQuery{Status: "bogus"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestOverallScore(t *testing.T) {
	assert.Nil(t, OverallScore(nil, nil))
	got := OverallScore(intp(7), nil, intp(8), intp(8))
	require.NotNil(t, got)
	assert.Equal(t, 7.7, *got)
}

func TestCandidatesAndAssessments(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	r, err := svc.Create(ctx, "u", validInput())
	require.NoError(t, err)

	_, err = svc.AddCandidate(ctx, "u", r.ID, CandidateInput{FullName: "", Email: "bad"})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"full_name", "email"}, fieldNames(t, err))

	_, err = svc.AddCandidate(ctx, "u", "missing", CandidateInput{FullName: "Ali"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	c, err := svc.AddCandidate(ctx, "u", r.ID, CandidateInput{FullName: "Layla Hassan", Email: "layla@example.com"})
	require.NoError(t, err)
	assert.Equal(t, CandidateCreated, c.Status)

	a, err := svc.CreateAssessment(ctx, "interviewer", r.ID, AssessmentInput{
		CandidateID:        c.ID,
		TechnicalScore:     intp(9),
		CommunicationScore: intp(8),
		Decision:           DecisionAccepted,
		InterviewDate:      strp("2025-02-27"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Layla Hassan", a.CandidateName)
	assert.Equal(t, "layla@example.com", a.CandidateEmail)
	assert.Equal(t, "interviewer", a.InterviewerID)
	require.NotNil(t, a.OverallScore)
	assert.Equal(t, 8.5, *a.OverallScore)
	assert.Equal(t, CandidateAccepted, repo.candidates[c.ID].Status)

	given, err := svc.CreateAssessment(ctx, "interviewer", r.ID, AssessmentInput{
		CandidateName: "Walk-in", TechnicalScore: intp(2), OverallScore: floatp(6),
	})
	require.NoError(t, err)
	assert.Equal(t, 6.0, *given.OverallScore)

	_, err = svc.CreateAssessment(ctx, "interviewer", r.ID, AssessmentInput{
		CandidateName: "X", TechnicalScore: intp(11), Decision: "maybe",
	})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"technical_skills_score", "decision"}, fieldNames(t, err))

	other, err := svc.Create(ctx, "u", validInput())
	require.NoError(t, err)
	_, err = svc.CreateAssessment(ctx, "interviewer", other.ID, AssessmentInput{CandidateID: c.ID})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	list, err := svc.Assessments(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	updated, err := svc.SetCandidateStatus(ctx, "u", c.ID, CandidateInterviewPending)
	require.NoError(t, err)
	assert.Equal(t, CandidateInterviewPending, updated.Status)
	_, err = svc.SetCandidateStatus(ctx, "u", c.ID, "ghost")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	d, err := svc.Detail(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, d.Candidates, 1)
	assert.Len(t, d.Assessments, 2)
	// request_created + candidate_created + 2 assessments
	assert.Len(t, d.Activities, 4)
}

func TestCreateHiringRequest(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	r, err := svc.Create(ctx, "u", validInput())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, "u", r.ID, ActionStart, TransitionInput{})
	require.NoError(t, err)
	c1, err := svc.AddCandidate(ctx, "u", r.ID, CandidateInput{FullName: "A"})
	require.NoError(t, err)
	c2, err := svc.AddCandidate(ctx, "u", r.ID, CandidateInput{FullName: "B"})
	require.NoError(t, err)

	_, err = svc.CreateHiringRequest(ctx, "u", r.ID, HiringInput{})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	_, err = svc.CreateHiringRequest(ctx, "u", r.ID, HiringInput{CandidateIDs: []string{c1.ID, "ghost"}})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	assert.Empty(t, repo.hiring)
	assert.Equal(t, StatusInRecruitmentProcess, repo.reqs[r.ID].Status)

	out, err := svc.CreateHiringRequest(ctx, "u", r.ID, HiringInput{
		CandidateIDs:      []string{c1.ID, c2.ID, c1.ID},
		ProposedSalary:    floatp(5000),
		ProposedStartDate: strp("2025-04-01"),
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, h := range out {
		assert.Equal(t, HiringPendingRMApproval, h.Status)
		assert.Equal(t, "2025-04-01", *h.ProposedStartDate)
	}
	assert.Equal(t, StatusHiringRequest, repo.reqs[r.ID].Status)

	acts, err := svc.Activities(ctx, r.ID)
	require.NoError(t, err)
	last := acts[len(acts)-1]
	assert.Equal(t, "Hiring request created for 2 candidate(s)", last.Details)
	assert.Equal(t, StatusInRecruitmentProcess, last.PreviousStatus)

	list, err := svc.HiringRequests(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestHiringRequestRollsBack(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	r, err := svc.Create(ctx, "u", validInput())
	require.NoError(t, err)
	c, err := svc.AddCandidate(ctx, "u", r.ID, CandidateInput{FullName: "A"})
	require.NoError(t, err)
	before := len(repo.activities)

	repo.failHiring = errors.New("new row violates row-level security policy")
	_, err = svc.CreateHiringRequest(ctx, "u", r.ID, HiringInput{CandidateIDs: []string{c.ID}})
	assert.True(t, apperr.Is(err, apperr.CodePermissionDenied))
	assert.Equal(t, StatusDraft, repo.reqs[r.ID].Status)
	assert.Len(t, repo.activities, before)
}
