package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"hrms-backend/internal/platform/db"
)

func enabledMailer(t *testing.T, sent *[]*gomail.Message, fail error) *Mailer {
	t.Helper()
	m := New(db.MailConfig{Host: "smtp.example.com", Port: 587, Username: "hr-bot@example.com"}, []string{"hr@example.com"})
	require.True(t, m.Enabled())
	m.send = func(msg *gomail.Message) error {
		*sent = append(*sent, msg)
		return fail
	}
	return m
}

func TestSendAnomalyDigest(t *testing.T) {
	var sent []*gomail.Message
	m := enabledMailer(t, &sent, nil)

	items := []Item{
		{EmployeeID: "E-001", EmployeeName: "Sara <Ali>", Date: "2025-03-01", Type: "late_arrival", Severity: "low"},
		{EmployeeID: "E-002", EmployeeName: "Omar", Date: "2025-03-01", Type: "missing_clock_out", Severity: "medium"},
	}
	require.NoError(t, m.SendAnomalyDigest(context.Background(), "2025-03-01", items))
	require.Len(t, sent, 1)

	msg := sent[0]
	assert.Equal(t, []string{"hr-bot@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"hr@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"[HRMS] 2 attendance anomalies (2025-03-01)"}, msg.GetHeader("Subject"))
}

func TestRenderDigestEscapes(t *testing.T) {
	body, err := renderDigest("2025-03-01", []Item{
		{EmployeeID: "E-001", EmployeeName: "Sara <Ali>", Type: "missing_clock_out", Severity: "medium"},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "<td>missing_clock_out</td>")
	assert.Contains(t, body, "Sara &lt;Ali&gt;")
	assert.Contains(t, body, "2025-03-01: 1")
}

func TestRenderDigestGolden(t *testing.T) {
	body, err := renderDigest("2025-03-01", []Item{
		{EmployeeID: "E-001", EmployeeName: "Sara <Ali>", Date: "2025-03-01", Type: "late_arrival", Severity: "low"},
		{EmployeeID: "E-002", EmployeeName: "Omar", Date: "2025-03-01", Type: "missing_clock_out", Severity: "medium"},
	})
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "digest", []byte(body))
}

func TestSendAnomalyDigestNothingToSend(t *testing.T) {
	var sent []*gomail.Message
	m := enabledMailer(t, &sent, nil)
	require.NoError(t, m.SendAnomalyDigest(context.Background(), "2025-03-01", nil))
	assert.Empty(t, sent)
}

func TestSendAnomalyDigestError(t *testing.T) {
	var sent []*gomail.Message
	m := enabledMailer(t, &sent, errors.New("dial tcp: refused"))
	err := m.SendAnomalyDigest(context.Background(), "2025-03-01", []Item{{EmployeeID: "E-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestDisabledWithoutHost(t *testing.T) {
	m := New(db.MailConfig{}, []string{"hr@example.com"})
	assert.False(t, m.Enabled())
	assert.NoError(t, m.SendAnomalyDigest(context.Background(), "x", []Item{{EmployeeID: "E-1"}}))

	m = New(db.MailConfig{Host: "smtp.example.com"}, nil)
	assert.False(t, m.Enabled())
}
