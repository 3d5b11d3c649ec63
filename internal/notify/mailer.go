// Package notify は人事担当への通知メールを送る。
// ホスト未設定なら送信せずログだけ残す。
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"gopkg.in/gomail.v2"

	"hrms-backend/internal/platform/db"
)

// Item は異常一覧の 1 行
type Item struct {
	EmployeeID   string
	EmployeeName string
	Date         string
	Type         string
	Severity     string
}

type Mailer struct {
	from       string
	recipients []string
	enabled    bool
	send       func(m *gomail.Message) error
}

func New(cfg db.MailConfig, recipients []string) *Mailer {
	m := &Mailer{from: cfg.From, recipients: recipients, enabled: cfg.Host != "" && len(recipients) > 0}
	if cfg.From == "" {
		m.from = cfg.Username
	}
	if m.enabled {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		m.send = func(msg *gomail.Message) error { return d.DialAndSend(msg) }
	}
	return m
}

func (m *Mailer) Enabled() bool { return m.enabled }

var digestTmpl = template.Must(template.New("digest").Parse(`<p>Attendance anomalies for {{.Label}}: {{len .Items}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Employee ID</th><th>Name</th><th>Date</th><th>Type</th><th>Severity</th></tr>
{{range .Items}}<tr><td>{{.EmployeeID}}</td><td>{{.EmployeeName}}</td><td>{{.Date}}</td><td>{{.Type}}</td><td>{{.Severity}}</td></tr>
{{end}}</table>`))

func renderDigest(label string, items []Item) (string, error) {
	var body bytes.Buffer
	if err := digestTmpl.Execute(&body, struct {
		Label string
		Items []Item
	}{label, items}); err != nil {
		return "", fmt.Errorf("digest template: %w", err)
	}
	return body.String(), nil
}

// BuildDigest は送信用メッセージを組み立てる
func (m *Mailer) BuildDigest(label string, items []Item) (*gomail.Message, error) {
	body, err := renderDigest(label, items)
	if err != nil {
		return nil, err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("[HRMS] %d attendance anomalies (%s)", len(items), label))
	msg.SetBody("text/html", body)
	return msg, nil
}

// SendAnomalyDigest: 異常が 0 件なら送らない
func (m *Mailer) SendAnomalyDigest(ctx context.Context, label string, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	if !m.enabled {
		log.Printf("[INFO] anomaly digest skipped (mail disabled) label=%s items=%d", label, len(items))
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.BuildDigest(label, items)
	if err != nil {
		return err
	}
	if err := m.send(msg); err != nil {
		return fmt.Errorf("send anomaly digest: %w", err)
	}
	log.Printf("[INFO] anomaly digest sent label=%s items=%d to=%d", label, len(items), len(m.recipients))
	return nil
}
