package staging

import (
	"strings"
	"time"

	"hrms-backend/internal/employees"
)

// MapStatus は取込元の在籍区分を active/inactive/pending に寄せる。未知の値は active
func MapStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return employees.StatusInactive
	case "yes", "active", "rehired":
		return employees.StatusActive
	case "yet to join":
		return employees.StatusPending
	default:
		return employees.StatusActive
	}
}

// ParseDate: YYYY-MM-DD か汎用書式。1900..2100 年のみ
func ParseDate(s string) (time.Time, bool) {
	return employees.ParseDate(s)
}

var genderAliases = map[string]string{"m": "male", "f": "female"}

// Plan は staging 行から本番社員を組み立てた結果
type Plan struct {
	Employee   employees.Employee `json:"employee"`
	Warnings   []Warning          `json:"warnings"`
	AutoFilled []string           `json:"auto_filled"`
	Blocked    bool               `json:"blocked"`
}

// Reconcile は列ごとに有効な staging 値を優先する。
// 型不正（日付・メール）の場合は本番値があればそれを使い、無ければ昇格を止める警告を出す。
// staging が空の列は本番値で埋める。
func Reconcile(st Record, prod *employees.Employee) Plan {
	var plan Plan
	plan.Employee.EmployeeID = employees.Sanitize(st.EmployeeID)
	if err := employees.ValidateEmployeeID(plan.Employee.EmployeeID); err != nil {
		plan.warn("employee_id", err.Error(), true)
	}

	for _, f := range employees.Fields {
		dst := plan.Employee.Ptr(f.Name)
		sv := employees.Sanitize(st.Get(f.Name))
		pv := ""
		if prod != nil {
			pv = *prod.Ptr(f.Name)
		}

		if sv == "" {
			if pv != "" {
				*dst = pv
				plan.AutoFilled = append(plan.AutoFilled, f.Name)
			}
			continue
		}

		switch f.Kind {
		case employees.KindStatus:
			*dst = MapStatus(sv)
			continue
		case employees.KindGender:
			if alias, ok := genderAliases[strings.ToLower(sv)]; ok {
				sv = alias
			}
		}

		v, err := employees.NormalizeValue(f, sv)
		if err == nil {
			*dst = v
			continue
		}

		switch {
		case pv != "":
			*dst = pv
			plan.warn(f.Name, "invalid value "+quote(sv)+" in staging, production value kept", false)
		case f.Kind == employees.KindDate || f.Kind == employees.KindEmail:
			plan.warn(f.Name, err.Error(), true)
		default:
			plan.warn(f.Name, err.Error()+"; value dropped", false)
		}
	}

	if plan.Employee.Status == "" {
		plan.Employee.Status = employees.StatusActive
	}
	if plan.Employee.EnglishName == "" {
		plan.warn("english_name", "English name is required", true)
	}
	return plan
}

func (p *Plan) warn(field, msg string, blocking bool) {
	p.Warnings = append(p.Warnings, Warning{Field: field, Message: msg, Blocking: blocking})
	if blocking {
		p.Blocked = true
	}
}

func quote(s string) string { return "\"" + s + "\"" }

// applyOverrides は人手で解消した値を staging 行に上書きする
func applyOverrides(st Record, overrides map[string]string) (Record, []string) {
	if len(overrides) == 0 {
		return st, nil
	}
	out := st
	out.Fields = make(map[string]string, len(st.Fields)+len(overrides))
	for k, v := range st.Fields {
		out.Fields[k] = v
	}
	var unknown []string
	for k, v := range overrides {
		if _, ok := employees.LookupField(k); !ok {
			unknown = append(unknown, k)
			continue
		}
		out.Fields[k] = v
	}
	return out, unknown
}
