package importer

import (
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// 社員取込テンプレートのヘッダ別名。正規化後の値 -> 列名
var employeeAliases = map[string]string{
	"employeeid":    "employee_id",
	"emp_id":        "employee_id",
	"id":            "employee_id",
	"name":          "english_name",
	"english":       "english_name",
	"arabic":        "arabic_name",
	"email":         "personal_email",
	"mobile":        "work_phone",
	"phone":         "work_phone",
	"doj":           "date_of_joining",
	"joining_date":  "date_of_joining",
	"dol":           "date_of_leaving",
	"leaving_date":  "date_of_leaving",
	"dob":           "birth_date",
	"date_of_birth": "birth_date",
	"marital":       "marital_status",
	"nok":           "nok_person",
	"nok_phone":     "nok_phone_number",
}

var dateColumns = map[string]bool{
	"date_of_joining": true, "date_of_leaving": true, "issue_date": true, "birth_date": true,
}

// EmployeeRows は社員一括取込用に、ヘッダを列名に寄せた行を返す。
// Excel のシリアル値で入った日付は YYYY-MM-DD に直す
func EmployeeRows(r io.Reader, filename string) ([]map[string]string, error) {
	rows, err := ReadRows(r, filename)
	if err != nil {
		return nil, err
	}
	recs := Records(rows)
	out := make([]map[string]string, 0, len(recs))
	for _, rec := range recs {
		row := map[string]string{}
		for k, v := range rec.Values {
			if alias, ok := employeeAliases[k]; ok {
				k = alias
			}
			if dateColumns[k] {
				v = SerialDate(v)
			}
			if _, dup := row[k]; dup && v == "" {
				continue
			}
			row[k] = v
		}
		out = append(out, row)
	}
	return out, nil
}

// SerialDate は Excel の日付シリアル値なら YYYY-MM-DD に変換し、それ以外はそのまま返す
func SerialDate(v string) string {
	v = strings.TrimSpace(v)
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial < 1 || serial > 80000 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format("2006-01-02")
}
