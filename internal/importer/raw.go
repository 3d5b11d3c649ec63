package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// RawEvent は端末の打刻 1 件
type RawEvent struct {
	UserID       string
	EmployeeID   string
	Name         string
	ClockingTime time.Time
	Terminal     string
}

// LineError: 解釈できなかった行
type LineError struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

const terminalTimeLayout = "02-01-2006 15:04:05"

var (
	// <userID> <employeeID> <name> <dd-mm-yyyy hh:mm:ss> <terminal>
	twoIDLine = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(.+?)\s+(\d{2}-\d{2}-\d{4}\s\d{2}:\d{2}:\d{2})\s+(.+)$`)
	// <employeeID> <name> <dd-mm-yyyy hh:mm:ss> <terminal>
	oneIDLine = regexp.MustCompile(`^(\S+)\s+(.+?)\s+(\d{2}-\d{2}-\d{4}\s\d{2}:\d{2}:\d{2})\s+(.+)$`)
)

// 生打刻シートのヘッダ別名
var (
	employeeIDKeys = []string{"Employee ID", "employee_id", "Emp ID", "employeeID", "EMPLOYEEID"}
	nameKeys       = []string{"Name", "Employee Name"}
	clockKeys      = []string{"Clocking Time", "ClockingTime", "Date"}
	terminalKeys   = []string{"Terminal ID", "Terminal Description", "Terminal", "TerminalDescription"}
	userIDKeys     = []string{"User ID", "USERID"}
)

// ReadRawEvents は拡張子に応じて端末エクスポートを読む。
// 時刻はタイムゾーン指定のない値を loc の現地時刻として解釈する
func ReadRawEvents(r io.Reader, filename string, loc *time.Location) ([]RawEvent, []LineError, error) {
	if loc == nil {
		loc = time.UTC
	}
	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		return ParseTerminalText(r, loc)
	}
	rows, err := ReadRows(r, filename)
	if err != nil {
		return nil, nil, err
	}
	events, bad := RawFromRecords(Records(rows), loc)
	return events, bad, nil
}

// ParseTerminalText は端末の txt 出力を読む。user_id 列の無い形式では employee_id を流用する
func ParseTerminalText(r io.Reader, loc *time.Location) ([]RawEvent, []LineError, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	data = decodeText(data)

	var events []RawEvent
	var bad []LineError
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var ev RawEvent
		var clock string
		if m := twoIDLine.FindStringSubmatch(text); m != nil && hasDigit(m[2]) {
			ev = RawEvent{UserID: m[1], EmployeeID: m[2], Name: strings.TrimSpace(m[3]), Terminal: strings.TrimSpace(m[5])}
			clock = m[4]
		} else if m := oneIDLine.FindStringSubmatch(text); m != nil {
			ev = RawEvent{UserID: m[1], EmployeeID: m[1], Name: strings.TrimSpace(m[2]), Terminal: strings.TrimSpace(m[4])}
			clock = m[3]
		} else {
			bad = append(bad, LineError{Line: line, Content: text, Error: "unrecognised line format"})
			continue
		}
		t, err := time.ParseInLocation(terminalTimeLayout, clock, loc)
		if err != nil {
			bad = append(bad, LineError{Line: line, Content: text, Error: "invalid clocking time"})
			continue
		}
		ev.ClockingTime = t
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return events, bad, nil
}

// RawFromRecords はシート行を打刻に変換する。employee_id・名前・時刻のいずれかが無い行は捨てる
func RawFromRecords(recs []Record, loc *time.Location) ([]RawEvent, []LineError) {
	var events []RawEvent
	var bad []LineError
	for _, rec := range recs {
		empID := rec.Pick(employeeIDKeys...)
		name := rec.Pick(nameKeys...)
		clock := rec.Pick(clockKeys...)
		if empID == "" || name == "" || clock == "" {
			bad = append(bad, LineError{Line: rec.Line, Error: "employee id, name and clocking time are required"})
			continue
		}
		t, ok := ParseClockingTime(clock, loc)
		if !ok {
			bad = append(bad, LineError{Line: rec.Line, Content: clock, Error: "invalid clocking time"})
			continue
		}
		userID := rec.Pick(userIDKeys...)
		if userID == "" {
			userID = empID
		}
		events = append(events, RawEvent{
			UserID:       userID,
			EmployeeID:   empID,
			Name:         name,
			ClockingTime: t,
			Terminal:     rec.Pick(terminalKeys...),
		})
	}
	return events, bad
}

var clockLayouts = []string{
	terminalTimeLayout,
	"02-01-2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"1/2/06 15:04",
}

// ParseClockingTime は端末書式（日-月-年）、ISO 形式、Excel シリアル値を受け付ける
func ParseClockingTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, l := range clockLayouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 1 && serial < 80000 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			// シリアル値は壁時計の時刻なので loc に載せ替える
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
		}
	}
	return time.Time{}, false
}

// 名前の 1 語目を employee_id と誤認しないよう、2 列目は数字を含むものだけ ID とみなす
func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func (e LineError) String() string { return fmt.Sprintf("line %d: %s", e.Line, e.Error) }
