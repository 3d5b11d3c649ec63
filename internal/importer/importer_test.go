package importer

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Employee ID":    "employee_id",
		" employeeID ":   "employeeid",
		"Clocking-Time":  "clocking_time",
		"date_of__birth": "date_of_birth",
		"\ufeffName":     "name",
		"Terminal ID ":   "terminal_id",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestParseTerminalText(t *testing.T) {
	in := strings.Join([]string{
		"IG0004122 Ali Hassan 01-02-2025 07:58:10 Main Gate",
		"U1 IG0004122 Ali 01-02-2025 17:02:00 Main Gate",
		"",
		"garbage line",
		"E9 Sara 31-02-2025 08:00:00 Side",
	}, "\n")

	events, bad, err := ParseTerminalText(strings.NewReader(in), time.UTC)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, RawEvent{
		UserID: "IG0004122", EmployeeID: "IG0004122", Name: "Ali Hassan",
		ClockingTime: time.Date(2025, 2, 1, 7, 58, 10, 0, time.UTC), Terminal: "Main Gate",
	}, events[0])
	assert.Equal(t, "U1", events[1].UserID)
	assert.Equal(t, "IG0004122", events[1].EmployeeID)
	assert.Equal(t, "Ali", events[1].Name)

	require.Len(t, bad, 2)
	assert.Equal(t, 4, bad[0].Line)
	assert.Equal(t, 5, bad[1].Line)
	assert.Equal(t, "invalid clocking time", bad[1].Error)
}

func TestParseTerminalTextWindows1256(t *testing.T) {
	line, err := charmap.Windows1256.NewEncoder().String("7 علي 02-03-2025 08:00:00 Gate")
	require.NoError(t, err)

	events, bad, err := ParseTerminalText(strings.NewReader(line), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Len(t, events, 1)
	assert.Equal(t, "علي", events[0].Name)
}

func TestReadRawEventsCSV(t *testing.T) {
	csv := "\xef\xbb\xbfEmployee ID,Name,Clocking Time,Terminal Description,User ID\n" +
		"E1,Ali,01-02-2025 08:00:00,Gate,\n" +
		"E2,Sara,2025-02-01 09:15,Gate,77\n" +
		",NoID,01-02-2025 08:00:00,Gate,\n" +
		"E3,Omar,tomorrow,Gate,\n"

	loc := time.FixedZone("AST", 3*3600)
	events, bad, err := ReadRawEvents(strings.NewReader(csv), "punches.CSV", loc)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "E1", events[0].UserID)
	assert.Equal(t, time.Date(2025, 2, 1, 5, 0, 0, 0, time.UTC), events[0].ClockingTime.UTC())
	assert.Equal(t, "77", events[1].UserID)
	assert.Equal(t, "Gate", events[1].Terminal)

	require.Len(t, bad, 2)
	assert.Equal(t, 4, bad[0].Line)
	assert.Equal(t, 5, bad[1].Line)
}

func TestReadRowsXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Employee ID", "English Name", "DOJ"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"E1", "Ali", 45292}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"", "", ""}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := EmployeeRows(bytes.NewReader(buf.Bytes()), "staff.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "E1", rows[0]["employee_id"])
	assert.Equal(t, "Ali", rows[0]["english_name"])
	assert.Equal(t, "2024-01-01", rows[0]["date_of_joining"])
}

func TestReadRowsRejectsUnknownType(t *testing.T) {
	_, err := ReadRows(strings.NewReader("x"), "notes.pdf")
	assert.Error(t, err)
}

func TestSerialDate(t *testing.T) {
	assert.Equal(t, "2024-01-01", SerialDate("45292"))
	assert.Equal(t, "2024-01-01", SerialDate("2024-01-01"))
	assert.Equal(t, "abc", SerialDate("abc"))
}

func TestParseClockingTime(t *testing.T) {
	loc := time.UTC
	got, ok := ParseClockingTime("45292.5", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, loc), got)

	got, ok = ParseClockingTime("2025-02-01T08:00:00Z", loc)
	require.True(t, ok)
	assert.Equal(t, 8, got.Hour())

	_, ok = ParseClockingTime("", loc)
	assert.False(t, ok)
}
