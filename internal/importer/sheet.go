// Package importer は取込ファイル（csv / xls / xlsx / 端末 txt）を行データに変換する
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

const maxXLSRows = 100000

// ReadRows は拡張子に応じてシート先頭の全セルを読み出す
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(data)
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows := workbook.ReadAllCells(maxXLSRows)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(decodeText(data), []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}
	return rows, nil
}

// decodeText: UTF-8 でなければ端末既定の Windows-1256（アラビア語）とみなす
func decodeText(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	out, err := charmap.Windows1256.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return out
}

// NormalizeHeader: 小文字化し、空白・ハイフン・スラッシュを _ に寄せる
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	var b strings.Builder
	lastUnderscore := false
	for _, r := range h {
		switch r {
		case ' ', '-', '/', '.', '_':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Records は 1 行目をヘッダとして行を map にする。空行は飛ばす。
// 戻り値の Line はファイル上の行番号（ヘッダ = 1）
func Records(rows [][]string) []Record {
	if len(rows) < 2 {
		return nil
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(h)
	}
	var out []Record
	for i, row := range rows[1:] {
		rec := Record{Line: i + 2, Values: map[string]string{}}
		empty := true
		for j, cell := range row {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v != "" {
				empty = false
			}
			rec.Values[headers[j]] = v
		}
		if !empty {
			out = append(out, rec)
		}
	}
	return out
}

type Record struct {
	Line   int
	Values map[string]string
}

// Pick は候補ヘッダのうち最初に値があるものを返す
func (r Record) Pick(keys ...string) string {
	for _, k := range keys {
		if v := r.Values[NormalizeHeader(k)]; v != "" {
			return v
		}
	}
	return ""
}
