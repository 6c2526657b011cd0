package routes

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	dayColumn   = 0
	titleColumn = 4
	minColumns  = 5
)

var titlePattern = regexp.MustCompile(`^(\d{4})\s+(.+)$`)

var dayCodes = map[string]string{
	"domingo":   "DOM",
	"lunes":     "LUN",
	"martes":    "MAR",
	"miercoles": "MIE",
	"jueves":    "JUE",
	"viernes":   "VIE",
	"sabado":    "SAB",
}

// Record is one validated client-on-route row.
type Record struct {
	Weekday    string `json:"weekday"`
	ClientCode string `json:"client_code"`
	ClientName string `json:"client_name"`
	Row        int    `json:"row"`
}

// Skipped explains why a row was left out.
type Skipped struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Result struct {
	Records []Record  `json:"records"`
	Skipped []Skipped `json:"skipped"`
}

// DayCode maps a Spanish weekday name, with or without accents, to its
// three letter code.
func DayCode(name string) (string, bool) {
	code, ok := dayCodes[foldDay(name)]
	return code, ok
}

func foldDay(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// ParseTitle splits "1234 Client Name" into code and name. Titles without a
// leading four digit code return an empty code.
func ParseTitle(title string) (code, name string) {
	title = strings.TrimSpace(title)
	if m := titlePattern.FindStringSubmatch(title); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return "", title
}

// ParseRows turns spreadsheet rows into route records. The first row is a
// header. Rows shorter than five columns are dropped silently; unknown days,
// empty names and repeated (day, code) pairs are reported in Skipped.
func ParseRows(rows [][]string) Result {
	var res Result
	seen := make(map[string]struct{})
	index := 0

	for i, row := range rows {
		if i == 0 || isBlank(row) || len(row) < minColumns {
			continue
		}
		rowNum := i + 1
		n := index
		index++

		day, ok := DayCode(row[dayColumn])
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{Row: rowNum, Reason: fmt.Sprintf("unknown day %q", strings.TrimSpace(row[dayColumn]))})
			continue
		}

		code, name := ParseTitle(row[titleColumn])
		if name == "" {
			res.Skipped = append(res.Skipped, Skipped{Row: rowNum, Reason: "missing client name"})
			continue
		}
		if code == "" {
			code = fmt.Sprintf("AUTO_%d", n)
		}

		key := day + "-" + code
		if _, dup := seen[key]; dup {
			res.Skipped = append(res.Skipped, Skipped{Row: rowNum, Reason: fmt.Sprintf("duplicate %s - %s", day, code)})
			continue
		}
		seen[key] = struct{}{}

		res.Records = append(res.Records, Record{
			Weekday:    day,
			ClientCode: code,
			ClientName: name,
			Row:        rowNum,
		})
	}
	return res
}

func isBlank(row []string) bool {
	return strings.TrimSpace(strings.Join(row, "")) == ""
}

// ReadCSV reads every row of a comma separated file.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// ReadXLSX reads the rows of the workbook's first sheet.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// ReadFile picks the reader from the file name extension.
func ReadFile(filename string, r io.Reader) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}
