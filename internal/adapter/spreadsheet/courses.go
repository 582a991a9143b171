package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"learn-persona/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	listSeparator = ";"
)

var ErrMissingTitleColumn = errors.New("header row has no title column")

// RowError reports a data row that could not be turned into a course.
// Row is 1-based and counts the header.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// CourseImport holds the valid courses of a sheet and the rows that were rejected.
type CourseImport struct {
	Courses []*domain.Course
	Errors  []RowError
}

// FormatFromPath picks the reader from the file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported course file %q: expected .xlsx or .csv", path)
	}
}

// ReadCourses parses a course sheet. The first row is a header naming the columns
// title, description, url, provider, tags, personas, difficulty and duration in
// any order; tags and personas are ";"-separated lists.
func ReadCourses(r io.Reader, format string) (*CourseImport, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r)
	case FormatCSV:
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return parseCourseRows(rows)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}

func parseCourseRows(rows [][]string) (*CourseImport, error) {
	result := &CourseImport{}
	if len(rows) == 0 {
		return result, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, ErrMissingTitleColumn
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}

		course := domain.NewCourse(cell(row, "title"), cell(row, "description"), cell(row, "url"), cell(row, "provider"))
		course.Tags = splitList(cell(row, "tags"))
		course.Difficulty = cell(row, "difficulty")
		course.Duration = cell(row, "duration")

		personas, err := parsePersonas(cell(row, "personas"))
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Err: err})
			continue
		}
		course.SuitablePersonas = personas

		if err := course.Validate(); err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Err: err})
			continue
		}
		result.Courses = append(result.Courses, course)
	}
	return result, nil
}

func parsePersonas(s string) ([]domain.Persona, error) {
	var personas []domain.Persona
	for _, item := range splitList(s) {
		p, err := domain.ParsePersona(item)
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	return personas, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
