package spreadsheet

import (
	"fmt"
	"io"
	"sort"
	"time"

	"learn-persona/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SheetDistribution = "Persona Distribution"
	SheetTrends       = "Activity Trends"
	SheetActivity     = "Recent Activity"
)

// WriteDashboard renders the summary as an xlsx workbook with one sheet per panel.
func WriteDashboard(w io.Writer, summary *domain.DashboardSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDistribution); err != nil {
		return err
	}
	for _, name := range []string{SheetTrends, SheetActivity} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	if err := writeDistribution(f, summary.Distribution); err != nil {
		return err
	}
	if err := writeTrends(f, summary.Trends, summary.GeneratedAt); err != nil {
		return err
	}
	if err := writeActivity(f, summary.Activity); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func personaLabels() []string {
	personas := domain.AllPersonas()
	labels := make([]string, len(personas))
	for i, p := range personas {
		labels[i] = p.Label()
	}
	return labels
}

func writeDistribution(f *excelize.File, dist domain.PersonaDistribution) error {
	labels := personaLabels()
	header := []interface{}{"Department"}
	for _, l := range labels {
		header = append(header, l)
	}
	header = append(header, "Total")
	if err := setRow(f, SheetDistribution, 1, header); err != nil {
		return err
	}

	departments := make([]string, 0, len(dist))
	for d := range dist {
		departments = append(departments, d)
	}
	sort.Strings(departments)

	for i, d := range departments {
		row := []interface{}{d}
		total := 0
		for _, l := range labels {
			n := dist[d][l]
			total += n
			row = append(row, n)
		}
		row = append(row, total)
		if err := setRow(f, SheetDistribution, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTrends(f *excelize.File, trends domain.ActivityTrends, generatedAt time.Time) error {
	periods := 0
	for _, counts := range trends {
		if len(counts) > periods {
			periods = len(counts)
		}
	}

	header := []interface{}{"Persona"}
	for i := 0; i < periods; i++ {
		day := generatedAt.UTC().AddDate(0, 0, i-periods+1)
		header = append(header, day.Format("2006-01-02"))
	}
	if err := setRow(f, SheetTrends, 1, header); err != nil {
		return err
	}

	for i, label := range personaLabels() {
		row := []interface{}{label}
		for _, n := range trends[label] {
			row = append(row, n)
		}
		if err := setRow(f, SheetTrends, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeActivity(f *excelize.File, items []domain.ActivityItem) error {
	if err := setRow(f, SheetActivity, 1, []interface{}{"Timestamp", "User", "Department", "Course", "Activity"}); err != nil {
		return err
	}
	for i, item := range items {
		row := []interface{}{
			item.Timestamp.UTC().Format(time.RFC3339),
			item.UserName,
			item.UserDepartment,
			item.CourseTitle,
			string(item.Type),
		}
		if err := setRow(f, SheetActivity, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
