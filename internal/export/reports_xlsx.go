// Package export выгружает отчёты в XLSX для муниципальных отделов.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ignatzorin/sanmateo-reports/internal/domain/entity"
)

const (
	SheetName   = "Reports"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	headerRow = 4
)

var columns = []struct {
	title string
	width float64
}{
	{"Report ID", 18},
	{"Submitted", 18},
	{"Category", 20},
	{"Status", 14},
	{"Priority", 10},
	{"Barangay", 18},
	{"Street Address", 32},
	{"Latitude", 11},
	{"Longitude", 11},
	{"Department", 36},
	{"Assigned To", 24},
	{"Last Update", 18},
	{"Reporter", 20},
	{"Phone", 16},
	{"Email", 24},
	{"Description", 60},
}

// ReportsXLSX строит книгу с одной строкой на отчёт и возвращает её байты.
func ReportsXLSX(reports []*entity.Report, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#14B8A6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	_ = f.SetCellValue(SheetName, "A1", "San Mateo Infrastructure Reports")
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)
	_ = f.SetRowHeight(SheetName, 1, 30)
	_ = f.SetCellValue(SheetName, "A2", fmt.Sprintf("Generated: %s (%d reports)", generatedAt.Format("2006-01-02 15:04:05"), len(reports)))

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(SheetName, cell, col.title)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, name, name, col.width)
	}

	for rowIdx, r := range reports {
		row := headerRow + 1 + rowIdx
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &[]interface{}{
			r.ID,
			r.SubmittedAt.Format("2006-01-02 15:04"),
			r.Category.Label(),
			strings.ReplaceAll(string(r.Status), "-", " "),
			r.Priority.Label(),
			r.Barangay,
			r.StreetAddress,
			r.Coordinates.Latitude,
			r.Coordinates.Longitude,
			r.Department,
			derefOrEmpty(r.AssignedTo),
			r.UpdatedAt.Format("2006-01-02 15:04"),
			r.Reporter.Name,
			r.Reporter.Phone,
			r.Reporter.Email,
			r.Description,
		}); err != nil {
			return nil, err
		}
	}

	if len(reports) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(columns), headerRow+len(reports))
		if err := f.AutoFilter(SheetName, first+":"+last, nil); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName — имя файла выгрузки.
func FileName(now time.Time) string {
	return fmt.Sprintf("sanmateo-reports-%s.xlsx", now.Format("20060102-1504"))
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
