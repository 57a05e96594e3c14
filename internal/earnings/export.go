package earnings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Earnings"

var headers = []string{"Date", "Time", "Client", "Service", "Price", "Status"}

// ExportXLSX writes the summary to dir and returns the file path.
func ExportXLSX(summary Summary, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("earnings_%s.xlsx", now.Format("20060102_150405")))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := WriteXLSX(file, summary); err != nil {
		return "", err
	}
	return path, nil
}

// WriteXLSX renders the summary as a workbook: a totals block followed by
// the ledger table.
func WriteXLSX(w io.Writer, summary Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	money, _ := f.NewStyle(&excelize.Style{NumFmt: 2})
	header, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	totals := []struct {
		label string
		value float64
	}{
		{"Total earnings", summary.Total.InexactFloat64()},
		{"Paid", summary.Paid.InexactFloat64()},
		{"Unpaid", summary.Unpaid.InexactFloat64()},
	}
	for i, t := range totals {
		row := i + 1
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), t.label)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), t.value)
		_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), bold)
		_ = f.SetCellStyle(sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), money)
	}

	const headerRow = 5
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, header)
	}

	for i, r := range summary.Rows {
		row := headerRow + 1 + i
		values := []interface{}{r.Date, r.Time, r.Client, r.Service, r.Price.InexactFloat64(), r.Badge}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		priceCell, _ := excelize.CoordinatesToCellName(5, row)
		_ = f.SetCellStyle(sheetName, priceCell, priceCell, money)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "C", "D", 24)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
