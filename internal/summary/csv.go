package summary

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// medicalCureMarker fills the medical_cure column on every summary row; the
// remaining deduction-category columns stay empty for manual entry.
const medicalCureMarker = "該当する"

// utf8BOM makes spreadsheet tools detect the encoding of Japanese text
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var summaryHeader = []string{
	"hospital_name", "patient_name", "medical_cure", "medicine", "support",
	"others", "total_amount", "receipt_count", "receipts_with_amount", "filenames",
}

var detailHeader = []string{"filename", "patient_name", "hospital_name", "amount"}

// WriteSummaryCSV writes one consolidated row per group to path, BOM
// prefixed, in the groups' given order
func WriteSummaryCSV(path string, groups []*ConsolidatedGroup) error {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.HospitalName,
			g.PatientName,
			medicalCureMarker,
			"",
			"",
			"",
			strconv.Itoa(g.TotalAmount),
			strconv.Itoa(g.ReceiptCount),
			strconv.Itoa(g.ReceiptsWithAmount),
			strings.Join(g.Filenames, ", "),
		})
	}
	return writeCSV(path, summaryHeader, rows)
}

// WriteDetailCSV writes one row per processed image to path, BOM prefixed
func WriteDetailCSV(path string, items []ReceiptItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Filename,
			item.PatientName,
			item.HospitalName,
			item.Amount().String(),
		})
	}
	return writeCSV(path, detailHeader, rows)
}

// DetailPath derives the detail CSV path by inserting _detail before the
// output path's extension
func DetailPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_detail" + ext
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return f.Close()
}
