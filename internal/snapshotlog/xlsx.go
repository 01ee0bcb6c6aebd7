package snapshotlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// numeric columns are written as numbers so spreadsheet formulas work.
var numericColumns = map[string]bool{
	"timestamp":       true,
	"lowest_ask_usd":  true,
	"highest_bid_usd": true,
	"highest_bid_qty": true,
	"vol24h":          true,
	"asp24h_usd":      true,
}

// ExportXLSX converts the history CSV into a workbook with a bold header row.
// It returns the number of data rows written.
func ExportXLSX(historyPath, outPath string) (int, error) {
	in, err := os.Open(historyPath)
	if err != nil {
		return 0, fmt.Errorf("open snapshot history: %w", err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read snapshot history: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("snapshot history %s is empty", historyPath)
	}

	f := excelize.NewFile()
	defer f.Close()

	header := records[0]
	for i, record := range records {
		cells := make([]interface{}, len(record))
		for j, v := range record {
			cells[j] = v
			if i == 0 || j >= len(header) || !numericColumns[header[j]] || v == "" {
				continue
			}
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				cells[j] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return 0, err
	}
	if err := f.SetColWidth(exportSheet, "A", lastCol, 18); err != nil {
		return 0, err
	}

	if err := ensureDir(outPath); err != nil {
		return 0, err
	}
	if err := f.SaveAs(outPath); err != nil {
		return 0, fmt.Errorf("save workbook: %w", err)
	}
	return len(records) - 1, nil
}
